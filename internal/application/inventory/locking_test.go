package inventory_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/repository"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

// lockLog anota cada bloqueo de fila en el orden en que se pide.
type lockLog struct {
	mu    sync.Mutex
	locks []string
}

func (l *lockLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks = append(l.locks, s)
}

func (l *lockLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.locks...)
}

type loggedProducts struct {
	repository.ProductRepository
	log *lockLog
}

func (p loggedProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p.log.add("product:" + id)
	return p.ProductRepository.GetForUpdate(ctx, id)
}

type loggedStock struct {
	repository.StockRepository
	log *lockLog
}

func (s loggedStock) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	s.log.add("stock:" + productID)
	return s.StockRepository.GetForUpdate(ctx, productID, locationID)
}

// failingDocuments hace fallar la escritura final del documento, después de los asientos.
type failingDocuments struct {
	repository.DocumentRepository
}

var errDocumentWrite = errors.New("escritura de documento fallida")

func (failingDocuments) Update(context.Context, *entity.MovementDocument) error {
	return errDocumentWrite
}

// loggedTx envuelve el store y sustituye repositorios dentro de cada transacción.
type loggedTx struct {
	inner      inventory.TxRunner
	log        *lockLog
	failUpdate bool
}

func (tx loggedTx) Run(ctx context.Context, fn func(inventory.Repos) error) error {
	return tx.inner.Run(ctx, func(r inventory.Repos) error {
		r.Products = loggedProducts{ProductRepository: r.Products, log: tx.log}
		r.Stock = loggedStock{StockRepository: r.Stock, log: tx.log}
		if tx.failUpdate {
			r.Documents = failingDocuments{DocumentRepository: r.Documents}
		}
		return fn(r)
	})
}

func (f *fixture) loggedDocs(tx loggedTx) *inventory.DocumentUseCase {
	return inventory.NewDocumentUseCase(tx, inventory.NewReferenceGenerator("WH"), f.res, f.ledger, f.metrics, logger.Nop())
}

// assertProductsBeforeStock exige que todo producto se bloquee por primera vez en orden de ID
// y antes del primer bloqueo de stock.
func assertProductsBeforeStock(t *testing.T, locks []string, products ...string) {
	t.Helper()
	want := make([]string, 0, len(products))
	for _, p := range products {
		want = append(want, "product:"+p)
	}
	sort.Strings(want)

	firstStock := len(locks)
	for i, l := range locks {
		if strings.HasPrefix(l, "stock:") {
			firstStock = i
			break
		}
	}
	require.GreaterOrEqual(t, firstStock, len(want), "locks: %v", locks)
	assert.Equal(t, want, locks[:len(want)], "locks: %v", locks)
	for _, l := range locks[firstStock:] {
		if strings.HasPrefix(l, "product:") {
			assert.Contains(t, want, l, "producto bloqueado tarde: %v", locks)
		}
	}
}

func TestCommit_BloqueaProductosOrdenadosAntesQueStock(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "20", "0")
	b := f.product("B-001", "20", "0")
	hi, lo := a, b
	if hi < lo {
		hi, lo = lo, hi
	}

	// líneas en orden inverso al de los IDs
	d := f.delivery(line(hi, "3"), line(lo, "4"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	locks := &lockLog{}
	_, err = f.loggedDocs(loggedTx{inner: f.store, log: locks}).Process(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	assertProductsBeforeStock(t, locks.snapshot(), hi, lo)

	r := f.receipt(line(lo, "1"), line(hi, "1"))
	locks = &lockLog{}
	docs := f.loggedDocs(loggedTx{inner: f.store, log: locks})
	_, err = docs.Submit(f.ctx, r.ID, testUser)
	require.NoError(t, err)
	_, err = docs.Process(f.ctx, r.ID, testUser)
	require.NoError(t, err)
	assertProductsBeforeStock(t, locks.snapshot(), hi, lo)
	f.mustReconcile()
}

func TestAdjust_BloqueaProductoAntesQueStock(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "5", "0")

	locks := &lockLog{}
	stock := inventory.NewStockUseCase(loggedTx{inner: f.store, log: locks}, f.avail, f.ledger, logger.Nop())
	_, err := stock.Adjust(f.ctx, testUser, dto.AdjustStockRequest{
		ProductID: a, LocationID: f.shelf, Quantity: qty("-2"), Reason: "merma",
	})
	require.NoError(t, err)
	assertProductsBeforeStock(t, locks.snapshot(), a)
}

func TestReconcile_BloqueaElProductoPrimero(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "5", "0")

	locks := &lockLog{}
	stock := inventory.NewStockUseCase(loggedTx{inner: f.store, log: locks}, f.avail, f.ledger, logger.Nop())
	require.NoError(t, stock.Reconcile(f.ctx, a))
	got := locks.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, "product:"+a, got[0])
}

func TestMetricas_SoloAsientosConfirmados(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")
	base := f.metrics.entries

	d := f.delivery(line(a, "4"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.loggedDocs(loggedTx{inner: f.store, log: &lockLog{}, failUpdate: true}).Process(f.ctx, d.ID, testUser)
	require.ErrorIs(t, err, errDocumentWrite)
	assert.Equal(t, base, f.metrics.entries, "la transacción se deshizo")
	assert.Equal(t, "10", f.onHand(a).String())

	_, err = f.docs.Process(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, base+1, f.metrics.entries)
	f.mustReconcile()
}
