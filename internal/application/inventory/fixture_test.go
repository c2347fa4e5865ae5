package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/application/usecase"
	"github.com/jhoicas/stockmaster/internal/infrastructure/memory"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

const testUser = "7d1c7c1e-6a4b-4b0e-9d59-0c1f5a3e2b10"

type fixture struct {
	t          *testing.T
	ctx        context.Context
	store      *memory.Store
	metrics    *countingMetrics
	docs       *inventory.DocumentUseCase
	stock      *inventory.StockUseCase
	products   *usecase.ProductUseCase
	warehouses *usecase.WarehouseUseCase
	avail      *inventory.AvailabilityCalculator
	res        *inventory.ReservationManager
	ledger     *inventory.Ledger
	shelf      string // ubicación principal
	dock       string // zona de despacho
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	m := &countingMetrics{}
	avail := inventory.NewAvailabilityCalculator(log)
	ledger := inventory.NewLedger(m, log)
	res := inventory.NewReservationManager(avail, log)
	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		store:      store,
		metrics:    m,
		docs:       inventory.NewDocumentUseCase(store, inventory.NewReferenceGenerator("WH"), res, ledger, m, log),
		stock:      inventory.NewStockUseCase(store, avail, ledger, log),
		products:   usecase.NewProductUseCase(store),
		warehouses: usecase.NewWarehouseUseCase(store),
		avail:      avail,
		res:        res,
		ledger:     ledger,
	}

	wh, err := f.warehouses.Create(f.ctx, dto.CreateWarehouseRequest{Code: "WH", Name: "Principal"})
	require.NoError(t, err)
	shelf, err := f.warehouses.CreateLocation(f.ctx, wh.ID, dto.CreateLocationRequest{Name: "Estante A"})
	require.NoError(t, err)
	dock, err := f.warehouses.CreateLocation(f.ctx, wh.ID, dto.CreateLocationRequest{Name: "Despacho"})
	require.NoError(t, err)
	f.shelf, f.dock = shelf.ID, dock.ID
	return f
}

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// product crea un producto con stock inicial en el estante (ajuste de saldo inicial).
func (f *fixture) product(sku string, onHand, reorder string) string {
	f.t.Helper()
	p, err := f.products.Create(f.ctx, dto.CreateProductRequest{SKU: sku, Name: sku, ReorderLevel: qty(reorder)})
	require.NoError(f.t, err)
	if !qty(onHand).IsZero() {
		_, err = f.stock.Adjust(f.ctx, testUser, dto.AdjustStockRequest{
			ProductID: p.ID, LocationID: f.shelf, Quantity: qty(onHand), Reason: "saldo inicial",
		})
		require.NoError(f.t, err)
	}
	return p.ID
}

func (f *fixture) delivery(lines ...dto.LineRequest) *dto.DocumentResponse {
	f.t.Helper()
	d, err := f.docs.Create(f.ctx, testUser, dto.CreateDocumentRequest{
		Kind: "delivery", SourceLocationID: f.shelf, Partner: "Cliente", Lines: lines,
	})
	require.NoError(f.t, err)
	return d
}

func (f *fixture) receipt(lines ...dto.LineRequest) *dto.DocumentResponse {
	f.t.Helper()
	d, err := f.docs.Create(f.ctx, testUser, dto.CreateDocumentRequest{
		Kind: "receipt", DestinationLocationID: f.shelf, Partner: "Proveedor", Lines: lines,
	})
	require.NoError(f.t, err)
	return d
}

func (f *fixture) transfer(lines ...dto.LineRequest) *dto.DocumentResponse {
	f.t.Helper()
	d, err := f.docs.Create(f.ctx, testUser, dto.CreateDocumentRequest{
		Kind: "transfer", SourceLocationID: f.shelf, DestinationLocationID: f.dock, Lines: lines,
	})
	require.NoError(f.t, err)
	return d
}

func line(productID, q string) dto.LineRequest {
	return dto.LineRequest{ProductID: productID, Quantity: qty(q)}
}

func (f *fixture) onHand(productID string) decimal.Decimal {
	f.t.Helper()
	p, err := f.products.GetByID(f.ctx, productID)
	require.NoError(f.t, err)
	require.NotNil(f.t, p)
	return p.OnHand
}

func (f *fixture) available(productID, locationID string) decimal.Decimal {
	f.t.Helper()
	a, err := f.stock.AvailableStock(f.ctx, productID, locationID)
	require.NoError(f.t, err)
	return a.Available
}

func (f *fixture) mustReconcile() {
	f.t.Helper()
	report, err := f.stock.ReconcileAll(f.ctx)
	require.NoError(f.t, err)
	require.True(f.t, report.Consistent, "mismatches: %+v", report.Mismatches)
}

// countingMetrics cuenta las observaciones para verificarlas en tests.
type countingMetrics struct {
	mu          sync.Mutex
	transitions map[string]int
	shortages   int
	entries     int
	mismatches  int
}

func (m *countingMetrics) TransitionObserved(kind, action, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitions == nil {
		m.transitions = make(map[string]int)
	}
	m.transitions[kind+"/"+action+"/"+result]++
}

func (m *countingMetrics) StockShortage(string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortages++
}

func (m *countingMetrics) LedgerEntryWritten(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries++
}

func (m *countingMetrics) ReconciliationMismatch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mismatches++
}
