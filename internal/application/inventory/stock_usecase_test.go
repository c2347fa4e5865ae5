package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

func TestAjuste_NoConsumeStockReservado(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d := f.delivery(line(a, "8"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.stock.Adjust(f.ctx, testUser, dto.AdjustStockRequest{
		ProductID: a, LocationID: f.shelf, Quantity: qty("-3"), Reason: "merma",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	e, err := f.stock.Adjust(f.ctx, testUser, dto.AdjustStockRequest{
		ProductID: a, LocationID: f.shelf, Quantity: qty("-2"), Reason: "merma",
	})
	require.NoError(t, err)
	assert.Equal(t, "adjustment", e.Type)
	assert.Equal(t, "8", e.BalanceAfter.String())
	assert.True(t, f.available(a, f.shelf).IsZero())
	f.mustReconcile()
}

func TestAjuste_ProductoOUbicacionInexistente(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "0", "0")

	_, err := f.stock.Adjust(f.ctx, testUser, dto.AdjustStockRequest{
		ProductID: a, LocationID: "0f8c2b7e-6a1d-4c3e-8b9a-2e4d6f8a0c1b", Quantity: qty("1"), Reason: "x",
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "location_id", ve.Field)

	_, err = f.stock.Adjust(f.ctx, testUser, dto.AdjustStockRequest{
		ProductID: a, LocationID: f.shelf, Quantity: qty("0"), Reason: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBalanceAsOf_ReconstruyeDesdeLedger(t *testing.T) {
	f := newFixture(t)
	antes := time.Now().Add(-time.Hour)
	a := f.product("A-001", "40", "0")

	d := f.delivery(line(a, "15"))
	for _, step := range []func() error{
		func() error { _, err := f.docs.Submit(f.ctx, d.ID, testUser); return err },
		func() error { _, err := f.docs.Validate(f.ctx, d.ID, testUser); return err },
		func() error { _, err := f.docs.Process(f.ctx, d.ID, testUser); return err },
	} {
		require.NoError(t, step())
	}

	ahora, err := f.stock.BalanceAsOf(f.ctx, a, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "25", ahora.Balance.String())
	assert.True(t, ahora.Balance.Equal(f.onHand(a)))

	enEstante, err := f.stock.BalanceAsOf(f.ctx, a, f.shelf, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "25", enEstante.Balance.String())

	inicial, err := f.stock.BalanceAsOf(f.ctx, a, "", antes)
	require.NoError(t, err)
	assert.True(t, inicial.Balance.IsZero())

	_, err = f.stock.BalanceAsOf(f.ctx, "9c0d3f4e-1b2a-4c5d-8e7f-6a5b4c3d2e1f", "", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAvailable_PorUbicacion(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")
	b := f.product("B-001", "5", "0")

	d := f.delivery(line(b, "2"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	list, err := f.stock.ListAvailable(f.ctx, f.shelf)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byProduct := map[string]dto.AvailabilityResponse{}
	for _, it := range list {
		byProduct[it.ProductID] = it
	}
	assert.Equal(t, "10", byProduct[a].Available.String())
	assert.Equal(t, "5", byProduct[b].OnHand.String())
	assert.Equal(t, "2", byProduct[b].Reserved.String())
	assert.Equal(t, "3", byProduct[b].Available.String())

	_, err = f.stock.ListAvailable(f.ctx, "3e4f5a6b-7c8d-4e9f-a0b1-c2d3e4f5a6b7")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_DetectaCacheCorrupta(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")
	f.product("B-001", "3", "0")
	require.NoError(t, f.stock.Reconcile(f.ctx, a))

	// alguien tocó on_hand sin pasar por el ledger
	err := f.store.Run(f.ctx, func(r inventory.Repos) error {
		return r.Products.AddOnHand(f.ctx, a, qty("1"))
	})
	require.NoError(t, err)

	err = f.stock.Reconcile(f.ctx, a)
	var mm *domain.ReconciliationMismatchError
	require.True(t, errors.As(err, &mm))
	assert.Equal(t, a, mm.ProductID)
	assert.Empty(t, mm.LocationID)
	assert.Equal(t, "10", mm.Ledger.String())
	assert.Equal(t, "11", mm.Cached.String())
	assert.GreaterOrEqual(t, f.metrics.mismatches, 1)

	report, err := f.stock.ReconcileAll(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.False(t, report.Consistent)
	require.Len(t, report.Mismatches, 1)

	// la conciliación no corrige
	assert.Equal(t, "11", f.onHand(a).String())
}

func TestReconcile_DetectaFilaDeStockCorrupta(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	err := f.store.Run(f.ctx, func(r inventory.Repos) error {
		return r.Stock.Upsert(f.ctx, &entity.Stock{ProductID: a, LocationID: f.shelf, Quantity: qty("9")})
	})
	require.NoError(t, err)

	err = f.stock.Reconcile(f.ctx, a)
	var mm *domain.ReconciliationMismatchError
	require.True(t, errors.As(err, &mm))
	assert.Equal(t, f.shelf, mm.LocationID)
}

func TestLedger_RechazaSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "2", "0")

	err := f.store.Run(f.ctx, func(r inventory.Repos) error {
		return f.ledger.Append(f.ctx, r, &entity.LedgerEntry{
			ProductID: a, LocationID: f.shelf, Type: entity.TransactionDelivery, Quantity: qty("-3"),
		})
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "2", f.onHand(a).String())
	f.mustReconcile()
}

func TestHistory_FiltraYPagina(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")
	b := f.product("B-001", "10", "0")

	r := f.receipt(line(a, "1"), line(b, "1"), line(a, "2"))
	_, err := f.docs.Submit(f.ctx, r.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Process(f.ctx, r.ID, testUser)
	require.NoError(t, err)

	hist, err := f.stock.History(f.ctx, dto.HistoryRequest{ProductID: a})
	require.NoError(t, err)
	assert.Len(t, hist.Items, 3)

	paged, err := f.stock.History(f.ctx, dto.HistoryRequest{ProductID: a, PageRequest: dto.PageRequest{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "receipt", paged.Items[0].Type)
}

func TestProductos_EstadoYBajoStock(t *testing.T) {
	f := newFixture(t)
	f.product("A-001", "0", "5")
	f.product("B-001", "4", "5")
	f.product("C-001", "50", "5")

	low, err := f.products.ListLowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, entity.ProductStatusOutOfStock, low[0].Status)
	assert.Equal(t, entity.ProductStatusLowStock, low[1].Status)

	_, err = f.products.Create(f.ctx, dto.CreateProductRequest{SKU: "A-001", Name: "dup"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
