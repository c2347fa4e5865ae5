package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAvailable_YUsable(t *testing.T) {
	assert.True(t, inventory.Available(dec("100"), dec("30")).Equal(dec("70")))
	neg := inventory.Available(dec("5"), dec("8"))
	assert.True(t, neg.Equal(dec("-3")))
	assert.True(t, inventory.Usable(neg).IsZero(), "un disponible negativo no es utilizable")
}

func TestAggregateLines_SumaPorProducto(t *testing.T) {
	lines := []entity.LineItem{
		{ProductID: "b", Quantity: dec("2")},
		{ProductID: "a", Quantity: dec("3")},
		{ProductID: "b", Quantity: dec("4.5")},
	}
	reqs := inventory.AggregateLines(lines, "loc-1")
	require.Len(t, reqs, 2)
	assert.Equal(t, "a", reqs[0].Key.ProductID, "ordenado por producto")
	assert.True(t, reqs[1].Quantity.Equal(dec("6.5")))
	assert.Equal(t, "loc-1", reqs[1].Key.LocationID)
}

func TestCheckRequests_Limites(t *testing.T) {
	key := entity.StockKey{ProductID: "p", LocationID: "l"}
	avail := map[entity.StockKey]decimal.Decimal{key: dec("10")}

	// exactamente lo disponible
	assert.NoError(t, inventory.CheckRequests([]inventory.Request{{Key: key, Quantity: dec("10")}}, avail))

	// disponible + 0.01
	err := inventory.CheckRequests([]inventory.Request{{Key: key, Quantity: dec("10.01")}}, avail)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Len(t, ise.Shortages, 1)
	assert.True(t, ise.Shortages[0].Requested.Equal(dec("10.01")))
	assert.True(t, ise.Shortages[0].Available.Equal(dec("10")))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCheckRequests_ReportaTodosLosFaltantes(t *testing.T) {
	a := entity.StockKey{ProductID: "a", LocationID: "l"}
	b := entity.StockKey{ProductID: "b", LocationID: "l"}
	avail := map[entity.StockKey]decimal.Decimal{a: dec("1"), b: dec("-2")}
	err := inventory.CheckRequests([]inventory.Request{
		{Key: a, Quantity: dec("2")},
		{Key: b, Quantity: dec("1")},
	}, avail)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Len(t, ise.Shortages, 2)
	assert.True(t, ise.Shortages[1].Available.IsZero(), "negativo se reporta como cero")
}

func TestBalanceAsOf(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []*entity.LedgerEntry{
		{Quantity: dec("100"), CreatedAt: t0},
		{Quantity: dec("-30"), CreatedAt: t0.Add(time.Hour)},
		{Quantity: dec("5"), CreatedAt: t0.Add(2 * time.Hour)},
	}
	assert.True(t, inventory.BalanceAsOf(entries, t0.Add(90*time.Minute)).Equal(dec("70")))
	assert.True(t, inventory.BalanceAsOf(entries, t0.Add(2*time.Hour)).Equal(dec("75")))
	assert.True(t, inventory.BalanceAsOf(entries, t0.Add(-time.Second)).IsZero())
	assert.True(t, inventory.Balance(entries).Equal(dec("75")))
	assert.True(t, inventory.Balance(nil).IsZero())
}

func TestConsistentEntry(t *testing.T) {
	assert.True(t, inventory.ConsistentEntry(&entity.LedgerEntry{BalanceBefore: dec("10"), Quantity: dec("-4"), BalanceAfter: dec("6")}))
	assert.False(t, inventory.ConsistentEntry(&entity.LedgerEntry{BalanceBefore: dec("10"), Quantity: dec("-4"), BalanceAfter: dec("7")}))
}

func TestProductStatus(t *testing.T) {
	p := entity.Product{OnHand: dec("70"), ReorderLevel: dec("20")}
	assert.Equal(t, entity.ProductStatusInStock, p.Status())
	p.OnHand = dec("20")
	assert.Equal(t, entity.ProductStatusLowStock, p.Status())
	p.OnHand = decimal.Zero
	assert.Equal(t, entity.ProductStatusOutOfStock, p.Status())
}
