package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un producto según su stock frente al punto de reorden.
const (
	ProductStatusInStock    = "in_stock"
	ProductStatusLowStock   = "low_stock"
	ProductStatusOutOfStock = "out_of_stock"
)

// Product representa un producto o SKU del catálogo.
// OnHand es una caché del ledger: solo la modifican las transiciones que escriben en el ledger.
type Product struct {
	ID           string
	SKU          string // único
	Name         string
	UnitMeasure  string
	OnHand       decimal.Decimal
	ReorderLevel decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status deriva in_stock / low_stock / out_of_stock a partir de OnHand y ReorderLevel.
func (p *Product) Status() string {
	return StockStatus(p.OnHand, p.ReorderLevel)
}

// StockStatus calcula el estado para una cantidad y un punto de reorden.
func StockStatus(onHand, reorderLevel decimal.Decimal) string {
	if onHand.LessThanOrEqual(decimal.Zero) {
		return ProductStatusOutOfStock
	}
	if onHand.LessThanOrEqual(reorderLevel) {
		return ProductStatusLowStock
	}
	return ProductStatusInStock
}
