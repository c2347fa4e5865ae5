package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa el stock físico de un producto en una ubicación (tabla materializada desde el ledger).
type Stock struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}

// StockKey identifica una fila de stock.
type StockKey struct {
	ProductID  string
	LocationID string
}

// Less orden determinista para bloquear filas (producto, luego ubicación) y evitar deadlocks.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.LocationID < o.LocationID
}

// StockAvailability on-hand, reservado y disponible de un producto.
type StockAvailability struct {
	ProductID  string
	LocationID string // vacío = agregado de todas las ubicaciones
	OnHand     decimal.Decimal
	Reserved   decimal.Decimal
	Available  decimal.Decimal
}
