package entity

import "time"

// Warehouse representa una bodega física. Code se usa como prefijo de las referencias (WH/OUT/0001).
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location ubicación dentro de exactamente una bodega (estante, zona de despacho, etc.).
type Location struct {
	ID          string
	WarehouseID string
	Name        string
	CreatedAt   time.Time
}
