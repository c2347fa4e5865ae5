package repository

import (
	"context"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por producto+ubicación.
// Usado dentro de transacciones para garantizar consistencia. Get y GetForUpdate devuelven cantidad cero si no hay fila.
type StockRepository interface {
	Get(ctx context.Context, productID, locationID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE), creándola en cero si no existe.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error)
	ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error)
}
