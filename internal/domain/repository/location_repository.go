package repository

import (
	"context"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// LocationRepository puerto de persistencia de ubicaciones.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Location, error)
}
