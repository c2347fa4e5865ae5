package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// AddOnHand suma delta a la caché on_hand; solo la usa el ledger.
	AddOnHand(ctx context.Context, id string, delta decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListLowStock productos con on_hand <= reorder_level.
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
}
