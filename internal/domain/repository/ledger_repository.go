package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// LedgerRepository puerto append-only del ledger: no hay Update ni Delete.
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	List(ctx context.Context, filter entity.LedgerFilter) ([]*entity.LedgerEntry, error)
	// Sum suma las cantidades del producto (todas las ubicaciones si locationID está vacío),
	// hasta asOf inclusive cuando no es nil.
	Sum(ctx context.Context, productID, locationID string, asOf *time.Time) (decimal.Decimal, error)
	// SumByLocation saldo del ledger por ubicación para un producto.
	SumByLocation(ctx context.Context, productID string) (map[string]decimal.Decimal, error)
}
