package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	dominv "github.com/jhoicas/stockmaster/internal/domain/inventory"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

// AvailabilityCalculator calcula on-hand menos reservado. Es el único punto donde se define
// qué reservas cuentan: líneas de documentos activos (draft, waiting, ready, in_transit) con el mismo origen.
type AvailabilityCalculator struct {
	log *logger.Logger
}

// NewAvailabilityCalculator construye el calculador.
func NewAvailabilityCalculator(log *logger.Logger) *AvailabilityCalculator {
	return &AvailabilityCalculator{log: log.Component("availability")}
}

// Availability devuelve on-hand, reservado y disponible de un producto.
// locationID vacío agrega todas las ubicaciones; excludeDocumentID omite las reservas de ese documento.
// Se evalúa con los repos de la transacción del llamador.
func (c *AvailabilityCalculator) Availability(ctx context.Context, r Repos, productID, locationID, excludeDocumentID string) (*entity.StockAvailability, error) {
	var onHand decimal.Decimal
	if locationID == "" {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		onHand = product.OnHand
	} else {
		stock, err := r.Stock.Get(ctx, productID, locationID)
		if err != nil {
			return nil, err
		}
		onHand = stock.Quantity
	}

	reserved, err := r.Documents.ReservedQuantity(ctx, productID, locationID, excludeDocumentID)
	if err != nil {
		return nil, err
	}

	available := dominv.Available(onHand, reserved)
	if available.IsNegative() {
		// sobre-reserva: dato corrupto, se reporta para conciliación y se trata como cero utilizable
		c.log.Error().
			Str("product_id", productID).
			Str("location_id", locationID).
			Str("on_hand", onHand.String()).
			Str("reserved", reserved.String()).
			Msg("disponible negativo")
	}

	return &entity.StockAvailability{
		ProductID:  productID,
		LocationID: locationID,
		OnHand:     onHand,
		Reserved:   reserved,
		Available:  available,
	}, nil
}

// AvailableStock disponible de un producto (todas las ubicaciones si locationID está vacío).
func (c *AvailabilityCalculator) AvailableStock(ctx context.Context, r Repos, productID, locationID string) (decimal.Decimal, error) {
	a, err := c.Availability(ctx, r, productID, locationID, "")
	if err != nil {
		return decimal.Zero, err
	}
	return a.Available, nil
}
