package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	dominv "github.com/jhoicas/stockmaster/internal/domain/inventory"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

// ReservationManager crea y libera reservas blandas sobre el stock de origen de un documento.
// Todas las operaciones corren dentro de la transacción del llamador.
type ReservationManager struct {
	avail *AvailabilityCalculator
	log   *logger.Logger
}

// NewReservationManager construye el gestor de reservas.
func NewReservationManager(avail *AvailabilityCalculator, log *logger.Logger) *ReservationManager {
	return &ReservationManager{avail: avail, log: log.Component("reservations")}
}

// Check bloquea las filas de stock de origen (SELECT FOR UPDATE, en orden producto/ubicación) y verifica
// que cada producto del documento quepa en el disponible, excluyendo las reservas del propio documento.
// No modifica nada; devuelve InsufficientStockError con todos los faltantes.
func (m *ReservationManager) Check(ctx context.Context, r Repos, doc *entity.MovementDocument) error {
	if doc.SourceLocationID == "" {
		return domain.NewValidationError("source_location_id", "requerido para reservar stock")
	}
	reqs := dominv.AggregateLines(doc.Lines, doc.SourceLocationID)

	for _, req := range reqs {
		if _, err := r.Stock.GetForUpdate(ctx, req.Key.ProductID, req.Key.LocationID); err != nil {
			return err
		}
	}

	available := make(map[entity.StockKey]decimal.Decimal, len(reqs))
	for _, req := range reqs {
		a, err := m.avail.Availability(ctx, r, req.Key.ProductID, req.Key.LocationID, doc.ID)
		if err != nil {
			return err
		}
		available[req.Key] = a.Available
	}

	if err := dominv.CheckRequests(reqs, available); err != nil {
		m.log.Warn().
			Str("document_id", doc.ID).
			Str("reference", doc.Reference).
			Err(err).
			Msg("stock insuficiente")
		return err
	}
	return nil
}

// Reserve todo o nada: verifica el disponible y fija reserved = requested en cada línea.
// Un solo faltante aborta la reserva sin cambios parciales.
func (m *ReservationManager) Reserve(ctx context.Context, r Repos, doc *entity.MovementDocument) error {
	if err := m.Check(ctx, r, doc); err != nil {
		return err
	}
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if err := r.Documents.SetReserved(ctx, line.ID, line.Quantity); err != nil {
			return err
		}
		line.ReservedQuantity = line.Quantity
	}
	m.log.Debug().
		Str("document_id", doc.ID).
		Str("reserved", doc.TotalReserved().String()).
		Msg("stock reservado")
	return nil
}

// Release pone en cero las reservas del documento. Las líneas ya en cero no se tocan,
// así que una segunda llamada no escribe nada.
func (m *ReservationManager) Release(ctx context.Context, r Repos, doc *entity.MovementDocument) error {
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.ReservedQuantity.IsZero() {
			continue
		}
		if err := r.Documents.SetReserved(ctx, line.ID, decimal.Zero); err != nil {
			return err
		}
		line.ReservedQuantity = decimal.Zero
	}
	return nil
}
