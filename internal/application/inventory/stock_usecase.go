package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	dominv "github.com/jhoicas/stockmaster/internal/domain/inventory"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

const reconcilePageSize = 200

// StockUseCase consultas de disponible e historial, ajustes y conciliación del ledger.
type StockUseCase struct {
	tx     TxRunner
	avail  *AvailabilityCalculator
	ledger *Ledger
	log    *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(tx TxRunner, avail *AvailabilityCalculator, ledger *Ledger, log *logger.Logger) *StockUseCase {
	return &StockUseCase{tx: tx, avail: avail, ledger: ledger, log: log.Component("stock")}
}

// AvailableStock on-hand, reservado y disponible de un producto; locationID vacío agrega todas las ubicaciones.
func (uc *StockUseCase) AvailableStock(ctx context.Context, productID, locationID string) (*dto.AvailabilityResponse, error) {
	var out *entity.StockAvailability
	err := uc.tx.Run(ctx, func(r Repos) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		out, err = uc.avail.Availability(ctx, r, productID, locationID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAvailabilityResponse(out), nil
}

// ListAvailable disponible de cada producto con fila de stock en la ubicación.
func (uc *StockUseCase) ListAvailable(ctx context.Context, locationID string) ([]dto.AvailabilityResponse, error) {
	var out []dto.AvailabilityResponse
	err := uc.tx.Run(ctx, func(r Repos) error {
		loc, err := r.Locations.GetByID(ctx, locationID)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
		stocks, err := r.Stock.ListByLocation(ctx, locationID)
		if err != nil {
			return err
		}
		out = make([]dto.AvailabilityResponse, 0, len(stocks))
		for _, s := range stocks {
			a, err := uc.avail.Availability(ctx, r, s.ProductID, locationID, "")
			if err != nil {
				return err
			}
			out = append(out, *toAvailabilityResponse(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History historial de movimientos filtrado por producto, ubicación, documento y rango de fechas.
func (uc *StockUseCase) History(ctx context.Context, in dto.HistoryRequest) (*dto.LedgerHistoryResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	in.DefaultPage()
	filter := entity.LedgerFilter{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		DocumentID: in.DocumentID,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	var entries []*entity.LedgerEntry
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		entries, err = r.Ledger.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.LedgerHistoryResponse{
		Items: toLedgerEntryResponses(entries),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// BalanceAsOf saldo de un producto reconstruido desde el ledger hasta asOf.
func (uc *StockUseCase) BalanceAsOf(ctx context.Context, productID, locationID string, asOf time.Time) (*dto.BalanceResponse, error) {
	out := &dto.BalanceResponse{ProductID: productID, LocationID: locationID, AsOf: asOf}
	err := uc.tx.Run(ctx, func(r Repos) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		out.Balance, err = uc.ledger.BalanceAsOf(ctx, r, productID, locationID, asOf)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Adjust escribe un asiento de ajuste (saldo inicial o conteo físico). Una disminución
// no puede consumir stock reservado por documentos activos.
func (uc *StockUseCase) Adjust(ctx context.Context, userID string, in dto.AdjustStockRequest) (*dto.LedgerEntryResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	entry := &entity.LedgerEntry{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Type:       entity.TransactionAdjustment,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		CreatedBy:  userID,
	}
	err := uc.tx.Run(ctx, func(r Repos) error {
		product, err := r.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewValidationError("product_id", "producto no existe")
		}
		loc, err := r.Locations.GetByID(ctx, in.LocationID)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.NewValidationError("location_id", "ubicación no existe")
		}
		if in.Quantity.IsNegative() {
			if _, err := r.Stock.GetForUpdate(ctx, in.ProductID, in.LocationID); err != nil {
				return err
			}
			a, err := uc.avail.Availability(ctx, r, in.ProductID, in.LocationID, "")
			if err != nil {
				return err
			}
			req := dominv.Request{
				Key:      entity.StockKey{ProductID: in.ProductID, LocationID: in.LocationID},
				Quantity: in.Quantity.Neg(),
			}
			if err := dominv.CheckRequests([]dominv.Request{req}, map[entity.StockKey]decimal.Decimal{req.Key: a.Available}); err != nil {
				return err
			}
		}
		return uc.ledger.Append(ctx, r, entry)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.RecordWritten(entry)
	uc.log.Info().
		Str("product_id", entry.ProductID).
		Str("location_id", entry.LocationID).
		Str("quantity", entry.Quantity.String()).
		Str("reason", entry.Reason).
		Msg("ajuste de stock")
	resp := toLedgerEntryResponse(entry)
	return &resp, nil
}

// Reconcile concilia un producto. Devuelve ReconciliationMismatchError si el ledger no cuadra.
func (uc *StockUseCase) Reconcile(ctx context.Context, productID string) error {
	mismatches, err := uc.reconcile(ctx, productID)
	if err != nil {
		return err
	}
	if len(mismatches) > 0 {
		return mismatches[0]
	}
	return nil
}

// reconcile concilia en su propia transacción y reporta las diferencias después de cerrarla.
func (uc *StockUseCase) reconcile(ctx context.Context, productID string) ([]*domain.ReconciliationMismatchError, error) {
	var mismatches []*domain.ReconciliationMismatchError
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		mismatches, err = uc.ledger.Reconcile(ctx, r, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.ReportMismatches(mismatches)
	return mismatches, nil
}

// ReconcileAll concilia todos los productos por páginas y reporta las diferencias encontradas.
func (uc *StockUseCase) ReconcileAll(ctx context.Context) (*dto.ReconciliationResponse, error) {
	report := &dto.ReconciliationResponse{Mismatches: []dto.MismatchResponse{}}
	for offset := 0; ; offset += reconcilePageSize {
		var page []*entity.Product
		err := uc.tx.Run(ctx, func(r Repos) error {
			var err error
			page, err = r.Products.List(ctx, reconcilePageSize, offset)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			report.Checked++
			mismatches, err := uc.reconcile(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			for _, mm := range mismatches {
				report.Mismatches = append(report.Mismatches, dto.MismatchResponse{
					ProductID:  mm.ProductID,
					LocationID: mm.LocationID,
					Ledger:     mm.Ledger,
					Cached:     mm.Cached,
				})
			}
		}
		if len(page) < reconcilePageSize {
			break
		}
	}
	report.Consistent = len(report.Mismatches) == 0
	uc.log.Info().Int("checked", report.Checked).Int("mismatches", len(report.Mismatches)).Msg("conciliación completa")
	return report, nil
}
