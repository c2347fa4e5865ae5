package inventory

import (
	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/movement"
)

func toDocumentResponse(d *entity.MovementDocument) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	lines := make([]dto.LineResponse, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, dto.LineResponse{
			ID:               l.ID,
			Position:         l.Position,
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			ReservedQuantity: l.ReservedQuantity,
		})
	}
	actions := movement.Available(d.Kind, d.Status)
	available := make([]string, 0, len(actions))
	for _, a := range actions {
		available = append(available, string(a))
	}
	return &dto.DocumentResponse{
		ID:                    d.ID,
		Reference:             d.Reference,
		Kind:                  string(d.Kind),
		Direction:             string(d.Direction()),
		SourceLocationID:      d.SourceLocationID,
		DestinationLocationID: d.DestinationLocationID,
		Partner:               d.Partner,
		Notes:                 d.Notes,
		ScheduledDate:         d.ScheduledDate,
		Status:                string(d.Status),
		AvailableActions:      available,
		Lines:                 lines,
		CreatedBy:             d.CreatedBy,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:                e.ID,
		ProductID:         e.ProductID,
		LocationID:        e.LocationID,
		Type:              string(e.Type),
		Quantity:          e.Quantity,
		BalanceBefore:     e.BalanceBefore,
		BalanceAfter:      e.BalanceAfter,
		DocumentID:        e.DocumentID,
		DocumentReference: e.DocumentReference,
		Reason:            e.Reason,
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt,
	}
}

func toLedgerEntryResponses(entries []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return out
}

func toAvailabilityResponse(a *entity.StockAvailability) *dto.AvailabilityResponse {
	return &dto.AvailabilityResponse{
		ProductID:  a.ProductID,
		LocationID: a.LocationID,
		OnHand:     a.OnHand,
		Reserved:   a.Reserved,
		Available:  a.Available,
	}
}
