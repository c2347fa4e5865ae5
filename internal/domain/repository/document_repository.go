package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// DocumentFilter filtros para listar documentos de movimiento.
type DocumentFilter struct {
	Kind   entity.DocumentKind
	Status entity.DocumentStatus
	Limit  int
	Offset int
}

// DocumentRepository define el puerto de persistencia para documentos y sus líneas.
// GetByID y GetForUpdate cargan las líneas ordenadas por Position.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.MovementDocument) error
	GetByID(ctx context.Context, id string) (*entity.MovementDocument, error)
	// GetForUpdate bloquea la fila del documento para serializar sus transiciones.
	GetForUpdate(ctx context.Context, id string) (*entity.MovementDocument, error)
	// Update persiste cabecera y estado (no las líneas).
	Update(ctx context.Context, doc *entity.MovementDocument) error
	// Delete borra el documento y sus líneas (cascade).
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.MovementDocument, error)

	AddLine(ctx context.Context, line *entity.LineItem) error
	DeleteLine(ctx context.Context, documentID, lineID string) error
	SetReserved(ctx context.Context, lineID string, quantity decimal.Decimal) error

	// ReservedQuantity suma reserved_quantity de documentos activos con origen locationID
	// (todas las ubicaciones si está vacío), excluyendo excludeDocumentID.
	ReservedQuantity(ctx context.Context, productID, locationID, excludeDocumentID string) (decimal.Decimal, error)
}
