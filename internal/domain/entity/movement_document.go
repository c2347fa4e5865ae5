package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tipo concreto de documento de movimiento.
type DocumentKind string

const (
	KindReceipt  DocumentKind = "receipt"
	KindDelivery DocumentKind = "delivery"
	KindTransfer DocumentKind = "transfer"
)

// Valid indica si k es uno de los tipos conocidos.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindReceipt, KindDelivery, KindTransfer:
		return true
	}
	return false
}

// Direction sentido del movimiento: entrada, salida o interno.
type Direction string

const (
	DirectionIn       Direction = "in"
	DirectionOut      Direction = "out"
	DirectionInternal Direction = "internal"
)

// Direction devuelve el sentido asociado al tipo de documento.
func (k DocumentKind) Direction() Direction {
	switch k {
	case KindReceipt:
		return DirectionIn
	case KindDelivery:
		return DirectionOut
	default:
		return DirectionInternal
	}
}

// ReferenceCode segmento de la referencia humana (WH/IN, WH/OUT, WH/INT).
func (k DocumentKind) ReferenceCode() string {
	switch k {
	case KindReceipt:
		return "IN"
	case KindDelivery:
		return "OUT"
	default:
		return "INT"
	}
}

// DocumentStatus estado del documento. Conjunto cerrado; las transiciones viven en domain/movement.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusWaiting   DocumentStatus = "waiting"
	StatusReady     DocumentStatus = "ready"
	StatusInTransit DocumentStatus = "in_transit"
	StatusDone      DocumentStatus = "done"
	StatusCompleted DocumentStatus = "completed"
	StatusCanceled  DocumentStatus = "canceled"
)

// ActiveStatuses estados previos al commit cuyas reservas cuentan contra el disponible.
var ActiveStatuses = []DocumentStatus{StatusDraft, StatusWaiting, StatusReady, StatusInTransit}

// IsActive indica si las reservas del documento siguen vigentes.
func (s DocumentStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsTerminal indica un estado inmutable.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCompleted || s == StatusCanceled
}

// MovementDocument generaliza recepción, entrega y traslado.
// SourceLocationID vacío en recepciones; DestinationLocationID vacío en entregas.
type MovementDocument struct {
	ID                    string
	Reference             string
	Kind                  DocumentKind
	SourceLocationID      string
	DestinationLocationID string
	Partner               string // proveedor o cliente
	Notes                 string
	ScheduledDate         time.Time
	Status                DocumentStatus
	Lines                 []LineItem
	CreatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Direction sentido del documento.
func (d *MovementDocument) Direction() Direction {
	return d.Kind.Direction()
}

// ReservesStock indica si el documento retiene stock en origen antes del commit.
func (d *MovementDocument) ReservesStock() bool {
	return d.Kind == KindDelivery || d.Kind == KindTransfer
}

// TotalReserved suma las cantidades reservadas de todas las líneas.
func (d *MovementDocument) TotalReserved() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.ReservedQuantity)
	}
	return total
}

// LineItem línea de un documento. 0 <= ReservedQuantity <= Quantity.
type LineItem struct {
	ID               string
	DocumentID       string
	Position         int
	ProductID        string
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
}
