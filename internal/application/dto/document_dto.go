package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// LineRequest línea solicitada en un documento.
type LineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func (r LineRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required.Error("producto requerido"), is.UUID),
		validation.Field(&r.Quantity, positive, fitsNumeric),
	)
}

// CreateDocumentRequest body para POST /api/documents.
// Kind: receipt | delivery | transfer. Las ubicaciones requeridas dependen del tipo.
type CreateDocumentRequest struct {
	Kind                  string        `json:"kind"`
	SourceLocationID      string        `json:"source_location_id,omitempty"`
	DestinationLocationID string        `json:"destination_location_id,omitempty"`
	Partner               string        `json:"partner,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
	ScheduledDate         *time.Time    `json:"scheduled_date,omitempty"`
	Lines                 []LineRequest `json:"lines"`
}

func (r CreateDocumentRequest) Validate() error {
	needsSource := r.Kind == "delivery" || r.Kind == "transfer"
	needsDestination := r.Kind == "receipt" || r.Kind == "transfer"
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind,
			validation.Required.Error("tipo requerido"),
			validation.In("receipt", "delivery", "transfer").Error("tipo debe ser receipt, delivery o transfer"),
		),
		validation.Field(&r.SourceLocationID,
			validation.When(needsSource, validation.Required.Error("origen requerido")),
			validation.When(r.SourceLocationID != "", is.UUID),
		),
		validation.Field(&r.DestinationLocationID,
			validation.When(needsDestination, validation.Required.Error("destino requerido")),
			validation.When(r.DestinationLocationID != "", is.UUID),
		),
		validation.Field(&r.Partner, validation.Length(0, 200)),
		validation.Field(&r.Lines),
	)
}

// UpdateDocumentRequest cambios de cabecera de un borrador; los campos nil no se tocan.
type UpdateDocumentRequest struct {
	SourceLocationID      *string    `json:"source_location_id,omitempty"`
	DestinationLocationID *string    `json:"destination_location_id,omitempty"`
	Partner               *string    `json:"partner,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
}

func (r UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceLocationID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.DestinationLocationID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.Partner, validation.Length(0, 200)),
	)
}

// DocumentFilterRequest query de GET /api/documents.
type DocumentFilterRequest struct {
	PageRequest
	Kind   string `query:"kind"`
	Status string `query:"status"`
}

func (r DocumentFilterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.In("receipt", "delivery", "transfer")),
		validation.Field(&r.Status, validation.In("draft", "waiting", "ready", "in_transit", "done", "completed", "canceled")),
	)
}

// LineResponse salida de una línea.
type LineResponse struct {
	ID               string          `json:"id"`
	Position         int             `json:"position"`
	ProductID        string          `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
}

// DocumentResponse salida de un documento de movimiento.
type DocumentResponse struct {
	ID                    string         `json:"id"`
	Reference             string         `json:"reference"`
	Kind                  string         `json:"kind"`
	Direction             string         `json:"direction"`
	SourceLocationID      string         `json:"source_location_id,omitempty"`
	DestinationLocationID string         `json:"destination_location_id,omitempty"`
	Partner               string         `json:"partner,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	ScheduledDate         time.Time      `json:"scheduled_date"`
	Status                string         `json:"status"`
	AvailableActions      []string       `json:"available_actions"`
	Lines                 []LineResponse `json:"lines"`
	CreatedBy             string         `json:"created_by,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransitionResponse documento actualizado más los asientos de ledger escritos por la transición.
type TransitionResponse struct {
	Action   string                `json:"action"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Document DocumentResponse      `json:"document"`
	Entries  []LedgerEntryResponse `json:"entries"`
}
