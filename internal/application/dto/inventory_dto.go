package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
// Quantity con signo: positivo suma (saldo inicial, conteo), negativo resta.
type AdjustStockRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
}

func (r AdjustStockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, is.UUID),
		validation.Field(&r.LocationID, validation.Required, is.UUID),
		validation.Field(&r.Quantity, nonZero, fitsNumeric),
		validation.Field(&r.Reason, validation.Required.Error("motivo requerido"), validation.Length(1, 500)),
	)
}

// HistoryRequest filtros de GET /api/stock/history.
type HistoryRequest struct {
	PageRequest
	ProductID  string     `query:"product_id"`
	LocationID string     `query:"location_id"`
	DocumentID string     `query:"document_id"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
}

func (r HistoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, is.UUID),
		validation.Field(&r.LocationID, is.UUID),
		validation.Field(&r.DocumentID, is.UUID),
	)
}

// AvailabilityResponse on-hand, reservado y disponible de un producto.
type AvailabilityResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id,omitempty"`
	OnHand     decimal.Decimal `json:"on_hand"`
	Reserved   decimal.Decimal `json:"reserved"`
	Available  decimal.Decimal `json:"available"`
}

// LedgerEntryResponse salida de un asiento del ledger.
type LedgerEntryResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	LocationID        string          `json:"location_id"`
	Type              string          `json:"type"`
	Quantity          decimal.Decimal `json:"quantity"`
	BalanceBefore     decimal.Decimal `json:"balance_before"`
	BalanceAfter      decimal.Decimal `json:"balance_after"`
	DocumentID        string          `json:"document_id,omitempty"`
	DocumentReference string          `json:"document_reference,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	CreatedBy         string          `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LedgerHistoryResponse historial paginado de movimientos.
type LedgerHistoryResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// BalanceResponse saldo reconstruido desde el ledger a una fecha.
type BalanceResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id,omitempty"`
	AsOf       time.Time       `json:"as_of"`
	Balance    decimal.Decimal `json:"balance"`
}

// MismatchResponse diferencia entre ledger y caché.
type MismatchResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id,omitempty"`
	Ledger     decimal.Decimal `json:"ledger"`
	Cached     decimal.Decimal `json:"cached"`
}

// ReconciliationResponse resultado de conciliar uno o todos los productos.
type ReconciliationResponse struct {
	Checked    int                `json:"checked"`
	Consistent bool               `json:"consistent"`
	Mismatches []MismatchResponse `json:"mismatches"`
}
