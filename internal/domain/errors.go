package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrConflict                 = errors.New("conflicto con el estado actual")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrInvalidStatusTransition  = errors.New("transición de estado inválida")
	ErrDocumentAlreadyProcessed = errors.New("documento ya procesado")
	ErrReconciliationMismatch   = errors.New("el ledger no cuadra con el stock en caché")
)

// ValidationError campo faltante o inválido. Se rechaza antes de cualquier cambio de estado.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Shortage faltante de un producto en una ubicación.
type Shortage struct {
	ProductID  string
	LocationID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

// InsufficientStockError lista cada línea sin stock suficiente; el documento no cambia.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("producto %s: solicitado %s, disponible %s",
			s.ProductID, s.Requested.String(), s.Available.String()))
	}
	return ErrInsufficientStock.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidStatusTransitionError acción no permitida desde el estado actual.
// To queda vacío cuando la acción no tiene destino (edit, delete).
type InvalidStatusTransitionError struct {
	From   string
	To     string
	Action string
}

func (e *InvalidStatusTransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("%s: %s no permitido en estado %s", ErrInvalidStatusTransition, e.Action, e.From)
	}
	return fmt.Sprintf("%s: %s -> %s (%s)", ErrInvalidStatusTransition, e.From, e.To, e.Action)
}

func (e *InvalidStatusTransitionError) Unwrap() error { return ErrInvalidStatusTransition }

// ReconciliationMismatchError el replay del ledger no coincide con el valor en caché.
// LocationID vacío indica el on_hand agregado del producto.
type ReconciliationMismatchError struct {
	ProductID  string
	LocationID string
	Ledger     decimal.Decimal
	Cached     decimal.Decimal
}

func (e *ReconciliationMismatchError) Error() string {
	scope := "producto " + e.ProductID
	if e.LocationID != "" {
		scope += " ubicación " + e.LocationID
	}
	return fmt.Sprintf("%s: %s ledger=%s cache=%s", ErrReconciliationMismatch, scope, e.Ledger.String(), e.Cached.String())
}

func (e *ReconciliationMismatchError) Unwrap() error { return ErrReconciliationMismatch }
