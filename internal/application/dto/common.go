package dto

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o están fuera de rango.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// AsValidationError convierte los errores de ozzo-validation en un domain.ValidationError
// con la ruta del primer campo inválido (p. ej. "lines.0.quantity"). Otros errores pasan sin cambios.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return err
		}
		return domain.NewValidationError("", err.Error())
	}
	field, msg := firstFieldError(errs)
	return domain.NewValidationError(field, msg)
}

func firstFieldError(errs validation.Errors) (string, string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "", "inválido"
	}
	k := keys[0]
	var nested validation.Errors
	if errors.As(errs[k], &nested) {
		sub, msg := firstFieldError(nested)
		return strings.TrimSuffix(k+"."+sub, "."), msg
	}
	return k, errs[k].Error()
}

// positive regla ozzo: cantidad decimal estrictamente mayor que cero.
var positive = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("debe ser un número")
	}
	if !d.IsPositive() {
		return errors.New("debe ser mayor que cero")
	}
	return nil
})

// nonZero regla ozzo: delta de ajuste distinto de cero.
var nonZero = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("debe ser un número")
	}
	if d.IsZero() {
		return errors.New("no puede ser cero")
	}
	return nil
})

// notNegative regla ozzo para umbrales.
var notNegative = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("debe ser un número")
	}
	if d.IsNegative() {
		return errors.New("no puede ser negativo")
	}
	return nil
})

// quantityScale decimales que admiten las columnas NUMERIC(18,4).
const quantityScale = 4

var maxQuantity = decimal.New(1, 18-quantityScale)

// fitsNumeric regla ozzo: a lo sumo quantityScale decimales y menos de 10^14 en valor absoluto,
// para que la cantidad se guarde tal cual sin redondeo.
var fitsNumeric = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("debe ser un número")
	}
	if !d.Truncate(quantityScale).Equal(d) {
		return fmt.Errorf("admite como máximo %d decimales", quantityScale)
	}
	if !d.Abs().LessThan(maxQuantity) {
		return errors.New("fuera de rango")
	}
	return nil
})
