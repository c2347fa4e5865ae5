package http

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/domain"
)

// shortageDetail detalle de una línea sin stock en la respuesta 409.
type shortageDetail struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Requested  string `json:"requested"`
	Available  string `json:"available"`
}

// writeError traduce los errores de dominio a código HTTP y ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ve    *domain.ValidationError
		short *domain.InsufficientStockError
		tr    *domain.InvalidStatusTransitionError
		mm    *domain.ReconciliationMismatchError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: ve.Error(), Details: fiber.Map{"field": ve.Field},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.As(err, &short):
		details := make([]shortageDetail, 0, len(short.Shortages))
		for _, s := range short.Shortages {
			details = append(details, shortageDetail{
				ProductID:  s.ProductID,
				LocationID: s.LocationID,
				Requested:  s.Requested.String(),
				Available:  s.Available.String(),
			})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente", Details: details,
		})
	case errors.Is(err, domain.ErrDocumentAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: err.Error()})
	case errors.As(err, &tr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INVALID_TRANSITION", Message: tr.Error(),
			Details: fiber.Map{"from": tr.From, "to": tr.To, "action": tr.Action},
		})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.As(err, &mm):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "RECONCILIATION_MISMATCH", Message: mm.Error(),
			Details: fiber.Map{
				"product_id":  mm.ProductID,
				"location_id": mm.LocationID,
				"ledger":      mm.Ledger.String(),
				"cached":      mm.Cached.String(),
			},
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// uuidArg valida un ID de ruta o de query antes de que llegue al repositorio.
func uuidArg(field, value string, required bool) error {
	rules := []validation.Rule{is.UUID}
	if required {
		rules = []validation.Rule{validation.Required, is.UUID}
	}
	if err := validation.Validate(value, rules...); err != nil {
		return domain.NewValidationError(field, err.Error())
	}
	return nil
}
