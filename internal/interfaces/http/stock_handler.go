package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain"
)

// StockHandler disponibilidad, historial, ajustes y conciliación (protegido).
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Availability GET /api/stock/availability?product_id=&location_id=
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if err := uuidArg("product_id", productID, true); err != nil {
		return writeError(c, err)
	}
	if err := uuidArg("location_id", c.Query("location_id"), false); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AvailableStock(c.UserContext(), productID, c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LocationAvailability GET /api/stock/locations/:id
func (h *StockHandler) LocationAvailability(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListAvailable(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": out})
}

// History GET /api/stock/history
func (h *StockHandler) History(c *fiber.Ctx) error {
	in := dto.HistoryRequest{
		PageRequest: pageFromQuery(c),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		DocumentID:  c.Query("document_id"),
	}
	var err error
	if in.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, err)
	}
	if in.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.History(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance GET /api/stock/balance?product_id=&location_id=&as_of= (RFC3339; por defecto ahora).
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if err := uuidArg("product_id", productID, true); err != nil {
		return writeError(c, err)
	}
	if err := uuidArg("location_id", c.Query("location_id"), false); err != nil {
		return writeError(c, err)
	}
	asOf, err := queryTime(c, "as_of")
	if err != nil {
		return writeError(c, err)
	}
	at := time.Now()
	if asOf != nil {
		at = *asOf
	}
	out, err := h.uc.BalanceAsOf(c.UserContext(), productID, c.Query("location_id"), at)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust POST /api/stock/adjustments
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Adjust(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reconcile POST /api/stock/reconcile/:productId
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	if err := uuidArg("productId", c.Params("productId"), true); err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Reconcile(c.UserContext(), c.Params("productId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"consistent": true})
}

// ReconcileAll POST /api/stock/reconcile. Siempre 200: las diferencias van en el reporte.
func (h *StockHandler) ReconcileAll(c *fiber.Ctx) error {
	out, err := h.uc.ReconcileAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "fecha RFC3339 inválida")
	}
	return &t, nil
}
