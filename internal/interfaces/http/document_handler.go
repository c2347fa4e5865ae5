package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
)

// DocumentHandler expone recepciones, entregas y traslados con sus transiciones (protegido).
type DocumentHandler struct {
	uc *inventory.DocumentUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *inventory.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear documento de movimiento en borrador
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "kind, ubicaciones y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento con líneas y acciones disponibles
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "documento no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind    query  string  false  "receipt | delivery | transfer"
// @Param        status  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.DocumentListResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	in := dto.DocumentFilterRequest{
		PageRequest: pageFromQuery(c),
		Kind:        c.Query("kind"),
		Status:      c.Query("status"),
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update modifica cabecera de un borrador.
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete borra un borrador.
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLine agrega una línea a un borrador.
func (h *DocumentHandler) AddLine(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	var in dto.LineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddLine(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RemoveLine quita una línea de un borrador.
func (h *DocumentHandler) RemoveLine(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	if err := uuidArg("lineId", c.Params("lineId"), true); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RemoveLine(c.UserContext(), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Aplicar una acción (submit, validate, process, start, complete, cancel)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del documento"
// @Param        action  path  string  true  "Acción"
// @Success      200     {object}  dto.TransitionResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/actions/{action} [post]
func (h *DocumentHandler) Transition(c *fiber.Ctx) error {
	if err := uuidArg("id", c.Params("id"), true); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ApplyAction(c.UserContext(), c.Params("id"), c.Params("action"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
