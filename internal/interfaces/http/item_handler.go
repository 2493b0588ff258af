package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
)

// ItemHandler maneja las peticiones HTTP de artículos (protegido).
type ItemHandler struct {
	items   *inventory.ItemUseCase
	updates *inventory.UpdateItemUseCase
	history *inventory.ChangeLogUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(items *inventory.ItemUseCase, updates *inventory.UpdateItemUseCase, history *inventory.ChangeLogUseCase) *ItemHandler {
	return &ItemHandler{items: items, updates: updates, history: history}
}

// Create godoc
// @Summary      Crear artículo (el dueño es quien invoca)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "name, quantity, price, description, category"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	fields, err := decodeFields(c)
	if err != nil {
		return invalidBody(c)
	}
	out, err := h.items.Create(c.UserContext(), GetIdentity(c), fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar artículos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Categoría exacta"
// @Param        price     query  string  false  "Precio exacto"
// @Param        quantity  query  int     false  "Cantidad exacta"
// @Param        ordering  query  string  false  "name|quantity|price|date_added, prefijo - descendente"
// @Param        limit     query  int     false  "Límite"
// @Param        offset    query  int     false  "Offset"
// @Success      200  {object}  dto.ItemListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var q dto.ItemListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.items.List(c.UserContext(), GetIdentity(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.items.GetByID(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar artículo (solo el dueño)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del artículo"
// @Param        body  body  object  true  "name, quantity y price obligatorios"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	fields, err := decodeFields(c)
	if err != nil {
		return invalidBody(c)
	}
	out, err := h.updates.ReplaceItem(c.UserContext(), GetIdentity(c), c.Params("id"), fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Patch godoc
// @Summary      Actualizar campos de un artículo (solo el dueño)
// @Description  Si cambia la cantidad se agrega una entrada al historial con el delta.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del artículo"
// @Param        body  body  object  true  "Campos a modificar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [patch]
func (h *ItemHandler) Patch(c *fiber.Ctx) error {
	fields, err := decodeFields(c)
	if err != nil {
		return invalidBody(c)
	}
	out, err := h.updates.UpdateItem(c.UserContext(), GetIdentity(c), c.Params("id"), fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar artículo y su historial (dueño o admin)
// @Tags         items
// @Security     Bearer
// @Param        id   path  string  true  "ID del artículo"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.items.Delete(c.UserContext(), GetIdentity(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangeLog godoc
// @Summary      Historial de cambios del artículo
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {array}   dto.ChangeLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/changelog [get]
func (h *ItemHandler) ChangeLog(c *fiber.Ctx) error {
	out, err := h.history.ListByItem(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Verificar consistencia del historial
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.HistoryVerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/changelog/verify [get]
func (h *ItemHandler) Verify(c *fiber.Ctx) error {
	out, err := h.history.Verify(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeLogPDF godoc
// @Summary      Descargar historial en PDF
// @Tags         items
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/changelog.pdf [get]
func (h *ItemHandler) ChangeLogPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.history.ExportPDF(c.UserContext(), GetIdentity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="historial-`+id+`.pdf"`)
	return c.Send(out)
}
