package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
)

// ChangeLogHandler consultas de solo lectura del historial.
type ChangeLogHandler struct {
	uc *inventory.ChangeLogUseCase
}

// NewChangeLogHandler construye el handler.
func NewChangeLogHandler(uc *inventory.ChangeLogUseCase) *ChangeLogHandler {
	return &ChangeLogHandler{uc: uc}
}

// List godoc
// @Summary      Listar historial de cambios
// @Tags         changelogs
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  dto.ChangeLogListResponse
// @Router       /api/changelogs [get]
func (h *ChangeLogHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), GetIdentity(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener entrada del historial
// @Tags         changelogs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrada"
// @Success      200  {object}  dto.ChangeLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/changelogs/{id} [get]
func (h *ChangeLogHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
