package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/billing"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
)

// SequenceHandler administración de contadores NCF.
type SequenceHandler struct {
	uc *billing.SequenceUseCase
}

// NewSequenceHandler construye el handler.
func NewSequenceHandler(uc *billing.SequenceUseCase) *SequenceHandler {
	return &SequenceHandler{uc: uc}
}

// List godoc
// @Summary      Listar secuencias NCF con capacidad restante
// @Tags         ncf
// @Produce      json
// @Success      200  {array}  dto.SequenceResponse
// @Router       /api/ncf-sequences [get]
func (h *SequenceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListSequences(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Configure godoc
// @Summary      Configurar rango autorizado del prefijo
// @Tags         ncf
// @Accept       json
// @Produce      json
// @Param        prefix  path  string                        true  "Prefijo NCF"
// @Param        body    body  dto.ConfigureSequenceRequest  true  "Rango y número inicial"
// @Success      200  {object}  dto.SequenceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "el contador no puede retroceder"
// @Router       /api/ncf-sequences/{prefix} [put]
func (h *SequenceHandler) Configure(c *fiber.Ctx) error {
	var in dto.ConfigureSequenceRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ConfigureSequence(c.UserContext(), c.Params("prefix"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
