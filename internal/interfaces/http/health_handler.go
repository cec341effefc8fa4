package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/ports"
)

// HealthHandler verifica el almacenamiento.
type HealthHandler struct {
	store   ports.Pinger
	service string
}

// NewHealthHandler construye el handler.
func NewHealthHandler(store ports.Pinger, service string) *HealthHandler {
	return &HealthHandler{store: store, service: service}
}

// Check godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded", "service": h.service, "error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "service": h.service})
}
