package http

import (
	"context"

	"backoffice/internal/dashboard/usecase"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/response"

	"github.com/gofiber/fiber/v2"
)

// StatsComputer produces the dashboard payload.
type StatsComputer interface {
	Compute(ctx context.Context) (*usecase.Stats, error)
}

// Handler serves GET /dashboard.
type Handler struct {
	Stats StatsComputer
	Log   logger.Logger
}

func NewHandler(stats StatsComputer, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Stats: stats, Log: log.WithComponent("dashboard-http")}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.Get)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	stats, err := h.Stats.Compute(c.UserContext())
	if err != nil {
		h.Log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("Failed to compute dashboard")
		return response.Error(c, err)
	}
	return c.JSON(stats)
}
