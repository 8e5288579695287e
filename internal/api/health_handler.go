package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/pkg/logx"
	"github.com/mealforge/recipe-service/pkg/startupx"
)

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

const (
	statusUp   = "up"
	statusDown = "down"
)

// HealthHandler - liveness and readiness reporting. The database probe reuses
// the same Pinger the startup gate waits on.
type HealthHandler struct {
	dbPinger startupx.Pinger
}

// NewHealthHandler - HealthHandler constructor.
func NewHealthHandler(dbPinger startupx.Pinger) *HealthHandler {
	return &HealthHandler{dbPinger: dbPinger}
}

// Check - GET /health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := healthResponse{
		Status:     statusUp,
		Components: map[string]string{"database": statusUp},
	}

	if err := h.dbPinger.Ping(c.UserContext()); err != nil {
		logx.GetLogger().LogWarning(c.UserContext(), "Health check: database unreachable", err)

		resp.Status = statusDown
		resp.Components["database"] = statusDown

		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	return c.JSON(resp)
}
