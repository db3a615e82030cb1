package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler serves the root banner and the health diagnostic.
type HealthHandler struct {
	driver string
	ping   Pinger
}

// NewHealthHandler creates a new HealthHandler for the store named driver.
func NewHealthHandler(driver string, ping Pinger) *HealthHandler {
	return &HealthHandler{driver: driver, ping: ping}
}

// RegisterRoutes registers / and /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleRoot)
	router.Get("/health", h.HandleHealth)
}

// HandleRoot identifies the service.
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"brand":   "The Drop Zone",
		"message": "Backend running",
	})
}

// HandleHealth pings the active store. It answers 503 when the store is
// unreachable.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"backend":  "running",
		"driver":   h.driver,
		"database": "connected",
		"time":     time.Now().Format(time.RFC3339),
	}
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "error"
			body["error"] = err.Error()
		}
	}
	return c.Status(status).JSON(body)
}
