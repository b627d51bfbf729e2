package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"patternhub/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	catalog     *services.CatalogService
	connManager *services.ConnectionManager
	startedAt   time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(catalogService *services.CatalogService, connManager *services.ConnectionManager) *HealthHandler {
	return &HealthHandler{
		catalog:     catalogService,
		connManager: connManager,
		startedAt:   time.Now(),
	}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"patterns":    h.catalog.Count(),
		"connections": h.connManager.Count(),
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
