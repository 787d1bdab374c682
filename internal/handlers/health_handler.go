package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-analyzer/internal/models"
	"alfredoptarigan/ats-analyzer/internal/services"
)

const serviceName = "ATS Go API"

// HealthChecker reports whether a downstream dependency can serve requests.
type HealthChecker interface {
	Health(ctx context.Context) error
	BaseURL() string
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	aiService HealthChecker
}

func NewHealthHandler(aiService HealthChecker) *HealthHandler {
	return &HealthHandler{aiService: aiService}
}

// HandleHealth: liveness only, never touches the AI service.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:  "healthy",
		Service: serviceName,
	})
}

// HandleReady: readiness, checks the AI service health endpoint.
func (h *HealthHandler) HandleReady(c *fiber.Ctx) error {
	if err := h.aiService.Health(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":         "not_ready",
			"service":        serviceName,
			"details":        services.MessageOf(err),
			"ai_service_url": h.aiService.BaseURL(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ready",
		"service": serviceName,
	})
}
