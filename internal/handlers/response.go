package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-analyzer/internal/models"
	"alfredoptarigan/ats-analyzer/internal/services"
)

// statusFor maps a service error code onto the gateway's 200/400/500 surface.
func statusFor(code services.ErrorCode) int {
	switch code {
	case services.ErrorValidation, services.ErrorUnsupportedType, services.ErrorInvalidURL:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func analysisFailure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.AnalysisResponse{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

func jobFailure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.JobDescriptionResponse{
		Success:        false,
		Message:        message,
		JobDescription: nil,
	})
}
