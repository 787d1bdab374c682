package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
	"alfredoptarigan/ats-analyzer/internal/services"
)

type JobHandler struct {
	fetcher services.JobFetcher
	logger  *zap.Logger
}

func NewJobHandler(fetcher services.JobFetcher, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

func (h *JobHandler) HandleFetchJobDescription(c *fiber.Ctx) error {
	var req models.JobURLRequest
	if err := c.BodyParser(&req); err != nil {
		return jobFailure(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if strings.TrimSpace(req.URL) == "" {
		return jobFailure(c, fiber.StatusBadRequest, "URL is required")
	}

	description, err := h.fetcher.FetchFromURL(c.UserContext(), req.URL)
	if err != nil {
		code := services.CodeOf(err)
		h.logger.Warn("job description fetch failed",
			zap.String("url", req.URL),
			zap.String("code", string(code)),
			zap.Error(err),
		)
		return jobFailure(c, statusFor(code), "Failed to fetch job description: "+services.MessageOf(err))
	}

	return c.JSON(models.JobDescriptionResponse{
		Success:        true,
		Message:        "Job description extracted successfully",
		JobDescription: &description,
	})
}
