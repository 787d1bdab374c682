package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
)

// bodyLimitOverhead leaves room for multipart boundaries and the job description field.
const bodyLimitOverhead = 1 << 20

type AppConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxFileSize  int64
	AllowOrigins string
	// AccessLog toggles the fiber request logger.
	AccessLog bool
}

type Handlers struct {
	Health  *HealthHandler
	Analyze *AnalyzeHandler
	Job     *JobHandler
}

var endpoints = []string{
	"GET /api/ats/health",
	"GET /api/ats/ready",
	"POST /api/ats/analyze",
	"POST /api/ats/analyze-text",
	"POST /api/ats/analyze-with-advice",
	"POST /api/ats/fetch-job-description",
}

// NewApp builds the gateway with its middleware and routes.
func NewApp(cfg AppConfig, h Handlers, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ATS Analyzer API",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    int(cfg.MaxFileSize) + bodyLimitOverhead,
		ErrorHandler: newErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api/ats")

	api.Get("/health", h.Health.HandleHealth)
	api.Get("/ready", h.Health.HandleReady)

	api.Post("/analyze", h.Analyze.HandleAnalyze)
	api.Post("/analyze-text", h.Analyze.HandleAnalyzeText)
	api.Post("/analyze-with-advice", h.Analyze.HandleAnalyzeWithAdvice)
	api.Post("/fetch-job-description", h.Job.HandleFetchJobDescription)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "ATS Analyzer API",
			"version":   "1.0.0",
			"endpoints": endpoints,
		})
	})

	return app
}

func newErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else {
			log.Error("unhandled request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(models.AnalysisResponse{
			Success: false,
			Message: message,
			Data:    nil,
		})
	}
}
