package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
	"alfredoptarigan/ats-analyzer/internal/services"
)

const analysisSucceeded = "Analysis completed successfully"

type AnalyzeHandler struct {
	extractor      services.TextExtractor
	storageService services.StorageService
	analyzer       services.Analyzer
	maxFileSize    int64
	minTextLength  int
	logger         *zap.Logger
}

func NewAnalyzeHandler(
	extractor services.TextExtractor,
	storageService services.StorageService,
	analyzer services.Analyzer,
	maxFileSize int64,
	minTextLength int,
	logger *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		extractor:      extractor,
		storageService: storageService,
		analyzer:       analyzer,
		maxFileSize:    maxFileSize,
		minTextLength:  minTextLength,
		logger:         logger,
	}
}

// HandleAnalyze scores an uploaded resume file against a job description.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	resumeFile, err := c.FormFile("resume")
	if err != nil || resumeFile.Size == 0 {
		return analysisFailure(c, fiber.StatusBadRequest, "Resume file is required")
	}

	if resumeFile.Size > h.maxFileSize {
		return analysisFailure(c, fiber.StatusBadRequest,
			fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	jobDescription := c.FormValue("jobDescription")
	if msg := h.validateText("Job description", jobDescription); msg != "" {
		return analysisFailure(c, fiber.StatusBadRequest, msg)
	}

	if !h.extractor.IsSupported(resumeFile.Filename) {
		return analysisFailure(c, fiber.StatusBadRequest,
			fmt.Sprintf("Unsupported file type. Supported: %s", services.SupportedTypesLabel))
	}

	tmp, err := h.storageService.SaveTemp(resumeFile)
	if err != nil {
		h.logger.Error("failed to save upload", zap.String("file", resumeFile.Filename), zap.Error(err))
		return analysisFailure(c, fiber.StatusInternalServerError, "Analysis failed: the uploaded file could not be stored")
	}
	defer func() {
		if err := tmp.Remove(); err != nil {
			h.logger.Error("failed to remove temp file", zap.String("path", tmp.Path), zap.Error(err))
		}
	}()

	resumeText, err := h.extractor.ExtractFile(tmp.Path, resumeFile.Filename)
	if err != nil {
		return h.fail(c, "resume extraction failed", err)
	}

	if msg := h.validateText("Resume text", resumeText); msg != "" {
		return analysisFailure(c, fiber.StatusBadRequest,
			"Could not extract enough text from the resume. "+msg)
	}

	result, err := h.analyzer.Analyze(c.UserContext(), resumeText, jobDescription)
	if err != nil {
		return h.fail(c, "similarity failed", err)
	}

	return c.JSON(models.AnalysisResponse{
		Success: true,
		Message: analysisSucceeded,
		Data:    result,
	})
}

// HandleAnalyzeText scores resume text against a job description.
func (h *AnalyzeHandler) HandleAnalyzeText(c *fiber.Ctx) error {
	req, msg := h.parseRequest(c)
	if msg != "" {
		return analysisFailure(c, fiber.StatusBadRequest, msg)
	}

	result, err := h.analyzer.Analyze(c.UserContext(), req.ResumeText, req.JobDescription)
	if err != nil {
		return h.fail(c, "similarity failed", err)
	}

	return c.JSON(models.AnalysisResponse{
		Success: true,
		Message: analysisSucceeded,
		Data:    result,
	})
}

// HandleAnalyzeWithAdvice returns the flattened composite analysis. Only
// failures use the envelope.
func (h *AnalyzeHandler) HandleAnalyzeWithAdvice(c *fiber.Ctx) error {
	req, msg := h.parseRequest(c)
	if msg != "" {
		return analysisFailure(c, fiber.StatusBadRequest, msg)
	}

	result, err := h.analyzer.AnalyzeWithAdvice(c.UserContext(), req.ResumeText, req.JobDescription)
	if err != nil {
		return h.fail(c, "analysis with advice failed", err)
	}

	return c.JSON(result)
}

func (h *AnalyzeHandler) parseRequest(c *fiber.Ctx) (*models.AnalysisRequest, string) {
	var req models.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, "Invalid request body"
	}

	if msg := h.validateText("Resume text", req.ResumeText); msg != "" {
		return nil, msg
	}
	if msg := h.validateText("Job description", req.JobDescription); msg != "" {
		return nil, msg
	}

	return &req, ""
}

// validateText returns a user facing message, or "" when the text is usable.
func (h *AnalyzeHandler) validateText(field, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return field + " is required"
	}
	if utf8.RuneCountInString(trimmed) < h.minTextLength {
		return fmt.Sprintf("%s must be at least %d characters", field, h.minTextLength)
	}
	return ""
}

func (h *AnalyzeHandler) fail(c *fiber.Ctx, logMsg string, err error) error {
	code := services.CodeOf(err)
	h.logger.Error(logMsg,
		zap.String("code", string(code)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return analysisFailure(c, statusFor(code), "Analysis failed: "+services.MessageOf(err))
}
