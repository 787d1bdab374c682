package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/models"
)

const maxErrorBodyBytes = 4096

type SimilarityClient interface {
	ComputeSimilarity(ctx context.Context, resumeText, jobDescription string) (*models.SimilarityResult, error)
}

type AdviceClient interface {
	ComputeAdvice(ctx context.Context, resumeText, jobDescription string, prior *models.SimilarityResult) (*models.AdviceResult, error)
}

type AITimeouts struct {
	Similarity time.Duration
	Advice     time.Duration
	Health     time.Duration
}

// AIClient talks to the external similarity/advice service. The http.Client
// is owned by the caller, which closes idle connections on shutdown.
type AIClient struct {
	baseURL    string
	httpClient *http.Client
	timeouts   AITimeouts
	logger     *zap.Logger
}

func NewAIClient(baseURL string, httpClient *http.Client, timeouts AITimeouts, logger *zap.Logger) *AIClient {
	return &AIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeouts:   timeouts,
		logger:     logger,
	}
}

func (c *AIClient) BaseURL() string {
	return c.baseURL
}

func (c *AIClient) ComputeSimilarity(ctx context.Context, resumeText, jobDescription string) (*models.SimilarityResult, error) {
	if err := validatePair(resumeText, jobDescription); err != nil {
		return nil, err
	}

	payload := models.SimilarityRequest{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
	}

	var result models.SimilarityResult
	if err := c.postJSON(ctx, "/similarity", c.timeouts.Similarity, payload, &result); err != nil {
		return nil, err
	}

	if math.IsNaN(result.SimilarityScore) || result.SimilarityScore < 0 || result.SimilarityScore > 1 {
		return nil, newError(ErrorInvalidResponse, "AI service returned an invalid similarity score",
			fmt.Errorf("similarity_score %v outside [0,1]", result.SimilarityScore))
	}
	if result.SharedKeywords == nil {
		result.SharedKeywords = []string{}
	}
	if result.MissingKeywords == nil {
		result.MissingKeywords = []string{}
	}

	c.logger.Info("similarity computed",
		zap.Float64("score", result.SimilarityScore),
		zap.Int("shared", len(result.SharedKeywords)),
		zap.Int("missing", len(result.MissingKeywords)),
	)

	return &result, nil
}

func (c *AIClient) ComputeAdvice(ctx context.Context, resumeText, jobDescription string, prior *models.SimilarityResult) (*models.AdviceResult, error) {
	if err := validatePair(resumeText, jobDescription); err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, newError(ErrorValidation, "similarity result is required for advice", nil)
	}

	payload := models.AdviceRequest{
		ResumeText:      resumeText,
		JobDescription:  jobDescription,
		SimilarityScore: prior.SimilarityScore,
		SharedKeywords:  nonNil(prior.SharedKeywords),
		MissingKeywords: nonNil(prior.MissingKeywords),
	}

	var result models.AdviceResult
	if err := c.postJSON(ctx, "/advice", c.timeouts.Advice, payload, &result); err != nil {
		return nil, err
	}
	if result.Advice == nil || len(result.Advice.Sections) == 0 {
		result.Advice = nil
	}

	c.logger.Info("advice received", zap.Bool("llm_available", result.Available))

	return &result, nil
}

// Health checks GET /health on the AI service.
func (c *AIClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Health)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return newError(ErrorInternal, "failed to build health request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *AIClient) postJSON(ctx context.Context, path string, timeout time.Duration, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return newError(ErrorValidation, "request payload could not be serialized", err)
	}
	if isDegeneratePayload(body) {
		return newError(ErrorValidation, "request payload is empty", fmt.Errorf("serialized payload %q", body))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return newError(ErrorInternal, "failed to build AI service request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("AI service call failed",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return c.unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		svcErr := c.statusError(resp)
		c.logger.Error("AI service returned an error",
			zap.String("path", path),
			zap.Int("status", svcErr.Status),
			zap.String("body", svcErr.Body),
		)
		return svcErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.unavailable(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("AI service response could not be decoded",
			zap.String("path", path),
			zap.String("body", logger.TruncateForLog(string(raw), 500)),
			zap.Error(err),
		)
		return newError(ErrorInvalidResponse, "AI service returned an unreadable response", err)
	}

	c.logger.Debug("AI service call finished",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}

func (c *AIClient) unavailable(err error) *Error {
	message := fmt.Sprintf("AI service is not reachable at %s; start the AI service first", c.baseURL)
	if isTimeout(err) {
		message = fmt.Sprintf("AI service at %s did not respond in time", c.baseURL)
	}
	return newError(ErrorServiceUnavailable, message, err)
}

func (c *AIClient) statusError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &Error{
		Code:    ErrorServiceError,
		Message: "AI service returned an error",
		Status:  resp.StatusCode,
		Body:    logger.TruncateForLog(string(raw), 500),
	}
}

func validatePair(resumeText, jobDescription string) error {
	if strings.TrimSpace(resumeText) == "" {
		return newError(ErrorValidation, "resume text is required", nil)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return newError(ErrorValidation, "job description is required", nil)
	}
	return nil
}

func isDegeneratePayload(body []byte) bool {
	switch strings.TrimSpace(string(body)) {
	case "", "{}", "null":
		return true
	}
	return false
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
