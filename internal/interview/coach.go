package interview

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
	"alfredoptarigan/ats-analyzer/internal/services"
)

const (
	progressTailRunes = 50

	evaluationTemperature = 0.7
	evaluationMaxTokens   = 2048
	followUpTemperature   = 0.8
	followUpMaxTokens     = 256

	cannedFollowUp   = "Can you tell me more about the specific results you achieved?"
	fallbackFollowUp = "Can you elaborate on the specific impact of your actions?"
)

// ErrCoachUnavailable is returned when no language model is configured.
var ErrCoachUnavailable = errors.New("AI service not available")

// Coach evaluates interview answers and proposes follow-up questions.
type Coach interface {
	// Evaluate reports the tail of the streamed model output through
	// onProgress. An error from onProgress aborts the evaluation.
	Evaluate(ctx context.Context, question, answer string, onProgress func(partial string) error) (*models.Evaluation, error)
	FollowUp(ctx context.Context, question, answer string) string
}

type geminiCoach struct {
	gemini        services.GeminiService
	promptBuilder *services.PromptBuilder
	logger        *zap.Logger
}

// NewCoach returns a coach backed by gemini. A nil gemini yields a coach
// that cannot evaluate and answers follow-ups with a canned question.
func NewCoach(gemini services.GeminiService, logger *zap.Logger) Coach {
	return &geminiCoach{
		gemini:        gemini,
		promptBuilder: services.NewPromptBuilder(),
		logger:        logger,
	}
}

func (c *geminiCoach) Evaluate(ctx context.Context, question, answer string, onProgress func(partial string) error) (*models.Evaluation, error) {
	if c.gemini == nil {
		return nil, ErrCoachUnavailable
	}

	prompt := c.promptBuilder.BuildAnswerEvaluationPrompt(question, answer)
	full, err := c.gemini.StreamText(ctx, prompt, evaluationTemperature, evaluationMaxTokens, func(accumulated string) error {
		if onProgress == nil {
			return nil
		}
		return onProgress(tail(accumulated, progressTailRunes))
	})
	if err != nil {
		return nil, err
	}

	var evaluation models.Evaluation
	if err := json.Unmarshal([]byte(services.ExtractJSON(full)), &evaluation); err != nil {
		c.logger.Warn("unparsable evaluation, using fallback", zap.Error(err), zap.Int("response_length", len(full)))
		return FallbackEvaluation(answer), nil
	}
	evaluation.Score = clampScore(evaluation.Score)

	return &evaluation, nil
}

func (c *geminiCoach) FollowUp(ctx context.Context, question, answer string) string {
	if c.gemini == nil {
		return cannedFollowUp
	}

	text, err := c.gemini.GenerateText(ctx, c.promptBuilder.BuildFollowUpPrompt(question, answer), followUpTemperature, followUpMaxTokens)
	if err != nil {
		c.logger.Warn("follow-up generation failed", zap.Error(err))
		return fallbackFollowUp
	}

	followUp := strings.Trim(strings.TrimSpace(text), `"`)
	if followUp == "" {
		return fallbackFollowUp
	}
	return followUp
}

// FallbackEvaluation scores an answer on its length alone.
func FallbackEvaluation(answer string) *models.Evaluation {
	wordCount := len(strings.Fields(answer))
	hasDetails := wordCount > 50

	return &models.Evaluation{
		StarAnalysis: models.StarAnalysis{
			Situation: models.StarComponent{Present: hasDetails, Feedback: "Consider adding more context about the situation."},
			Task:      models.StarComponent{Present: hasDetails, Feedback: "Clarify your specific responsibility."},
			Action:    models.StarComponent{Present: true, Feedback: "Good - you described actions taken."},
			Result:    models.StarComponent{Present: wordCount > 100, Feedback: "Include measurable outcomes if possible."},
		},
		Score:                 5 + min(wordCount/30, 3),
		Strengths:             []string{"You provided a response", "Shows engagement with the question"},
		Improvements:          []string{"Add more specific details", "Include quantifiable results"},
		ImprovedAnswerSnippet: "Consider starting with: 'In my role as [position], I faced [specific situation]...'",
	}
}

func clampScore(score int) int {
	return max(1, min(score, 10))
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
