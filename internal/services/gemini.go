package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateText(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
	// StreamText calls onChunk with the accumulated text after every streamed
	// chunk and returns the full text.
	StreamText(ctx context.Context, prompt string, temperature float32, maxTokens int32, onChunk func(accumulated string) error) (string, error)
}

type geminiService struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		g.logger.Error("gemini API error", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// StreamText implements GeminiService.
func (g *geminiService) StreamText(ctx context.Context, prompt string, temperature float32, maxTokens int32, onChunk func(accumulated string) error) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	var full strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, genai.Text(prompt), config) {
		if err != nil {
			g.logger.Error("gemini stream error", zap.Error(err))
			return full.String(), fmt.Errorf("failed to stream text: %w", err)
		}
		if resp == nil {
			continue
		}

		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)

		if onChunk != nil {
			if err := onChunk(full.String()); err != nil {
				return full.String(), err
			}
		}
	}

	return full.String(), nil
}

// ExtractJSON tries to extract JSON from text that might contain markdown or other formatting
func ExtractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
