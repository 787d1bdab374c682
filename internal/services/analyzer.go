package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
)

type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*models.SimilarityResult, error)
	AnalyzeWithAdvice(ctx context.Context, resumeText, jobDescription string) (*models.CompositeAnalysis, error)
}

type analyzer struct {
	similarity SimilarityClient
	advice     AdviceClient
	logger     *zap.Logger
}

func NewAnalyzer(similarity SimilarityClient, advice AdviceClient, logger *zap.Logger) Analyzer {
	return &analyzer{
		similarity: similarity,
		advice:     advice,
		logger:     logger,
	}
}

func (a *analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (*models.SimilarityResult, error) {
	return a.similarity.ComputeSimilarity(ctx, resumeText, jobDescription)
}

// AnalyzeWithAdvice runs similarity then advice. Only the similarity step
// can fail the call; an advice failure degrades to llmAvailable=false.
func (a *analyzer) AnalyzeWithAdvice(ctx context.Context, resumeText, jobDescription string) (*models.CompositeAnalysis, error) {
	similarity, err := a.similarity.ComputeSimilarity(ctx, resumeText, jobDescription)
	if err != nil {
		return nil, err
	}

	advice := models.AdviceResult{}
	result, err := a.advice.ComputeAdvice(ctx, resumeText, jobDescription, similarity)
	switch {
	case err != nil:
		a.logger.Warn("advice unavailable, returning similarity only",
			zap.String("code", string(CodeOf(err))),
			zap.Error(err),
		)
	case result == nil:
		a.logger.Warn("advice unavailable, returning similarity only",
			zap.Error(fmt.Errorf("empty advice result")),
		)
	default:
		advice = *result
	}

	return models.NewCompositeAnalysis(similarity, advice), nil
}
