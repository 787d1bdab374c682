package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
)

type fakeSimilarity struct {
	result *models.SimilarityResult
	err    error
	calls  int
}

func (f *fakeSimilarity) ComputeSimilarity(ctx context.Context, resumeText, jobDescription string) (*models.SimilarityResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeAdvice struct {
	result *models.AdviceResult
	err    error
	prior  *models.SimilarityResult
	calls  int
}

func (f *fakeAdvice) ComputeAdvice(ctx context.Context, resumeText, jobDescription string, prior *models.SimilarityResult) (*models.AdviceResult, error) {
	f.calls++
	f.prior = prior
	return f.result, f.err
}

func similarityFixture() *models.SimilarityResult {
	return &models.SimilarityResult{
		SimilarityScore: 0.82,
		SharedKeywords:  []string{"java", "spring"},
		MissingKeywords: []string{"boot", "senior"},
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	sim := &fakeSimilarity{result: similarityFixture()}
	adv := &fakeAdvice{}

	result, err := NewAnalyzer(sim, adv, zap.NewNop()).Analyze(context.Background(), "resume", "job")
	require.NoError(t, err)
	require.Equal(t, 0.82, result.SimilarityScore)
	require.Zero(t, adv.calls)
}

func TestAnalyzer_AnalyzeWithAdvice(t *testing.T) {
	advice := models.DecodeAdvice(map[string]any{"skills_to_add": []any{"Spring Boot"}})
	sim := &fakeSimilarity{result: similarityFixture()}
	adv := &fakeAdvice{result: &models.AdviceResult{Advice: advice, Available: true}}

	result, err := NewAnalyzer(sim, adv, zap.NewNop()).AnalyzeWithAdvice(context.Background(), "resume", "job")
	require.NoError(t, err)
	require.Equal(t, 0.82, result.SimilarityScore)
	require.Equal(t, []string{"java", "spring"}, result.SharedKeywords)
	require.Equal(t, []string{"boot", "senior"}, result.MissingKeywords)
	require.True(t, result.LLMAvailable)
	require.Same(t, advice, result.Advice)
	require.Same(t, sim.result, adv.prior)
}

func TestAnalyzer_AdviceFailureDegrades(t *testing.T) {
	sim := &fakeSimilarity{result: similarityFixture()}
	adv := &fakeAdvice{err: newError(ErrorServiceUnavailable, "down", errors.New("connection refused"))}

	result, err := NewAnalyzer(sim, adv, zap.NewNop()).AnalyzeWithAdvice(context.Background(), "resume", "job")
	require.NoError(t, err)
	require.False(t, result.LLMAvailable)
	require.Nil(t, result.Advice)
	require.Equal(t, 0.82, result.SimilarityScore)
	require.Equal(t, []string{"java", "spring"}, result.SharedKeywords)
	require.Equal(t, []string{"boot", "senior"}, result.MissingKeywords)
}

func TestAnalyzer_SimilarityFailurePropagates(t *testing.T) {
	cause := newError(ErrorServiceError, "AI service returned an error", nil)
	sim := &fakeSimilarity{err: cause}
	adv := &fakeAdvice{}

	result, err := NewAnalyzer(sim, adv, zap.NewNop()).AnalyzeWithAdvice(context.Background(), "resume", "job")
	require.Nil(t, result)
	require.ErrorIs(t, err, cause)
	require.Zero(t, adv.calls)
}
