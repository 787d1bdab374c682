package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AI_SERVICE_URL", "")
	t.Setenv("PYTHON_SERVICE_URL", "")
	t.Setenv("ADVICE_TIMEOUT", "")
	t.Setenv("SERVER_WRITE_TIMEOUT", "")
	t.Setenv("MIN_TEXT_LENGTH", "")

	cfg := Load()

	require.Equal(t, "http://localhost:8000", cfg.AIService.URL)
	require.Equal(t, 30*time.Second, cfg.AIService.SimilarityTimeout)
	require.Equal(t, 180*time.Second, cfg.AIService.AdviceTimeout)
	require.Equal(t, 10*time.Second, cfg.Fetcher.Timeout)
	require.Equal(t, 10, cfg.Analysis.MinTextLength)
	require.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
}

func TestLoad_LegacyServiceURL(t *testing.T) {
	t.Setenv("AI_SERVICE_URL", "")
	t.Setenv("PYTHON_SERVICE_URL", "http://ai:9000/")

	cfg := Load()
	require.Equal(t, "http://ai:9000", cfg.AIService.URL)
}

func TestLoad_ServerTimeoutsCoverAdviceTimeout(t *testing.T) {
	t.Setenv("ADVICE_TIMEOUT", "10m")
	t.Setenv("SERVER_READ_TIMEOUT", "1m")
	t.Setenv("SERVER_WRITE_TIMEOUT", "1m")

	cfg := Load()
	require.GreaterOrEqual(t, cfg.Server.WriteTimeout, cfg.AIService.AdviceTimeout)
	require.GreaterOrEqual(t, cfg.Server.ReadTimeout, cfg.AIService.AdviceTimeout)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	require.Equal(t, 10*time.Second, getEnvAsDuration("FETCH_TIMEOUT", "10s"))
}
