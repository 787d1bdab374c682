package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// timeoutMargin is added on top of the advice timeout so the server never
// cuts a client connection while the gateway is still waiting on the LLM.
const timeoutMargin = 30 * time.Second

type Config struct {
	Server    ServerConfig
	AIService AIServiceConfig
	Storage   StorageConfig
	Analysis  AnalysisConfig
	Fetcher   FetcherConfig
	Interview InterviewConfig
	Gemini    GeminiConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

type AIServiceConfig struct {
	URL               string
	SimilarityTimeout time.Duration
	AdviceTimeout     time.Duration
	HealthTimeout     time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type AnalysisConfig struct {
	MinTextLength int
}

type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type InterviewConfig struct {
	Port  string
	WSURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("ENV", "development"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "5m"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "5m"),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		},
		AIService: AIServiceConfig{
			URL:               strings.TrimRight(getEnv("AI_SERVICE_URL", getEnv("PYTHON_SERVICE_URL", "http://localhost:8000")), "/"),
			SimilarityTimeout: getEnvAsDuration("SIMILARITY_TIMEOUT", "30s"),
			AdviceTimeout:     getEnvAsDuration("ADVICE_TIMEOUT", "180s"),
			HealthTimeout:     getEnvAsDuration("AI_HEALTH_TIMEOUT", "5s"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", os.TempDir()),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Analysis: AnalysisConfig{
			MinTextLength: getEnvAsInt("MIN_TEXT_LENGTH", 10),
		},
		Fetcher: FetcherConfig{
			Timeout:   getEnvAsDuration("FETCH_TIMEOUT", "10s"),
			UserAgent: getEnv("FETCH_USER_AGENT", DefaultUserAgent),
		},
		Interview: InterviewConfig{
			Port:  getEnv("INTERVIEW_PORT", "8001"),
			WSURL: getEnv("INTERVIEW_WS_URL", "ws://localhost:8001/ws/interview"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}

	cfg.alignServerTimeouts()

	return cfg
}

// DefaultUserAgent is sent by the job description fetcher.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// alignServerTimeouts keeps the server timeouts at least as long as the
// downstream advice call.
func (c *Config) alignServerTimeouts() {
	minimum := c.AIService.AdviceTimeout + timeoutMargin
	if c.Server.ReadTimeout < minimum {
		c.Server.ReadTimeout = minimum
	}
	if c.Server.WriteTimeout < minimum {
		c.Server.WriteTimeout = minimum
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
