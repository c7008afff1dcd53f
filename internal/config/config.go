package config

import (
	"fmt"
	"kvk-ranker/internal/constants"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	GeminiAPIKey       string
	GeminiModel        string
	ExtractProvider    string
	ExtractConcurrency int
	DBPath             string
	ServerPort         string
	LogLevel           string
	DefaultLang        string
	SessionTTL         time.Duration
	ChromeBin          string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ExtractProvider:    getEnv("EXTRACT_PROVIDER", ProviderOpenAI),
		ExtractConcurrency: getEnvInt("EXTRACT_CONCURRENCY", 4),
		DBPath:             getEnv("DB_PATH", "kvk.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DefaultLang:        getEnv("DEFAULT_LANG", "pt-BR"),
		SessionTTL:         getEnvDuration("SESSION_TTL", constants.SessionTTL),
		ChromeBin:          getEnv("CHROME_BIN", ""),
	}

	switch cfg.ExtractProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return nil, fmt.Errorf("unknown EXTRACT_PROVIDER %q", cfg.ExtractProvider)
	}
	if cfg.ExtractConcurrency < 1 {
		return nil, fmt.Errorf("EXTRACT_CONCURRENCY must be positive, got %d", cfg.ExtractConcurrency)
	}

	// A missing key is reported per upload, the server still starts.
	if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("no extraction API key configured, uploads will fail until one is saved")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("extract_provider", cfg.ExtractProvider).
		Str("default_lang", cfg.DefaultLang).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
