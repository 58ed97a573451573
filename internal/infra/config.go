package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DecartAPIKey     string
	DecartBaseURL    string
	DecartModel      string
	DecartTimeout    time.Duration
	OutputDir        string
	PreviewDir       string
	PreviewURLPrefix string
	MaxUploadBytes   int64
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// The remote API key has no default and must be provided.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "5001"),
		DecartAPIKey:     strings.TrimSpace(os.Getenv("DECART_API_KEY")),
		DecartBaseURL:    strings.TrimRight(getEnv("DECART_BASE_URL", "https://api.decart.ai/v1"), "/"),
		DecartModel:      getEnv("DECART_MODEL", "lucy-pro-v2v"),
		DecartTimeout:    time.Second * time.Duration(getEnvInt("DECART_TIMEOUT_SECONDS", 300)),
		OutputDir:        getEnv("OUTPUT_DIR", "output_videos"),
		PreviewDir:       getEnv("PREVIEW_DIR", "static/videos"),
		PreviewURLPrefix: strings.TrimRight(getEnv("PREVIEW_URL_PREFIX", "/static/videos"), "/"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 100)) << 20,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 120)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.DecartAPIKey == "" {
		return nil, fmt.Errorf("DECART_API_KEY is required")
	}
	if cfg.DecartTimeout <= 0 {
		return nil, fmt.Errorf("DECART_TIMEOUT_SECONDS must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return cfg, nil
}

// DecartEndpoint returns the full URL of the configured transformation model.
func (c *Config) DecartEndpoint() string {
	return c.DecartBaseURL + "/generate/" + strings.Trim(c.DecartModel, "/")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
