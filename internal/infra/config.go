package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"postgen/internal/domain"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	LogLevel    string
	DatabaseURL string
	AutoMigrate bool

	RunpodAPIKey          string
	RunpodBaseURL         string
	RunpodFastEndpointID  string
	RunpodLargeEndpointID string
	RunpodFastModel       string
	RunpodLargeModel      string
	RunpodSubmitTimeout   time.Duration
	RunpodPollInterval    time.Duration
	RunpodFastMaxPolls    int
	RunpodLargeMaxPolls   int

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
}

// ErrMissingDatabaseURL is returned by LoadConfig when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := LoadEnv()
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

// LoadEnv is LoadConfig without the database requirement, for commands that
// can run without persistence.
func LoadEnv() *Config {
	return &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8000"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		RunpodAPIKey:          strings.TrimSpace(os.Getenv("RUNPOD_API_KEY")),
		RunpodBaseURL:         getEnv("RUNPOD_BASE_URL", "https://api.runpod.ai/v2"),
		RunpodFastEndpointID:  strings.TrimSpace(os.Getenv("RUNPOD_PHI2_ENDPOINT_ID")),
		RunpodLargeEndpointID: strings.TrimSpace(os.Getenv("RUNPOD_MISTRAL_ENDPOINT_ID")),
		RunpodFastModel:       getEnv("RUNPOD_PHI2_MODEL_NAME", "microsoft/Phi-2"),
		RunpodLargeModel:      getEnv("RUNPOD_MISTRAL_MODEL_NAME", "mistralai/Mistral-7B-Instruct-v0.1"),
		RunpodSubmitTimeout:   time.Second * time.Duration(getEnvInt("RUNPOD_SUBMIT_TIMEOUT_SECONDS", 60)),
		RunpodPollInterval:    time.Second * time.Duration(getEnvInt("RUNPOD_POLL_INTERVAL_SECONDS", 5)),
		RunpodFastMaxPolls:    getEnvInt("RUNPOD_PHI2_MAX_POLLS", 360),
		RunpodLargeMaxPolls:   getEnvInt("RUNPOD_MISTRAL_MAX_POLLS", 1440),

		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 10800)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// ValidateRunpod checks the inference settings once, before any client is built.
func ValidateRunpod(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is required", domain.ErrConfig)
	}
	var missing []string
	if cfg.RunpodAPIKey == "" {
		missing = append(missing, "RUNPOD_API_KEY")
	}
	if cfg.RunpodFastEndpointID == "" {
		missing = append(missing, "RUNPOD_PHI2_ENDPOINT_ID")
	}
	if cfg.RunpodLargeEndpointID == "" {
		missing = append(missing, "RUNPOD_MISTRAL_ENDPOINT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must be set in environment variables", domain.ErrConfig, strings.Join(missing, ", "))
	}
	if cfg.RunpodSubmitTimeout <= 0 || cfg.RunpodPollInterval <= 0 {
		return fmt.Errorf("%w: runpod timeouts must be positive", domain.ErrConfig)
	}
	if cfg.RunpodFastMaxPolls <= 0 || cfg.RunpodLargeMaxPolls <= 0 {
		return fmt.Errorf("%w: runpod poll budgets must be positive", domain.ErrConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
