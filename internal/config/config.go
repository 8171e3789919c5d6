package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Remote base (required)
	AirtableAPIKey  string
	AirtableBaseID  string
	AirtableBaseURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Remote API protection
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
}

// Load reads configuration from environment variables with defaults.
// The Airtable credentials have no defaults: missing values are a fatal
// startup condition, reported by Validate before any route is served.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AirtableAPIKey:  getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:  getEnv("AIRTABLE_BASE_ID", ""),
		AirtableBaseURL: getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		// Airtable rate-limits each base; keep concurrent calls low.
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 5),

		CacheTTL: getEnvDuration("CACHE_TTL", 300*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SessionSecret: getEnv("SESSION_SECRET", "eventos-default-dev-secret-change-me"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),
	}
}

// Validate reports fatal configuration errors.
func (c *Config) Validate() error {
	if c.AirtableAPIKey == "" {
		return errors.New("AIRTABLE_API_KEY is required")
	}
	if c.AirtableBaseID == "" {
		return errors.New("AIRTABLE_BASE_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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
