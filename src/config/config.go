// backend/src/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the widget service.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port     string
	LogLevel string

	// Upstream banking API
	UpstreamBaseURL string
	ContextPath     string
	UpstreamTimeout time.Duration

	// Transaction list widgets
	DefaultPageSize       int
	MaxPageSize           int
	WidgetTTL             time.Duration
	WidgetCleanupInterval time.Duration

	// HTTP surface
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
func LoadConfig() {
	errEnv := godotenv.Load()

	// Running from a subdirectory is common during development.
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		UpstreamBaseURL: strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "http://localhost:8080"), "/"),
		ContextPath:     normalizeContextPath(getEnv("CONTEXT_PATH", "")),
		// Zero means no client-side timeout; the request context still applies.
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 0),

		DefaultPageSize:       getEnvAsInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:           getEnvAsInt("MAX_PAGE_SIZE", 100),
		WidgetTTL:             getEnvAsDuration("WIDGET_TTL", 30*time.Minute),
		WidgetCleanupInterval: getEnvAsDuration("WIDGET_CLEANUP_INTERVAL", 10*time.Minute),

		AllowedOrigins:     getEnvAsList("ALLOWED_ORIGINS", "http://localhost:8080"),
		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
	}

	if Cfg.DefaultPageSize <= 0 {
		log.Printf("WARNING: DEFAULT_PAGE_SIZE must be positive, got %d. Using 10.", Cfg.DefaultPageSize)
		Cfg.DefaultPageSize = 10
	}
	if Cfg.MaxPageSize < Cfg.DefaultPageSize {
		log.Printf("WARNING: MAX_PAGE_SIZE (%d) is below DEFAULT_PAGE_SIZE. Using %d.", Cfg.MaxPageSize, Cfg.DefaultPageSize)
		Cfg.MaxPageSize = Cfg.DefaultPageSize
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, Upstream=%s, ContextPath=%q, WidgetTTL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.UpstreamBaseURL, Cfg.ContextPath, Cfg.WidgetTTL)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// normalizeContextPath turns "banking", "/banking/" and "/banking" into "/banking".
func normalizeContextPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
