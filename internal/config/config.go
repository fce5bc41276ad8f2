package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-property-enhancer/pkg/validation"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	ProbeTimeout       time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	// Collaborators
	AnalysisURL   string
	AnalysisModel string
	ImageURL      string
	ProbeEnabled  bool

	// Empty disables static file serving.
	StaticDir string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8000"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 90*time.Second),
		ProbeTimeout:       parseDurationOrDefault("PROBE_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024), // 20MB
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		AnalysisURL:        getEnvOrDefault("ANALYSIS_URL", "https://text.pollinations.ai/"),
		AnalysisModel:      getEnvOrDefault("ANALYSIS_MODEL", "openai"),
		ImageURL:           getEnvOrDefault("IMAGE_URL", "https://image.pollinations.ai/prompt/"),
		ProbeEnabled:       parseBoolOrDefault("PROBE_ENABLED", true),
		StaticDir:          strings.TrimSpace(os.Getenv("STATIC_DIR")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and collaborator endpoints.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.AnalysisTimeout <= 0 || c.ProbeTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, probe=%s)",
			c.RequestTimeout, c.AnalysisTimeout, c.ProbeTimeout)
	}
	if strings.TrimSpace(c.AnalysisModel) == "" {
		return errors.New("ANALYSIS_MODEL must not be empty")
	}

	validator := validation.NewURLValidator()
	if err := validator.ValidateEndpointURL(c.AnalysisURL); err != nil {
		return fmt.Errorf("invalid ANALYSIS_URL %q: %w", c.AnalysisURL, err)
	}
	if err := validator.ValidateEndpointURL(c.ImageURL); err != nil {
		return fmt.Errorf("invalid IMAGE_URL %q: %w", c.ImageURL, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
