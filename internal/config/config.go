package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries all runtime settings. Everything comes from the
// process environment with sensible defaults, so the same binary runs
// as web server and CLI.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Language analysis service settings.
	ClientBackend string // "gemini", "tesseract" or "demo"
	GeminiAPIKey  string
	GeminiModel   string
	RateLimitRPS  float64

	// Pipeline settings.
	MaxPages       int
	OCRConcurrency int
	// AnalysisInputLimit caps, in runes, the document text sent to the
	// vocabulary and grammar calls. Extraction and translation always
	// receive the full text; this asymmetry is a cost trade-off, so
	// later pages may not contribute vocabulary or grammar entries.
	AnalysisInputLimit int

	ReportFormat string // "text" or "markdown"
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 90*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 50*1024*1024), // 50MB

		ClientBackend: getEnvOrDefault("CLIENT_BACKEND", "gemini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		RateLimitRPS:  parseFloatOrDefault("RATE_LIMIT_RPS", 2),

		MaxPages:           int(parseIntOrDefault("MAX_PAGES", 20)),
		OCRConcurrency:     int(parseIntOrDefault("OCR_CONCURRENCY", 4)),
		AnalysisInputLimit: int(parseIntOrDefault("ANALYSIS_INPUT_LIMIT", 1600)),

		ReportFormat: getEnvOrDefault("REPORT_FORMAT", "text"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout)
	}
	if cfg.MaxPages < 1 {
		return nil, fmt.Errorf("MAX_PAGES must be >= 1 (got %d)", cfg.MaxPages)
	}
	if cfg.OCRConcurrency < 1 {
		return nil, fmt.Errorf("OCR_CONCURRENCY must be >= 1 (got %d)", cfg.OCRConcurrency)
	}
	if cfg.AnalysisInputLimit < 1 {
		return nil, fmt.Errorf("ANALYSIS_INPUT_LIMIT must be >= 1 (got %d)", cfg.AnalysisInputLimit)
	}
	switch cfg.ClientBackend {
	case "gemini", "tesseract", "demo":
	default:
		return nil, fmt.Errorf("unsupported CLIENT_BACKEND: %q", cfg.ClientBackend)
	}
	switch cfg.ReportFormat {
	case "text", "markdown":
	default:
		return nil, fmt.Errorf("unsupported REPORT_FORMAT: %q", cfg.ReportFormat)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
