package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port            int
	PublicBaseURL   string // external URL Twilio calls, used to check request signatures
	TwilioAuthToken string // empty disables signature checks
	CatalogFile     string // empty uses the built-in catalog
	RedisURL        string // empty disables the session mirror
	RedisPassword   string
	SessionTimeout  time.Duration // idle time before a call's session is evicted
	CleanupInterval time.Duration
	SpeechLanguage  string
	Voice           string
	LogLevel        string
	AllowedOrigins  []string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:            8080,
		SessionTimeout:  30 * time.Minute,
		CleanupInterval: time.Minute,
		SpeechLanguage:  "en-US",
		Voice:           "Polly.Joanna",
		LogLevel:        "info",
		AllowedOrigins:  []string{"*"},
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	config.PublicBaseURL = strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	config.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	config.CatalogFile = os.Getenv("CATALOG_FILE")
	config.RedisURL = os.Getenv("REDIS_URL")
	config.RedisPassword = os.Getenv("REDIS_PASSWORD")

	// Optional: SESSION_IDLE_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_IDLE_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: CLEANUP_INTERVAL (in seconds)
	if interval := os.Getenv("CLEANUP_INTERVAL"); interval != "" {
		i, err := strconv.Atoi(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid CLEANUP_INTERVAL: %w", err)
		}
		config.CleanupInterval = time.Duration(i) * time.Second
	}

	if lang := os.Getenv("SPEECH_LANGUAGE"); lang != "" {
		config.SpeechLanguage = lang
	}
	if voice := os.Getenv("VOICE"); voice != "" {
		config.Voice = voice
	}

	// Optional: LOG_LEVEL ("debug", "info", "warn", "error")
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			config.LogLevel = strings.ToLower(level)
		default:
			return nil, fmt.Errorf("invalid LOG_LEVEL: must be 'debug', 'info', 'warn', or 'error'")
		}
	}

	// Optional: ALLOWED_ORIGINS (comma-separated), for the monitor feed
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be > 0")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be > 0")
	}
	if c.TwilioAuthToken != "" && c.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required when TWILIO_AUTH_TOKEN is set")
	}
	return nil
}
