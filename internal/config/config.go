package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// X (Twitter) search
	TwitterBearerToken string
	TwitterAPIURL      string
	MaxResults         int
	SearchConcurrency  int

	// Language model
	GeminiAPIKey   string
	GeminiModel    string
	LLMTemperature float64

	// Pinata / IPFS
	PinataAPIKey     string
	PinataSecretKey  string
	PinataAPIURL     string
	PinataGatewayURL string

	// Timeouts
	CallTimeout     time.Duration
	PipelineTimeout time.Duration

	// Azure Storage configuration (report archive)
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Scheduled analyses
	AnalysisSchedule string
	ScheduledBrands  []BrandTarget
}

// BrandTarget is one scheduled analysis, parsed from "handle|product|address"
type BrandTarget struct {
	Handle  string
	Product string
	Address string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
		TwitterAPIURL:      getEnv("TWITTER_API_URL", "https://api.twitter.com/2"),
		MaxResults:         getIntEnv("MAX_RESULTS", 100),
		SearchConcurrency:  getIntEnv("SEARCH_CONCURRENCY", 1),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.7),

		PinataAPIKey:     getEnv("PINATA_API_KEY", ""),
		PinataSecretKey:  getEnv("PINATA_SECRET_KEY", ""),
		PinataAPIURL:     getEnv("PINATA_API_URL", "https://api.pinata.cloud"),
		PinataGatewayURL: getEnv("PINATA_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs/"),

		CallTimeout:     getDurationEnv("CALL_TIMEOUT", 30*time.Second),
		PipelineTimeout: getDurationEnv("PIPELINE_TIMEOUT", 5*time.Minute),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "analyses"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		AnalysisSchedule: getEnv("ANALYSIS_SCHEDULE", ""),
	}

	brands, err := ParseBrandTargets(getEnv("SCHEDULED_BRANDS", ""))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.ScheduledBrands = brands

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TwitterBearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN is required")
	}

	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	if c.MaxResults <= 0 {
		return fmt.Errorf("MAX_RESULTS must be positive")
	}

	if c.SearchConcurrency <= 0 {
		return fmt.Errorf("SEARCH_CONCURRENCY must be positive")
	}

	if c.CallTimeout <= 0 || c.PipelineTimeout <= 0 {
		return fmt.Errorf("CALL_TIMEOUT and PIPELINE_TIMEOUT must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// PinataConfigured reports whether both Pinata credentials are present
func (c *Config) PinataConfigured() bool {
	return c.PinataAPIKey != "" && c.PinataSecretKey != ""
}

// ScheduleEnabled reports whether scheduled analyses should run
func (c *Config) ScheduleEnabled() bool {
	return c.AnalysisSchedule != "" && len(c.ScheduledBrands) > 0
}

// ParseBrandTargets parses comma separated "handle|product|address" entries
func ParseBrandTargets(value string) ([]BrandTarget, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var targets []BrandTarget
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("SCHEDULED_BRANDS entry %q must be handle|product|address", entry)
		}

		target := BrandTarget{
			Handle:  strings.TrimPrefix(strings.TrimSpace(parts[0]), "@"),
			Product: strings.TrimSpace(parts[1]),
			Address: strings.TrimSpace(parts[2]),
		}
		if target.Handle == "" || target.Product == "" || target.Address == "" {
			return nil, fmt.Errorf("SCHEDULED_BRANDS entry %q has an empty field", entry)
		}
		targets = append(targets, target)
	}

	return targets, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
