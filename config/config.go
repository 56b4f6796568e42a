package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	Cache         CacheConfig
	Ledger        LedgerConfig
	RateLimit     RateLimitConfig
	Scoring       ScoringConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds upstream product database configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	AttemptTimeout    time.Duration `mapstructure:"attempt_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	SearchPageSize    int           `mapstructure:"search_page_size"`
	Debug             bool          `mapstructure:"debug"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LedgerConfig holds history/points store configuration
type LedgerConfig struct {
	Store        string `mapstructure:"store"` // "memory", "file" or "redis"
	Path         string `mapstructure:"path"`
	RedisURL     string `mapstructure:"redis_url"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// ScoringConfig holds impact scoring and search ranking options
type ScoringConfig struct {
	IncludeEstimatedCO2 bool `mapstructure:"include_estimated_co2"`
	FuzzyMatching       bool `mapstructure:"fuzzy_matching"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodtracker/")

	v.SetEnvPrefix("FOODTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := gotenv.Load(".env")
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Upstream defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "SustainableFoodTracker/1.0 (https://github.com/vanshika2720/Sustainable-Food-Tracker)")
	v.SetDefault("openfoodfacts.attempt_timeout", "8s")
	v.SetDefault("openfoodfacts.max_attempts", 2)
	v.SetDefault("openfoodfacts.requests_per_minute", 100)
	v.SetDefault("openfoodfacts.search_page_size", 20)
	v.SetDefault("openfoodfacts.debug", false)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Ledger defaults
	v.SetDefault("ledger.store", "memory")
	v.SetDefault("ledger.path", "foodtracker-ledger.json")
	v.SetDefault("ledger.redis_url", "")
	v.SetDefault("ledger.history_limit", 50)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("scoring.include_estimated_co2", false)
	v.SetDefault("scoring.fuzzy_matching", true)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis' (set FOODTRACKER_CACHE_REDIS_URL)")
	}

	switch config.Ledger.Store {
	case "memory":
	case "file":
		if config.Ledger.Path == "" {
			return fmt.Errorf("ledger path is required when ledger store is 'file'")
		}
	case "redis":
		if config.Ledger.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when ledger store is 'redis' (set FOODTRACKER_LEDGER_REDIS_URL)")
		}
	default:
		return fmt.Errorf("ledger store must be 'memory', 'file' or 'redis', got: %s", config.Ledger.Store)
	}

	if config.Ledger.HistoryLimit < 1 || config.Ledger.HistoryLimit > 100 {
		return fmt.Errorf("ledger history limit must be between 1 and 100, got: %d", config.Ledger.HistoryLimit)
	}

	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("product API base URL is required")
	}

	if config.OpenFoodFacts.AttemptTimeout <= 0 {
		return fmt.Errorf("attempt timeout must be positive, got: %v", config.OpenFoodFacts.AttemptTimeout)
	}

	if config.OpenFoodFacts.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got: %d", config.OpenFoodFacts.MaxAttempts)
	}

	if config.OpenFoodFacts.RequestsPerMinute < 1 {
		return fmt.Errorf("requests per minute must be at least 1, got: %d", config.OpenFoodFacts.RequestsPerMinute)
	}

	if config.RateLimit.PerIP < 1 {
		return fmt.Errorf("per-IP rate limit must be at least 1, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
