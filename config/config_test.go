package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, key := range []string{
			"FOODTRACKER_SERVER_PORT",
			"FOODTRACKER_SERVER_ENVIRONMENT",
			"FOODTRACKER_OPENFOODFACTS_BASE_URL",
			"FOODTRACKER_OPENFOODFACTS_ATTEMPT_TIMEOUT",
			"FOODTRACKER_OPENFOODFACTS_MAX_ATTEMPTS",
			"FOODTRACKER_CACHE_TYPE",
			"FOODTRACKER_CACHE_REDIS_URL",
			"FOODTRACKER_CACHE_TTL",
			"FOODTRACKER_LEDGER_STORE",
			"FOODTRACKER_LEDGER_PATH",
			"FOODTRACKER_LEDGER_REDIS_URL",
			"FOODTRACKER_LEDGER_HISTORY_LIMIT",
			"FOODTRACKER_RATELIMIT_PER_IP",
			"FOODTRACKER_SCORING_INCLUDE_ESTIMATED_CO2",
			"FOODTRACKER_SCORING_FUZZY_MATCHING",
		} {
			os.Unsetenv(key)
		}
	}

	// Run from an empty directory so a developer's config.yaml or .env is not picked up
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(t.TempDir())

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://world.openfoodfacts.org" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://world.openfoodfacts.org", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.OpenFoodFacts.AttemptTimeout != 8*time.Second {
			t.Errorf("OpenFoodFacts.AttemptTimeout = %v, want 8s", cfg.OpenFoodFacts.AttemptTimeout)
		}
		if cfg.OpenFoodFacts.SearchPageSize != 20 {
			t.Errorf("OpenFoodFacts.SearchPageSize = %d, want 20", cfg.OpenFoodFacts.SearchPageSize)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Ledger.Store != "memory" {
			t.Errorf("Ledger.Store = %s, want memory", cfg.Ledger.Store)
		}
		if cfg.Ledger.HistoryLimit != 50 {
			t.Errorf("Ledger.HistoryLimit = %d, want 50", cfg.Ledger.HistoryLimit)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Scoring.IncludeEstimatedCO2 {
			t.Errorf("Scoring.IncludeEstimatedCO2 = true, want false")
		}
		if !cfg.Scoring.FuzzyMatching {
			t.Errorf("Scoring.FuzzyMatching = false, want true")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODTRACKER_SERVER_PORT", "9090")
		os.Setenv("FOODTRACKER_SERVER_ENVIRONMENT", "production")
		os.Setenv("FOODTRACKER_OPENFOODFACTS_BASE_URL", "https://custom.api.com")
		os.Setenv("FOODTRACKER_OPENFOODFACTS_ATTEMPT_TIMEOUT", "3s")
		os.Setenv("FOODTRACKER_CACHE_TYPE", "redis")
		os.Setenv("FOODTRACKER_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("FOODTRACKER_CACHE_TTL", "1h")
		os.Setenv("FOODTRACKER_LEDGER_STORE", "file")
		os.Setenv("FOODTRACKER_LEDGER_PATH", "/tmp/ledger.json")
		os.Setenv("FOODTRACKER_LEDGER_HISTORY_LIMIT", "100")
		os.Setenv("FOODTRACKER_RATELIMIT_PER_IP", "200")
		os.Setenv("FOODTRACKER_SCORING_INCLUDE_ESTIMATED_CO2", "true")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://custom.api.com" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://custom.api.com", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.OpenFoodFacts.AttemptTimeout != 3*time.Second {
			t.Errorf("OpenFoodFacts.AttemptTimeout = %v, want 3s", cfg.OpenFoodFacts.AttemptTimeout)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Ledger.Store != "file" {
			t.Errorf("Ledger.Store = %s, want file", cfg.Ledger.Store)
		}
		if cfg.Ledger.Path != "/tmp/ledger.json" {
			t.Errorf("Ledger.Path = %s, want /tmp/ledger.json", cfg.Ledger.Path)
		}
		if cfg.Ledger.HistoryLimit != 100 {
			t.Errorf("Ledger.HistoryLimit = %d, want 100", cfg.Ledger.HistoryLimit)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if !cfg.Scoring.IncludeEstimatedCO2 {
			t.Errorf("Scoring.IncludeEstimatedCO2 = false, want true")
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODTRACKER_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODTRACKER_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})

	t.Run("fails validation for history limit out of range", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FOODTRACKER_LEDGER_HISTORY_LIMIT", "101")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for history limit")
		}
		if !strings.Contains(err.Error(), "history limit") {
			t.Errorf("Load() error = %v, want history limit error", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
# TEST_COMMENTED=should_not_load
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
		os.Unsetenv("TEST_COMMENTED")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value\n"), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		OpenFoodFacts: OpenFoodFactsConfig{
			BaseURL:           "https://world.openfoodfacts.org",
			AttemptTimeout:    8 * time.Second,
			MaxAttempts:       2,
			RequestsPerMinute: 100,
		},
		Cache:     CacheConfig{Type: "memory"},
		Ledger:    LedgerConfig{Store: "memory", HistoryLimit: 50},
		RateLimit: RateLimitConfig{PerIP: 100},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"invalid cache type", func(c *Config) { c.Cache.Type = "invalid-type" }, true},
		{"redis cache with URL", func(c *Config) { c.Cache.Type = "redis"; c.Cache.RedisURL = "redis://localhost:6379" }, false},
		{"redis cache without URL", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"file ledger with path", func(c *Config) { c.Ledger.Store = "file"; c.Ledger.Path = "ledger.json" }, false},
		{"file ledger without path", func(c *Config) { c.Ledger.Store = "file" }, true},
		{"redis ledger without URL", func(c *Config) { c.Ledger.Store = "redis" }, true},
		{"unknown ledger store", func(c *Config) { c.Ledger.Store = "postgres" }, true},
		{"history limit zero", func(c *Config) { c.Ledger.HistoryLimit = 0 }, true},
		{"history limit max", func(c *Config) { c.Ledger.HistoryLimit = 100 }, false},
		{"missing base URL", func(c *Config) { c.OpenFoodFacts.BaseURL = "" }, true},
		{"zero attempt timeout", func(c *Config) { c.OpenFoodFacts.AttemptTimeout = 0 }, true},
		{"zero max attempts", func(c *Config) { c.OpenFoodFacts.MaxAttempts = 0 }, true},
		{"zero per-IP limit", func(c *Config) { c.RateLimit.PerIP = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
