package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika2720/Sustainable-Food-Tracker/config"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/cache"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/ledgerstore"
)

func TestBuildValkeyOptions(t *testing.T) {
	t.Run("bare address", func(t *testing.T) {
		opt, err := buildValkeyOptions("localhost:6379")
		require.NoError(t, err)
		assert.Equal(t, []string{"localhost:6379"}, opt.InitAddress)
	})

	t.Run("url", func(t *testing.T) {
		opt, err := buildValkeyOptions("redis://:secret@cache.internal:6380/2")
		require.NoError(t, err)
		assert.Equal(t, []string{"cache.internal:6380"}, opt.InitAddress)
		assert.Equal(t, "secret", opt.Password)
		assert.Equal(t, 2, opt.SelectDB)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := buildValkeyOptions("  ")
		assert.Error(t, err)
	})
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"redis://:secret@cache:6379/0", "redis://***@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
		{"cache:6379", "cache:6379"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProvideCache_Memory(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{Type: "memory"}}

	repo, cleanup := provideCache(cfg)
	defer cleanup()

	_, ok := repo.(*cache.MemoryCache)
	assert.True(t, ok, "got %T, want *cache.MemoryCache", repo)
}

func TestProvideLedgerStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, cleanup, err := provideLedgerStore(&config.Config{Ledger: config.LedgerConfig{Store: "memory"}})
		require.NoError(t, err)
		defer cleanup()

		_, ok := store.(*ledgerstore.MemoryStore)
		assert.True(t, ok, "got %T", store)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.json")
		store, cleanup, err := provideLedgerStore(&config.Config{Ledger: config.LedgerConfig{Store: "file", Path: path}})
		require.NoError(t, err)
		defer cleanup()

		_, ok := store.(*ledgerstore.FileStore)
		assert.True(t, ok, "got %T", store)
	})
}
