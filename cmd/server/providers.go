package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/vanshika2720/Sustainable-Food-Tracker/config"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/cache"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/ledgerstore"
)

const keyPrefix = "foodtracker"

// provideCache returns the product cache and a cleanup func. A valkey cache
// that cannot be reached falls back to memory.
func provideCache(cfg *config.Config) (domain.CacheRepository, func()) {
	if cfg.Cache.Type == "redis" {
		client, err := connectValkey(cfg.Cache.RedisURL)
		if err != nil {
			log.Printf("WARNING: valkey cache unavailable, falling back to memory cache: %v", err)
		} else {
			log.Printf("Cache: valkey (%s)", redactURL(cfg.Cache.RedisURL))
			return cache.NewValkeyCache(client, keyPrefix), client.Close
		}
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache: memory")
	return memoryCache, func() { memoryCache.Close() }
}

// provideLedgerStore returns the history/points store and a cleanup func.
func provideLedgerStore(cfg *config.Config) (domain.LedgerStore, func(), error) {
	switch cfg.Ledger.Store {
	case "file":
		store, err := ledgerstore.NewFileStore(cfg.Ledger.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Ledger: file (%s)", cfg.Ledger.Path)
		return store, func() {}, nil
	case "redis":
		client, err := connectValkey(cfg.Ledger.RedisURL)
		if err != nil {
			log.Printf("WARNING: valkey ledger store unavailable, falling back to memory store: %v", err)
			break
		}
		log.Printf("Ledger: valkey (%s)", redactURL(cfg.Ledger.RedisURL))
		return ledgerstore.NewValkeyStore(client, keyPrefix), client.Close, nil
	}

	log.Printf("Ledger: memory (history is lost on restart)")
	return ledgerstore.NewMemoryStore(), func() {}, nil
}

func connectValkey(addr string) (valkey.Client, error) {
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid valkey address: %w", err)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	return client, nil
}

// buildValkeyOptions accepts either a redis:// URL or a bare host:port
func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.TrimSpace(addr) == "" {
		return valkey.ClientOption{}, fmt.Errorf("address is empty")
	}
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// redactURL hides credentials in a redis URL before logging it
func redactURL(addr string) string {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok {
		return addr
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return addr
}
