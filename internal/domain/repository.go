package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductAPI defines the upstream product database endpoints used by the resolver.
// Lookups return ErrProductNotFound when the response is well formed but carries
// no usable product, and wrap ErrUpstreamFailure on transport failures.
type ProductAPI interface {
	ProductV2(ctx context.Context, code string) (RawProduct, error)
	ProductV0(ctx context.Context, code string) (RawProduct, error)
	ProductDisplay(ctx context.Context, code string) (RawProduct, error)
	SearchByCode(ctx context.Context, code string) ([]RawProduct, error)
	SearchText(ctx context.Context, terms string, pageSize int) (*SearchResult, error)
}

// LedgerStore persists per-profile history and points.
// Update must apply fn as an atomic read-modify-write for the profile.
type LedgerStore interface {
	Load(ctx context.Context, profileID string) (*Ledger, error)
	Update(ctx context.Context, profileID string, fn func(*Ledger) error) (*Ledger, error)
}
