package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

const (
	defaultAttemptTimeout = 8 * time.Second

	ean8Length      = 8
	maxPaddedLength = 13
)

// Strategy names reported on a ResolvedProduct
const (
	StrategyV2       = "v2"
	StrategyV0       = "v0"
	StrategyDisplay  = "display"
	StrategySearch   = "search"
	StrategyV2Padded = "v2-padded"
)

// ResolverConfig holds configuration for the barcode resolver
type ResolverConfig struct {
	// AttemptTimeout bounds each upstream call of the fallback chain
	AttemptTimeout time.Duration
	// SearchPageSize is used for free-text searches
	SearchPageSize int
}

// Resolver turns a query into a product, walking an ordered list of lookup
// strategies for barcodes.
type Resolver struct {
	api            domain.ProductAPI
	attemptTimeout time.Duration
	searchPageSize int
}

// NewResolver creates a resolver on top of the product API
func NewResolver(api domain.ProductAPI, config ResolverConfig) *Resolver {
	timeout := config.AttemptTimeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	pageSize := config.SearchPageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Resolver{
		api:            api,
		attemptTimeout: timeout,
		searchPageSize: pageSize,
	}
}

// Resolution is the outcome of Resolve: a single product for barcodes, a
// candidate list for free text.
type Resolution struct {
	Query      domain.Query            `json:"query"`
	Product    *domain.ResolvedProduct `json:"product,omitempty"`
	Candidates *domain.SearchResult    `json:"candidates,omitempty"`
}

// lookupStrategy is one step of the barcode fallback chain
type lookupStrategy struct {
	name   string
	code   string
	lookup func(ctx context.Context, code string) (domain.RawProduct, error)
}

// Resolve dispatches a validated query to the barcode chain or the text search.
func (r *Resolver) Resolve(ctx context.Context, query domain.Query) (*Resolution, error) {
	if query.IsBarcode() {
		product, err := r.ResolveBarcode(ctx, query.Value)
		if err != nil {
			return nil, err
		}
		return &Resolution{Query: query, Product: product}, nil
	}

	candidates, err := r.Search(ctx, query.Value)
	if err != nil {
		return nil, err
	}
	return &Resolution{Query: query, Candidates: candidates}, nil
}

// Search runs a single free-text search and returns the raw candidates.
func (r *Resolver) Search(ctx context.Context, terms string) (*domain.SearchResult, error) {
	result, err := r.api.SearchText(ctx, terms, r.searchPageSize)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveBarcode tries each lookup strategy in order and returns the first
// usable product. When every strategy fails it returns a *domain.NotFoundError.
// Failed strategies are logged, never returned.
func (r *Resolver) ResolveBarcode(ctx context.Context, barcode string) (*domain.ResolvedProduct, error) {
	if len(barcode) < ean8Length {
		log.Printf("[RESOLVER] Barcode %s has %d digits, likely invalid; trying anyway", barcode, len(barcode))
	}

	strategies := r.strategies(barcode)
	padded := PaddedVariants(barcode)

	attempts, failures := 0, 0
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", barcode, err)
		}

		attempts++
		product, err := r.attempt(ctx, s)
		if err == nil {
			log.Printf("[RESOLVER] Resolved %s via %s", s.code, s.name)
			return &domain.ResolvedProduct{Barcode: barcode, Strategy: s.name, Raw: product}, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("resolve %s: %w", barcode, ctx.Err())
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			failures++
		}
		log.Printf("[RESOLVER] Strategy %s failed for %s: %v", s.name, s.code, err)
	}

	notFound := domain.NewNotFoundError(barcode, padded, failures, attempts)
	log.Printf("[RESOLVER] %v", notFound)
	return nil, notFound
}

// attempt runs one strategy under its own timeout
func (r *Resolver) attempt(ctx context.Context, s lookupStrategy) (domain.RawProduct, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	product, err := s.lookup(attemptCtx, s.code)
	if err != nil {
		return nil, err
	}
	if len(product) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// strategies lists the fallback chain for a barcode in priority order
func (r *Resolver) strategies(barcode string) []lookupStrategy {
	chain := []lookupStrategy{
		{name: StrategyV2, code: barcode, lookup: r.api.ProductV2},
		{name: StrategyV0, code: barcode, lookup: r.api.ProductV0},
		{name: StrategyDisplay, code: barcode, lookup: r.api.ProductDisplay},
		{name: StrategySearch, code: barcode, lookup: r.searchExactCode},
	}
	for _, code := range PaddedVariants(barcode) {
		chain = append(chain, lookupStrategy{name: StrategyV2Padded, code: code, lookup: r.api.ProductV2})
	}
	return chain
}

// searchExactCode prefers the result whose code equals the barcode and falls
// back to the first result returned.
func (r *Resolver) searchExactCode(ctx context.Context, code string) (domain.RawProduct, error) {
	products, err := r.api.SearchByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	for _, p := range products {
		if p.Code() == code {
			return p, nil
		}
	}
	return products[0], nil
}

// PaddedVariants returns the zero-padded forms tried for an EAN-8 barcode,
// shortest first. Other lengths have no variants.
func PaddedVariants(barcode string) []string {
	if len(barcode) != ean8Length || !domain.IsBarcode(barcode) {
		return nil
	}
	variants := make([]string, 0, maxPaddedLength-ean8Length)
	for width := ean8Length + 1; width <= maxPaddedLength; width++ {
		variants = append(variants, strings.Repeat("0", width-ean8Length)+barcode)
	}
	return variants
}
