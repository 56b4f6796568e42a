package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
	// FuzzyMatching lets misspelled search words still rank a candidate
	FuzzyMatching bool
	Debug         bool
}

// ProductService handles product lookup with caching, scoring and recording.
// Flow: validate -> cache -> resolve -> cache -> score -> record
type ProductService struct {
	cache    domain.CacheRepository
	resolver *Resolver
	scorer   *Scorer
	ledger   *LedgerService
	matcher  *Matcher
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewProductService creates a new product service with dependencies. ledger
// may be nil, in which case lookups are never recorded.
func NewProductService(
	cache domain.CacheRepository,
	resolver *Resolver,
	scorer *Scorer,
	ledger *LedgerService,
	config ProductServiceConfig,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	matcher := NewMatcher(MatchConfig{
		EnableFuzzyMatching: config.FuzzyMatching,
		EnableDebugLogging:  config.Debug,
	})

	return &ProductService{
		cache:    cache,
		resolver: resolver,
		scorer:   scorer,
		ledger:   ledger,
		matcher:  matcher,
		cacheTTL: cacheTTL,
	}
}

// DisplayGrades are the grades shown to users, with Unknown replaced by C
type DisplayGrades struct {
	Nutrition   domain.Grade `json:"nutrition"`
	Environment domain.Grade `json:"environment"`
}

func displayGrades(report domain.ScoreReport) DisplayGrades {
	return DisplayGrades{
		Nutrition:   report.NutritionGrade.Display(),
		Environment: report.EnvironmentGrade.Display(),
	}
}

// ProductView is a resolved, scored product ready for presentation
type ProductView struct {
	Barcode  string             `json:"barcode"`
	Strategy string             `json:"strategy"`
	Details  ProductDetails     `json:"details"`
	Scores   domain.ScoreReport `json:"scores"`
	Display  DisplayGrades      `json:"display"`
	Tips     []HealthTip        `json:"tips"`
	Cached   bool               `json:"cached"`
	Scan     *ScanRecord        `json:"scan,omitempty"`
}

// Candidate is one free-text search hit
type Candidate struct {
	Barcode  string             `json:"barcode"`
	Name     string             `json:"name"`
	Brand    string             `json:"brand,omitempty"`
	ImageURL string             `json:"imageUrl,omitempty"`
	Scores   domain.ScoreReport `json:"scores"`
	Display  DisplayGrades      `json:"display"`

	Relevance     float64  `json:"relevance"`
	MatchedTokens []string `json:"matchedTokens,omitempty"`
}

// SearchView is the result of a free-text search
type SearchView struct {
	Query      string      `json:"query"`
	Count      int         `json:"count"`
	Candidates []Candidate `json:"candidates"`
}

// LookupResult carries either a product or search candidates
type LookupResult struct {
	Kind    string       `json:"kind"`
	Product *ProductView `json:"product,omitempty"`
	Search  *SearchView  `json:"search,omitempty"`
}

// Lookup validates a raw query and dispatches it. Barcode hits are recorded in
// the profile's ledger when profileID is set.
func (s *ProductService) Lookup(ctx context.Context, profileID, rawQuery string) (*LookupResult, error) {
	query, err := domain.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	if !query.IsBarcode() {
		view, err := s.search(ctx, query.Value)
		if err != nil {
			return nil, err
		}
		return &LookupResult{Kind: query.Kind.String(), Search: view}, nil
	}

	view, err := s.product(ctx, query.Value)
	if err != nil {
		return nil, err
	}

	if profileID != "" && s.ledger != nil {
		record, err := s.ledger.Record(ctx, profileID, view.Details, view.Scores)
		if err != nil {
			// ledger failures never fail a lookup
			log.Printf("[SERVICE] Failed to record scan of %s for %s: %v", view.Barcode, profileID, err)
		} else {
			view.Scan = record
		}
	}
	return &LookupResult{Kind: query.Kind.String(), Product: view}, nil
}

// Product resolves and scores a barcode without recording it.
func (s *ProductService) Product(ctx context.Context, barcode string) (*ProductView, error) {
	query, err := domain.ParseQuery(barcode)
	if err != nil {
		return nil, err
	}
	if !query.IsBarcode() {
		return nil, &domain.InvalidQueryError{Reason: "barcode must contain digits only"}
	}
	return s.product(ctx, query.Value)
}

// Search runs a free-text search. Digit-only input is searched as text too.
func (s *ProductService) Search(ctx context.Context, rawQuery string) (*SearchView, error) {
	query, err := domain.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, query.Value)
}

func (s *ProductService) product(ctx context.Context, barcode string) (*ProductView, error) {
	resolved, cached, err := s.resolve(ctx, barcode)
	if err != nil {
		return nil, err
	}

	report := s.scorer.Score(resolved.Raw)
	return &ProductView{
		Barcode:  resolved.Barcode,
		Strategy: resolved.Strategy,
		Details:  ExtractDetails(resolved.Barcode, resolved.Raw),
		Scores:   report,
		Display:  displayGrades(report),
		Tips:     HealthTips(report, resolved.Raw),
		Cached:   cached,
	}, nil
}

func (s *ProductService) search(ctx context.Context, terms string) (*SearchView, error) {
	result, err := s.resolver.Search(ctx, terms)
	if err != nil {
		return nil, err
	}

	view := &SearchView{
		Query:      terms,
		Count:      result.Count,
		Candidates: make([]Candidate, 0, len(result.Products)),
	}
	for _, raw := range result.Products {
		details := ExtractDetails("", raw)
		report := s.scorer.Score(raw)
		view.Candidates = append(view.Candidates, Candidate{
			Barcode:  details.Barcode,
			Name:     details.Name,
			Brand:    details.Brand,
			ImageURL: details.ImageURL,
			Scores:   report,
			Display:  displayGrades(report),
		})
	}
	s.matcher.Rank(terms, view.Candidates)
	return view, nil
}

// resolve checks the cache, then runs the resolver once per barcode no matter
// how many callers ask at the same time.
func (s *ProductService) resolve(ctx context.Context, barcode string) (*domain.ResolvedProduct, bool, error) {
	cacheKey := generateCacheKey(barcode)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		return cached, true, nil
	} else if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[SERVICE] Cache read failed for %s: %v", cacheKey, err)
	}

	// The shared resolution outlives any single caller; each caller still stops
	// waiting when its own context ends. The resolver bounds every attempt.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(barcode, func() (interface{}, error) {
		resolved, err := s.resolver.ResolveBarcode(shared, barcode)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(shared, cacheKey, resolved, s.cacheTTL); err != nil {
			log.Printf("[SERVICE] Cache write failed for %s: %v", cacheKey, err)
		}
		return resolved, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*domain.ResolvedProduct), false, nil
	}
}

// generateCacheKey creates the cache key of a barcode.
// Format: "product:{barcode}"
func generateCacheKey(barcode string) string {
	return fmt.Sprintf("product:%s", barcode)
}

// getFromCache retrieves a resolved product from cache
func (s *ProductService) getFromCache(ctx context.Context, key string) (*domain.ResolvedProduct, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return toResolvedProduct(value)
}

// toResolvedProduct accepts either the typed value or its JSON map form as
// returned by the caches.
func toResolvedProduct(value interface{}) (*domain.ResolvedProduct, error) {
	switch v := value.(type) {
	case *domain.ResolvedProduct:
		return v, nil
	case domain.ResolvedProduct:
		return &v, nil
	case map[string]interface{}:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		var resolved domain.ResolvedProduct
		if err := dec.Decode(&resolved); err != nil {
			return nil, err
		}
		if resolved.Barcode == "" || len(resolved.Raw) == 0 {
			return nil, domain.ErrCacheMiss
		}
		return &resolved, nil
	}
	return nil, domain.ErrCacheMiss
}
