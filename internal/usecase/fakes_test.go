package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

// fakeCall records one upstream request made through fakeProductAPI
type fakeCall struct {
	endpoint string
	code     string
}

// fakeProductAPI answers from per-endpoint maps. Codes without an entry are
// not found; codes listed in failing return a transport error.
type fakeProductAPI struct {
	mu sync.Mutex

	v2      map[string]domain.RawProduct
	v0      map[string]domain.RawProduct
	display map[string]domain.RawProduct
	search  map[string][]domain.RawProduct
	text    *domain.SearchResult
	textErr error

	failing map[string]bool
	block   map[string]bool

	// gate, when set, holds every product lookup until closed; entered
	// receives a signal as each held lookup starts
	gate    chan struct{}
	entered chan struct{}

	calls []fakeCall
}

func newFakeProductAPI() *fakeProductAPI {
	return &fakeProductAPI{
		v2:      map[string]domain.RawProduct{},
		v0:      map[string]domain.RawProduct{},
		display: map[string]domain.RawProduct{},
		search:  map[string][]domain.RawProduct{},
		failing: map[string]bool{},
		block:   map[string]bool{},
	}
}

func (f *fakeProductAPI) record(endpoint, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{endpoint: endpoint, code: code})
}

func (f *fakeProductAPI) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

func (f *fakeProductAPI) lookup(ctx context.Context, endpoint, code string, table map[string]domain.RawProduct) (domain.RawProduct, error) {
	f.record(endpoint, code)
	if f.gate != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, ctx.Err())
		}
	}
	if f.block[endpoint] {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, ctx.Err())
	}
	if f.failing[endpoint] {
		return nil, fmt.Errorf("%w: status 503", domain.ErrUpstreamFailure)
	}
	if p, ok := table[code]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeProductAPI) ProductV2(ctx context.Context, code string) (domain.RawProduct, error) {
	return f.lookup(ctx, "v2", code, f.v2)
}

func (f *fakeProductAPI) ProductV0(ctx context.Context, code string) (domain.RawProduct, error) {
	return f.lookup(ctx, "v0", code, f.v0)
}

func (f *fakeProductAPI) ProductDisplay(ctx context.Context, code string) (domain.RawProduct, error) {
	return f.lookup(ctx, "display", code, f.display)
}

func (f *fakeProductAPI) SearchByCode(ctx context.Context, code string) ([]domain.RawProduct, error) {
	f.record("search", code)
	if f.failing["search"] {
		return nil, fmt.Errorf("%w: status 503", domain.ErrUpstreamFailure)
	}
	if products, ok := f.search[code]; ok && len(products) > 0 {
		return products, nil
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeProductAPI) SearchText(ctx context.Context, terms string, pageSize int) (*domain.SearchResult, error) {
	f.record("text", terms)
	if f.textErr != nil {
		return nil, f.textErr
	}
	if f.text == nil {
		return &domain.SearchResult{Page: 1, PageSize: pageSize}, nil
	}
	return f.text, nil
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// memoryLedgerStore is a minimal domain.LedgerStore for service tests
type memoryLedgerStore struct {
	mu        sync.Mutex
	ledgers   map[string]domain.Ledger
	updateErr error
}

func newMemoryLedgerStore() *memoryLedgerStore {
	return &memoryLedgerStore{ledgers: map[string]domain.Ledger{}}
}

func (s *memoryLedgerStore) Load(ctx context.Context, profileID string) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledgers[profileID]
	l.History = append([]domain.HistoryEntry(nil), l.History...)
	return &l, nil
}

func (s *memoryLedgerStore) Update(ctx context.Context, profileID string, fn func(*domain.Ledger) error) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	l := s.ledgers[profileID]
	l.History = append([]domain.HistoryEntry(nil), l.History...)
	if err := fn(&l); err != nil {
		return nil, err
	}
	s.ledgers[profileID] = l
	out := l
	return &out, nil
}
