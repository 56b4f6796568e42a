package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

const defaultUpdateRetries = 5

// errConflict marks an EXEC aborted because a watched key changed
var errConflict = errors.New("ledger modified concurrently")

// ValkeyStore keeps each profile's history, points and counters under three
// keys and updates them with WATCH/MULTI/EXEC.
type ValkeyStore struct {
	client  valkey.Client
	prefix  string
	retries int
}

func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "foodtracker"
	}
	return &ValkeyStore{client: client, prefix: prefix, retries: defaultUpdateRetries}
}

func (s *ValkeyStore) Load(ctx context.Context, profileID string) (*domain.Ledger, error) {
	resp := s.client.Do(ctx, s.client.B().Mget().Key(s.keys(profileID)...).Build())
	ledger, err := decodeLedger(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	return ledger, nil
}

func (s *ValkeyStore) Update(ctx context.Context, profileID string, fn func(*domain.Ledger) error) (*domain.Ledger, error) {
	return retryOnConflict(profileID, s.retries, func() (*domain.Ledger, error) {
		var result *domain.Ledger
		err := s.client.Dedicated(func(c valkey.DedicatedClient) error {
			var txErr error
			result, txErr = s.updateOnce(ctx, c, profileID, fn)
			return txErr
		})
		return result, err
	})
}

// retryOnConflict runs txn until it returns something other than errConflict,
// at most attempts times.
func retryOnConflict(profileID string, attempts int, txn func() (*domain.Ledger, error)) (*domain.Ledger, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := txn()
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errConflict) {
			return nil, err
		}
		lastErr = err
		log.Printf("[LEDGER] Concurrent update on profile %s, retrying (attempt %d)", profileID, attempt)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, lastErr)
}

func (s *ValkeyStore) updateOnce(ctx context.Context, c valkey.DedicatedClient, profileID string, fn func(*domain.Ledger) error) (*domain.Ledger, error) {
	keys := s.keys(profileID)
	if err := c.Do(ctx, c.B().Watch().Key(keys...).Build()).Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	ledger, err := decodeLedger(c.Do(ctx, c.B().Mget().Key(keys...).Build()))
	if err != nil {
		c.Do(ctx, c.B().Unwatch().Build())
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	if err := fn(ledger); err != nil {
		c.Do(ctx, c.B().Unwatch().Build())
		return nil, err
	}

	history, err := json.Marshal(ledger.History)
	if err != nil {
		c.Do(ctx, c.B().Unwatch().Build())
		return nil, err
	}
	stats, err := json.Marshal(ledger.Stats)
	if err != nil {
		c.Do(ctx, c.B().Unwatch().Build())
		return nil, err
	}

	resps := c.DoMulti(ctx,
		c.B().Multi().Build(),
		c.B().Set().Key(keys[0]).Value(string(history)).Build(),
		c.B().Set().Key(keys[1]).Value(strconv.Itoa(int(ledger.Points))).Build(),
		c.B().Set().Key(keys[2]).Value(string(stats)).Build(),
		c.B().Exec().Build(),
	)
	for _, r := range resps[:len(resps)-1] {
		if err := r.Error(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
		}
	}
	if _, err := resps[len(resps)-1].ToArray(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, errConflict
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	return cloneLedger(ledger), nil
}

// decodeLedger reads an MGET reply of [history, points, stats]. Missing keys
// decode to their zero values.
func decodeLedger(resp valkey.ValkeyResult) (*domain.Ledger, error) {
	values, err := resp.ToArray()
	if err != nil {
		return nil, err
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected MGET reply length %d", len(values))
	}

	ledger := &domain.Ledger{History: []domain.HistoryEntry{}}
	if raw, ok := stringOrNil(values[0]); ok {
		if err := json.Unmarshal([]byte(raw), &ledger.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	if raw, ok := stringOrNil(values[1]); ok {
		if err := json.Unmarshal([]byte(raw), &ledger.Points); err != nil {
			return nil, fmt.Errorf("decode points: %w", err)
		}
	}
	if raw, ok := stringOrNil(values[2]); ok {
		if err := json.Unmarshal([]byte(raw), &ledger.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}
	return ledger, nil
}

func stringOrNil(m valkey.ValkeyMessage) (string, bool) {
	s, err := m.ToString()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (s *ValkeyStore) keys(profileID string) []string {
	base := fmt.Sprintf("%s:ledger:%s", s.prefix, profileID)
	return []string{base + ":history", base + ":points", base + ":stats"}
}

var _ domain.LedgerStore = (*ValkeyStore)(nil)
