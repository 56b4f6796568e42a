package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

type fileState struct {
	DefaultProfileID string                    `json:"defaultProfileId,omitempty"`
	Profiles         map[string]*domain.Ledger `json:"profiles"`
}

// FileStore keeps every ledger in a single JSON document on disk.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	state    fileState
}

// NewFileStore opens (or prepares) the ledger file at filePath.
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{
		filePath: filePath,
		state:    fileState{Profiles: make(map[string]*domain.Ledger)},
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	return s, nil
}

func (s *FileStore) Load(ctx context.Context, profileID string) (*domain.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneLedger(s.state.Profiles[profileID]), nil
}

func (s *FileStore) Update(ctx context.Context, profileID string, fn func(*domain.Ledger) error) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := cloneLedger(s.state.Profiles[profileID])
	if err := fn(working); err != nil {
		return nil, err
	}

	previous, existed := s.state.Profiles[profileID]
	s.state.Profiles[profileID] = working
	if err := s.persistLocked(); err != nil {
		if existed {
			s.state.Profiles[profileID] = previous
		} else {
			delete(s.state.Profiles, profileID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	return cloneLedger(working), nil
}

// DefaultProfileID returns the profile used by single-user clients, minting
// and persisting one on first use.
func (s *FileStore) DefaultProfileID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.DefaultProfileID != "" {
		return s.state.DefaultProfileID, nil
	}
	s.state.DefaultProfileID = uuid.NewString()
	if err := s.persistLocked(); err != nil {
		s.state.DefaultProfileID = ""
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	return s.state.DefaultProfileID, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.Profiles == nil {
		state.Profiles = make(map[string]*domain.Ledger)
	}
	s.state = state
	return nil
}

func (s *FileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}

var _ domain.LedgerStore = (*FileStore)(nil)
