package memory

import (
	"sync"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
type StateStore struct {
	mu       sync.RWMutex
	settings domain.Settings
	state    domain.SyncState
}

// NewStateStore creates a state store seeded with default settings.
func NewStateStore() *StateStore {
	return &StateStore{settings: domain.DefaultSettings()}
}

// Settings returns the current settings.
func (s *StateStore) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SaveSettings replaces the settings.
func (s *StateStore) SaveSettings(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// SyncState returns the persisted sync progress.
func (s *StateStore) SyncState() domain.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SaveSyncState replaces the sync progress.
func (s *StateStore) SaveSyncState(st domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return nil
}
