package app

import (
	"context"
	"log"
	"sync"

	"github.com/poku-e/spellbook/internal/spell"
)

// State is a snapshot of the loaded dataset.
type State struct {
	Records []spell.Record
	Loading bool
	Err     error
}

// Store owns the record list for the life of the process. It starts in the
// loading state; Load moves it to ready or failed.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns a store in the loading state.
func NewStore() *Store {
	return &Store{state: State{Loading: true}}
}

// Load fetches the dataset once. On failure the error is kept and shown until
// the process restarts; there is no automatic retry.
func (s *Store) Load(ctx context.Context, l spell.Loader) error {
	s.mu.Lock()
	s.state = State{Loading: true}
	s.mu.Unlock()

	recs, err := l.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = State{Err: err}
		log.Printf("spell load failed: %v", err)
		return err
	}
	s.state = State{Records: recs}
	log.Printf("spells: %d loaded", len(recs))
	return nil
}

// Snapshot returns the current state. The record slice is shared and must be
// treated as read-only.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
