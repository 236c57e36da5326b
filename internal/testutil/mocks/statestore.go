package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
)

// StateStore is an in-memory pipeline.Store.
type StateStore struct {
	mu       sync.Mutex
	marker   pipeline.Marker
	has      bool
	LoadErr  error
	SaveErr  error
	ClearErr error
	Saves    int
	Clears   int
}

// NewStateStore creates an empty in-memory store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// SetMarker seeds a persisted marker.
func (s *StateStore) SetMarker(m pipeline.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = m
	s.has = true
}

// Marker returns the current marker and whether one exists.
func (s *StateStore) Marker() (pipeline.Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker, s.has
}

// Load implements pipeline.Store.
func (s *StateStore) Load(_ context.Context) (pipeline.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return pipeline.Marker{}, s.LoadErr
	}
	if !s.has {
		return pipeline.Marker{}, pipeline.ErrNoMarker
	}
	return s.marker, nil
}

// Save implements pipeline.Store.
func (s *StateStore) Save(_ context.Context, m pipeline.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.marker = m
	s.has = true
	s.Saves++
	return nil
}

// Clear implements pipeline.Store.
func (s *StateStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.marker = pipeline.Marker{}
	s.has = false
	s.Clears++
	return nil
}

// Ensure StateStore implements pipeline.Store.
var _ pipeline.Store = (*StateStore)(nil)
