//go:build windows

package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows/registry"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
)

const (
	registryPath = `Software\wslup`
	stageValue   = "ResumeStage"
	timeValue    = "ResumeTime"
)

// RegistryStore persists the resume marker under HKCU so it survives reboot
// without requiring elevation for the store itself.
type RegistryStore struct{}

// NewRegistryStore creates a registry-backed store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{}
}

// Load reads the persisted marker from the registry.
func (s *RegistryStore) Load(_ context.Context) (pipeline.Marker, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, registryPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return pipeline.Marker{}, pipeline.ErrNoMarker
		}
		return pipeline.Marker{}, fmt.Errorf("failed to open marker key: %w", err)
	}
	defer func() {
		_ = key.Close()
	}()

	stage, _, err := key.GetStringValue(stageValue)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return pipeline.Marker{}, pipeline.ErrNoMarker
		}
		return pipeline.Marker{}, fmt.Errorf("%w: %w", pipeline.ErrMarkerCorrupt, err)
	}
	if stage == "" {
		return pipeline.Marker{}, fmt.Errorf("%w: empty stage", pipeline.ErrMarkerCorrupt)
	}

	marker := pipeline.Marker{Stage: pipeline.StepID(stage)}
	if raw, _, err := key.GetStringValue(timeValue); err == nil {
		if t, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			marker.Time = t
		}
	}
	return marker, nil
}

// Save persists the marker, replacing any existing one.
func (s *RegistryStore) Save(_ context.Context, m pipeline.Marker) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, registryPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to create marker key: %w", err)
	}
	defer func() {
		_ = key.Close()
	}()

	if err := key.SetStringValue(stageValue, m.Stage.String()); err != nil {
		return fmt.Errorf("failed to write marker stage: %w", err)
	}
	if err := key.SetStringValue(timeValue, m.Time.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to write marker time: %w", err)
	}
	return nil
}

// Clear removes the marker key. A missing key is not an error.
func (s *RegistryStore) Clear(_ context.Context) error {
	err := registry.DeleteKey(registry.CURRENT_USER, registryPath)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete marker key: %w", err)
	}
	return nil
}

// Ensure RegistryStore implements pipeline.Store.
var _ pipeline.Store = (*RegistryStore)(nil)
