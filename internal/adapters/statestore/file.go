// Package statestore provides resume-marker stores. The marker must survive
// process exit and a full OS reboot, so stores are process-external: the
// Windows registry on Windows, a YAML file elsewhere and in tests.
package statestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
)

type markerDTO struct {
	Stage string    `yaml:"stage"`
	Time  time.Time `yaml:"time"`
}

// FileStore persists the resume marker as a YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns the per-user marker location.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "wslup", "resume.yaml"), nil
}

// Load reads the persisted marker.
func (s *FileStore) Load(_ context.Context) (pipeline.Marker, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.Marker{}, pipeline.ErrNoMarker
		}
		return pipeline.Marker{}, fmt.Errorf("failed to read resume marker: %w", err)
	}

	var dto markerDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return pipeline.Marker{}, fmt.Errorf("%w: %w", pipeline.ErrMarkerCorrupt, err)
	}
	if dto.Stage == "" {
		return pipeline.Marker{}, fmt.Errorf("%w: empty stage", pipeline.ErrMarkerCorrupt)
	}

	return pipeline.Marker{Stage: pipeline.StepID(dto.Stage), Time: dto.Time}, nil
}

// Save persists the marker, replacing any existing one.
func (s *FileStore) Save(_ context.Context, m pipeline.Marker) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create marker dir: %w", err)
	}

	data, err := yaml.Marshal(markerDTO{Stage: m.Stage.String(), Time: m.Time})
	if err != nil {
		return fmt.Errorf("failed to encode resume marker: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write resume marker: %w", err)
	}
	return nil
}

// Clear removes the marker. A missing marker is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove resume marker: %w", err)
	}
	return nil
}

// Ensure FileStore implements pipeline.Store.
var _ pipeline.Store = (*FileStore)(nil)
