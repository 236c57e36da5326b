package pipeline

import (
	"context"
	"errors"
	"time"
)

// ErrNoMarker is returned by Store.Load when no resume marker is persisted.
var ErrNoMarker = errors.New("no resume marker")

// ErrMarkerCorrupt is returned when a persisted marker cannot be decoded.
var ErrMarkerCorrupt = errors.New("resume marker corrupt")

// Marker records the stage that was in flight when a reboot was requested.
// It names a stage rather than a position: on resume the pipeline re-derives
// position from a fresh probe and the marker serves diagnostics only.
type Marker struct {
	Stage StepID
	Time  time.Time
}

// Store persists the resume marker in a location that survives process exit
// and OS reboot. At most one marker exists at a time.
type Store interface {
	// Load returns the persisted marker, or ErrNoMarker if none exists.
	Load(ctx context.Context) (Marker, error)

	// Save persists the marker, replacing any existing one.
	Save(ctx context.Context, m Marker) error

	// Clear removes the marker. Clearing an absent marker is a no-op.
	Clear(ctx context.Context) error
}
