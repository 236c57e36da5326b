// Package pipeline implements the staged installation state machine: an
// ordered sequence of idempotent steps walked by an orchestrator that maps
// step outcomes to process-level signals and persists a resume marker across
// the reboot that feature activation requires.
package pipeline

import (
	"context"

	"github.com/felixgeelhaar/wslup/internal/domain/probe"
)

// StepID identifies a pipeline stage. The resume marker stores a StepID, so
// values must stay stable across releases.
type StepID string

// String returns the string form of the step ID.
func (id StepID) String() string {
	return string(id)
}

// Step is an idempotent unit of installation work. Check evaluates the
// precondition against a fresh probe snapshot; a false result means the
// step's work is already done and skipping it is correct. Apply mutates
// system state and converts every internal fault into exactly one Result.
type Step interface {
	// ID returns the stable identifier for this stage.
	ID() StepID

	// Check reports whether the step still needs to run.
	Check(snap probe.Snapshot) bool

	// Apply performs the step's work. It must be safe to invoke again after
	// a crash or reboot; re-running once the precondition no longer holds is
	// a no-op because the orchestrator re-checks before applying.
	Apply(ctx context.Context) Result
}
