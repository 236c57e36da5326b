package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/adapters/logging"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
)

// fakeStep is a scriptable pipeline step.
type fakeStep struct {
	id      StepID
	checkFn func(probe.Snapshot) bool
	applyFn func(context.Context) Result
	applied int
}

func (s *fakeStep) ID() StepID { return s.id }

func (s *fakeStep) Check(snap probe.Snapshot) bool {
	return s.checkFn(snap)
}

func (s *fakeStep) Apply(ctx context.Context) Result {
	s.applied++
	return s.applyFn(ctx)
}

// fakeProber returns scripted snapshots in sequence, repeating the last one.
type fakeProber struct {
	snaps []probe.Snapshot
	calls int
}

func (p *fakeProber) Inspect(_ context.Context) probe.Snapshot {
	i := p.calls
	if i >= len(p.snaps) {
		i = len(p.snaps) - 1
	}
	p.calls++
	return p.snaps[i]
}

// memStore is a minimal in-memory Store. The shared mock in testutil/mocks
// is not used here to avoid an import cycle with this package.
type memStore struct {
	marker storedMarker
	saves  int
	clears int
}

type storedMarker struct {
	m   Marker
	has bool
}

func (s *memStore) Load(_ context.Context) (Marker, error) {
	if !s.marker.has {
		return Marker{}, ErrNoMarker
	}
	return s.marker.m, nil
}

func (s *memStore) Save(_ context.Context, m Marker) error {
	s.marker = storedMarker{m: m, has: true}
	s.saves++
	return nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.marker = storedMarker{}
	s.clears++
	return nil
}

func never(_ probe.Snapshot) bool  { return false }
func always(_ probe.Snapshot) bool { return true }

func succeed(_ context.Context) Result { return Success() }

func newTestPipeline(prober Prober, store Store, steps ...Step) *Pipeline {
	return New(prober, store, logging.NewNopLogger(), steps...)
}

func TestPipeline_AllSatisfied(t *testing.T) {
	t.Parallel()

	stepA := &fakeStep{id: "a", checkFn: never, applyFn: succeed}
	stepB := &fakeStep{id: "b", checkFn: never, applyFn: succeed}
	store := &memStore{}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}

	outcome := newTestPipeline(prober, store, stepA, stepB).Run(context.Background())

	assert.Equal(t, OutcomeAlreadySatisfied, outcome.Kind)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 0, stepA.applied)
	assert.Equal(t, 0, stepB.applied)
	assert.Equal(t, 1, store.clears)
}

func TestPipeline_RebootHaltsAndPersistsMarker(t *testing.T) {
	t.Parallel()

	first := &fakeStep{id: "enable-os-features", checkFn: always, applyFn: func(_ context.Context) Result {
		return RebootRequired()
	}}
	second := &fakeStep{id: "install-runtime", checkFn: always, applyFn: succeed}
	store := &memStore{}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}

	outcome := newTestPipeline(prober, store, first, second).Run(context.Background())

	assert.Equal(t, OutcomeRebootRequired, outcome.Kind)
	assert.Equal(t, StepID("enable-os-features"), outcome.Stage)
	// The reboot-requiring step must not chain into the next stage.
	assert.Equal(t, 0, second.applied)

	require.Equal(t, 1, store.saves)
	marker, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepID("enable-os-features"), marker.Stage)
	assert.WithinDuration(t, time.Now().UTC(), marker.Time, time.Minute)
}

func TestPipeline_SuccessfulStepChainsThrough(t *testing.T) {
	t.Parallel()

	// First step already satisfied, second and third run in the same
	// invocation with a fresh probe between them.
	skipped := &fakeStep{id: "a", checkFn: never, applyFn: succeed}
	second := &fakeStep{id: "b", checkFn: always, applyFn: succeed}
	third := &fakeStep{id: "c", checkFn: always, applyFn: succeed}
	store := &memStore{}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}

	outcome := newTestPipeline(prober, store, skipped, second, third).Run(context.Background())

	assert.Equal(t, OutcomeCompleted, outcome.Kind)
	assert.Equal(t, 0, skipped.applied)
	assert.Equal(t, 1, second.applied)
	assert.Equal(t, 1, third.applied)
	// Initial probe plus one re-probe per applied step.
	assert.Equal(t, 3, prober.calls)
	assert.Equal(t, 1, store.clears)
}

func TestPipeline_ResumeSkipsSatisfiedStages(t *testing.T) {
	t.Parallel()

	// After the reboot the snapshot reports features enabled, so the feature
	// stage's precondition is false and execution begins at the next stage.
	snap := probe.Snapshot{
		Features:       map[string]bool{"f1": true, "f2": true},
		RuntimeHealthy: false,
	}
	features := &fakeStep{id: "enable-os-features", checkFn: func(s probe.Snapshot) bool {
		return !s.RuntimeHealthy && !s.FeaturesEnabled([]string{"f1", "f2"})
	}, applyFn: func(_ context.Context) Result { return RebootRequired() }}
	runtimeStep := &fakeStep{id: "install-runtime", checkFn: func(s probe.Snapshot) bool {
		return s.FeaturesEnabled([]string{"f1", "f2"}) && !s.RuntimeHealthy
	}, applyFn: succeed}

	store := &memStore{}
	store.marker = storedMarker{m: Marker{Stage: "enable-os-features", Time: time.Now()}, has: true}
	prober := &fakeProber{snaps: []probe.Snapshot{snap, {RuntimeHealthy: true, Features: snap.Features}}}

	outcome := newTestPipeline(prober, store, features, runtimeStep).Run(context.Background())

	assert.Equal(t, OutcomeCompleted, outcome.Kind)
	assert.Equal(t, 0, features.applied)
	assert.Equal(t, 1, runtimeStep.applied)
}

func TestPipeline_RetryableFailureHaltsWithoutAdvancing(t *testing.T) {
	t.Parallel()

	failing := &fakeStep{id: "install-runtime", checkFn: always, applyFn: func(_ context.Context) Result {
		return Retryable(errors.New("download failed"))
	}}
	next := &fakeStep{id: "install-distribution", checkFn: always, applyFn: succeed}
	store := &memStore{}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}

	outcome := newTestPipeline(prober, store, failing, next).Run(context.Background())

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.False(t, outcome.Fatal)
	assert.Equal(t, StepID("install-runtime"), outcome.Stage)
	assert.EqualError(t, outcome.Err, "download failed")
	assert.Equal(t, 0, next.applied)
	// Retryable failures keep any pending marker for the next attempt.
	assert.Equal(t, 0, store.clears)
}

func TestPipeline_FatalFailureClearsMarker(t *testing.T) {
	t.Parallel()

	failing := &fakeStep{id: "install-runtime", checkFn: always, applyFn: func(_ context.Context) Result {
		return Fatal(errors.New("unsupported state"))
	}}
	store := &memStore{}
	store.marker = storedMarker{m: Marker{Stage: "enable-os-features"}, has: true}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}

	outcome := newTestPipeline(prober, store, failing).Run(context.Background())

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.True(t, outcome.Fatal)
	assert.Equal(t, 1, store.clears)
}

func TestPipeline_IdempotentSecondRun(t *testing.T) {
	t.Parallel()

	runs := 0
	step := &fakeStep{id: "a", checkFn: func(_ probe.Snapshot) bool {
		return runs == 0
	}, applyFn: func(_ context.Context) Result {
		runs++
		return Success()
	}}
	store := &memStore{}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}
	pipe := newTestPipeline(prober, store, step)

	first := pipe.Run(context.Background())
	second := pipe.Run(context.Background())

	assert.Equal(t, OutcomeCompleted, first.Kind)
	assert.Equal(t, OutcomeAlreadySatisfied, second.Kind)
	assert.Equal(t, 1, runs)
}

func TestPipeline_Plan(t *testing.T) {
	t.Parallel()

	pending := &fakeStep{id: "b", checkFn: always, applyFn: succeed}
	satisfied := &fakeStep{id: "a", checkFn: never, applyFn: succeed}
	store := &memStore{}
	prober := &fakeProber{snaps: []probe.Snapshot{{}}}

	ids := newTestPipeline(prober, store, satisfied, pending).Plan(context.Background())

	assert.Equal(t, []StepID{"b"}, ids)
	assert.Equal(t, 0, pending.applied)
}
