package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/wslup/internal/adapters/logging"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/testutil/mocks"
)

const testDistro = "Ubuntu"

func newDistributionStep(gw *mocks.SystemGateway) *DistributionStep {
	return NewDistributionStep(gw, testDistro, time.Millisecond, 20*time.Millisecond, logging.NewNopLogger())
}

func TestDistributionStep_Check(t *testing.T) {
	t.Parallel()

	step := newDistributionStep(mocks.NewSystemGateway())

	assert.True(t, step.Check(probe.Snapshot{RuntimeHealthy: true}))
	assert.False(t, step.Check(probe.Snapshot{RuntimeHealthy: true, Distributions: []string{"Ubuntu"}}))
	assert.False(t, step.Check(probe.Snapshot{RuntimeHealthy: true, Distributions: []string{"ubuntu"}}),
		"registration is case-insensitive")
	assert.False(t, step.Check(probe.Snapshot{Distributions: nil}))
}

func TestDistributionStep_Apply_RegistersImmediately(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	step := newDistributionStep(gw)

	result := step.Apply(context.Background())

	assert.True(t, result.IsSuccess())
	assert.Equal(t, testDistro, gw.DefaultDistro)
}

func TestDistributionStep_Apply_WaitsForAsyncRegistration(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	gw.RegisterAfterPolls = 3
	step := newDistributionStep(gw)

	result := step.Apply(context.Background())

	assert.True(t, result.IsSuccess())
	assert.Equal(t, testDistro, gw.DefaultDistro)
}

func TestDistributionStep_Apply_InstallErrorIsRetryable(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	gw.InstallDistroErr = errors.New("download interrupted")
	step := newDistributionStep(gw)

	result := step.Apply(context.Background())

	assert.True(t, result.IsRetryable())
	assert.ErrorContains(t, result.Err(), "failed to install distribution")
	assert.Empty(t, gw.DefaultDistro)
}

func TestDistributionStep_Apply_NeverRegistersExhaustsBudget(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	gw.RegisterAfterPolls = -1 // install succeeds but registration never lands
	step := newDistributionStep(gw)

	start := time.Now()
	result := step.Apply(context.Background())

	assert.True(t, result.IsRetryable())
	assert.ErrorContains(t, result.Err(), "not registered within")
	assert.Less(t, time.Since(start), time.Second, "poll loop must terminate at the wait budget")
}

func TestDistributionStep_Apply_ListErrorsDoNotAbortPolling(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	gw.ListErr = errors.New("runtime busy")
	step := newDistributionStep(gw)

	result := step.Apply(context.Background())

	assert.True(t, result.IsRetryable())
	assert.ErrorContains(t, result.Err(), "not registered within")
}

func TestDistributionStep_Apply_SetDefaultErrorIsRetryable(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	gw.SetDefaultErr = errors.New("wsl refused")
	step := newDistributionStep(gw)

	result := step.Apply(context.Background())

	assert.True(t, result.IsRetryable())
	assert.ErrorContains(t, result.Err(), "failed to set default distribution")
}

func TestDistributionStep_Apply_ContextCancellation(t *testing.T) {
	t.Parallel()

	gw := mocks.NewSystemGateway()
	gw.RegisterAfterPolls = -1
	step := NewDistributionStep(gw, testDistro, 10*time.Millisecond, time.Minute, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := step.Apply(ctx)

	assert.True(t, result.IsRetryable())
	assert.ErrorIs(t, result.Err(), context.Canceled)
}
