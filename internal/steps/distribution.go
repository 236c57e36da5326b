package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// DistributionStepID identifies the distribution registration stage.
const DistributionStepID pipeline.StepID = "install-distribution"

// DistributionStep installs the target distribution and waits, with a
// bounded poll, for it to appear in the registered list. Registration can
// complete asynchronously after the install verb returns.
type DistributionStep struct {
	gateway      ports.SystemGateway
	distro       string
	pollInterval time.Duration
	maxWait      time.Duration
	log          ports.Logger
}

// NewDistributionStep creates the distribution installation step.
func NewDistributionStep(gateway ports.SystemGateway, distro string, pollInterval, maxWait time.Duration, log ports.Logger) *DistributionStep {
	return &DistributionStep{
		gateway:      gateway,
		distro:       distro,
		pollInterval: pollInterval,
		maxWait:      maxWait,
		log:          log,
	}
}

// ID returns the step identifier.
func (s *DistributionStep) ID() pipeline.StepID {
	return DistributionStepID
}

// Check reports true while the runtime is healthy but the target
// distribution is not yet registered.
func (s *DistributionStep) Check(snap probe.Snapshot) bool {
	return snap.RuntimeHealthy && !snap.HasDistribution(s.distro)
}

// Apply triggers the install and polls for registration within the wait
// budget, then marks the distribution as the default.
func (s *DistributionStep) Apply(ctx context.Context) pipeline.Result {
	if err := s.gateway.InstallDistribution(ctx, s.distro); err != nil {
		return pipeline.Retryable(fmt.Errorf("failed to install distribution %q: %w", s.distro, err))
	}

	var waited time.Duration
	for {
		if s.registered(ctx) {
			if err := s.gateway.SetDefaultDistribution(ctx, s.distro); err != nil {
				return pipeline.Retryable(fmt.Errorf("failed to set default distribution: %w", err))
			}
			return pipeline.Success()
		}

		if waited >= s.maxWait {
			return pipeline.Retryable(fmt.Errorf("distribution %q not registered within %s", s.distro, s.maxWait))
		}

		select {
		case <-ctx.Done():
			return pipeline.Retryable(ctx.Err())
		case <-time.After(s.pollInterval):
			waited += s.pollInterval
		}
	}
}

func (s *DistributionStep) registered(ctx context.Context) bool {
	distros, err := s.gateway.ListDistributions(ctx)
	if err != nil {
		s.log.Debug(ctx, "distribution list unavailable while polling", ports.F("error", err.Error()))
		return false
	}
	for _, d := range distros {
		if strings.EqualFold(d, s.distro) {
			return true
		}
	}
	return false
}
