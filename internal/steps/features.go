// Package steps contains the concrete pipeline stages in execution order:
// enable-os-features, install-runtime, install-distribution,
// install-toolchain.
package steps

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// FeaturesStepID identifies the feature-enablement stage.
const FeaturesStepID pipeline.StepID = "enable-os-features"

// FeaturesStep enables the optional Windows features the subsystem runtime
// requires. Feature activation only takes effect after a reboot, so enabling
// anything yields a reboot-required outcome.
type FeaturesStep struct {
	gateway  ports.SystemGateway
	features []string
	log      ports.Logger
}

// NewFeaturesStep creates the feature-enablement step.
func NewFeaturesStep(gateway ports.SystemGateway, features []string, log ports.Logger) *FeaturesStep {
	return &FeaturesStep{
		gateway:  gateway,
		features: features,
		log:      log,
	}
}

// ID returns the step identifier.
func (s *FeaturesStep) ID() pipeline.StepID {
	return FeaturesStepID
}

// Check reports true while the runtime is unhealthy and at least one
// required feature is disabled.
func (s *FeaturesStep) Check(snap probe.Snapshot) bool {
	return !snap.RuntimeHealthy && !snap.FeaturesEnabled(s.features)
}

// Apply enables each disabled feature without an immediate restart. The
// feature state is re-derived here rather than trusted from the snapshot, so
// a redundant invocation degrades to a no-op.
func (s *FeaturesStep) Apply(ctx context.Context) pipeline.Result {
	enabledAny := false

	for _, name := range s.features {
		enabled, err := s.gateway.FeatureEnabled(ctx, name)
		if err != nil {
			s.log.Debug(ctx, "feature state unknown, attempting enable",
				ports.F("feature", name), ports.F("error", err.Error()))
			enabled = false
		}
		if enabled {
			continue
		}

		s.log.Info(ctx, "enabling feature", ports.F("feature", name))
		if err := s.gateway.EnableFeature(ctx, name); err != nil {
			return pipeline.Retryable(fmt.Errorf("failed to enable feature %q: %w", name, err))
		}
		enabledAny = true
	}

	if !enabledAny {
		return pipeline.Success()
	}
	return pipeline.RebootRequired()
}
