// Package probe inspects the host machine and answers discrete questions
// about installation state. Inspection is read-only and side-effect free.
package probe

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Snapshot is a point-in-time view of installation state. It is recomputed
// fresh on every pipeline run and never cached across runs, because OS state
// can change between invocations.
type Snapshot struct {
	Features        map[string]bool
	RuntimePresent  bool
	RuntimeHealthy  bool
	Distributions   []string
	GuestComponents map[string]bool
}

// FeaturesEnabled reports whether every named feature is enabled.
func (s Snapshot) FeaturesEnabled(required []string) bool {
	for _, name := range required {
		if !s.Features[name] {
			return false
		}
	}
	return true
}

// MissingFeatures returns the required features that are not enabled.
func (s Snapshot) MissingFeatures(required []string) []string {
	var missing []string
	for _, name := range required {
		if !s.Features[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// HasDistribution reports whether the named distribution is registered.
// Names compare case-insensitively because the runtime's list output does
// not guarantee casing.
func (s Snapshot) HasDistribution(name string) bool {
	for _, d := range s.Distributions {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// GuestComponentsPresent reports whether every tracked guest command
// resolved during the probe.
func (s Snapshot) GuestComponentsPresent(components []string) bool {
	for _, name := range components {
		if !s.GuestComponents[name] {
			return false
		}
	}
	return true
}

// Prober builds snapshots through an injected SystemGateway.
type Prober struct {
	gateway    ports.SystemGateway
	features   []string
	distro     string
	components []string
	log        ports.Logger
}

// New creates a Prober that tracks the given required feature names and, for
// the named distribution, the given guest commands.
func New(gateway ports.SystemGateway, features []string, distro string, components []string, log ports.Logger) *Prober {
	return &Prober{
		gateway:    gateway,
		features:   features,
		distro:     distro,
		components: components,
		log:        log,
	}
}

// Inspect returns a fresh snapshot. It always succeeds: inspection errors
// degrade to "disabled", "unhealthy", or "no distributions" so that probing
// never throws the pipeline into a fatal state on its own.
func (p *Prober) Inspect(ctx context.Context) Snapshot {
	snap := Snapshot{Features: make(map[string]bool, len(p.features))}

	for _, name := range p.features {
		enabled, err := p.gateway.FeatureEnabled(ctx, name)
		if err != nil {
			p.log.Debug(ctx, "feature state unknown, treating as disabled",
				ports.F("feature", name), ports.F("error", err.Error()))
			enabled = false
		}
		snap.Features[name] = enabled
	}

	snap.RuntimePresent = p.gateway.RuntimePresent(ctx)
	// Health implies presence: skip the status command when the executable
	// is not even there.
	if snap.RuntimePresent {
		snap.RuntimeHealthy = p.gateway.RuntimeHealthy(ctx)
	}

	distros, err := p.gateway.ListDistributions(ctx)
	if err != nil {
		p.log.Debug(ctx, "distribution list unavailable", ports.F("error", err.Error()))
		distros = nil
	}
	snap.Distributions = distros

	snap.GuestComponents = make(map[string]bool, len(p.components))
	if snap.HasDistribution(p.distro) {
		for _, name := range p.components {
			snap.GuestComponents[name] = p.gateway.GuestHasCommand(ctx, p.distro, name)
		}
	}

	return snap
}
