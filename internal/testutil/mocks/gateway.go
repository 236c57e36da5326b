package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// SystemGateway is a configurable in-memory fake of ports.SystemGateway.
// Mutating calls update the fake's state the way the real system would, so
// tests can drive the pipeline end to end without touching the host.
type SystemGateway struct {
	mu sync.Mutex

	// Observable state.
	Features      map[string]bool
	FeatureErr    error
	Present       bool
	Healthy       bool
	Distros       []string
	ListErr       error
	GuestCommands map[string]bool
	DefaultDistro string

	// Behavior knobs.
	EnableErr           error
	InstallDistroErr    error
	SetDefaultErr       error
	PackageInstallErr   error
	FallbackInstallErr  error
	KernelInstallErr    error
	HealthyAfterInstall bool
	PresentAfterInstall bool
	RegisterAfterPolls  int // distro appears after this many list calls post-install
	GuestExitCode       int
	GuestExecErr        error

	// Recorded calls.
	EnabledFeatures   []string
	InstalledPackages []string
	KernelInstalls    []string
	FallbackCalls     int
	GuestScripts      []string
	listCalls         int
	pendingDistro     string
}

// NewSystemGateway creates a fake with empty state.
func NewSystemGateway() *SystemGateway {
	return &SystemGateway{
		Features:      make(map[string]bool),
		GuestCommands: make(map[string]bool),
	}
}

// FeatureEnabled returns the configured feature state.
func (g *SystemGateway) FeatureEnabled(_ context.Context, name string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FeatureErr != nil {
		return false, g.FeatureErr
	}
	return g.Features[name], nil
}

// EnableFeature records the enablement and flips the feature on.
func (g *SystemGateway) EnableFeature(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.EnableErr != nil {
		return g.EnableErr
	}
	g.EnabledFeatures = append(g.EnabledFeatures, name)
	g.Features[name] = true
	return nil
}

// RuntimePresent returns the configured presence.
func (g *SystemGateway) RuntimePresent(_ context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Present
}

// RuntimeHealthy returns the configured health.
func (g *SystemGateway) RuntimeHealthy(_ context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Healthy
}

// ListDistributions returns the registered distros, surfacing a pending
// install after the configured number of polls.
func (g *SystemGateway) ListDistributions(_ context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	if g.pendingDistro != "" {
		g.listCalls++
		if g.listCalls > g.RegisterAfterPolls {
			g.Distros = append(g.Distros, g.pendingDistro)
			g.pendingDistro = ""
		}
	}
	out := make([]string, len(g.Distros))
	copy(out, g.Distros)
	return out, nil
}

// InstallDistribution marks the distro pending registration.
func (g *SystemGateway) InstallDistribution(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.InstallDistroErr != nil {
		return g.InstallDistroErr
	}
	if g.RegisterAfterPolls < 0 {
		return nil // never registers
	}
	g.pendingDistro = name
	g.listCalls = 0
	return nil
}

// SetDefaultDistribution records the default.
func (g *SystemGateway) SetDefaultDistribution(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SetDefaultErr != nil {
		return g.SetDefaultErr
	}
	g.DefaultDistro = name
	return nil
}

// InstallRuntimePackage records the install and applies the post-install
// presence and health knobs.
func (g *SystemGateway) InstallRuntimePackage(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.InstalledPackages = append(g.InstalledPackages, path)
	if g.PackageInstallErr != nil {
		return g.PackageInstallErr
	}
	g.applyInstallEffects()
	return nil
}

// InstallRuntimeFallback records the fallback attempt.
func (g *SystemGateway) InstallRuntimeFallback(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.FallbackCalls++
	if g.FallbackInstallErr != nil {
		return g.FallbackInstallErr
	}
	g.applyInstallEffects()
	return nil
}

// InstallKernelUpdate records the kernel component install.
func (g *SystemGateway) InstallKernelUpdate(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.KernelInstalls = append(g.KernelInstalls, path)
	return g.KernelInstallErr
}

// ExecInGuest records the script path and returns the configured status.
func (g *SystemGateway) ExecInGuest(_ context.Context, _ string, scriptPath string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.GuestScripts = append(g.GuestScripts, scriptPath)
	if g.GuestExecErr != nil {
		return -1, g.GuestExecErr
	}
	return g.GuestExitCode, nil
}

// GuestHasCommand returns the configured guest command presence.
func (g *SystemGateway) GuestHasCommand(_ context.Context, _ string, command string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.GuestCommands[command]
}

func (g *SystemGateway) applyInstallEffects() {
	if g.PresentAfterInstall {
		g.Present = true
	}
	if g.HealthyAfterInstall {
		g.Present = true
		g.Healthy = true
	}
}

// Ensure SystemGateway implements ports.SystemGateway.
var _ ports.SystemGateway = (*SystemGateway)(nil)
