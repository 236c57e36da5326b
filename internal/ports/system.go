package ports

import "context"

// SystemGateway abstracts the host OS surface the installer mutates and
// inspects: optional Windows features, the subsystem runtime, and registered
// distributions. Probe and steps depend on this interface rather than on
// ambient system calls, so tests can substitute a fake.
type SystemGateway interface {
	// FeatureEnabled reports whether the named optional OS feature is enabled.
	FeatureEnabled(ctx context.Context, name string) (bool, error)

	// EnableFeature enables the named optional OS feature without restarting.
	// Taking effect requires a reboot.
	EnableFeature(ctx context.Context, name string) error

	// RuntimePresent reports whether the subsystem runtime executable exists
	// at its well-known location.
	RuntimePresent(ctx context.Context) bool

	// RuntimeHealthy reports whether the runtime's status command succeeds.
	// Healthy implies present.
	RuntimeHealthy(ctx context.Context) bool

	// ListDistributions returns the names of registered distributions.
	ListDistributions(ctx context.Context) ([]string, error)

	// InstallDistribution requests installation of the named distribution
	// through the runtime's install verb. Registration may complete
	// asynchronously after this call returns.
	InstallDistribution(ctx context.Context, name string) error

	// SetDefaultDistribution marks the named distribution as the default.
	SetDefaultDistribution(ctx context.Context, name string) error

	// InstallRuntimePackage installs a downloaded runtime package using the
	// primary installation mechanism.
	InstallRuntimePackage(ctx context.Context, path string) error

	// InstallRuntimeFallback installs the runtime through the secondary
	// OS-native mechanism, used when the package install fails.
	InstallRuntimeFallback(ctx context.Context) error

	// InstallKernelUpdate installs the versioned kernel update component.
	// Callers treat its failure as best-effort.
	InstallKernelUpdate(ctx context.Context, path string) error

	// ExecInGuest runs a POSIX shell script, persisted at the given host
	// path, inside the named distribution and returns its exit status.
	ExecInGuest(ctx context.Context, distro, scriptPath string) (int, error)

	// GuestHasCommand reports whether the named command resolves on the
	// guest's PATH. Used for read-only sub-component probing; any failure
	// reads as absent.
	GuestHasCommand(ctx context.Context, distro, command string) bool
}
