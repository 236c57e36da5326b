// Package wsl implements the SystemGateway over the real host tools:
// wsl.exe for the subsystem runtime, dism.exe for optional features,
// powershell.exe and msiexec.exe for package installs.
package wsl

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

const (
	wslExe        = "wsl.exe"
	dismExe       = "dism.exe"
	powershellExe = "powershell.exe"
	msiexecExe    = "msiexec.exe"

	// ERROR_SUCCESS_REBOOT_REQUIRED: the operation succeeded and takes
	// effect after a reboot.
	rebootExitCode = 3010
)

// Gateway is the production SystemGateway.
type Gateway struct {
	runner   ports.CommandRunner
	log      ports.Logger
	lookPath func(string) (string, error)
}

// NewGateway creates a Gateway over the given command runner.
func NewGateway(runner ports.CommandRunner, log ports.Logger) *Gateway {
	return &Gateway{
		runner:   runner,
		log:      log,
		lookPath: exec.LookPath,
	}
}

// FeatureEnabled queries dism for the feature state.
func (g *Gateway) FeatureEnabled(ctx context.Context, name string) (bool, error) {
	result, err := g.runner.Run(ctx, dismExe, "/online", "/get-featureinfo", "/featurename:"+name)
	if err != nil {
		return false, fmt.Errorf("dism query failed: %w", err)
	}
	if !result.Success() {
		return false, fmt.Errorf("dism query for %q exited with status %d", name, result.ExitCode)
	}
	return strings.Contains(decodeOutput(result.Stdout), "State : Enabled"), nil
}

// EnableFeature enables the feature without an immediate restart. dism
// reports the pending reboot through exit code 3010, which is success here.
func (g *Gateway) EnableFeature(ctx context.Context, name string) error {
	result, err := g.runner.Run(ctx, dismExe,
		"/online", "/enable-feature", "/featurename:"+name, "/all", "/norestart")
	if err != nil {
		return fmt.Errorf("dism enable failed: %w", err)
	}
	if !result.Success() && result.ExitCode != rebootExitCode {
		return fmt.Errorf("dism enable for %q exited with status %d: %s",
			name, result.ExitCode, strings.TrimSpace(decodeOutput(result.Stderr)))
	}
	return nil
}

// RuntimePresent checks for the runtime executable on PATH.
func (g *Gateway) RuntimePresent(_ context.Context) bool {
	_, err := g.lookPath(wslExe)
	return err == nil
}

// RuntimeHealthy invokes the runtime's status command. Presence without
// health is the common failure mode routing to a repair install.
func (g *Gateway) RuntimeHealthy(ctx context.Context) bool {
	result, err := g.runner.Run(ctx, wslExe, "--status")
	return err == nil && result.Success()
}

// ListDistributions returns the registered distribution names. A non-zero
// exit means no distributions are registered yet and reads as empty.
func (g *Gateway) ListDistributions(ctx context.Context) ([]string, error) {
	result, err := g.runner.Run(ctx, wslExe, "--list", "--quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	if !result.Success() {
		return nil, nil
	}

	var distros []string
	for _, line := range strings.Split(decodeOutput(result.Stdout), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			distros = append(distros, name)
		}
	}
	return distros, nil
}

// InstallDistribution triggers the runtime's install verb without launching
// the distribution's first-run shell.
func (g *Gateway) InstallDistribution(ctx context.Context, name string) error {
	result, err := g.runner.Run(ctx, wslExe, "--install", "--distribution", name, "--no-launch")
	if err != nil {
		return fmt.Errorf("install verb failed: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("install of %q exited with status %d: %s",
			name, result.ExitCode, strings.TrimSpace(decodeOutput(result.Stderr)))
	}
	return nil
}

// SetDefaultDistribution marks the named distribution as default.
func (g *Gateway) SetDefaultDistribution(ctx context.Context, name string) error {
	result, err := g.runner.Run(ctx, wslExe, "--set-default", name)
	if err != nil {
		return fmt.Errorf("set-default failed: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("set-default for %q exited with status %d", name, result.ExitCode)
	}
	return nil
}

// InstallRuntimePackage adds the downloaded MSIX package, the primary
// install mechanism.
func (g *Gateway) InstallRuntimePackage(ctx context.Context, path string) error {
	result, err := g.runner.Run(ctx, powershellExe,
		"-NoProfile", "-NonInteractive", "-Command",
		fmt.Sprintf(`Add-AppxPackage -Path "%s"`, path))
	if err != nil {
		return fmt.Errorf("package install failed: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("package install exited with status %d: %s",
			result.ExitCode, strings.TrimSpace(decodeOutput(result.Stderr)))
	}
	return nil
}

// InstallRuntimeFallback installs the runtime through the OS-native verb,
// without registering any distribution.
func (g *Gateway) InstallRuntimeFallback(ctx context.Context) error {
	result, err := g.runner.Run(ctx, wslExe, "--install", "--no-distribution")
	if err != nil {
		return fmt.Errorf("fallback install failed: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("fallback install exited with status %d: %s",
			result.ExitCode, strings.TrimSpace(decodeOutput(result.Stderr)))
	}
	return nil
}

// InstallKernelUpdate installs the kernel update MSI quietly. A pending
// reboot (3010) counts as success.
func (g *Gateway) InstallKernelUpdate(ctx context.Context, path string) error {
	result, err := g.runner.Run(ctx, msiexecExe, "/i", path, "/qn", "/norestart")
	if err != nil {
		return fmt.Errorf("msiexec failed: %w", err)
	}
	if !result.Success() && result.ExitCode != rebootExitCode {
		return fmt.Errorf("msiexec exited with status %d", result.ExitCode)
	}
	return nil
}

// ExecInGuest runs the script persisted at the given host path inside the
// distribution as root, translating the Windows path with wslpath. The
// returned int is the guest-side exit status.
func (g *Gateway) ExecInGuest(ctx context.Context, distro, scriptPath string) (int, error) {
	guestCmd := fmt.Sprintf(`exec sh "$(wslpath -u '%s')"`, shellEscape(scriptPath))
	result, err := g.runner.Run(ctx, wslExe, "--distribution", distro, "--user", "root", "--", "sh", "-c", guestCmd)
	if err != nil {
		return -1, fmt.Errorf("guest execution failed: %w", err)
	}
	return result.ExitCode, nil
}

// GuestHasCommand checks whether a command resolves on the guest's PATH.
func (g *Gateway) GuestHasCommand(ctx context.Context, distro, command string) bool {
	result, err := g.runner.Run(ctx, wslExe, "--distribution", distro, "--", "sh", "-c",
		fmt.Sprintf("command -v %s", shellEscape(command)))
	return err == nil && result.Success()
}

// shellEscape neutralizes single quotes for embedding in a single-quoted
// POSIX string.
func shellEscape(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

// Ensure Gateway implements ports.SystemGateway.
var _ ports.SystemGateway = (*Gateway)(nil)
