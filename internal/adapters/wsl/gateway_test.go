package wsl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/adapters/logging"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/testutil/mocks"
)

func newTestGateway(runner *mocks.CommandRunner) *Gateway {
	return NewGateway(runner, logging.NewNopLogger())
}

func TestGateway_FeatureEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{
			name:   "enabled feature",
			stdout: "Feature Name : VirtualMachinePlatform\n\nState : Enabled\n",
			want:   true,
		},
		{
			name:   "disabled feature",
			stdout: "Feature Name : VirtualMachinePlatform\n\nState : Disabled\n",
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := mocks.NewCommandRunner()
			runner.AddResult(dismExe,
				[]string{"/online", "/get-featureinfo", "/featurename:VirtualMachinePlatform"},
				ports.CommandResult{ExitCode: 0, Stdout: tt.stdout})

			enabled, err := newTestGateway(runner).FeatureEnabled(context.Background(), "VirtualMachinePlatform")
			require.NoError(t, err)
			assert.Equal(t, tt.want, enabled)
		})
	}
}

func TestGateway_FeatureEnabled_QueryFailure(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(dismExe,
		[]string{"/online", "/get-featureinfo", "/featurename:Bogus"},
		ports.CommandResult{ExitCode: 87})

	_, err := newTestGateway(runner).FeatureEnabled(context.Background(), "Bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 87")
}

func TestGateway_EnableFeature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exitCode int
		wantErr  bool
	}{
		{name: "clean success", exitCode: 0},
		{name: "pending reboot counts as success", exitCode: 3010},
		{name: "real failure", exitCode: 50, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := mocks.NewCommandRunner()
			runner.AddResult(dismExe,
				[]string{"/online", "/enable-feature", "/featurename:VirtualMachinePlatform", "/all", "/norestart"},
				ports.CommandResult{ExitCode: tt.exitCode})

			err := newTestGateway(runner).EnableFeature(context.Background(), "VirtualMachinePlatform")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGateway_RuntimePresent(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(mocks.NewCommandRunner())

	gw.lookPath = func(string) (string, error) { return `C:\Windows\system32\wsl.exe`, nil }
	assert.True(t, gw.RuntimePresent(context.Background()))

	gw.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	assert.False(t, gw.RuntimePresent(context.Background()))
}

func TestGateway_RuntimeHealthy(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--status"}, ports.CommandResult{ExitCode: 0})
	assert.True(t, newTestGateway(runner).RuntimeHealthy(context.Background()))

	runner = mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--status"}, ports.CommandResult{ExitCode: 1})
	assert.False(t, newTestGateway(runner).RuntimeHealthy(context.Background()))
}

func TestGateway_ListDistributions(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--list", "--quiet"},
		ports.CommandResult{ExitCode: 0, Stdout: "Ubuntu\r\nDebian\r\n\r\n"})

	distros, err := newTestGateway(runner).ListDistributions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ubuntu", "Debian"}, distros)
}

func TestGateway_ListDistributions_DecodesUTF16(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--list", "--quiet"},
		ports.CommandResult{ExitCode: 0, Stdout: "U\x00b\x00u\x00n\x00t\x00u\x00\r\x00\n\x00"})

	distros, err := newTestGateway(runner).ListDistributions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ubuntu"}, distros)
}

func TestGateway_ListDistributions_NonZeroExitMeansEmpty(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--list", "--quiet"}, ports.CommandResult{ExitCode: 1})

	distros, err := newTestGateway(runner).ListDistributions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, distros)
}

func TestGateway_InstallDistribution(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe,
		[]string{"--install", "--distribution", "Ubuntu", "--no-launch"},
		ports.CommandResult{ExitCode: 0})

	assert.NoError(t, newTestGateway(runner).InstallDistribution(context.Background(), "Ubuntu"))
}

func TestGateway_SetDefaultDistribution_Failure(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--set-default", "Ubuntu"}, ports.CommandResult{ExitCode: 1})

	err := newTestGateway(runner).SetDefaultDistribution(context.Background(), "Ubuntu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set-default")
}

func TestGateway_InstallRuntimePackage(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(powershellExe,
		[]string{"-NoProfile", "-NonInteractive", "-Command", `Add-AppxPackage -Path "C:\tmp\runtime.msixbundle"`},
		ports.CommandResult{ExitCode: 0})

	assert.NoError(t, newTestGateway(runner).InstallRuntimePackage(context.Background(), `C:\tmp\runtime.msixbundle`))
}

func TestGateway_InstallRuntimeFallback(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe, []string{"--install", "--no-distribution"}, ports.CommandResult{ExitCode: 0})

	assert.NoError(t, newTestGateway(runner).InstallRuntimeFallback(context.Background()))
}

func TestGateway_InstallKernelUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exitCode int
		wantErr  bool
	}{
		{name: "clean success", exitCode: 0},
		{name: "pending reboot counts as success", exitCode: 3010},
		{name: "failure", exitCode: 1603, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := mocks.NewCommandRunner()
			runner.AddResult(msiexecExe,
				[]string{"/i", `C:\tmp\kernel-update.msi`, "/qn", "/norestart"},
				ports.CommandResult{ExitCode: tt.exitCode})

			err := newTestGateway(runner).InstallKernelUpdate(context.Background(), `C:\tmp\kernel-update.msi`)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGateway_ExecInGuest(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe,
		[]string{"--distribution", "Ubuntu", "--user", "root", "--", "sh", "-c",
			`exec sh "$(wslpath -u 'C:\tmp\provision.sh')"`},
		ports.CommandResult{ExitCode: 100})

	status, err := newTestGateway(runner).ExecInGuest(context.Background(), "Ubuntu", `C:\tmp\provision.sh`)
	require.NoError(t, err)
	assert.Equal(t, 100, status)
}

func TestGateway_ExecInGuest_SpawnFailure(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddError(wslExe,
		[]string{"--distribution", "Ubuntu", "--user", "root", "--", "sh", "-c",
			`exec sh "$(wslpath -u 'C:\tmp\provision.sh')"`},
		errors.New("wsl.exe missing"))

	status, err := newTestGateway(runner).ExecInGuest(context.Background(), "Ubuntu", `C:\tmp\provision.sh`)
	require.Error(t, err)
	assert.Equal(t, -1, status)
}

func TestGateway_GuestHasCommand(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult(wslExe,
		[]string{"--distribution", "Ubuntu", "--", "sh", "-c", "command -v node"},
		ports.CommandResult{ExitCode: 0, Stdout: "/usr/bin/node\n"})

	gw := newTestGateway(runner)
	assert.True(t, gw.GuestHasCommand(context.Background(), "Ubuntu", "node"))
	assert.False(t, gw.GuestHasCommand(context.Background(), "Ubuntu", "absent"),
		"unstubbed lookup reads as missing")
}

func TestShellEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `C:\plain\path.sh`, shellEscape(`C:\plain\path.sh`))
	assert.Equal(t, `it'\''s`, shellEscape("it's"))
}
