package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// ToolchainStepID identifies the guest provisioning stage.
const ToolchainStepID pipeline.StepID = "install-toolchain"

// provisionTemplate is the POSIX payload executed inside the guest. "set -eu"
// makes any internal command failure propagate as a non-zero exit status, so
// the host can distinguish partial from full success.
var provisionTemplate = template.Must(template.New("provision").Parse(`#!/bin/sh
set -eu
export DEBIAN_FRONTEND=noninteractive
apt-get update -y
apt-get install -y {{.Packages}}
npm install -g {{.AppPackage}}
{{.AppBinary}} --version
`))

// ToolchainStep provisions the language runtime and the application inside
// the guest by executing a generated shell script across the host/guest
// boundary. The script is persisted to a temp file first to avoid the
// quoting hazards of inline piping.
type ToolchainStep struct {
	gateway    ports.SystemGateway
	distro     string
	packages   []string
	appPackage string
	appBinary  string
	components []string
	tmpRoot    string // empty means the OS default temp dir
	log        ports.Logger
}

// NewToolchainStep creates the guest provisioning step. components are the
// guest commands whose presence marks the step satisfied.
func NewToolchainStep(gateway ports.SystemGateway, distro string, packages []string, appPackage, appBinary string, components []string, log ports.Logger) *ToolchainStep {
	return &ToolchainStep{
		gateway:    gateway,
		distro:     distro,
		packages:   packages,
		appPackage: appPackage,
		appBinary:  appBinary,
		components: components,
		log:        log,
	}
}

// ID returns the step identifier.
func (s *ToolchainStep) ID() pipeline.StepID {
	return ToolchainStepID
}

// Check reports true once the distribution is registered but the tracked
// guest components are not all present.
func (s *ToolchainStep) Check(snap probe.Snapshot) bool {
	return snap.HasDistribution(s.distro) && !snap.GuestComponentsPresent(s.components)
}

// Apply renders the provisioning script, persists it to a temp file, runs it
// in the guest, and propagates the guest exit status. The temp file is
// removed on every exit path.
func (s *ToolchainStep) Apply(ctx context.Context) pipeline.Result {
	script, err := s.renderScript()
	if err != nil {
		return pipeline.Fatal(fmt.Errorf("failed to render provisioning script: %w", err))
	}

	root := s.tmpRoot
	if root == "" {
		root = os.TempDir()
	}
	scriptPath := filepath.Join(root, "wslup-provision-"+uuid.NewString()+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return pipeline.Retryable(fmt.Errorf("failed to write provisioning script: %w", err))
	}
	defer func() {
		if rmErr := os.Remove(scriptPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Warn(ctx, "failed to remove provisioning script", ports.F("error", rmErr.Error()))
		}
	}()

	exitCode, err := s.gateway.ExecInGuest(ctx, s.distro, scriptPath)
	if err != nil {
		return pipeline.Retryable(fmt.Errorf("guest execution failed: %w", err))
	}
	if exitCode != 0 {
		return pipeline.Retryable(fmt.Errorf("guest provisioning exited with status %d", exitCode))
	}
	return pipeline.Success()
}

func (s *ToolchainStep) renderScript() (string, error) {
	var b strings.Builder
	err := provisionTemplate.Execute(&b, struct {
		Packages   string
		AppPackage string
		AppBinary  string
	}{
		Packages:   strings.Join(s.packages, " "),
		AppPackage: s.appPackage,
		AppBinary:  s.appBinary,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
