package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// RuntimeStepID identifies the subsystem runtime installation stage.
const RuntimeStepID pipeline.StepID = "install-runtime"

// RuntimeStep acquires the runtime package and installs it, falling back to
// the OS-native mechanism when the package install fails. The post-install
// health probe is authoritative, not the install mechanisms' exit codes.
type RuntimeStep struct {
	gateway    ports.SystemGateway
	downloader ports.Downloader
	features   []string
	packageURL string
	kernelURL  string
	tmpRoot    string // empty means the OS default temp dir
	log        ports.Logger
}

// NewRuntimeStep creates the runtime installation step.
func NewRuntimeStep(gateway ports.SystemGateway, downloader ports.Downloader, features []string, packageURL, kernelURL string, log ports.Logger) *RuntimeStep {
	return &RuntimeStep{
		gateway:    gateway,
		downloader: downloader,
		features:   features,
		packageURL: packageURL,
		kernelURL:  kernelURL,
		log:        log,
	}
}

// ID returns the step identifier.
func (s *RuntimeStep) ID() pipeline.StepID {
	return RuntimeStepID
}

// Check reports true once the required features are enabled but the runtime
// still fails its health check.
func (s *RuntimeStep) Check(snap probe.Snapshot) bool {
	return snap.FeaturesEnabled(s.features) && !snap.RuntimeHealthy
}

// Apply downloads and installs the runtime, then verifies health. All
// downloaded artifacts live in a temp dir removed on every exit path.
func (s *RuntimeStep) Apply(ctx context.Context) pipeline.Result {
	dir, err := os.MkdirTemp(s.tmpRoot, "wslup-runtime-")
	if err != nil {
		return pipeline.Retryable(fmt.Errorf("failed to create download dir: %w", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.log.Warn(ctx, "failed to remove download dir", ports.F("error", rmErr.Error()))
		}
	}()

	pkgPath := filepath.Join(dir, "runtime"+filepath.Ext(s.packageURL))
	if err := s.downloader.Download(ctx, s.packageURL, pkgPath); err != nil {
		return pipeline.Retryable(fmt.Errorf("failed to acquire runtime package: %w", err))
	}

	// The kernel update component is best-effort: the health probe below is
	// the authoritative verification, not this sub-step's exit code.
	s.installKernelUpdate(ctx, dir)

	if err := s.gateway.InstallRuntimePackage(ctx, pkgPath); err != nil {
		s.log.Warn(ctx, "package install failed, trying OS-native fallback", ports.F("error", err.Error()))
		if fbErr := s.gateway.InstallRuntimeFallback(ctx); fbErr != nil {
			return pipeline.Retryable(fmt.Errorf("all install mechanisms failed: %w", fbErr))
		}
	}

	if s.gateway.RuntimeHealthy(ctx) {
		return pipeline.Success()
	}
	if s.gateway.RuntimePresent(ctx) {
		return pipeline.Fatal(errors.New("runtime installed but still fails its health check"))
	}
	return pipeline.Retryable(errors.New("runtime not present after install"))
}

func (s *RuntimeStep) installKernelUpdate(ctx context.Context, dir string) {
	if s.kernelURL == "" {
		return
	}

	msiPath := filepath.Join(dir, "kernel-update.msi")
	if err := s.downloader.Download(ctx, s.kernelURL, msiPath); err != nil {
		s.log.Warn(ctx, "kernel update download failed", ports.F("error", err.Error()))
		return
	}
	if err := s.gateway.InstallKernelUpdate(ctx, msiPath); err != nil {
		s.log.Warn(ctx, "kernel update install failed", ports.F("error", err.Error()))
	}
}
