package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wslup/internal/adapters/command"
	"github.com/felixgeelhaar/wslup/internal/adapters/download"
	"github.com/felixgeelhaar/wslup/internal/adapters/statestore"
	"github.com/felixgeelhaar/wslup/internal/adapters/wsl"
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/steps"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the staged installation pipeline",
	Long: `Install walks the installation stages in order, executing only the ones
the current system state still needs:

  1. enable-os-features      enable required optional Windows features
  2. install-runtime         install the WSL runtime package
  3. install-distribution    register the target distribution
  4. install-toolchain       provision the guest runtime and application

Each run prints exactly one status marker to stdout (ALREADY_SATISFIED,
INSTALLED, REBOOT_REQUIRED, or ERROR: <detail>) and exits 0 on success,
3010 when a reboot is required, 1 on a retryable failure, and 2 on a fatal
one. Re-running after a failure or reboot is always safe.`,
	RunE: runInstall,
}

var installDryRun bool

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "report pending stages without changing the system")

	rootCmd.AddCommand(installCmd)
}

func runInstall(_ *cobra.Command, _ []string) (retErr error) {
	// Last-resort guard: an escaped fault must still surface as a structured
	// marker and exit code, never an unstructured crash.
	defer func() {
		if r := recover(); r != nil {
			detail := fmt.Sprintf("internal fault: %v", r)
			_, _ = fmt.Fprintln(os.Stdout, markerErrorPrefix+detail)
			retErr = &ExitCodeError{Code: exitFatal, msg: detail}
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		printError(err)
		return reportSetupError(os.Stdout, err)
	}

	log := newLogger()
	ctx := context.Background()

	store, err := statestore.Default()
	if err != nil {
		printError(err)
		return reportSetupError(os.Stdout, err)
	}

	pipe := buildPipeline(cfg, store, log)

	if installDryRun {
		pending := pipe.Plan(ctx)
		if len(pending) == 0 {
			fmt.Println(markerAlreadySatisfied)
			return nil
		}
		for _, id := range pending {
			fmt.Printf("would run: %s\n", id)
		}
		return nil
	}

	return reportOutcome(os.Stdout, pipe.Run(ctx))
}

// buildPipeline wires the production adapters into the fixed stage order.
func buildPipeline(cfg *config.Config, store pipeline.Store, log ports.Logger) *pipeline.Pipeline {
	runner := command.NewRealRunner()
	gateway := wsl.NewGateway(runner, log)
	downloader := download.NewHTTPDownloader(cfg.DownloadRetries, log)
	prober := probe.New(gateway, cfg.Features, cfg.Distro, guestComponents(cfg), log)

	return pipeline.New(prober, store, log,
		steps.NewFeaturesStep(gateway, cfg.Features, log),
		steps.NewRuntimeStep(gateway, downloader, cfg.Features, cfg.RuntimePackageURL, cfg.KernelUpdateURL, log),
		steps.NewDistributionStep(gateway, cfg.Distro, cfg.PollInterval(), cfg.RegistrationWait(), log),
		steps.NewToolchainStep(gateway, cfg.Distro, cfg.GuestPackages, cfg.AppPackage, cfg.AppBinary, guestComponents(cfg), log),
	)
}

// guestComponents lists the guest commands whose presence marks provisioning
// complete.
func guestComponents(cfg *config.Config) []string {
	var components []string
	if cfg.LanguageBinary != "" {
		components = append(components, cfg.LanguageBinary)
	}
	if cfg.AppBinary != "" {
		components = append(components, cfg.AppBinary)
	}
	return components
}
