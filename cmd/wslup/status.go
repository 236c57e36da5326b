package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wslup/internal/adapters/command"
	"github.com/felixgeelhaar/wslup/internal/adapters/wsl"
	"github.com/felixgeelhaar/wslup/internal/domain/probe"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current installation state",
	Long:  `Status probes the host read-only and prints what is installed so far.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError(err)
		return err
	}

	log := newLogger()
	runner := command.NewRealRunner()
	gateway := wsl.NewGateway(runner, log)
	prober := probe.New(gateway, cfg.Features, cfg.Distro, guestComponents(cfg), log)

	snap := prober.Inspect(context.Background())

	for _, name := range cfg.Features {
		fmt.Printf("feature %-40s %s\n", name, onOff(snap.Features[name]))
	}
	fmt.Printf("runtime present: %v\n", snap.RuntimePresent)
	fmt.Printf("runtime healthy: %v\n", snap.RuntimeHealthy)
	if len(snap.Distributions) == 0 {
		fmt.Println("distributions: none")
	} else {
		fmt.Printf("distributions: %v\n", snap.Distributions)
	}
	for _, name := range guestComponents(cfg) {
		fmt.Printf("guest %-20s %s\n", name, presentAbsent(snap.GuestComponents[name]))
	}
	return nil
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func presentAbsent(present bool) string {
	if present {
		return "present"
	}
	return "absent"
}
