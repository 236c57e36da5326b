package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wslup/internal/adapters/command"
	"github.com/felixgeelhaar/wslup/internal/adapters/wsl"
	"github.com/felixgeelhaar/wslup/internal/domain/requirements"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check host requirements before installing",
	Long: `Check evaluates the host against the installer's requirements (Windows
version, administrator privileges, subsystem presence) and emits the result
as a single JSON record on stdout for the driving shell to branch on.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError(err)
		return err
	}

	log := newLogger()
	runner := command.NewRealRunner()
	gateway := wsl.NewGateway(runner, log)

	checker, err := requirements.NewChecker(runner, gateway, cfg.MinWindowsBuild, log)
	if err != nil {
		printError(err)
		return err
	}

	report := checker.Check(context.Background())

	data, err := json.Marshal(report)
	if err != nil {
		printError(err)
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}
