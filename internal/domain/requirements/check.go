// Package requirements implements the pre-pipeline requirements check. It is
// consulted by the driving shell before invoking the pipeline and is not
// itself part of it.
package requirements

import (
	"context"
	"fmt"
	"regexp"

	goversion "github.com/hashicorp/go-version"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Report is the structured record consumed by the driving shell, emitted as
// a single serialized JSON object.
type Report struct {
	OverallOk          bool     `json:"overallOk"`
	WindowsVersionOk   bool     `json:"windowsVersionOk"`
	IsAdmin            bool     `json:"isAdmin"`
	SubsystemInstalled bool     `json:"subsystemInstalled"`
	Messages           []string `json:"messages"`
}

// versionPattern extracts the dotted version from "ver" output, e.g.
// "Microsoft Windows [Version 10.0.22631.3155]".
var versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// Checker evaluates host requirements through injected collaborators.
type Checker struct {
	runner   ports.CommandRunner
	gateway  ports.SystemGateway
	minBuild *goversion.Version
	log      ports.Logger
}

// NewChecker creates a Checker enforcing the given minimum Windows build.
func NewChecker(runner ports.CommandRunner, gateway ports.SystemGateway, minBuild string, log ports.Logger) (*Checker, error) {
	min, err := goversion.NewVersion(minBuild)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum build %q: %w", minBuild, err)
	}
	return &Checker{
		runner:   runner,
		gateway:  gateway,
		minBuild: min,
		log:      log,
	}, nil
}

// Check evaluates all requirements. It never fails: individual probe errors
// read as "requirement not met" with an explanatory message.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{Messages: []string{}}

	report.WindowsVersionOk = c.windowsVersionOk(ctx, &report)
	report.IsAdmin = c.isAdmin(ctx, &report)
	report.SubsystemInstalled = c.gateway.RuntimePresent(ctx)

	report.OverallOk = report.WindowsVersionOk && report.IsAdmin
	return report
}

func (c *Checker) windowsVersionOk(ctx context.Context, report *Report) bool {
	result, err := c.runner.Run(ctx, "cmd.exe", "/c", "ver")
	if err != nil || !result.Success() {
		report.Messages = append(report.Messages, "unable to determine Windows version")
		return false
	}

	match := versionPattern.FindString(result.Stdout)
	if match == "" {
		report.Messages = append(report.Messages, "unrecognized Windows version output")
		return false
	}

	current, err := goversion.NewVersion(match)
	if err != nil {
		report.Messages = append(report.Messages, fmt.Sprintf("unparsable Windows version %q", match))
		return false
	}

	if current.LessThan(c.minBuild) {
		report.Messages = append(report.Messages,
			fmt.Sprintf("Windows build %s is below the required minimum %s", match, c.minBuild))
		return false
	}
	return true
}

func (c *Checker) isAdmin(ctx context.Context, report *Report) bool {
	// "net session" succeeds only in an elevated shell.
	result, err := c.runner.Run(ctx, "net.exe", "session")
	if err != nil || !result.Success() {
		report.Messages = append(report.Messages, "administrator privileges are required")
		return false
	}
	return true
}
