package main

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/wslup/internal/domain/pipeline"
)

// Primary status markers consumed by the driving installer shell. Exactly
// one is printed to stdout per run.
const (
	markerAlreadySatisfied = "ALREADY_SATISFIED"
	markerRebootRequired   = "REBOOT_REQUIRED"
	markerInstalled        = "INSTALLED"
	markerErrorPrefix      = "ERROR: "
)

// Process exit codes. 3010 is ERROR_SUCCESS_REBOOT_REQUIRED, the Windows
// convention the driving installer's reboot-prompt flow expects.
const (
	exitRetryable      = 1
	exitFatal          = 2
	exitRebootRequired = 3010
)

// ExitCodeError carries a specific process exit code out of cobra.
type ExitCodeError struct {
	Code int
	msg  string
}

// Error returns the message.
func (e *ExitCodeError) Error() string {
	return e.msg
}

// reportSetupError surfaces a failure before the pipeline could start through
// the same marker contract as pipeline outcomes: the driving shell still sees
// exactly one ERROR marker and a fatal exit code.
func reportSetupError(w io.Writer, err error) error {
	detail := fmt.Sprintf("setup: %v", err)
	_, _ = fmt.Fprintln(w, markerErrorPrefix+detail)
	return &ExitCodeError{Code: exitFatal, msg: detail}
}

// reportOutcome prints the primary status marker for the outcome and returns
// the error that makes main exit with the matching code.
func reportOutcome(w io.Writer, o pipeline.Outcome) error {
	switch o.Kind {
	case pipeline.OutcomeAlreadySatisfied:
		_, _ = fmt.Fprintln(w, markerAlreadySatisfied)
		return nil

	case pipeline.OutcomeCompleted:
		_, _ = fmt.Fprintln(w, markerInstalled)
		return nil

	case pipeline.OutcomeRebootRequired:
		_, _ = fmt.Fprintln(w, markerRebootRequired)
		return &ExitCodeError{
			Code: exitRebootRequired,
			msg:  fmt.Sprintf("reboot required after stage %s", o.Stage),
		}

	default:
		detail := fmt.Sprintf("stage %s: %v", o.Stage, o.Err)
		_, _ = fmt.Fprintln(w, markerErrorPrefix+detail)
		code := exitRetryable
		if o.Fatal {
			code = exitFatal
		}
		return &ExitCodeError{Code: code, msg: detail}
	}
}
