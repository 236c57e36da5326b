package pipeline

// resultKind enumerates the closed set of step outcomes.
type resultKind string

const (
	kindSuccess        resultKind = "success"
	kindRebootRequired resultKind = "reboot-required"
	kindRetryable      resultKind = "retryable-failure"
	kindFatal          resultKind = "fatal-failure"
)

// Result captures the outcome of a single step invocation. Exactly one of
// the four outcome kinds applies; failures carry the causing error.
type Result struct {
	kind resultKind
	err  error
}

// Success returns a Result indicating the step completed its work.
func Success() Result {
	return Result{kind: kindSuccess}
}

// RebootRequired returns a Result indicating the step's changes only take
// effect after an OS reboot.
func RebootRequired() Result {
	return Result{kind: kindRebootRequired}
}

// Retryable returns a Result for a failure the caller may safely retry by
// re-invoking the whole pipeline.
func Retryable(err error) Result {
	return Result{kind: kindRetryable, err: err}
}

// Fatal returns a Result for an unexpected state that must be surfaced to
// the user rather than retried silently.
func Fatal(err error) Result {
	return Result{kind: kindFatal, err: err}
}

// IsSuccess reports whether the step completed.
func (r Result) IsSuccess() bool {
	return r.kind == kindSuccess
}

// IsRebootRequired reports whether the step requires an OS reboot.
func (r Result) IsRebootRequired() bool {
	return r.kind == kindRebootRequired
}

// IsRetryable reports whether the step failed in a retryable way.
func (r Result) IsRetryable() bool {
	return r.kind == kindRetryable
}

// IsFatal reports whether the step failed in an unrecoverable way.
func (r Result) IsFatal() bool {
	return r.kind == kindFatal
}

// Err returns the failure cause, or nil for success and reboot outcomes.
func (r Result) Err() error {
	return r.err
}

// String returns the outcome kind.
func (r Result) String() string {
	return string(r.kind)
}
