package pipeline

// OutcomeKind enumerates the process-level signals a pipeline run produces.
type OutcomeKind string

const (
	// OutcomeAlreadySatisfied means every step's precondition was false.
	OutcomeAlreadySatisfied OutcomeKind = "already-satisfied"
	// OutcomeCompleted means at least one step ran and the pipeline reached
	// the end of the list.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeRebootRequired means a step performed a reboot-requiring action
	// and a resume marker was persisted.
	OutcomeRebootRequired OutcomeKind = "reboot-required"
	// OutcomeFailed means a step reported a retryable or fatal failure.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of one pipeline run.
type Outcome struct {
	Kind  OutcomeKind
	Stage StepID // step that determined the outcome, empty for terminal walks
	Err   error  // set when Kind is OutcomeFailed
	Fatal bool   // distinguishes fatal from retryable when Kind is OutcomeFailed
}

// Succeeded reports whether the run ended with the system fully installed.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeAlreadySatisfied || o.Kind == OutcomeCompleted
}
