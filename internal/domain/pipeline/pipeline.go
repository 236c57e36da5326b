package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/wslup/internal/domain/probe"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Prober produces a fresh snapshot of installation state. It never fails;
// inspection errors degrade to "absent/unhealthy" inside the snapshot.
type Prober interface {
	Inspect(ctx context.Context) probe.Snapshot
}

// Pipeline walks an immutable ordered sequence of steps. Steps whose
// precondition is already satisfied are skipped in the same invocation, so
// the pipeline is safe to restart from the top every time rather than
// resuming from a saved offset.
type Pipeline struct {
	steps  []Step
	prober Prober
	store  Store
	log    ports.Logger
}

// New creates a Pipeline over the given steps, in execution order.
func New(prober Prober, store Store, log ports.Logger, steps ...Step) *Pipeline {
	return &Pipeline{
		steps:  steps,
		prober: prober,
		store:  store,
		log:    log,
	}
}

// Run executes at most the steps still needed and maps the first decisive
// step outcome to a process-level Outcome. A reboot-requiring step persists
// a resume marker and halts; failures halt without advancing; successful
// steps chain through to the next stage after a fresh probe.
func (p *Pipeline) Run(ctx context.Context) Outcome {
	if marker, err := p.store.Load(ctx); err == nil {
		p.log.Info(ctx, "resuming after reboot",
			ports.F("stage", marker.Stage.String()),
			ports.F("marked_at", marker.Time.Format(time.RFC3339)))
	} else if !errors.Is(err, ErrNoMarker) {
		p.log.Warn(ctx, "resume marker unreadable, restarting from probe", ports.F("error", err.Error()))
	}

	snap := p.prober.Inspect(ctx)
	applied := false

	for _, step := range p.steps {
		if !step.Check(snap) {
			p.log.Debug(ctx, "step satisfied, skipping", ports.F("step", step.ID().String()))
			continue
		}

		p.log.Info(ctx, "applying step", ports.F("step", step.ID().String()))
		result := step.Apply(ctx)
		p.log.Info(ctx, "step finished",
			ports.F("step", step.ID().String()),
			ports.F("outcome", result.String()))

		switch {
		case result.IsRebootRequired():
			m := Marker{Stage: step.ID(), Time: time.Now().UTC()}
			if err := p.store.Save(ctx, m); err != nil {
				p.log.Error(ctx, "failed to persist resume marker", ports.F("error", err.Error()))
			}
			return Outcome{Kind: OutcomeRebootRequired, Stage: step.ID()}

		case result.IsFatal():
			p.clearMarker(ctx)
			return Outcome{Kind: OutcomeFailed, Stage: step.ID(), Err: result.Err(), Fatal: true}

		case result.IsRetryable():
			return Outcome{Kind: OutcomeFailed, Stage: step.ID(), Err: result.Err()}
		}

		applied = true
		// Re-probe rather than trusting the step's claimed result: external
		// state can change between steps and redundant invocations may race.
		snap = p.prober.Inspect(ctx)
	}

	p.clearMarker(ctx)
	if applied {
		return Outcome{Kind: OutcomeCompleted}
	}
	return Outcome{Kind: OutcomeAlreadySatisfied}
}

// Plan evaluates every step's precondition against a single fresh snapshot
// and returns the IDs of steps that would run. Because later preconditions
// depend on earlier steps' side effects, this is a lower bound on the work a
// real run performs, suitable for dry-run reporting.
func (p *Pipeline) Plan(ctx context.Context) []StepID {
	snap := p.prober.Inspect(ctx)
	pending := make([]StepID, 0, len(p.steps))
	for _, step := range p.steps {
		if step.Check(snap) {
			pending = append(pending, step.ID())
		}
	}
	return pending
}

func (p *Pipeline) clearMarker(ctx context.Context) {
	if err := p.store.Clear(ctx); err != nil {
		p.log.Warn(ctx, "failed to clear resume marker", ports.F("error", err.Error()))
	}
}
