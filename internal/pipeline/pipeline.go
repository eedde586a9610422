package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitescope/internal/dom"
	"github.com/nao1215/sitescope/internal/fetch"
	"github.com/nao1215/sitescope/internal/model"
)

// Run carries one analysis through the pipeline.
type Run struct {
	// Target is the URL as given by the caller.
	Target string

	// State is the last state entered.
	State State

	// Page is set by the fetch step.
	Page *fetch.Page

	// Doc is set by the parse step.
	Doc *dom.Document

	// Resources holds one record per discovered reference, in document
	// order, set by the extract step.
	Resources []model.ResourceRecord

	// Report is filled progressively and valid only in StateAssembled.
	Report *model.AnalysisReport
}

// NewRun creates an idle run for target.
func NewRun(target string) *Run {
	return &Run{
		Target: target,
		State:  StateIdle,
		Report: model.NewAnalysisReport(target),
	}
}

// Step owns one transition of the state machine.
type Step interface {
	// Name returns the step's name for logging purposes.
	Name() string

	// State is the state entered while the step runs.
	State() State

	// Do performs the step. A non-nil error moves the run to StateFailed.
	Do(ctx context.Context, run *Run) error
}

// Pipeline executes steps in order over a Run.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in order. On success the run ends in
// StateAssembled; on the first error it ends in StateFailed, its report is
// dropped and the error is returned as an *AnalysisError.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", ctx.Err())
			return p.fail(run, ctx.Err())
		default:
		}

		run.State = step.State()
		p.logger.Debug("executing step", "step", step.Name(), "url", run.Target)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Warn("step failed", "step", step.Name(), "url", run.Target, "error", err)
			return p.fail(run, err)
		}
	}

	run.State = StateAssembled
	return nil
}

func (p *Pipeline) fail(run *Run, err error) error {
	run.State = StateFailed
	run.Report = nil
	return asProcessingError(err)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
