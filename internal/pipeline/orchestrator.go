package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitescope/internal/analyzer"
	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/model"
)

// Recorder receives the outcome of each analysis. metrics.Registry
// implements it.
type Recorder interface {
	ObserveAnalysis(state string, elapsed time.Duration)
}

// Orchestrator builds and runs the standard four-step pipeline.
type Orchestrator struct {
	fetcher     Fetcher
	coordinator *analyzer.Coordinator
	concurrency int
	logger      *slog.Logger
	recorder    Recorder
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets the logger shared by the pipeline and steps.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithRecorder sets the analysis outcome recorder.
func WithRecorder(r Recorder) OrchestratorOption {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithCoordinator replaces the default analyzer battery.
func WithCoordinator(c *analyzer.Coordinator) OrchestratorOption {
	return func(o *Orchestrator) { o.coordinator = c }
}

// WithConcurrency bounds parallel resource downloads per analysis.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// NewOrchestrator creates an Orchestrator around fetcher.
func NewOrchestrator(fetcher Fetcher, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher:     fetcher,
		concurrency: config.DefaultResourceConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.coordinator == nil {
		o.coordinator = analyzer.NewCoordinator(analyzer.WithLogger(o.logger))
	}
	return o
}

// NewPipeline returns a fresh pipeline with the fetch, parse, extract and
// analyze steps.
func (o *Orchestrator) NewPipeline() *Pipeline {
	p := New(WithLogger(o.logger))
	p.AddSteps(
		NewFetchStep(o.fetcher),
		NewParseStep(),
		NewExtractResourcesStep(o.fetcher,
			WithResourceConcurrency(o.concurrency),
			WithExtractLogger(o.logger),
		),
		NewAnalyzeStep(o.coordinator),
	)
	return p
}

// Analyze runs one analysis of target. It returns either a complete
// report or an *AnalysisError, never both.
func (o *Orchestrator) Analyze(ctx context.Context, target string) (*model.AnalysisReport, error) {
	run := NewRun(target)
	start := time.Now()
	err := o.NewPipeline().Execute(ctx, run)
	if o.recorder != nil {
		o.recorder.ObserveAnalysis(run.State.String(), time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return run.Report, nil
}
