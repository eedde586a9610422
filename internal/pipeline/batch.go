package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/model"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs a single analysis. *Orchestrator implements it.
type Analyzer interface {
	Analyze(ctx context.Context, target string) (*model.AnalysisReport, error)
}

// Result is the outcome for one target of a batch. Exactly one of Report
// and Err is set.
type Result struct {
	Target string
	Report *model.AnalysisReport
	Err    error
}

// BatchProcessor analyzes several targets concurrently.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithBatchSize sets the maximum number of concurrent analyses.
func WithBatchSize(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(a Analyzer, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyzer:    a,
		concurrency: config.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch analyzes every target and returns one Result per target in
// input order. A failed target does not stop the others; the error return
// is only set when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]Result, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	// Each goroutine writes only its own slot.
	results := make([]Result, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{Target: target, Err: ctx.Err()}
				return ctx.Err()
			default:
			}

			report, err := bp.analyzer.Analyze(ctx, target)
			results[i] = Result{Target: target, Report: report, Err: err}
			if err != nil {
				bp.logger.Warn("analysis failed", "url", target, "error", err)
				return nil
			}
			bp.logger.Info("analysis completed", "url", target, "index", i+1, "total", len(targets))
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return results, err
}
