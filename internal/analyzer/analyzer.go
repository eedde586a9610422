package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nao1215/sitescope/internal/dom"
	"github.com/nao1215/sitescope/internal/model"
)

// ErrAnalyzerPanic wraps a panic raised inside an analyzer.
var ErrAnalyzerPanic = errors.New("analyzer panicked")

// Input is everything an analyzer may look at. Not every analyzer uses
// every field.
type Input struct {
	// Doc is the parsed page.
	Doc dom.Querier

	// CSS and JS are the successfully fetched resources, in document order.
	CSS []model.ResourceRecord
	JS  []model.ResourceRecord

	// Failed lists references that could not be fetched.
	Failed []model.FailedResource

	// Headers are the primary response headers.
	Headers http.Header
}

// Analyzer fills one section of the report.
type Analyzer interface {
	// Name identifies the analyzer in logs and errors.
	Name() string

	// Analyze writes its section into report.
	Analyze(ctx context.Context, in *Input, report *model.AnalysisReport) error
}

// Coordinator runs a fixed list of analyzers over the same input.
type Coordinator struct {
	analyzers []Analyzer
	logger    *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// NewCoordinator creates a Coordinator with every built-in analyzer
// registered.
func NewCoordinator(opts ...Option) *Coordinator {
	c := NewEmptyCoordinator(opts...)

	// Document content
	c.Register(NewKeywordAnalyzer())
	c.Register(NewHeadingAnalyzer())
	c.Register(NewMetadataAnalyzer())
	c.Register(NewImageAnalyzer())

	// Markup hygiene
	c.Register(NewInlineAnalyzer())
	c.Register(NewObsoleteTagAnalyzer())

	// Security
	c.Register(NewTabnabbingAnalyzer())
	c.Register(NewIframeAnalyzer())
	c.Register(NewResourceSecurityAnalyzer())
	c.Register(NewHeaderAnalyzer())

	return c
}

// NewEmptyCoordinator creates a Coordinator with no analyzers. Tests use it
// to register mocks.
func NewEmptyCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		analyzers: make([]Analyzer, 0, 10),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds an analyzer to the run list.
func (c *Coordinator) Register(a Analyzer) {
	c.analyzers = append(c.analyzers, a)
}

// Names returns the registered analyzer names in run order.
func (c *Coordinator) Names() []string {
	names := make([]string, len(c.analyzers))
	for i, a := range c.analyzers {
		names[i] = a.Name()
	}
	return names
}

// Run executes every analyzer. The first error or panic aborts the run; the
// report must then be discarded.
func (c *Coordinator) Run(ctx context.Context, in *Input, report *model.AnalysisReport) error {
	for _, a := range c.analyzers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.runOne(ctx, a, in, report); err != nil {
			return fmt.Errorf("%s: %w", a.Name(), err)
		}
		c.logger.Debug("analyzer finished", "analyzer", a.Name())
	}
	return nil
}

func (c *Coordinator) runOne(ctx context.Context, a Analyzer, in *Input, report *model.AnalysisReport) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAnalyzerPanic, r)
		}
	}()
	return a.Analyze(ctx, in, report)
}
