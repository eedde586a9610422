package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/nao1215/sitescope/internal/analyzer"
	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/dom"
	"github.com/nao1215/sitescope/internal/fetch"
	"github.com/nao1215/sitescope/internal/model"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the subset of fetch.Fetcher the steps need.
type Fetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*fetch.Page, error)
	FetchResource(ctx context.Context, base *url.URL, ref string, kind model.ResourceKind) model.ResourceRecord
}

// FetchStep retrieves the primary page.
type FetchStep struct {
	fetcher Fetcher
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string { return "fetch" }

// State returns StateFetching.
func (s *FetchStep) State() State { return StateFetching }

// Do fetches run.Target. Any failure is a connectivity error.
func (s *FetchStep) Do(ctx context.Context, run *Run) error {
	page, err := s.fetcher.FetchPage(ctx, run.Target)
	if err != nil {
		return connectivityError(err)
	}
	run.Page = page
	run.Report.HTML = strings.TrimSpace(page.Body)
	return nil
}

// ParseStep builds the document tree and records the title.
type ParseStep struct{}

// NewParseStep creates a ParseStep.
func NewParseStep() *ParseStep { return &ParseStep{} }

// Name returns the step name.
func (s *ParseStep) Name() string { return "parse" }

// State returns StateParsing.
func (s *ParseStep) State() State { return StateParsing }

// Do parses run.Page.Body. Malformed markup is repaired, never rejected.
func (s *ParseStep) Do(_ context.Context, run *Run) error {
	doc, err := dom.ParseString(run.Page.Body)
	if err != nil {
		return err
	}
	run.Doc = doc
	if title, ok := doc.Title(); ok {
		run.Report.Title = title
	}
	return nil
}

// ExtractResourcesStep discovers linked stylesheets and scripts and
// downloads them concurrently.
type ExtractResourcesStep struct {
	fetcher     Fetcher
	concurrency int
	logger      *slog.Logger
}

// ExtractOption configures an ExtractResourcesStep.
type ExtractOption func(*ExtractResourcesStep)

// WithResourceConcurrency bounds parallel resource downloads.
func WithResourceConcurrency(n int) ExtractOption {
	return func(s *ExtractResourcesStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithExtractLogger sets the logger.
func WithExtractLogger(logger *slog.Logger) ExtractOption {
	return func(s *ExtractResourcesStep) { s.logger = logger }
}

// NewExtractResourcesStep creates an ExtractResourcesStep.
func NewExtractResourcesStep(fetcher Fetcher, opts ...ExtractOption) *ExtractResourcesStep {
	s := &ExtractResourcesStep{
		fetcher:     fetcher,
		concurrency: config.DefaultResourceConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractResourcesStep) Name() string { return "extract_resources" }

// State returns StateExtractingResources.
func (s *ExtractResourcesStep) State() State { return StateExtractingResources }

// reference is one discovered external resource.
type reference struct {
	ref  string
	kind model.ResourceKind
}

// discover lists stylesheet links, then script sources, each in document
// order. Empty references are skipped.
func discover(doc dom.Querier) []reference {
	var refs []reference
	for _, link := range doc.FindAll("link", isStylesheet) {
		if href := link.AttrOr("href", ""); href != "" {
			refs = append(refs, reference{ref: href, kind: model.KindCSS})
		}
	}
	for _, script := range doc.FindAll("script", nil) {
		if src := script.AttrOr("src", ""); src != "" {
			refs = append(refs, reference{ref: src, kind: model.KindJS})
		}
	}
	return refs
}

func isStylesheet(e dom.Element) bool {
	for _, token := range strings.Fields(strings.ToLower(e.AttrOr("rel", ""))) {
		if token == "stylesheet" {
			return true
		}
	}
	return false
}

// Do downloads every reference against the site root of the target.
// Failures are recorded in the report and never abort the run.
func (s *ExtractResourcesStep) Do(ctx context.Context, run *Run) error {
	refs := discover(run.Doc)
	base := fetch.SiteRoot(run.Page.URL)

	records := make([]model.ResourceRecord, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, r := range refs {
		g.Go(func() error {
			records[i] = s.fetcher.FetchResource(gctx, base, r.ref, r.kind)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	run.Resources = records
	report := run.Report
	report.TotalResources = len(refs)
	for _, rec := range records {
		switch {
		case rec.Failed():
			report.FailedResources = append(report.FailedResources, model.FailedResource{URL: rec.URL, Kind: rec.Kind})
		case rec.Kind == model.KindCSS:
			report.CSSFiles = append(report.CSSFiles, rec)
		default:
			report.JSFiles = append(report.JSFiles, rec)
		}
	}
	report.OKResourceCount = len(report.CSSFiles) + len(report.JSFiles)

	s.logger.Debug("resources extracted",
		"url", run.Target,
		"total", report.TotalResources,
		"ok", report.OKResourceCount,
		"failed", len(report.FailedResources),
	)
	return nil
}

// AnalyzeStep runs the analyzer battery.
type AnalyzeStep struct {
	coordinator *analyzer.Coordinator
}

// NewAnalyzeStep creates an AnalyzeStep.
func NewAnalyzeStep(coordinator *analyzer.Coordinator) *AnalyzeStep {
	return &AnalyzeStep{coordinator: coordinator}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string { return "analyze" }

// State returns StateAnalyzing.
func (s *AnalyzeStep) State() State { return StateAnalyzing }

// Do fills every analyzer section of the report.
func (s *AnalyzeStep) Do(ctx context.Context, run *Run) error {
	in := &analyzer.Input{
		Doc:     run.Doc,
		CSS:     run.Report.CSSFiles,
		JS:      run.Report.JSFiles,
		Failed:  run.Report.FailedResources,
		Headers: run.Page.Header,
	}
	return s.coordinator.Run(ctx, in, run.Report)
}
