package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/fetch"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>...",
		Short: "Analyze one or more web pages",
		Long: `Analyze fetches each page with its linked stylesheets and scripts and
reports SEO, accessibility and basic security findings.

Examples:
  # Analyze a single page
  sitescope analyze https://example.com

  # Analyze several pages, four at a time
  sitescope analyze -b 4 https://example.com https://example.org

  # JSON report (the same document the assistant accepts)
  sitescope analyze --json https://example.com -o report.json

  # Markdown report with a severity chart
  sitescope analyze --markdown https://example.com

Configuration file (.sitescope) example:
  defaults:
    userAgent: "sitescope-audit"
  sites:
    staging.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	addFetchFlags(cmd)

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("summary", false,
		"Print only the severity summary")
	cmd.Flags().Bool("no-color", false,
		"Disable colored text output")

	return cmd
}

// analyzeOptions holds output settings that are not part of Config.
type analyzeOptions struct {
	summaryOnly bool
	noColor     bool
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, opts, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateTargets(); err != nil {
		return err
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return runAnalyze(ctx, cmd, cfg, opts, logger)
}

// buildAnalyzeConfig creates a Config from cobra command flags.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, analyzeOptions, error) {
	var opts analyzeOptions
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, opts, err
	}
	if err := applyFetchFlags(cmd, cfg); err != nil {
		return nil, opts, err
	}

	flags := cmd.Flags()
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, opts, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, opts, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, opts, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, opts, err
	}
	if opts.summaryOnly, err = flags.GetBool("summary"); err != nil {
		return nil, opts, err
	}
	if opts.noColor, err = flags.GetBool("no-color"); err != nil {
		return nil, opts, err
	}

	cfg.Targets = args
	return cfg, opts, nil
}

// runAnalyze analyzes every target and writes the reports.
func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts analyzeOptions, logger *slog.Logger) error {
	fetcher, err := fetch.NewFetcherFromConfig(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}
	orchestrator := pipeline.NewOrchestrator(fetcher,
		pipeline.WithOrchestratorLogger(logger),
		pipeline.WithConcurrency(cfg.ResourceConcurrency),
	)

	out, closeOut, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	writer := newReportWriter(cfg, opts, out)
	status := cmd.ErrOrStderr()

	start := time.Now()
	bp := pipeline.NewBatchProcessor(orchestrator,
		pipeline.WithBatchSize(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	results, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(status, "Analysis error for %s: %v\n", r.Target, r.Err)
			continue
		}
		if err := writeReport(writer, r.Report, opts.summaryOnly); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", r.Target, err)
		}
	}
	fmt.Fprintf(status, "Analyzed %d of %d page(s) in %s\n",
		len(results)-failed, len(results), time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errAnalysesFailed, failed, len(results))
	}
	return nil
}

func writeReport(w report.Writer, r *model.AnalysisReport, summaryOnly bool) error {
	if summaryOnly {
		_, err := w.WriteSummary(model.NewSummary(r))
		return err
	}
	_, err := w.Write(r)
	return err
}

// newReportWriter picks the writer for the requested format.
func newReportWriter(cfg *config.Config, opts analyzeOptions, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		simpleOpts := []report.SimpleWriterOption{report.WithVerbose(cfg.Verbose)}
		if opts.noColor || cfg.ReportFile != "" {
			simpleOpts = append(simpleOpts, report.WithColor(false))
		}
		return report.NewSimpleWriter(out, simpleOpts...)
	}
}

// openOutput returns the report destination: path when set, otherwise
// fallback. Files are created 0600 since pages may be fetched with
// configured cookies.
func openOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
