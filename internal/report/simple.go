package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nao1215/sitescope/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for the terminal.
// Severity labels are colored unless color is disabled.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose adds impact and recommendation lines to each finding.
	verbose bool

	palette map[model.Severity]*color.Color
	accent  *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor forces ANSI colors on or off. By default colors follow
// color.NoColor, which is off when stdout is not a terminal.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		for _, c := range w.colors() {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		palette: map[model.Severity]*color.Color{
			model.SeverityCritical: color.New(color.FgHiRed, color.Bold),
			model.SeverityHigh:     color.New(color.FgRed),
			model.SeverityMedium:   color.New(color.FgYellow),
			model.SeverityLow:      color.New(color.FgCyan),
			model.SeverityInfo:     color.New(color.FgWhite),
		},
		accent: color.New(color.FgGreen, color.Bold),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *SimpleWriter) colors() []*color.Color {
	out := []*color.Color{w.accent}
	for _, c := range w.palette {
		out = append(out, c)
	}
	return out
}

func (w *SimpleWriter) severity(s model.Severity) string {
	c, ok := w.palette[s]
	if !ok {
		return s.String()
	}
	return c.Sprint(s.String())
}

// Write outputs the full report: the severity digest followed by the
// content sections.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder
	summary := model.NewSummary(report)

	w.writeHeader(&sb, summary)
	w.writeSummary(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeKeywords(&sb, report)
	w.writeHeadings(&sb, report)
	w.writeMetadata(&sb, report)
	w.writeResources(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs only the severity digest.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeSummary(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         " + w.accent.Sprint("SITESCOPE REPORT") + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "URL:        %s\n", summary.URL)
	fmt.Fprintf(sb, "Title:      %s\n", summary.Title)
	fmt.Fprintf(sb, "Resources:  %d/%d retrieved\n", summary.ResourcesOK, summary.ResourcesTotal)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary *model.Summary) {
	section(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  %s: %d\n", w.severity(model.SeverityCritical), summary.CriticalCount)
	fmt.Fprintf(sb, "  %s:     %d\n", w.severity(model.SeverityHigh), summary.HighCount)
	fmt.Fprintf(sb, "  %s:   %d\n", w.severity(model.SeverityMedium), summary.MediumCount)
	fmt.Fprintf(sb, "  %s:      %d\n", w.severity(model.SeverityLow), summary.LowCount)
	fmt.Fprintf(sb, "  %s:     %d\n", w.severity(model.SeverityInfo), summary.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d findings\n\n", summary.TotalFindings())
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, summary *model.Summary) {
	if !summary.HasFindings() {
		if w.showEmpty {
			section(sb, "FINDINGS")
			sb.WriteString("  No findings.\n\n")
		}
		return
	}

	section(sb, "FINDINGS")
	for _, f := range summary.Findings {
		fmt.Fprintf(sb, "  [%s] %s\n", w.severity(f.Severity), f.Title)
		if f.Value != "" {
			fmt.Fprintf(sb, "      %s\n", truncate(f.Value, 100))
		}
		if w.verbose {
			if f.Impact != "" {
				fmt.Fprintf(sb, "      Impact: %s\n", f.Impact)
			}
			if f.Recommendation != "" {
				fmt.Fprintf(sb, "      Fix:    %s\n", f.Recommendation)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeKeywords(sb *strings.Builder, report *model.AnalysisReport) {
	if len(report.Keywords) == 0 && !w.showEmpty {
		return
	}
	section(sb, "TOP KEYWORDS")
	for i, kw := range report.Keywords {
		fmt.Fprintf(sb, "  %2d. %-20s %d\n", i+1, kw.Word, kw.Count)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeadings(sb *strings.Builder, report *model.AnalysisReport) {
	section(sb, "HEADINGS")
	for _, level := range model.HeadingLevels {
		group := report.Headings[level]
		if group.Count == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "  %s (%d)\n", strings.ToUpper(level), group.Count)
		if w.verbose {
			for _, text := range group.Texts {
				fmt.Fprintf(sb, "      %s\n", truncate(text, 80))
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeMetadata(sb *strings.Builder, report *model.AnalysisReport) {
	section(sb, "METADATA")
	m := report.Metadata
	fmt.Fprintf(sb, "  description: %s\n", truncate(m.Description, 80))
	fmt.Fprintf(sb, "  keywords:    %s\n", truncate(m.Keywords, 80))
	fmt.Fprintf(sb, "  author:      %s\n", m.Author)
	fmt.Fprintf(sb, "  charset:     %s\n", m.Charset)
	ogImage := "-"
	if m.OGImage != nil {
		ogImage = *m.OGImage
	}
	fmt.Fprintf(sb, "  og:image:    %s\n", ogImage)
	fmt.Fprintf(sb, "  images:      %d total, %d without alt (%.2f%%)\n",
		report.Images.Total, report.Images.WithoutAlt, report.Images.Percent)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResources(sb *strings.Builder, report *model.AnalysisReport) {
	if report.TotalResources == 0 && !w.showEmpty {
		return
	}
	section(sb, "EXTERNAL RESOURCES")
	for _, r := range report.CSSFiles {
		fmt.Fprintf(sb, "  %-28s %s\n", r.ShortLabel, r.URL)
	}
	for _, r := range report.JSFiles {
		fmt.Fprintf(sb, "  %-28s %s\n", r.ShortLabel, r.URL)
	}
	for _, f := range report.FailedResources {
		fmt.Fprintf(sb, "  %-28s %s\n", fmt.Sprintf("FAILED (%s)", f.Kind), f.URL)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
