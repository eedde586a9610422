package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitescope/internal/model"
)

// MarkdownWriter outputs reports as Markdown, suitable for issues, pull
// requests and wikis. Severity distribution is drawn as a mermaid pie chart.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full report.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := model.NewSummary(report)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary)
	w.writeFindings(md, summary)
	w.writeKeywords(md, report)
	w.writeHeadings(md, report)
	w.writeResources(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the severity digest.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary)
	w.writeFindings(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("SiteScope Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", summary.URL},
			{"Title", summary.Title},
			{"Resources retrieved", fmt.Sprintf("%d/%d", summary.ResourcesOK, summary.ResourcesTotal)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"Critical", strconv.Itoa(summary.CriticalCount)},
			{"High", strconv.Itoa(summary.HighCount)},
			{"Medium", strconv.Itoa(summary.MediumCount)},
			{"Low", strconv.Itoa(summary.LowCount)},
			{"Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", fmt.Sprintf("**%d**", summary.TotalFindings())},
		},
	})
	md.PlainText("")

	if summary.HasFindings() {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	counts := []struct {
		label string
		n     int
	}{
		{"Critical", summary.CriticalCount},
		{"High", summary.HighCount},
		{"Medium", summary.MediumCount},
		{"Low", summary.LowCount},
		{"Info", summary.InfoCount},
	}
	for _, c := range counts {
		if c.n > 0 {
			chart.LabelAndIntValue(c.label, uint64(c.n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.CriticalCount > 0:
		md.Cautionf("%d critical finding(s). The page embeds content it does not control.", summary.CriticalCount)
	case summary.HighCount > 0:
		md.Warningf("%d high severity finding(s). Core protections are missing.", summary.HighCount)
	case summary.MediumCount > 0:
		md.Importantf("%d medium severity finding(s) should be reviewed.", summary.MediumCount)
	case summary.HasFindings():
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No issues detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Findings")
	md.PlainText("")

	if !summary.HasFindings() {
		md.PlainText("No findings detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Findings))
	for _, f := range summary.Findings {
		value := f.Value
		if value == "" {
			value = "-"
		}
		rows = append(rows, []string{
			f.SeverityText,
			f.Title,
			truncate(value, 60),
			truncate(f.Recommendation, 60),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Title", "Value", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	seen := make(map[string]bool)
	for _, f := range summary.Findings {
		if f.Impact == "" || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		md.Details(f.Title, f.Impact)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeKeywords(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Top Keywords")
	md.PlainText("")

	if len(report.Keywords) == 0 {
		md.PlainText("No keywords found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Keywords))
	for _, kw := range report.Keywords {
		rows = append(rows, []string{kw.Word, strconv.Itoa(kw.Count)})
	}
	md.Table(markdown.TableSet{Header: []string{"Keyword", "Count"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeHeadings(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Heading Structure")
	md.PlainText("")

	rows := make([][]string, 0, len(model.HeadingLevels))
	for _, level := range model.HeadingLevels {
		group := report.Headings[level]
		first := "-"
		if len(group.Texts) > 0 {
			first = truncate(group.Texts[0], 60)
		}
		rows = append(rows, []string{level, strconv.Itoa(group.Count), first})
	}
	md.Table(markdown.TableSet{Header: []string{"Level", "Count", "First"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeResources(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("External Resources")
	md.PlainText("")

	if report.TotalResources == 0 {
		md.PlainText("No external stylesheets or scripts referenced.")
		md.PlainText("")
		return
	}

	var items []string
	for _, r := range report.CSSFiles {
		items = append(items, fmt.Sprintf("%s (%s)", r.ShortLabel, r.URL))
	}
	for _, r := range report.JSFiles {
		items = append(items, fmt.Sprintf("%s (%s)", r.ShortLabel, r.URL))
	}
	for _, f := range report.FailedResources {
		items = append(items, fmt.Sprintf("FAILED %s (%s)", f.Kind, f.URL))
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [SiteScope](https://github.com/nao1215/sitescope)*")
}
