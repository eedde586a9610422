package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/sitescope/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.AnalysisReport {
	report := model.NewAnalysisReport("https://example.com/")
	report.Title = "Inicio"
	report.Keywords = []model.KeywordCount{{Word: "canción", Count: 4}, {Word: "música", Count: 2}}
	report.Headings["h1"] = model.HeadingGroup{Count: 1, Texts: []string{"Bienvenidos"}}
	report.CSSFiles = []model.ResourceRecord{{
		URL:         "https://example.com/site.css",
		Kind:        model.KindCSS,
		Status:      model.StatusOK,
		DisplayName: "site.css",
		ShortLabel:  "Estilo: site.css",
	}}
	report.FailedResources = []model.FailedResource{{URL: "https://example.com/gone.js", Kind: model.KindJS}}
	report.OKResourceCount = 1
	report.TotalResources = 2
	report.Headers.XFO = "DENY"
	report.Iframes.Total = 1
	report.Iframes.RiskDomains = []string{model.IframeCriticalPrefix + "https://htmlpreview.github.io/?x"}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SITESCOPE REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "https://example.com/") {
			t.Error("expected output to contain the URL")
		}
		if !strings.Contains(output, "1/2 retrieved") {
			t.Error("expected output to contain resource counts")
		}
	})

	t.Run("writes severity summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SEVERITY SUMMARY") {
			t.Error("expected output to contain severity summary")
		}
		if !strings.Contains(output, "CRITICAL: 1") {
			t.Errorf("expected one critical finding, got:\n%s", output)
		}
		if !strings.Contains(output, "HIGH:     1") {
			t.Errorf("expected one high finding, got:\n%s", output)
		}
	})

	t.Run("writes content sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"TOP KEYWORDS", "canción", "HEADINGS", "H1 (1)", "METADATA", "Estilo: site.css", "FAILED (JS)"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("verbose adds impact and fix", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false), WithVerbose(true))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Impact:") || !strings.Contains(buf.String(), "Fix:") {
			t.Error("expected verbose details")
		}
	})

	t.Run("colors wrap severity labels", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(true))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected ANSI escapes when colors are enabled")
		}
	})
}

func TestSimpleWriterWriteSummary(t *testing.T) {
	t.Parallel()

	t.Run("clean page hides empty sections", func(t *testing.T) {
		t.Parallel()

		report := model.NewAnalysisReport("http://example.com/")
		report.Headers = model.HeaderFindings{CSP: "default-src 'self'", XFO: "DENY", HSTS: model.HSTSAbsent}

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.WriteSummary(model.NewSummary(report)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "FINDINGS") {
			t.Error("expected no findings section")
		}
		if !strings.Contains(output, "TOTAL:    0 findings") {
			t.Errorf("expected zero findings, got:\n%s", output)
		}
	})

	t.Run("show empty keeps sections", func(t *testing.T) {
		t.Parallel()

		report := model.NewAnalysisReport("http://example.com/")
		report.Headers = model.HeaderFindings{CSP: "x", XFO: "y", HSTS: model.HSTSAbsent}

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false), WithShowEmpty(true))
		if _, err := w.WriteSummary(model.NewSummary(report)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No findings.") {
			t.Error("expected empty findings section")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("report keeps wire keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		for _, key := range []string{"url", "titulo", "palabras_clave", "recursos_fallidos", "analisis_cabeceras", "analisis_tabnabbing"} {
			if _, ok := decoded[key]; !ok {
				t.Errorf("expected key %q", key)
			}
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("expected compact output")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"url\"") {
			t.Error("expected two-space indentation")
		}
	})

	t.Run("summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent("", "\t"))
		if _, err := w.WriteSummary(model.NewSummary(createTestReport())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.CriticalCount != 1 {
			t.Errorf("expected 1 critical, got %d", decoded.CriticalCount)
		}
		if decoded.Findings[0].Type != model.FindingIframeCritical {
			t.Errorf("expected critical finding first, got %q", decoded.Findings[0].Type)
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "v1.2.3")
	if _, err := w.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Version string         `json:"version"`
		Report  map[string]any `json:"report"`
		Summary model.Summary  `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("expected version, got %q", decoded.Version)
	}
	if decoded.Report["titulo"] != "Inicio" {
		t.Errorf("expected embedded report, got %v", decoded.Report["titulo"])
	}
	if decoded.Summary.TotalFindings() == 0 {
		t.Error("expected summary findings")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text, WithColor(false)), NewJSONWriter(&js))
		n, err := m.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected byte total %d, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to produce output")
		}

		text.Reset()
		js.Reset()
		if _, err := m.WriteSummary(model.NewSummary(createTestReport())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to produce summary output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(NewJSONWriter(failingWriter{}), NewJSONWriter(&after))
		if _, err := m.Write(createTestReport()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("full report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# SiteScope Report",
			"## Severity Summary",
			"```mermaid",
			"Finding Severity Distribution",
			"[!CAUTION]",
			"## Findings",
			"## Top Keywords",
			"canción",
			"## Heading Structure",
			"Bienvenidos",
			"## External Resources",
			"FAILED JS (https://example.com/gone.js)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("clean summary has tip and no chart", func(t *testing.T) {
		t.Parallel()

		report := model.NewAnalysisReport("http://example.com/")
		report.Headers = model.HeaderFindings{CSP: "x", XFO: "y", HSTS: model.HSTSAbsent}

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.WriteSummary(model.NewSummary(report)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart without findings")
		}
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected tip alert")
		}
		if !strings.Contains(output, "No findings detected.") {
			t.Error("expected empty findings text")
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "this is too long", max: 10, want: "this is..."},
		{in: "ñandúñandú", max: 6, want: "ñan..."},
		{in: "abcdef", max: 3, want: "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tt.in, tt.max, got, tt.want)
		}
	}
}
