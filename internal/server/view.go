package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/nao1215/sitescope/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// view renders the single-page UI.
type view struct {
	index *template.Template
}

func mustLoadView() *view {
	funcs := template.FuncMap{
		"headingLevels": func() []string { return model.HeadingLevels },
		"upper":         strings.ToUpper,
		"lower":         strings.ToLower,
	}
	t := template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html"))
	return &view{index: t}
}

// tagCount is one obsolete tag row, sorted by tag name.
type tagCount struct {
	Tag   string
	Count int
}

// pageData is what index.html renders.
type pageData struct {
	URL     string
	Error   string
	Report  *model.AnalysisReport
	Summary *model.Summary

	// ObsoleteTags is Report.ObsoleteTags in a stable order.
	ObsoleteTags []tagCount

	// ReportJSON is embedded for the assistant widget, which posts it back
	// as analysis_data. encoding/json escapes <, > and &, so the value is
	// safe inside a script element.
	ReportJSON template.JS
}

func (p *pageData) setReport(report *model.AnalysisReport) {
	p.Report = report
	p.Summary = model.NewSummary(report)

	for tag, n := range report.ObsoleteTags {
		p.ObsoleteTags = append(p.ObsoleteTags, tagCount{Tag: tag, Count: n})
	}
	sort.Slice(p.ObsoleteTags, func(i, j int) bool { return p.ObsoleteTags[i].Tag < p.ObsoleteTags[j].Tag })

	if data, err := json.Marshal(report); err == nil {
		p.ReportJSON = template.JS(data) //nolint:gosec // JSON with HTML-escaped characters
	}
}

// render executes the template into a buffer first so a template error
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page *pageData) {
	var buf bytes.Buffer
	if err := s.view.index.Execute(&buf, page); err != nil {
		s.requestLogger(r).Error("render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
