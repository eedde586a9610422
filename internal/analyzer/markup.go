package analyzer

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/sitescope/internal/dom"
	"github.com/nao1215/sitescope/internal/model"
)

// sampleRunes is the length of inline-script samples and tabnabbing texts.
const sampleRunes = 50

// obsoleteTags are presentational tags reported when present.
var obsoleteTags = []string{"font", "center", "strike", "u", "b", "i"}

// InlineAnalyzer counts embedded <style> and <script> blocks.
type InlineAnalyzer struct{}

// NewInlineAnalyzer creates an InlineAnalyzer.
func NewInlineAnalyzer() *InlineAnalyzer { return &InlineAnalyzer{} }

// Name returns the analyzer name.
func (a *InlineAnalyzer) Name() string { return "inline" }

// Analyze fills report.Inline. A script is inline when its src is missing
// or empty and it has non-blank text; each one contributes a sample of its
// first 50 characters followed by "...".
func (a *InlineAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	styles := in.Doc.FindAll("style", nil)
	scripts := in.Doc.FindAll("script", func(e dom.Element) bool {
		return e.AttrOr("src", "") == "" && e.Text() != ""
	})

	samples := make([]string, 0, len(scripts))
	for _, s := range scripts {
		samples = append(samples, prefixRunes(s.Text(), sampleRunes)+"...")
	}

	report.Inline = model.InlineContent{
		CSSBlocks: len(styles),
		JSBlocks:  len(scripts),
		JSSamples: samples,
	}
	return nil
}

// ObsoleteTagAnalyzer counts presentational tags.
type ObsoleteTagAnalyzer struct{}

// NewObsoleteTagAnalyzer creates an ObsoleteTagAnalyzer.
func NewObsoleteTagAnalyzer() *ObsoleteTagAnalyzer { return &ObsoleteTagAnalyzer{} }

// Name returns the analyzer name.
func (a *ObsoleteTagAnalyzer) Name() string { return "obsolete_tags" }

// Analyze fills report.ObsoleteTags with nonzero counts only.
func (a *ObsoleteTagAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	found := make(map[string]int)
	for _, tag := range obsoleteTags {
		if n := len(in.Doc.FindAll(tag, nil)); n > 0 {
			found[tag] = n
		}
	}
	report.ObsoleteTags = found
	return nil
}

// prefixRunes returns at most n runes of s.
func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// relTokens returns the lower-cased tokens of a rel attribute.
func relTokens(rel string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(rel)) {
		tokens[t] = true
	}
	return tokens
}
