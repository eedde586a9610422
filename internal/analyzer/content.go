package analyzer

import (
	"context"
	"math"
	"strings"

	"github.com/nao1215/sitescope/internal/dom"
	"github.com/nao1215/sitescope/internal/keyword"
	"github.com/nao1215/sitescope/internal/model"
)

// KeywordAnalyzer ranks the most frequent meaningful words of the visible
// text.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer creates a KeywordAnalyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer { return &KeywordAnalyzer{} }

// Name returns the analyzer name.
func (a *KeywordAnalyzer) Name() string { return "keywords" }

// Analyze fills report.Keywords.
func (a *KeywordAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	report.Keywords = keyword.TopKeywords(in.Doc.VisibleTexts())
	return nil
}

// HeadingAnalyzer records count and text of every h1..h6.
type HeadingAnalyzer struct{}

// NewHeadingAnalyzer creates a HeadingAnalyzer.
func NewHeadingAnalyzer() *HeadingAnalyzer { return &HeadingAnalyzer{} }

// Name returns the analyzer name.
func (a *HeadingAnalyzer) Name() string { return "headings" }

// Analyze fills report.Headings. All six levels are always present.
func (a *HeadingAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	headings := make(map[string]model.HeadingGroup, len(model.HeadingLevels))
	for _, level := range model.HeadingLevels {
		found := in.Doc.FindAll(level, nil)
		texts := make([]string, 0, len(found))
		for _, h := range found {
			texts = append(texts, h.Text())
		}
		headings[level] = model.HeadingGroup{Count: len(found), Texts: texts}
	}
	report.Headings = headings
	return nil
}

// MetadataAnalyzer extracts the SEO meta tags.
type MetadataAnalyzer struct{}

// NewMetadataAnalyzer creates a MetadataAnalyzer.
func NewMetadataAnalyzer() *MetadataAnalyzer { return &MetadataAnalyzer{} }

// Name returns the analyzer name.
func (a *MetadataAnalyzer) Name() string { return "metadata" }

// Analyze fills report.Metadata. For description, keywords and author the
// first meta tag whose name matches case-insensitively and whose content
// is non-empty wins.
func (a *MetadataAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	meta := model.NewMetadata()
	metas := in.Doc.FindAll("meta", nil)

	set := map[string]bool{}
	for _, m := range metas {
		name := strings.ToLower(m.AttrOr("name", ""))
		content := m.AttrOr("content", "")
		if content == "" || set[name] {
			continue
		}
		switch name {
		case "description":
			meta.Description = strings.TrimSpace(content)
		case "keywords":
			meta.Keywords = strings.TrimSpace(content)
		case "author":
			meta.Author = strings.TrimSpace(content)
		default:
			continue
		}
		set[name] = true
	}

	if cs := in.Doc.FindAll("meta", func(e dom.Element) bool { return e.HasAttr("charset") }); len(cs) > 0 {
		meta.Charset = cs[0].AttrOr("charset", model.NotFound)
	}

	if !set["description"] {
		if og := firstByProperty(metas, "og:description"); og != nil {
			if content := og.AttrOr("content", ""); content != "" {
				meta.Description = model.OGDescriptionPrefix + strings.TrimSpace(content)
			}
		}
	}

	if og := firstByProperty(metas, "og:image"); og != nil {
		if content := og.AttrOr("content", ""); content != "" {
			meta.OGImage = &content
		}
	}

	report.Metadata = meta
	return nil
}

func firstByProperty(metas []dom.Element, property string) *dom.Element {
	for i := range metas {
		if metas[i].AttrOr("property", "") == property {
			return &metas[i]
		}
	}
	return nil
}

// ImageAnalyzer measures alt-text coverage.
type ImageAnalyzer struct{}

// NewImageAnalyzer creates an ImageAnalyzer.
func NewImageAnalyzer() *ImageAnalyzer { return &ImageAnalyzer{} }

// Name returns the analyzer name.
func (a *ImageAnalyzer) Name() string { return "images" }

// Analyze fills report.Images. An alt that is missing or only whitespace
// counts as missing.
func (a *ImageAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	images := in.Doc.FindAll("img", nil)
	withoutAlt := 0
	for _, img := range images {
		if strings.TrimSpace(img.AttrOr("alt", "")) == "" {
			withoutAlt++
		}
	}
	report.Images = model.ImageAudit{
		Total:      len(images),
		WithoutAlt: withoutAlt,
		Percent:    percent(withoutAlt, len(images)),
	}
	return nil
}

// percent returns part/total*100 rounded to two decimals, or 0 for an
// empty total.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
