package model

// Fallback strings written into the report when a page lacks the data.
const (
	// NoTitle replaces a missing <title>.
	NoTitle = "No se encontró título"

	// NotFound is the fallback for description, author and charset.
	NotFound = "No encontrado"

	// NotFoundPlural is the fallback for meta keywords.
	NotFoundPlural = "No encontradas"

	// OGDescriptionPrefix marks a description taken from og:description.
	OGDescriptionPrefix = "OG Description: "

	// NoHref replaces a missing href in tabnabbing entries.
	NoHref = "URL no definida"

	// IframeWithoutSrc is recorded for each iframe lacking src.
	IframeWithoutSrc = "iframe sin atributo src"

	// IframeCriticalPrefix and IframeAlertPrefix start dominios_riesgo entries.
	IframeCriticalPrefix = "CRÍTICO: "
	IframeAlertPrefix    = "ALERTA: "

	// ExecCommandPrefix starts riesgo_js_detectado entries for execCommand use.
	ExecCommandPrefix = "ALERTA OBSOLETA: "
)

// HeadingLevels lists the heading tags reported, in order.
var HeadingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// AnalysisReport is the result of analyzing one page.
//
// JSON keys are Spanish because the report is also the payload sent back
// to the assistant and rendered by the web view; they are a wire contract.
// Every section is always present: lists serialize as [] and maps as {},
// never null. NewAnalysisReport guarantees that.
type AnalysisReport struct {
	// URL is the analyzed address as given by the caller.
	URL string `json:"url"`

	// Title is the <title> text or NoTitle.
	Title string `json:"titulo"`

	// HTML is the full page source, trimmed.
	HTML string `json:"html_completo"`

	// CSSFiles holds stylesheets that were fetched successfully.
	CSSFiles []ResourceRecord `json:"css_archivos"`

	// JSFiles holds scripts that were fetched successfully.
	JSFiles []ResourceRecord `json:"js_archivos"`

	// Keywords is the top-10 visible word ranking.
	Keywords []KeywordCount `json:"palabras_clave"`

	// Metadata holds SEO meta tags.
	Metadata Metadata `json:"meta_datos"`

	// Headings maps h1..h6 to their count and texts.
	Headings map[string]HeadingGroup `json:"estructura_encabezados"`

	// OKResourceCount is len(CSSFiles) + len(JSFiles).
	OKResourceCount int `json:"conteo_recursos_ok"`

	// TotalResources is the number of external references discovered.
	TotalResources int `json:"total_recursos_ext"`

	// FailedResources lists references that could not be fetched.
	FailedResources []FailedResource `json:"recursos_fallidos"`

	Images       ImageAudit       `json:"analisis_imagenes"`
	Inline       InlineContent    `json:"contenido_inline"`
	ObsoleteTags map[string]int   `json:"etiquetas_obsoletas"`
	Security     SecurityFindings `json:"analisis_seguridad_basica"`
	Iframes      IframeAudit      `json:"analisis_iframes"`
	Headers      HeaderFindings   `json:"analisis_cabeceras"`
	Tabnabbing   []TabnabbingLink `json:"analisis_tabnabbing"`
}

// NewAnalysisReport returns a report with every section present and empty.
func NewAnalysisReport(url string) *AnalysisReport {
	headings := make(map[string]HeadingGroup, len(HeadingLevels))
	for _, level := range HeadingLevels {
		headings[level] = HeadingGroup{Texts: []string{}}
	}
	return &AnalysisReport{
		URL:             url,
		Title:           NoTitle,
		CSSFiles:        []ResourceRecord{},
		JSFiles:         []ResourceRecord{},
		Keywords:        []KeywordCount{},
		Metadata:        NewMetadata(),
		Headings:        headings,
		FailedResources: []FailedResource{},
		Inline:          InlineContent{JSSamples: []string{}},
		ObsoleteTags:    map[string]int{},
		Security: SecurityFindings{
			InsecureHTTP: []string{},
			RiskyJS:      []string{},
		},
		Iframes: IframeAudit{
			Insecure:    []string{},
			RiskDomains: []string{},
		},
		Headers:    HeaderFindings{CSP: CSPAbsent, XFO: XFOAbsent, HSTS: HSTSAbsent},
		Tabnabbing: []TabnabbingLink{},
	}
}

// KeywordCount is one entry of the keyword ranking.
type KeywordCount struct {
	Word  string `json:"palabra"`
	Count int    `json:"conteo"`
}

// HeadingGroup is the count and ordered texts for one heading level.
type HeadingGroup struct {
	Count int      `json:"conteo"`
	Texts []string `json:"textos"`
}

// Metadata holds the extracted meta tags. OGImage is nil when absent.
type Metadata struct {
	Description string  `json:"description"`
	Keywords    string  `json:"keywords"`
	Author      string  `json:"author"`
	Charset     string  `json:"charset"`
	OGImage     *string `json:"og_image"`
}

// NewMetadata returns metadata populated with the fallback strings.
func NewMetadata() Metadata {
	return Metadata{
		Description: NotFound,
		Keywords:    NotFoundPlural,
		Author:      NotFound,
		Charset:     NotFound,
	}
}

// ImageAudit summarizes alt-text coverage.
// WithoutAlt <= Total always holds, and Percent is 0 when Total is 0.
type ImageAudit struct {
	Total      int     `json:"total_imagenes"`
	WithoutAlt int     `json:"imagenes_sin_alt"`
	Percent    float64 `json:"porcentaje_sin_alt"`
}

// InlineContent counts embedded style and script blocks.
type InlineContent struct {
	CSSBlocks int      `json:"css_inline_blocks"`
	JSBlocks  int      `json:"js_inline_blocks"`
	JSSamples []string `json:"js_inline_texto_muestra"`
}

// SecurityFindings is the resource security audit.
type SecurityFindings struct {
	InsecureHTTP []string `json:"recursos_http_inseguros"`
	RiskyJS      []string `json:"riesgo_js_detectado"`
}

// IframeAudit is the iframe risk audit.
type IframeAudit struct {
	Total       int      `json:"total_iframes"`
	Insecure    []string `json:"iframes_inseguros"`
	RiskDomains []string `json:"dominios_riesgo"`
}

// TabnabbingLink is a target="_blank" link missing noopener or noreferrer.
type TabnabbingLink struct {
	Text string `json:"texto"`
	Href string `json:"href"`
}
