package analyzer

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/sitescope/internal/dom"
	"github.com/nao1215/sitescope/internal/model"
)

// criticalIframeDomain serves arbitrary repository HTML and is always
// reported as critical.
const criticalIframeDomain = "htmlpreview.github.io"

// alertIframeDomains are preview and embed hosts reported as alerts.
var alertIframeDomains = []string{"docs.google.com/forms", "embed.ly", "codepen.io"}

// TabnabbingAnalyzer finds target="_blank" links that leave window.opener
// reachable.
type TabnabbingAnalyzer struct{}

// NewTabnabbingAnalyzer creates a TabnabbingAnalyzer.
func NewTabnabbingAnalyzer() *TabnabbingAnalyzer { return &TabnabbingAnalyzer{} }

// Name returns the analyzer name.
func (a *TabnabbingAnalyzer) Name() string { return "tabnabbing" }

// Analyze fills report.Tabnabbing. A link is flagged unless its rel
// carries both noopener and noreferrer.
func (a *TabnabbingAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	links := in.Doc.FindAll("a", func(e dom.Element) bool {
		return e.AttrOr("target", "") == "_blank"
	})

	risky := make([]model.TabnabbingLink, 0)
	for _, link := range links {
		rel := relTokens(link.AttrOr("rel", ""))
		if rel["noopener"] && rel["noreferrer"] {
			continue
		}
		text := link.Text()
		if utf8.RuneCountInString(text) > sampleRunes {
			text = prefixRunes(text, sampleRunes) + "..."
		}
		risky = append(risky, model.TabnabbingLink{
			Text: text,
			Href: link.AttrOr("href", model.NoHref),
		})
	}
	report.Tabnabbing = risky
	return nil
}

// IframeAnalyzer flags iframes without src or pointing at preview hosts.
type IframeAnalyzer struct{}

// NewIframeAnalyzer creates an IframeAnalyzer.
func NewIframeAnalyzer() *IframeAnalyzer { return &IframeAnalyzer{} }

// Name returns the analyzer name.
func (a *IframeAnalyzer) Name() string { return "iframes" }

// Analyze fills report.Iframes. src is compared and reported in lower case.
// An iframe is either critical or, at most once, an alert.
func (a *IframeAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	iframes := in.Doc.FindAll("iframe", nil)
	audit := model.IframeAudit{
		Total:       len(iframes),
		Insecure:    []string{},
		RiskDomains: []string{},
	}

	for _, iframe := range iframes {
		src := strings.ToLower(iframe.AttrOr("src", ""))
		if src == "" {
			audit.Insecure = append(audit.Insecure, model.IframeWithoutSrc)
			continue
		}
		if strings.Contains(src, criticalIframeDomain) {
			audit.RiskDomains = append(audit.RiskDomains,
				model.IframeCriticalPrefix+src+" (Usando htmlpreview.github.io para contenido)")
			continue
		}
		for _, domain := range alertIframeDomains {
			if strings.Contains(src, domain) {
				audit.RiskDomains = append(audit.RiskDomains,
					model.IframeAlertPrefix+src+" (Dominio de vista previa/embed)")
				break
			}
		}
	}
	report.Iframes = audit
	return nil
}

// ResourceSecurityAnalyzer audits the transport and content of fetched
// resources.
type ResourceSecurityAnalyzer struct{}

// NewResourceSecurityAnalyzer creates a ResourceSecurityAnalyzer.
func NewResourceSecurityAnalyzer() *ResourceSecurityAnalyzer { return &ResourceSecurityAnalyzer{} }

// Name returns the analyzer name.
func (a *ResourceSecurityAnalyzer) Name() string { return "resource_security" }

// Analyze fills report.Security.
//
// recursos_http_inseguros lists every plain-http URL among CSS, JS and
// failed records, in that order, without duplicates. riesgo_js_detectado
// lists the short label of each script using eval( or document.write(,
// then an execCommand alert for scripts whose label is not already listed.
func (a *ResourceSecurityAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	insecure := make([]string, 0)
	seen := make(map[string]bool)
	addInsecure := func(u string) {
		if strings.HasPrefix(u, "http://") && !seen[u] {
			seen[u] = true
			insecure = append(insecure, u)
		}
	}
	for _, r := range in.CSS {
		addInsecure(r.URL)
	}
	for _, r := range in.JS {
		addInsecure(r.URL)
	}
	for _, r := range in.Failed {
		addInsecure(r.URL)
	}

	risky := make([]string, 0)
	listed := make(map[string]bool)
	for _, js := range in.JS {
		if strings.Contains(js.Content, "eval(") || strings.Contains(js.Content, "document.write(") {
			risky = append(risky, js.ShortLabel)
			listed[js.ShortLabel] = true
		}
		if usesExecCommand(js.Content) && !listed[js.ShortLabel] {
			risky = append(risky, model.ExecCommandPrefix+js.ShortLabel+" (Usa execCommand)")
		}
	}

	report.Security = model.SecurityFindings{InsecureHTTP: insecure, RiskyJS: risky}
	return nil
}

func usesExecCommand(content string) bool {
	return strings.Contains(content, "document.execCommand('copy')") ||
		strings.Contains(content, "document.execCommand('cut')")
}

// HeaderAnalyzer checks for CSP, X-Frame-Options and HSTS.
type HeaderAnalyzer struct{}

// NewHeaderAnalyzer creates a HeaderAnalyzer.
func NewHeaderAnalyzer() *HeaderAnalyzer { return &HeaderAnalyzer{} }

// Name returns the analyzer name.
func (a *HeaderAnalyzer) Name() string { return "headers" }

// Analyze fills report.Headers. Header names match case-insensitively;
// repeated headers are joined with ", ".
func (a *HeaderAnalyzer) Analyze(_ context.Context, in *Input, report *model.AnalysisReport) error {
	report.Headers = model.HeaderFindings{
		CSP:  headerValue(in.Headers, "Content-Security-Policy", model.CSPAbsent),
		XFO:  headerValue(in.Headers, "X-Frame-Options", model.XFOAbsent),
		HSTS: headerValue(in.Headers, "Strict-Transport-Security", model.HSTSAbsent),
	}
	return nil
}

// headerValue looks name up without relying on canonical keys, since
// headers may come from a plain map rather than a parsed response.
func headerValue(h http.Header, name, absent string) string {
	for key, values := range h {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return strings.TrimSpace(strings.Join(values, ", "))
		}
	}
	return absent
}
