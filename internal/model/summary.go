package model

import (
	"fmt"
	"sort"
	"strings"
)

// Summary is a severity-classified digest of an AnalysisReport.
// Writers use it for the human-oriented formats; it is never sent to the
// assistant, which receives the full report.
type Summary struct {
	// URL is the analyzed page.
	URL string `json:"url"`

	// Title is the page title.
	Title string `json:"title"`

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// ResourcesOK and ResourcesTotal mirror conteo_recursos_ok and total_recursos_ext.
	ResourcesOK    int `json:"resources_ok"`
	ResourcesTotal int `json:"resources_total"`

	// Findings is sorted by severity, most severe first.
	Findings []Finding `json:"findings,omitempty"`
}

// Finding is a single summarized issue.
type Finding struct {
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	SeverityText   string   `json:"severity_text"`
	Title          string   `json:"title"`
	Impact         string   `json:"impact,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Value          string   `json:"value,omitempty"`
}

// NewSummary derives findings from a report.
func NewSummary(report *AnalysisReport) *Summary {
	s := &Summary{
		URL:            report.URL,
		Title:          report.Title,
		ResourcesOK:    report.OKResourceCount,
		ResourcesTotal: report.TotalResources,
	}

	s.collectHeaderFindings(report)
	s.collectResourceFindings(report)
	s.collectDocumentFindings(report)

	sort.SliceStable(s.Findings, func(i, j int) bool {
		return s.Findings[i].Severity > s.Findings[j].Severity
	})
	s.countBySeverity()
	return s
}

func (s *Summary) collectHeaderFindings(report *AnalysisReport) {
	h := report.Headers
	if h.MissingCSP() {
		s.addFinding(FindingMissingCSP, "Content-Security-Policy missing", "")
	}
	if h.MissingXFO() {
		s.addFinding(FindingMissingXFO, "X-Frame-Options missing", "")
	}
	// HSTS is only meaningful once the page is already served over TLS.
	if h.MissingHSTS() && strings.HasPrefix(strings.ToLower(report.URL), "https://") {
		s.addFinding(FindingMissingHSTS, "Strict-Transport-Security missing", "")
	}
}

func (s *Summary) collectResourceFindings(report *AnalysisReport) {
	for _, u := range report.Security.InsecureHTTP {
		s.addFinding(FindingInsecureResource, "Resource loaded over HTTP", u)
	}
	for _, entry := range report.Security.RiskyJS {
		if strings.HasPrefix(entry, ExecCommandPrefix) {
			s.addFinding(FindingExecCommand, "Deprecated document.execCommand", entry)
			continue
		}
		s.addFinding(FindingRiskyJS, "eval or document.write in script", entry)
	}
	for _, f := range report.FailedResources {
		s.addFinding(FindingFailedResource, fmt.Sprintf("%s resource unavailable", f.Kind), f.URL)
	}
}

func (s *Summary) collectDocumentFindings(report *AnalysisReport) {
	for _, entry := range report.Iframes.RiskDomains {
		if strings.HasPrefix(entry, IframeCriticalPrefix) {
			s.addFinding(FindingIframeCritical, "Iframe served through htmlpreview.github.io", entry)
		} else {
			s.addFinding(FindingIframeAlert, "Iframe from preview or embed domain", entry)
		}
	}
	if n := len(report.Iframes.Insecure); n > 0 {
		s.addFinding(FindingIframeNoSrc, "Iframe without src", fmt.Sprintf("%d", n))
	}
	for _, link := range report.Tabnabbing {
		s.addFinding(FindingTabnabbing, "target=\"_blank\" link without noopener noreferrer", link.Href)
	}
	if report.Images.WithoutAlt > 0 {
		s.addFinding(FindingImagesWithoutAlt, "Images without alt text",
			fmt.Sprintf("%d/%d (%.2f%%)", report.Images.WithoutAlt, report.Images.Total, report.Images.Percent))
	}
	if report.Inline.JSBlocks > 0 {
		s.addFinding(FindingInlineScript, "Inline script blocks", fmt.Sprintf("%d", report.Inline.JSBlocks))
	}

	tags := make([]string, 0, len(report.ObsoleteTags))
	for tag := range report.ObsoleteTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		s.addFinding(FindingObsoleteTag, fmt.Sprintf("Obsolete <%s> tag", tag),
			fmt.Sprintf("%d", report.ObsoleteTags[tag]))
	}
}

func (s *Summary) addFinding(findingType, title, value string) {
	info := GetFindingInfo(findingType)
	s.Findings = append(s.Findings, Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
	})
}

func (s *Summary) countBySeverity() {
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *Summary) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *Summary) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
