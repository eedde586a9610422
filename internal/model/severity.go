package model

// Severity represents the risk level of a finding.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct security impact.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor quality or accessibility issues.
	SeverityLow

	// SeverityMedium indicates issues an attacker could exploit with some effort.
	SeverityMedium

	// SeverityHigh indicates missing core protections.
	SeverityHigh

	// SeverityCritical indicates content the page does not control at all.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Finding types produced by NewSummary.
const (
	FindingMissingCSP       = "missing_csp"
	FindingMissingXFO       = "missing_xfo"
	FindingMissingHSTS      = "missing_hsts"
	FindingInsecureResource = "insecure_http_resource"
	FindingRiskyJS          = "risky_js"
	FindingExecCommand      = "obsolete_exec_command"
	FindingIframeCritical   = "iframe_critical"
	FindingIframeAlert      = "iframe_alert"
	FindingIframeNoSrc      = "iframe_without_src"
	FindingTabnabbing       = "tabnabbing_link"
	FindingImagesWithoutAlt = "images_without_alt"
	FindingObsoleteTag      = "obsolete_tag"
	FindingFailedResource   = "failed_resource"
	FindingInlineScript     = "inline_script"
)

// FindingInfo contains severity, impact and remediation for a finding type.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping is the single source of truth for risk levels.
var findingInfoMapping = map[string]FindingInfo{
	FindingIframeCritical: {
		Severity:       SeverityCritical,
		Impact:         "The iframe renders content through htmlpreview.github.io, which serves arbitrary repository HTML the site does not control.",
		Recommendation: "Host the embedded content yourself or link to it instead of framing it.",
	},
	FindingMissingCSP: {
		Severity:       SeverityHigh,
		Impact:         "Without Content-Security-Policy any injected script runs with full page privileges.",
		Recommendation: "Send a Content-Security-Policy header, starting with default-src 'self'.",
	},
	FindingInsecureResource: {
		Severity:       SeverityHigh,
		Impact:         "Resources loaded over plain HTTP can be modified in transit.",
		Recommendation: "Serve every stylesheet and script over HTTPS.",
	},
	FindingMissingXFO: {
		Severity:       SeverityMedium,
		Impact:         "The page can be framed by another site, enabling clickjacking.",
		Recommendation: "Send X-Frame-Options: DENY or SAMEORIGIN, or CSP frame-ancestors.",
	},
	FindingMissingHSTS: {
		Severity:       SeverityMedium,
		Impact:         "Browsers may be downgraded to HTTP on first visit.",
		Recommendation: "Send Strict-Transport-Security with a long max-age.",
	},
	FindingRiskyJS: {
		Severity:       SeverityMedium,
		Impact:         "eval() and document.write() execute or inject strings as code and markup.",
		Recommendation: "Replace eval with explicit parsing and document.write with DOM APIs.",
	},
	FindingIframeAlert: {
		Severity:       SeverityMedium,
		Impact:         "The iframe embeds a third-party preview or form service.",
		Recommendation: "Confirm the embed is intended and add a sandbox attribute.",
	},
	FindingTabnabbing: {
		Severity:       SeverityMedium,
		Impact:         "The opened page can navigate the opener through window.opener.",
		Recommendation: "Add rel=\"noopener noreferrer\" to links with target=\"_blank\".",
	},
	FindingExecCommand: {
		Severity:       SeverityLow,
		Impact:         "document.execCommand is deprecated and may stop working.",
		Recommendation: "Use the asynchronous Clipboard API.",
	},
	FindingIframeNoSrc: {
		Severity:       SeverityLow,
		Impact:         "An iframe without src is usually filled by script, which hides its origin from review.",
		Recommendation: "Set src explicitly or remove the iframe.",
	},
	FindingImagesWithoutAlt: {
		Severity:       SeverityLow,
		Impact:         "Images without alt text are invisible to screen readers and search engines.",
		Recommendation: "Describe each meaningful image in its alt attribute.",
	},
	FindingObsoleteTag: {
		Severity:       SeverityInfo,
		Impact:         "Presentational tags mix styling into markup.",
		Recommendation: "Move presentation to CSS and use semantic elements.",
	},
	FindingFailedResource: {
		Severity:       SeverityInfo,
		Impact:         "A referenced stylesheet or script could not be retrieved, so it was not audited.",
		Recommendation: "Check that the reference is correct and reachable.",
	},
	FindingInlineScript: {
		Severity:       SeverityInfo,
		Impact:         "Inline scripts require 'unsafe-inline' or hashes under a strict CSP.",
		Recommendation: "Move scripts to external files.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Unknown types are SeverityInfo.
func GetSeverity(findingType string) Severity {
	return GetFindingInfo(findingType).Severity
}

// GetFindingInfo returns the full finding information for a finding type.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
