package model

// Sentinels used when a security header is missing.
const (
	CSPAbsent  = "AUSENTE: RIESGO ALTO"
	XFOAbsent  = "AUSENTE: Riesgo de Clickjacking"
	HSTSAbsent = "AUSENTE: Recomendado para HTTPS"
)

// HeaderFindings maps the three audited headers to their trimmed value or
// an absence sentinel.
type HeaderFindings struct {
	CSP  string `json:"CSP"`
	XFO  string `json:"XFO"`
	HSTS string `json:"HSTS"`
}

// MissingCSP reports whether Content-Security-Policy was absent.
func (h HeaderFindings) MissingCSP() bool { return h.CSP == CSPAbsent }

// MissingXFO reports whether X-Frame-Options was absent.
func (h HeaderFindings) MissingXFO() bool { return h.XFO == XFOAbsent }

// MissingHSTS reports whether Strict-Transport-Security was absent.
func (h HeaderFindings) MissingHSTS() bool { return h.HSTS == HSTSAbsent }
