package fetch

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// shortLabelBaseRunes is the longest base name shown before truncation.
const shortLabelBaseRunes = 10

// ParseTarget validates rawURL as an absolute http(s) URL.
func ParseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// SiteRoot returns scheme://host/ for u. Resource references are resolved
// against it.
func SiteRoot(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, Path: "/"}
}

// Resolve joins ref onto base with standard reference resolution.
func Resolve(base *url.URL, ref string) (string, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	return base.ResolveReference(r).String(), nil
}

// FileName derives a download name from a resource URL: the last path
// segment without the query. Names that are empty or lack an extension
// fall back to archivo_descargado with .css, .js or .txt, chosen by what
// the URL mentions.
func FileName(rawURL string) string {
	u, _, _ := strings.Cut(rawURL, "?")
	name := path.Base(u)
	if strings.HasSuffix(u, "/") || name == "." || name == "/" {
		name = ""
	}
	if name != "" && strings.Contains(name, ".") {
		return name
	}
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, ".css"):
		return "archivo_descargado.css"
	case strings.Contains(lower, ".js"):
		return "archivo_descargado.js"
	default:
		return "archivo_descargado.txt"
	}
}

// ShortLabel builds the compact label shown for a file, such as
// "Script: jquery.min.js".
// The name is split on its final dot; a base longer than ten characters is
// truncated with "...".
func ShortLabel(name string) string {
	base, ext := name, "txt"
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], strings.ToLower(name[i+1:])
	}

	kind := "Archivo"
	switch ext {
	case "css":
		kind = "Estilo"
	case "js":
		kind = "Script"
	}

	if utf8.RuneCountInString(base) > shortLabelBaseRunes {
		base = string([]rune(base)[:shortLabelBaseRunes]) + "..."
	}
	return fmt.Sprintf("%s: %s.%s", kind, base, ext)
}
