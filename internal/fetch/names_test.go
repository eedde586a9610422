package fetch

import (
	"errors"
	"net/url"
	"testing"
)

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com/css/site.css", want: "site.css"},
		{url: "https://example.com/js/app.min.js?v=3", want: "app.min.js"},
		{url: "https://example.com/styles?f=main.css", want: "archivo_descargado.txt"},
		{url: "https://cdn.example.com/site.css/", want: "archivo_descargado.css"},
		{url: "https://example.com/bundle", want: "archivo_descargado.txt"},
		{url: "https://example.com/app.js/", want: "archivo_descargado.js"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := FileName(tt.url); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestShortLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "site.css", want: "Estilo: site.css"},
		{name: "APP.JS", want: "Script: APP.js"},
		{name: "jquery.min.js", want: "Script: jquery.min.js"},
		{name: "bootstrap-theme.css", want: "Estilo: bootstrap-....css"},
		{name: "readme.txt", want: "Archivo: readme.txt"},
		{name: "noext", want: "Archivo: noext.txt"},
		{name: "ñandúñandúñandú.js", want: "Script: ñandúñandú....js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShortLabel(tt.name); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	valid := []string{"https://example.com", "http://example.com/a?b=c", "  https://example.com/  "}
	for _, raw := range valid {
		if _, err := ParseTarget(raw); err != nil {
			t.Errorf("expected %q to be valid, got %v", raw, err)
		}
	}

	invalid := []string{"example.com", "ftp://example.com", "https://", "javascript:alert(1)", "%zz"}
	for _, raw := range invalid {
		if _, err := ParseTarget(raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL for %q, got %v", raw, err)
		}
	}
}

func TestSiteRootAndResolve(t *testing.T) {
	t.Parallel()

	page, err := url.Parse("https://example.com/blog/post.html?x=1")
	if err != nil {
		t.Fatal(err)
	}
	root := SiteRoot(page)
	if root.String() != "https://example.com/" {
		t.Fatalf("expected site root, got %s", root)
	}

	tests := []struct {
		ref  string
		want string
	}{
		{ref: "css/site.css", want: "https://example.com/css/site.css"},
		{ref: "/js/app.js", want: "https://example.com/js/app.js"},
		{ref: "//cdn.example.org/lib.js", want: "https://cdn.example.org/lib.js"},
		{ref: "http://insecure.example.net/a.css", want: "http://insecure.example.net/a.css"},
		{ref: " ../up.css ", want: "https://example.com/up.css"},
	}
	for _, tt := range tests {
		got, err := Resolve(root, tt.ref)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, expected %q", tt.ref, got, tt.want)
		}
	}
}
