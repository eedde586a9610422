package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Querier is the read-only view analyzers use to inspect a page.
// Analyzers depend on this interface only, so the parser behind it can
// change without touching them.
type Querier interface {
	// FindAll returns every element named tag, in document order, for which
	// pred returns true. A nil pred matches every element.
	FindAll(tag string, pred Predicate) []Element

	// VisibleTexts returns the text nodes a reader would see, in document order.
	VisibleTexts() []string

	// Title returns the trimmed text of the first <title> and whether one
	// with non-blank text exists.
	Title() (string, bool)
}

// Predicate filters elements in FindAll.
type Predicate func(Element) bool

// Element is a single node returned by a query.
type Element struct {
	sel *goquery.Selection
}

// Attr returns the named attribute and whether it is present.
// Attribute names are matched in lower case, as the parser stores them.
func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(strings.ToLower(name))
}

// AttrOr returns the named attribute or def when it is absent.
func (e Element) AttrOr(name, def string) string {
	return e.sel.AttrOr(strings.ToLower(name), def)
}

// HasAttr reports whether the attribute is present, even if empty.
func (e Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Text returns the element's text with each descendant text fragment
// trimmed and the non-empty fragments joined by single spaces.
func (e Element) Text() string {
	var parts []string
	for _, n := range e.sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

// RawText returns the concatenated descendant text without trimming.
func (e Element) RawText() string {
	return e.sel.Text()
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// Document is a parsed page. It is immutable once built and safe for
// concurrent reads.
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

var _ Querier = (*Document)(nil)

// Parse builds a Document from r. Parsing is best effort: malformed markup
// is repaired the way browsers do and only reader errors are returned.
//
// Scripting is disabled so the contents of <noscript> are parsed as markup.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, err
	}
	return &Document{root: root, doc: goquery.NewDocumentFromNode(root)}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// FindAll implements Querier.
func (d *Document) FindAll(tag string, pred Predicate) []Element {
	var out []Element
	d.doc.Find(strings.ToLower(tag)).Each(func(_ int, s *goquery.Selection) {
		el := Element{sel: s}
		if pred == nil || pred(el) {
			out = append(out, el)
		}
	})
	return out
}

// Title implements Querier.
func (d *Document) Title() (string, bool) {
	titles := d.FindAll("title", nil)
	if len(titles) == 0 {
		return "", false
	}
	t := strings.TrimSpace(titles[0].RawText())
	return t, t != ""
}

// hiddenParents are the elements whose direct text is never shown.
var hiddenParents = map[string]struct{}{
	"style":  {},
	"script": {},
	"head":   {},
	"title":  {},
	"meta":   {},
}

// VisibleTexts implements Querier. A text node is visible unless its
// parent is the document root or one of hiddenParents. Comments are
// separate node types and never included.
func (d *Document) VisibleTexts() []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && visible(n) {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

func visible(n *html.Node) bool {
	p := n.Parent
	if p == nil || p.Type == html.DocumentNode {
		return false
	}
	if p.Type != html.ElementNode {
		return true
	}
	_, hidden := hiddenParents[p.Data]
	return !hidden
}
