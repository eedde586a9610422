// Package dom wraps the parsed HTML tree behind a small query interface.
//
// Analyzers see a page only through Querier: find elements by tag with an
// optional predicate, read attributes and text, and list the visible text
// nodes. The tree is built with golang.org/x/net/html and queried through
// goquery.
package dom
