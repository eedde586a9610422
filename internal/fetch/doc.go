// Package fetch retrieves the target page and its linked stylesheets and
// scripts.
//
// Each call carries its own deadline (page and resource bounds differ),
// bodies are capped and decoded to UTF-8 with golang.org/x/net/html/charset,
// and every request gets the configured User-Agent plus any per-host
// cookie or headers. An optional SOCKS5 proxy and an optional robots.txt
// check are available.
//
// Resource failures never surface as errors: FetchResource always returns
// a record, marked FAILED when the content could not be obtained.
package fetch
