package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// checkRobots returns ErrDisallowedByRobots when the site's robots.txt
// forbids target for our user agent. A robots.txt that cannot be
// retrieved does not block the analysis.
func (f *Fetcher) checkRobots(ctx context.Context, target *url.URL) error {
	robotsURL := SiteRoot(target).ResolveReference(&url.URL{Path: "/robots.txt"})

	ctx, cancel := context.WithTimeout(ctx, f.resourceTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.observe("robots", classify(ctx, err), time.Since(start))
		f.logger.Debug("robots.txt unavailable", "url", robotsURL.String(), "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	f.observe("robots", err, time.Since(start))
	if err != nil {
		f.logger.Debug("robots.txt unparsable", "url", robotsURL.String(), "error", err)
		return nil
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	if !data.FindGroup(f.userAgent).Test(path) {
		return fmt.Errorf("%w: %s", ErrDisallowedByRobots, target.String())
	}
	return nil
}
