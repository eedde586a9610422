package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/model"
	"golang.org/x/net/html/charset"
)

// Observer receives one call per finished request. kind is "page",
// "robots" or a resource kind; outcome is "ok" or a short failure class.
type Observer interface {
	ObserveFetch(kind, outcome string, elapsed time.Duration)
}

// Page is the primary response.
type Page struct {
	// URL is the address that was requested.
	URL *url.URL

	// StatusCode is the final HTTP status.
	StatusCode int

	// Header holds the final response headers.
	Header http.Header

	// Body is the decoded UTF-8 body, truncated at the size limit.
	Body string
}

// Fetcher retrieves the target page and its linked resources.
type Fetcher struct {
	client          *http.Client
	pageTimeout     time.Duration
	resourceTimeout time.Duration
	maxBodySize     int64
	userAgent       string
	respectRobots   bool
	sites           SiteLookup
	logger          *slog.Logger
	observer        Observer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPageTimeout sets the bound for the primary request.
func WithPageTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.pageTimeout = d }
}

// WithResourceTimeout sets the bound for each sub-resource request.
func WithResourceTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.resourceTimeout = d }
}

// WithMaxBodySize caps the bytes read from any response body.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithUserAgent sets the default User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithSiteConfig injects per-host cookies, headers and user agents.
func WithSiteConfig(lookup SiteLookup) Option {
	return func(f *Fetcher) { f.sites = lookup }
}

// WithRobots makes FetchPage consult robots.txt before the request.
func WithRobots(respect bool) Option {
	return func(f *Fetcher) { f.respectRobots = respect }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithObserver sets the request observer, typically the metrics registry.
func WithObserver(o Observer) Option {
	return func(f *Fetcher) { f.observer = o }
}

// NewFetcher creates a Fetcher around client. A nil client gets a direct
// http.Client with no proxy.
func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	f := &Fetcher{
		client:          client,
		pageTimeout:     config.DefaultPageTimeout,
		resourceTimeout: config.DefaultResourceTimeout,
		maxBodySize:     config.DefaultMaxBodySize,
		userAgent:       config.DefaultUserAgent,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = withSiteTransport(f.client, f.userAgent, f.sites)
	return f
}

// NewFetcherFromConfig wires a Fetcher from cfg, including the optional proxy.
func NewFetcherFromConfig(cfg *config.Config, logger *slog.Logger, observer Observer) (*Fetcher, error) {
	client, err := NewHTTPClient(cfg.ProxyAddress)
	if err != nil {
		return nil, err
	}
	return NewFetcher(client,
		WithPageTimeout(cfg.PageTimeout),
		WithResourceTimeout(cfg.ResourceTimeout),
		WithMaxBodySize(cfg.MaxBodySize),
		WithUserAgent(cfg.UserAgent),
		WithSiteConfig(cfg.SiteFor),
		WithRobots(cfg.RespectRobots),
		WithLogger(logger),
		WithObserver(observer),
	), nil
}

func withSiteTransport(client *http.Client, userAgent string, lookup SiteLookup) *http.Client {
	base := client.Transport
	if st, ok := base.(*siteTransport); ok {
		base = st.base
	}
	if base == nil {
		base = http.DefaultTransport
	}
	c := *client
	c.Transport = &siteTransport{base: base, userAgent: userAgent, sites: lookup}
	return &c
}

// FetchPage requests rawURL within the page timeout. Transport failures,
// timeouts and non-2xx responses are returned as errors.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	if f.respectRobots {
		if err := f.checkRobots(ctx, target); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.pageTimeout)
	defer cancel()

	start := time.Now()
	status, header, body, err := f.get(ctx, target.String(), "text/html,application/xhtml+xml,*/*;q=0.8")
	f.observe("page", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	f.logger.Debug("page fetched", "url", target.String(), "status", status, "bytes", len(body))
	return &Page{URL: target, StatusCode: status, Header: header, Body: body}, nil
}

// FetchResource resolves ref against base and downloads it within the
// resource timeout. It never returns an error: failures become records
// with StatusFailed and no content. Empty bodies count as failures.
func (f *Fetcher) FetchResource(ctx context.Context, base *url.URL, ref string, kind model.ResourceKind) model.ResourceRecord {
	abs, err := Resolve(base, ref)
	if err != nil {
		f.logger.Debug("unresolvable resource reference", "ref", ref, "error", err)
		f.observe(string(kind), err, 0)
		return model.ResourceRecord{URL: ref, Status: model.StatusFailed, Kind: kind}
	}

	ctx, cancel := context.WithTimeout(ctx, f.resourceTimeout)
	defer cancel()

	start := time.Now()
	_, _, body, err := f.get(ctx, abs, "*/*")
	content := strings.TrimSpace(body)
	if err == nil && content == "" {
		err = errEmptyBody
	}
	f.observe(string(kind), err, time.Since(start))
	if err != nil {
		f.logger.Debug("resource fetch failed", "url", abs, "kind", kind, "error", err)
		return model.ResourceRecord{URL: abs, Status: model.StatusFailed, Kind: kind}
	}

	name := FileName(abs)
	return model.ResourceRecord{
		URL:         abs,
		Content:     content,
		DisplayName: name,
		ShortLabel:  ShortLabel(name),
		Status:      model.StatusOK,
		Kind:        kind,
	}
}

var errEmptyBody = errors.New("empty body")

// get performs a GET and returns the decoded body of a 2xx response.
func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (int, http.Header, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, "", classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, resp.Header, "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	limited := io.LimitReader(resp.Body, f.maxBodySize)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.StatusCode, resp.Header, "", classify(ctx, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return resp.StatusCode, resp.Header, "", classify(ctx, err)
	}
	return resp.StatusCode, resp.Header, string(data), nil
}

// classify maps deadline errors to ErrTimeout and keeps the cause.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func (f *Fetcher) observe(kind string, err error, elapsed time.Duration) {
	if f.observer == nil {
		return
	}
	f.observer.ObserveFetch(kind, Outcome(err), elapsed)
}

// Outcome is the short failure class used for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrDisallowedByRobots):
		return "robots"
	case errors.Is(err, errEmptyBody):
		return "empty"
	default:
		return "transport"
	}
}
