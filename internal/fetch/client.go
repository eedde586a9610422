package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nao1215/sitescope/internal/config"
	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains on page and resource requests.
const maxRedirects = 10

// SiteLookup returns per-host request settings.
type SiteLookup func(host string) config.SiteConfig

// NewHTTPClient creates the client used for page and resource requests.
//
// When proxyAddress is non-empty every connection goes through that SOCKS5
// proxy. Timeouts are not set on the client: each call carries its own
// context deadline so page and resource bounds can differ.
func NewHTTPClient(proxyAddress string) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	if proxyAddress != "" {
		if !isValidProxyAddress(proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// isValidProxyAddress checks for "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// siteTransport injects User-Agent, cookie and custom headers into every
// request, including redirects, based on the request host.
type siteTransport struct {
	base      http.RoundTripper
	userAgent string
	sites     SiteLookup
}

// RoundTrip implements http.RoundTripper.
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	ua := t.userAgent
	var site config.SiteConfig
	if t.sites != nil {
		site = t.sites(req.URL.Hostname())
	}
	if site.UserAgent != "" {
		ua = site.UserAgent
	}
	if ua != "" {
		clone.Header.Set("User-Agent", ua)
	}
	if site.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+site.Cookie)
		} else {
			clone.Header.Set("Cookie", site.Cookie)
		}
	}
	for key, value := range site.Headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
