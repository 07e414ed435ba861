// backend/src/services/upstream_client.go
package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/username/jababank/backend/src/logger"
)

// --- Service Implementation ---

type upstreamClientFactory struct {
	baseURL *url.URL
	timeout time.Duration
}

// NewUpstreamClientFactory validates baseURL once. A zero timeout leaves
// requests unbounded; cancellation then comes from the request context.
func NewUpstreamClientFactory(baseURL string, timeout time.Duration) (UpstreamClientFactory, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpstream, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidUpstream, baseURL)
	}
	return &upstreamClientFactory{baseURL: u, timeout: timeout}, nil
}

func (f *upstreamClientFactory) BaseURL() *url.URL {
	u := *f.baseURL
	return &u
}

// NewClient returns a client whose jar is seeded with forward, scoped to the
// upstream host.
func (f *upstreamClientFactory) NewClient(forward []*http.Cookie) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
		return nil, err
	}

	if len(forward) > 0 {
		seeded := make([]*http.Cookie, 0, len(forward))
		for _, c := range forward {
			if c == nil || c.Name == "" {
				continue
			}
			seeded = append(seeded, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
		}
		jar.SetCookies(f.baseURL, seeded)
	}

	return &http.Client{
		Jar:           jar,
		Timeout:       f.timeout,
		CheckRedirect: f.sameOriginRedirect,
	}, nil
}

// sameOriginRedirect stops the client from following the upstream to another
// host.
func (f *upstreamClientFactory) sameOriginRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	if !strings.EqualFold(req.URL.Scheme, f.baseURL.Scheme) || !strings.EqualFold(req.URL.Host, f.baseURL.Host) {
		logger.FromContext(req.Context()).Warn("Upstream redirect off origin refused", "location", req.URL.Redacted())
		return fmt.Errorf("%w: redirect to %s://%s", ErrRedirectOffOrigin, req.URL.Scheme, req.URL.Host)
	}
	return nil
}
