// backend/src/services/interfaces.go
package services

import (
	"errors"
	"net/http"
	"net/url"
)

// Define common service errors
var (
	ErrInvalidUpstream   = errors.New("invalid upstream base URL")
	ErrRedirectOffOrigin = errors.New("upstream redirected off origin")
)

// UpstreamClientFactory builds the outbound client each widget uses to reach
// the banking API. Clients carry the caller's session cookies.
type UpstreamClientFactory interface {
	NewClient(forward []*http.Cookie) (*http.Client, error)
	// BaseURL is the origin relative endpoints resolve against.
	BaseURL() *url.URL
}
