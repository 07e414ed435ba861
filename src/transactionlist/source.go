package transactionlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/username/jababank/backend/src/logger"
	"github.com/username/jababank/backend/src/models"
	"github.com/username/jababank/backend/src/security/validation"
)

// ErrDummyDataDisabled is the terminal error when every endpoint failed and
// the widget forbids synthetic data.
var ErrDummyDataDisabled = errors.New("API requests failed and dummy data generation is disabled")

// LegacyEndpoints are tried in order, under the context path, after the
// configured endpoint.
var LegacyEndpoints = []string{"/api/transaction-data", "/api/admin-transactions"}

// PageRequest identifies the page a widget wants.
type PageRequest struct {
	Page     int
	PageSize int
	UserID   int
}

// Resolver produces one page or an error.
type Resolver func(ctx context.Context, req PageRequest) (*models.Page, error)

// Strategy is a named Resolver.
type Strategy struct {
	Name    string
	Resolve Resolver
}

// FirstSuccess tries each strategy in order and returns the first page
// produced. If all fail, the last error is returned.
func FirstSuccess(strategies ...Strategy) Resolver {
	return func(ctx context.Context, req PageRequest) (*models.Page, error) {
		log := logger.FromContext(ctx)
		lastErr := errors.New("no transaction sources configured")
		for _, s := range strategies {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page, err := s.Resolve(ctx, req)
			if err == nil && page != nil {
				if page.Source == "" {
					page.Source = s.Name
				}
				return page, nil
			}
			if err == nil {
				err = fmt.Errorf("%s returned no page", s.Name)
			}
			log.Warn("Transaction source failed", "source", s.Name, "page", req.Page, "error", err)
			lastErr = err
		}
		return nil, lastErr
	}
}

// Doer is the part of *http.Client the data source needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PageSource builds the resolver chain for a widget configuration.
type PageSource interface {
	Resolver(cfg ListConfig) Resolver
}

// SourceFunc adapts a function to PageSource.
type SourceFunc func(cfg ListConfig) Resolver

func (f SourceFunc) Resolver(cfg ListConfig) Resolver { return f(cfg) }

// DataSource resolves pages from the configured endpoint, then the legacy
// endpoints, then the mock generator.
type DataSource struct {
	client      Doer
	baseURL     *url.URL
	contextPath string
	mock        *MockGenerator
}

// NewDataSource creates a DataSource. baseURL is the upstream origin that
// relative endpoints resolve against; configured endpoints may not leave it.
func NewDataSource(client Doer, baseURL, contextPath string, mock *MockGenerator) (*DataSource, error) {
	if client == nil {
		client = http.DefaultClient
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL %q: %w", baseURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("upstream base URL %q must be absolute", baseURL)
	}
	if mock == nil {
		mock = NewMockGenerator(0)
	}
	return &DataSource{
		client:      client,
		baseURL:     base,
		contextPath: strings.TrimRight(contextPath, "/"),
		mock:        mock,
	}, nil
}

// Strategies returns the ordered resolver chain for cfg.
func (s *DataSource) Strategies(cfg ListConfig) []Strategy {
	var out []Strategy
	if cfg.APIEndpoint != "" {
		endpoint := cfg.APIEndpoint
		params := cfg.FetchParams.clone()
		out = append(out, Strategy{
			Name: endpoint,
			Resolve: func(ctx context.Context, req PageRequest) (*models.Page, error) {
				u, err := s.resolveEndpoint(endpoint)
				if err != nil {
					return nil, err
				}
				return s.fetch(ctx, endpoint, withPageQuery(u, req), params)
			},
		})
	}

	for _, endpoint := range LegacyEndpoints {
		endpoint := endpoint
		out = append(out, Strategy{
			Name: endpoint,
			Resolve: func(ctx context.Context, req PageRequest) (*models.Page, error) {
				return s.fetch(ctx, endpoint, withPageQuery(s.legacyURL(endpoint), req), nil)
			},
		})
	}

	if cfg.AllowsDummyData() {
		showUser := cfg.ShowUser
		out = append(out, Strategy{
			Name: "mock",
			Resolve: func(ctx context.Context, req PageRequest) (*models.Page, error) {
				logger.FromContext(ctx).Warn("Falling back to mock transaction data generation", "page", req.Page)
				return s.mock.Generate(req, showUser), nil
			},
		})
	} else {
		out = append(out, Strategy{
			Name: "dummy-data-disabled",
			Resolve: func(ctx context.Context, req PageRequest) (*models.Page, error) {
				return nil, ErrDummyDataDisabled
			},
		})
	}
	return out
}

// Resolver implements PageSource.
func (s *DataSource) Resolver(cfg ListConfig) Resolver {
	return FirstSuccess(s.Strategies(cfg)...)
}

// Fetch resolves a single page for cfg.
func (s *DataSource) Fetch(ctx context.Context, page int, cfg ListConfig) (*models.Page, error) {
	userID, _ := cfg.UserFilter()
	return s.Resolver(cfg)(ctx, PageRequest{Page: page, PageSize: cfg.PageSize, UserID: userID})
}

func (s *DataSource) resolveEndpoint(endpoint string) (*url.URL, error) {
	if err := validation.ValidateEndpointOrigin(endpoint, "apiEndpoint", s.baseURL); err != nil {
		return nil, err
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return s.baseURL.ResolveReference(ref), nil
}

func (s *DataSource) legacyURL(endpoint string) *url.URL {
	u := *s.baseURL
	u.Path = strings.TrimRight(s.baseURL.Path, "/") + s.contextPath + endpoint
	u.RawPath = ""
	u.RawQuery = ""
	return &u
}

func withPageQuery(u *url.URL, req PageRequest) *url.URL {
	out := *u
	q := out.Query()
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("size", strconv.Itoa(req.PageSize))
	if req.UserID > 0 {
		q.Set("userId", strconv.Itoa(req.UserID))
	}
	out.RawQuery = q.Encode()
	return &out
}

func (s *DataSource) fetch(ctx context.Context, name string, u *url.URL, params *FetchParams) (*models.Page, error) {
	method := http.MethodGet
	var body io.Reader
	if params != nil {
		if params.Method != "" {
			method = strings.ToUpper(strings.TrimSpace(params.Method))
		}
		if params.Body != "" {
			body = strings.NewReader(params.Body)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")
	if params != nil {
		for k, v := range params.Headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request to %s failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("API request to %s failed: %d", name, resp.StatusCode)
	}

	// Lenient decoding already coerces amounts, flags and user ids.
	page, err := models.DecodePage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("API at %s returned unexpected data format: %w", name, err)
	}
	logger.FromContext(ctx).Debug("Fetched transaction page", "source", name, "rows", len(page.Transactions))
	return page, nil
}

// ContextPathFromPage derives the deployment context path from the path of
// the dashboard page: its first segment, or "" for top-level pages.
func ContextPathFromPage(pagePath string) string {
	if !strings.HasPrefix(pagePath, "/") {
		return ""
	}
	idx := strings.Index(pagePath[1:], "/")
	if idx < 0 {
		return ""
	}
	return pagePath[:idx+1]
}
