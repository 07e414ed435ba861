// Package transactionlist implements the paginated transaction list widget:
// it resolves pages of transactions from upstream endpoints (falling back to
// synthetic data when allowed), turns them into row view-models and renders
// them, with pagination controls, into a dashboard.Document.
package transactionlist

import (
	"fmt"
	"strings"

	"github.com/username/jababank/backend/src/security/validation"
)

const (
	DefaultContainerID  = "transactionTableContainer"
	DefaultPaginationID = "transactionPagination"
	DefaultPageSize     = 10
)

// FetchParams are extra request options for a configured endpoint.
type FetchParams struct {
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// ListConfig is the per-widget configuration. It is fixed once the widget
// is initialized.
type ListConfig struct {
	ContainerID  string       `json:"containerId"`
	PaginationID string       `json:"paginationId"`
	UserID       *int         `json:"userId,omitempty"`
	ShowUser     bool         `json:"showUser"`
	PageSize     int          `json:"pageSize"`
	APIEndpoint  string       `json:"apiEndpoint,omitempty"`
	FetchParams  *FetchParams `json:"fetchParams,omitempty"`
	// UseDummyData is tri-state: nil and true allow the synthetic fallback,
	// an explicit false forbids it.
	UseDummyData *bool `json:"useDummyData,omitempty"`
}

// Options carries caller-supplied overrides. Nil fields keep the default.
type Options struct {
	ContainerID  *string      `json:"containerId,omitempty"`
	PaginationID *string      `json:"paginationId,omitempty"`
	UserID       *int         `json:"userId,omitempty"`
	ShowUser     *bool        `json:"showUser,omitempty"`
	PageSize     *int         `json:"pageSize,omitempty"`
	APIEndpoint  *string      `json:"apiEndpoint,omitempty"`
	FetchParams  *FetchParams `json:"fetchParams,omitempty"`
	UseDummyData *bool        `json:"useDummyData,omitempty"`
}

// DefaultListConfig returns the defaults every widget starts from.
func DefaultListConfig() ListConfig {
	return ListConfig{
		ContainerID:  DefaultContainerID,
		PaginationID: DefaultPaginationID,
		PageSize:     DefaultPageSize,
	}
}

// MergeConfig overlays opts on base.
func MergeConfig(base ListConfig, opts Options) ListConfig {
	cfg := base.clone()
	if opts.ContainerID != nil {
		cfg.ContainerID = strings.TrimSpace(*opts.ContainerID)
	}
	if opts.PaginationID != nil {
		cfg.PaginationID = strings.TrimSpace(*opts.PaginationID)
	}
	if opts.UserID != nil {
		id := *opts.UserID
		cfg.UserID = &id
	}
	if opts.ShowUser != nil {
		cfg.ShowUser = *opts.ShowUser
	}
	if opts.PageSize != nil {
		cfg.PageSize = *opts.PageSize
	}
	if opts.APIEndpoint != nil {
		cfg.APIEndpoint = strings.TrimSpace(*opts.APIEndpoint)
	}
	if opts.FetchParams != nil {
		cfg.FetchParams = opts.FetchParams.clone()
	}
	if opts.UseDummyData != nil {
		v := *opts.UseDummyData
		cfg.UseDummyData = &v
	}
	return cfg
}

// Validate checks the configuration before any request is made.
func (c ListConfig) Validate(maxPageSize int) error {
	if err := validation.ValidateElementID(c.ContainerID, "containerId"); err != nil {
		return err
	}
	if err := validation.ValidateElementID(c.PaginationID, "paginationId"); err != nil {
		return err
	}
	if c.ContainerID == c.PaginationID {
		return fmt.Errorf("%w: containerId and paginationId must differ", validation.ErrValidationFailed)
	}
	if maxPageSize < 1 {
		maxPageSize = 1
	}
	if err := validation.ValidateIntRange(c.PageSize, "pageSize", 1, maxPageSize); err != nil {
		return err
	}
	if err := validation.ValidateEndpoint(c.APIEndpoint, "apiEndpoint"); err != nil {
		return err
	}
	if c.FetchParams != nil {
		if err := validation.ValidateHTTPMethod(c.FetchParams.Method); err != nil {
			return err
		}
		if err := validation.ValidateHeaders(c.FetchParams.Headers); err != nil {
			return err
		}
	}
	return nil
}

// UserFilter returns the user id to filter by. Zero and negative ids mean
// no filter.
func (c ListConfig) UserFilter() (int, bool) {
	if c.UserID == nil || *c.UserID <= 0 {
		return 0, false
	}
	return *c.UserID, true
}

// AllowsDummyData reports whether the synthetic fallback may be used.
func (c ListConfig) AllowsDummyData() bool {
	return c.UseDummyData == nil || *c.UseDummyData
}

func (c ListConfig) clone() ListConfig {
	out := c
	if c.UserID != nil {
		id := *c.UserID
		out.UserID = &id
	}
	if c.UseDummyData != nil {
		v := *c.UseDummyData
		out.UseDummyData = &v
	}
	out.FetchParams = c.FetchParams.clone()
	return out
}

func (p *FetchParams) clone() *FetchParams {
	if p == nil {
		return nil
	}
	out := &FetchParams{Method: p.Method, Body: p.Body}
	if p.Headers != nil {
		out.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			out.Headers[k] = v
		}
	}
	return out
}
