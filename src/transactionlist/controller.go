package transactionlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/username/jababank/backend/src/dashboard"
	"github.com/username/jababank/backend/src/logger"
	"github.com/username/jababank/backend/src/models"
)

var (
	// ErrNotInitialized is returned by LoadPage on a handle that was never
	// set up.
	ErrNotInitialized = errors.New("transaction list not initialized")
	// ErrStaleLoad is returned when a newer LoadPage superseded this one.
	ErrStaleLoad = errors.New("transaction page superseded by a newer request")
)

// Deps are the collaborators a Controller is bound to.
type Deps struct {
	// ID identifies the widget in logs.
	ID       string
	Document *dashboard.Document
	Source   PageSource
	// PageURL is where pagination and retry controls point.
	PageURL string
	// Defaults is the base config options are merged over. Zero means
	// DefaultListConfig.
	Defaults    ListConfig
	MaxPageSize int
}

// Controller is the handle for one transaction list widget.
type Controller struct {
	id      string
	cfg     ListConfig
	doc     *dashboard.Document
	resolve Resolver
	pageURL string

	mu         sync.Mutex
	generation uint64
	lastPage   *models.Page
}

// Init merges opts over the defaults, validates the result, binds the widget
// and loads page 1. A failed first load is rendered into the document and
// logged; it does not fail Init.
func Init(ctx context.Context, opts Options, deps Deps) (*Controller, error) {
	if deps.Document == nil {
		return nil, errors.New("transaction list requires a document")
	}
	if deps.Source == nil {
		return nil, errors.New("transaction list requires a page source")
	}

	base := deps.Defaults
	if base.ContainerID == "" && base.PaginationID == "" && base.PageSize == 0 {
		base = DefaultListConfig()
	}
	cfg := MergeConfig(base, opts)
	maxSize := deps.MaxPageSize
	if maxSize < 1 {
		maxSize = 100
	}
	if err := cfg.Validate(maxSize); err != nil {
		return nil, err
	}

	c := &Controller{
		id:      deps.ID,
		cfg:     cfg,
		doc:     deps.Document,
		resolve: deps.Source.Resolver(cfg),
		pageURL: deps.PageURL,
	}
	c.logger(ctx).Info("Transaction list initialized",
		"containerId", cfg.ContainerID,
		"paginationId", cfg.PaginationID,
		"pageSize", cfg.PageSize,
		"apiEndpoint", cfg.APIEndpoint,
		"showUser", cfg.ShowUser)

	if err := c.LoadPage(ctx, 1); err != nil && !errors.Is(err, ErrStaleLoad) {
		c.logger(ctx).Warn("Initial transaction load failed", "error", err)
	}
	return c, nil
}

// ID returns the widget id.
func (c *Controller) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// Config returns a copy of the widget configuration.
func (c *Controller) Config() ListConfig {
	if c == nil {
		return ListConfig{}
	}
	return c.cfg.clone()
}

// Document returns the surface the widget renders into.
func (c *Controller) Document() *dashboard.Document {
	if c == nil {
		return nil
	}
	return c.doc
}

// LastPage returns the most recently rendered page, if any.
func (c *Controller) LastPage() *models.Page {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPage
}

// LoadPage resolves page n and renders it. Only the most recently started
// load may write the result; older ones return ErrStaleLoad.
func (c *Controller) LoadPage(ctx context.Context, n int) error {
	if c == nil || c.resolve == nil || c.doc == nil {
		logger.FromContext(ctx).Error("Transaction list not initialized")
		return ErrNotInitialized
	}
	log := c.logger(ctx)

	if !c.doc.Has(c.cfg.ContainerID) {
		log.Error("Transaction container not found", "containerId", c.cfg.ContainerID)
		return fmt.Errorf("%w: %s", dashboard.ErrElementNotFound, c.cfg.ContainerID)
	}
	if n < 1 {
		n = 1
	}

	token := c.begin(log)
	userID, _ := c.cfg.UserFilter()
	page, err := c.resolve(ctx, PageRequest{Page: n, PageSize: c.cfg.PageSize, UserID: userID})
	if err == nil && page == nil {
		err = fmt.Errorf("%w: empty response", models.ErrMalformedPayload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.generation {
		log.Debug("Discarding stale transaction page", "page", n, "generation", token, "latest", c.generation)
		return ErrStaleLoad
	}

	if err != nil {
		log.Error("Error loading transactions", "page", n, "error", err)
		c.renderFailure(log)
		return fmt.Errorf("loading transactions page %d: %w", n, err)
	}

	if page.Pagination == nil {
		log.Warn("Upstream returned no pagination metadata, assuming a single page; this may be a backend bug",
			"page", n, "source", page.Source, "rows", len(page.Transactions))
		meta := models.SinglePage(len(page.Transactions))
		page.Pagination = &meta
	}
	if page.Synthetic {
		log.Warn("Rendering synthetic transaction data", "page", n)
	}

	view := BuildTable(page, c.cfg.ShowUser)
	for i, row := range view.Rows {
		if row.Broken {
			log.Error("Error rendering transaction row", "index", i, "error", page.Transactions[i].DecodeErr)
		}
	}
	if err := RenderTable(c.doc, c.cfg.ContainerID, view); err != nil {
		log.Error("Error rendering transactions", "page", n, "error", err)
		c.renderFailure(log)
		return err
	}

	// An empty page past the end still gets controls back to earlier pages.
	if err := RenderPagination(c.doc, c.cfg.PaginationID, page.Pagination, c.pageURL); err != nil {
		log.Warn("Pagination container not rendered", "paginationId", c.cfg.PaginationID, "error", err)
	}

	c.lastPage = page
	log.Debug("Transactions rendered", "page", n, "rows", len(view.Rows), "source", page.Source)
	return nil
}

func (c *Controller) begin(log *slog.Logger) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if err := RenderLoading(c.doc, c.cfg.ContainerID); err != nil {
		log.Warn("Could not show loading indicator", "error", err)
	}
	return c.generation
}

// renderFailure must be called with c.mu held.
func (c *Controller) renderFailure(log *slog.Logger) {
	if err := RenderError(c.doc, c.cfg.ContainerID, c.pageURL); err != nil {
		log.Error("Could not render error panel", "error", err)
	}
	c.clearPagination(log)
}

func (c *Controller) clearPagination(log *slog.Logger) {
	if !c.doc.Has(c.cfg.PaginationID) {
		return
	}
	if err := c.doc.SetInner(c.cfg.PaginationID, ""); err != nil {
		log.Warn("Could not clear pagination", "error", err)
	}
}

func (c *Controller) logger(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx).With("widgetID", c.id)
}
