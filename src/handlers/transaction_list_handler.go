// backend/src/handlers/transaction_list_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/username/jababank/backend/src/dashboard"
	"github.com/username/jababank/backend/src/logger"
	"github.com/username/jababank/backend/src/security/validation"
	"github.com/username/jababank/backend/src/services"
	"github.com/username/jababank/backend/src/transactionlist"
)

const (
	maxCreateBodyBytes = 64 << 10
	defaultPageTitle   = "Transactions"
	notInitializedMsg  = "Transaction list not initialized"
)

// TransactionListOptions are the server-side settings shared by all widgets.
type TransactionListOptions struct {
	// ContextPath overrides the path derived from the dashboard page.
	ContextPath string
	Defaults    transactionlist.ListConfig
	MaxPageSize int
	// ViewPrefix is the route prefix of the HTML page view.
	ViewPrefix string
}

type TransactionListHandler struct {
	registry *transactionlist.Registry
	clients  services.UpstreamClientFactory
	mock     *transactionlist.MockGenerator
	opts     TransactionListOptions
}

func NewTransactionListHandler(registry *transactionlist.Registry, clients services.UpstreamClientFactory, mock *transactionlist.MockGenerator, opts TransactionListOptions) *TransactionListHandler {
	if opts.ViewPrefix == "" {
		opts.ViewPrefix = "/transaction-lists"
	}
	if opts.Defaults.PageSize == 0 {
		opts.Defaults = transactionlist.DefaultListConfig()
	}
	if opts.MaxPageSize < opts.Defaults.PageSize {
		opts.MaxPageSize = opts.Defaults.PageSize
	}
	return &TransactionListHandler{
		registry: registry,
		clients:  clients,
		mock:     mock,
		opts:     opts,
	}
}

// CreateTransactionListRequest is the body of POST /api/transaction-lists.
type CreateTransactionListRequest struct {
	transactionlist.Options
	// PagePath is the path of the dashboard page hosting the widget.
	PagePath string `json:"pagePath,omitempty"`
	Title    string `json:"title,omitempty"`
}

// TransactionListResponse describes a widget and what it currently shows.
type TransactionListResponse struct {
	ID        string                     `json:"id"`
	Config    transactionlist.ListConfig `json:"config"`
	Page      int                        `json:"page,omitempty"`
	Source    string                     `json:"source,omitempty"`
	Synthetic bool                       `json:"synthetic"`
	LoadError string                     `json:"loadError,omitempty"`
	dashboard.Snapshot
}

// HandleCreate creates a widget and loads its first page.
func (h *TransactionListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req CreateTransactionListRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxLogger.Warn("Invalid transaction list request body", "error", err)
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := transactionlist.MergeConfig(h.opts.Defaults, req.Options)
	if err := cfg.Validate(h.opts.MaxPageSize); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEndpointOrigin(cfg.APIEndpoint, "apiEndpoint", h.clients.BaseURL()); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	title := validation.CleanDisplayText(req.Title)
	if title == "" {
		title = defaultPageTitle
	}
	doc := dashboard.NewDocument(title, cfg.ContainerID, cfg.PaginationID)

	client, err := h.clients.NewClient(r.Cookies())
	if err != nil {
		sendJSONError(w, "Failed to prepare upstream client", http.StatusInternalServerError)
		return
	}
	contextPath := h.contextPath(req.PagePath, r)
	source, err := transactionlist.NewDataSource(client, h.clients.BaseURL().String(), contextPath, h.mock)
	if err != nil {
		ctxLogger.Error("Failed to build transaction data source", "error", err)
		sendJSONError(w, "Failed to prepare transaction source", http.StatusInternalServerError)
		return
	}

	id := h.registry.NewID()
	ctrl, err := transactionlist.Init(r.Context(), req.Options, transactionlist.Deps{
		ID:          id,
		Document:    doc,
		Source:      source,
		PageURL:     h.viewURL(id),
		Defaults:    h.opts.Defaults,
		MaxPageSize: h.opts.MaxPageSize,
	})
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.registry.Add(&transactionlist.Widget{
		ID:         id,
		Controller: ctrl,
		Document:   doc,
		CreatedAt:  time.Now(),
	})
	ctxLogger.Info("Transaction list created", "widgetID", id, "contextPath", contextPath)

	resp := h.describe(ctrl, nil)
	w.Header().Set("Location", "/api/transaction-lists/"+id)
	sendJSON(w, http.StatusCreated, resp)
}

// HandleLoadPage loads ?page=N (default 1) and returns the widget state.
func (h *TransactionListHandler) HandleLoadPage(w http.ResponseWriter, r *http.Request) {
	widget, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		logger.FromContext(r.Context()).Error(notInitializedMsg, "widgetID", chi.URLParam(r, "id"))
		sendJSONError(w, notInitializedMsg, http.StatusNotFound)
		return
	}

	page, err := pageParam(r)
	if err != nil {
		sendJSONError(w, "Invalid page parameter", http.StatusBadRequest)
		return
	}

	loadErr := widget.Controller.LoadPage(r.Context(), page)
	sendJSON(w, http.StatusOK, h.describe(widget.Controller, loadErr))
}

// HandleGetState returns the widget state without loading anything.
func (h *TransactionListHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	widget, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		sendJSONError(w, notInitializedMsg, http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, h.describe(widget.Controller, nil))
}

// HandleView renders the widget as a full HTML page. With ?page=N it loads
// that page first, which is how the pagination and retry forms navigate.
func (h *TransactionListHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	widget, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, notInitializedMsg, http.StatusNotFound)
		return
	}

	if r.URL.Query().Has("page") {
		page, err := pageParam(r)
		if err != nil {
			http.Error(w, "Invalid page parameter", http.StatusBadRequest)
			return
		}
		if err := widget.Controller.LoadPage(r.Context(), page); err != nil && !errors.Is(err, transactionlist.ErrStaleLoad) {
			logger.FromContext(r.Context()).Warn("Transaction page load failed", "widgetID", widget.ID, "page", page, "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := widget.Document.WriteHTML(w); err != nil {
		logger.FromContext(r.Context()).Error("Error writing transaction list page", "widgetID", widget.ID, "error", err)
	}
}

// HandleDelete drops the widget.
func (h *TransactionListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry.Remove(id) {
		sendJSONError(w, notInitializedMsg, http.StatusNotFound)
		return
	}
	logger.FromContext(r.Context()).Info("Transaction list removed", "widgetID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionListHandler) describe(ctrl *transactionlist.Controller, loadErr error) TransactionListResponse {
	resp := TransactionListResponse{
		ID:       ctrl.ID(),
		Config:   ctrl.Config(),
		Snapshot: ctrl.Document().Snapshot(),
	}
	if loadErr != nil && !errors.Is(loadErr, transactionlist.ErrStaleLoad) {
		resp.LoadError = loadErr.Error()
		return resp
	}
	if page := ctrl.LastPage(); page != nil {
		resp.Source = page.Source
		resp.Synthetic = page.Synthetic
		if page.Pagination != nil {
			resp.Page = page.Pagination.CurrentPage
		}
	}
	return resp
}

func (h *TransactionListHandler) viewURL(id string) string {
	return strings.TrimRight(h.opts.ViewPrefix, "/") + "/" + id
}

// contextPath prefers configuration, then the declared page path, then the
// Referer of the creating request.
func (h *TransactionListHandler) contextPath(pagePath string, r *http.Request) string {
	if h.opts.ContextPath != "" {
		return h.opts.ContextPath
	}
	if pagePath != "" {
		return transactionlist.ContextPathFromPage(pagePath)
	}
	if ref := r.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil {
			return transactionlist.ContextPathFromPage(u.Path)
		}
	}
	return ""
}

func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if page < 1 {
		return 1, nil
	}
	return page, nil
}
