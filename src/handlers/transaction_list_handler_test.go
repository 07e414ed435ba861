package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/jababank/backend/src/services"
	"github.com/username/jababank/backend/src/transactionlist"
)

type fakeBank struct {
	mu      sync.Mutex
	paths   []string
	cookies []string
	routes  map[string]string
}

func (b *fakeBank) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.paths = append(b.paths, r.URL.Path)
	if c, err := r.Cookie("JSESSIONID"); err == nil {
		b.cookies = append(b.cookies, c.Value)
	}
	body, ok := b.routes[r.URL.Path]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

type testServer struct {
	bank     *fakeBank
	registry *transactionlist.Registry
	router   http.Handler
	baseURL  string
}

func newTestServer(t *testing.T, routes map[string]string) *testServer {
	t.Helper()
	bank := &fakeBank{routes: routes}
	upstream := httptest.NewServer(bank)
	t.Cleanup(upstream.Close)

	clients, err := services.NewUpstreamClientFactory(upstream.URL, 5*time.Second)
	require.NoError(t, err)

	registry := transactionlist.NewRegistry(time.Minute, time.Minute)
	h := NewTransactionListHandler(registry, clients, transactionlist.NewMockGenerator(5), TransactionListOptions{MaxPageSize: 50})

	r := chi.NewRouter()
	r.Use(ContextualLoggerMiddleware)
	r.Route("/api/transaction-lists", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleLoadPage)
		r.Get("/{id}/state", h.HandleGetState)
		r.Delete("/{id}", h.HandleDelete)
	})
	r.Get("/transaction-lists/{id}", h.HandleView)

	return &testServer{bank: bank, registry: registry, router: r, baseURL: upstream.URL}
}

func (s *testServer) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) TransactionListResponse {
	t.Helper()
	var resp TransactionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

const bankPage = `{"transactions":[
	{"id":101,"date":"May 15, 2025","description":"Payroll","type":"deposit","amount":"2500","isDebit":false,"fromAccount":"ACME","toAccount":"Checking ****4321","toUserId":4}
],"pagination":{"totalItems":21,"totalPages":3,"currentPage":1,"pageSize":10}}`

func TestCreateTransactionListUsesLegacyEndpointUnderContextPath(t *testing.T) {
	s := newTestServer(t, map[string]string{"/banking/api/transaction-data": bankPage})

	rec := s.do(t, http.MethodPost, "/api/transaction-lists",
		`{"pagePath":"/banking/dashboard.jsp","showUser":true,"title":"Admin <b>Dashboard</b>"}`,
		&http.Cookie{Name: "JSESSIONID", Value: "sess-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	resp := decodeResponse(t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "/api/transaction-lists/"+resp.ID, rec.Header().Get("Location"))
	assert.Equal(t, "/api/transaction-data", resp.Source)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, 1, resp.Page)
	assert.True(t, resp.Config.ShowUser)

	table := resp.Elements[transactionlist.DefaultContainerID]
	assert.Contains(t, table, `<td class="deposit">+$2500.00</td>`)
	assert.Contains(t, table, `<td>User #4</td>`)
	assert.Contains(t, resp.Elements[transactionlist.DefaultPaginationID], "Page 1 of 3")
	assert.Contains(t, resp.Styles, transactionlist.StyleElementID)

	assert.Equal(t, []string{"/banking/api/transaction-data"}, s.bank.paths)
	assert.Equal(t, []string{"sess-1"}, s.bank.cookies)
	assert.Equal(t, 1, s.registry.Count())
}

func TestCreateTransactionListRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := map[string]string{
		"bad json":        `{"pageSize":`,
		"page size":       `{"pageSize":0}`,
		"above max":       `{"pageSize":51}`,
		"container id":    `{"containerId":"1bad"}`,
		"endpoint":        `{"apiEndpoint":"javascript:alert(1)"}`,
		"fetch method":    `{"fetchParams":{"method":"DELETE"}}`,
		"same element id": `{"containerId":"list","paginationId":"list"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/transaction-lists", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
	assert.Zero(t, s.registry.Count())
	assert.Empty(t, s.bank.paths)
}

func TestLoadPageFallsBackToMockData(t *testing.T) {
	s := newTestServer(t, nil)
	created := decodeResponse(t, s.do(t, http.MethodPost, "/api/transaction-lists", `{}`))
	assert.True(t, created.Synthetic)

	rec := s.do(t, http.MethodGet, "/api/transaction-lists/"+created.ID+"?page=6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Synthetic)
	assert.Equal(t, "mock", resp.Source)
	assert.Equal(t, 6, resp.Page)
	assert.Equal(t, 8, strings.Count(resp.Elements[transactionlist.DefaultContainerID], "<tr><td>"))
	assert.Contains(t, resp.Elements[transactionlist.DefaultPaginationID], "Page 6 of 6")
	assert.Len(t, resp.Styles, 1)

	rec = s.do(t, http.MethodGet, "/api/transaction-lists/"+created.ID+"?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadPageWithDummyDataDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	created := decodeResponse(t, s.do(t, http.MethodPost, "/api/transaction-lists", `{"useDummyData":false}`))
	assert.Contains(t, created.Elements[transactionlist.DefaultContainerID], transactionlist.ErrorMessage)

	resp := decodeResponse(t, s.do(t, http.MethodGet, "/api/transaction-lists/"+created.ID+"?page=2", ""))
	assert.Contains(t, resp.LoadError, "API requests failed and dummy data generation is disabled")
	assert.Contains(t, resp.Elements[transactionlist.DefaultContainerID], ">Retry</button>")
	assert.Empty(t, resp.Elements[transactionlist.DefaultPaginationID])
	assert.Zero(t, resp.Page)
}

func TestUnknownTransactionList(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/transaction-lists/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Transaction list not initialized"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/transaction-lists/nope/state", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/transaction-lists/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/transaction-lists/nope", "").Code)
}

func TestViewRendersHTMLPage(t *testing.T) {
	s := newTestServer(t, nil)
	created := decodeResponse(t, s.do(t, http.MethodPost, "/api/transaction-lists", `{"title":"Employee Dashboard"}`))

	rec := s.do(t, http.MethodGet, "/transaction-lists/"+created.ID+"?page=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Employee Dashboard</title>")
	assert.Contains(t, body, `<style id="transaction-type-styles">`)
	assert.Contains(t, body, `<div id="transactionTableContainer"><table class="transaction-table" data-source="synthetic">`)
	assert.Contains(t, body, "Page 3 of 6")
	assert.Contains(t, body, `action="/transaction-lists/`+created.ID+`"`)

	state := decodeResponse(t, s.do(t, http.MethodGet, "/api/transaction-lists/"+created.ID+"/state", ""))
	assert.Equal(t, 3, state.Page)
}

func TestDeleteTransactionList(t *testing.T) {
	s := newTestServer(t, nil)
	created := decodeResponse(t, s.do(t, http.MethodPost, "/api/transaction-lists", `{}`))

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/transaction-lists/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/transaction-lists/"+created.ID, "").Code)
	assert.Zero(t, s.registry.Count())
}

func TestContextPathFromReferer(t *testing.T) {
	s := newTestServer(t, map[string]string{"/jababank/api/admin-transactions": bankPage})

	req := httptest.NewRequest(http.MethodPost, "/api/transaction-lists", strings.NewReader(`{}`))
	req.Header.Set("Referer", "http://localhost:8080/jababank/admin/dashboard.jsp")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "/api/admin-transactions", resp.Source)
	assert.Equal(t, []string{"/jababank/api/transaction-data", "/jababank/api/admin-transactions"}, s.bank.paths)
}

func TestCreateTransactionListRejectsEndpointOffUpstreamOrigin(t *testing.T) {
	s := newTestServer(t, map[string]string{"/api/employee/transactions": bankPage})
	internal := &fakeBank{routes: map[string]string{"/admin/secrets": bankPage}}
	internalSrv := httptest.NewServer(internal)
	t.Cleanup(internalSrv.Close)

	for _, endpoint := range []string{internalSrv.URL + "/admin/secrets", "//" + internalSrv.Listener.Addr().String() + "/admin/secrets"} {
		body, err := json.Marshal(map[string]string{"apiEndpoint": endpoint})
		require.NoError(t, err)
		rec := s.do(t, http.MethodPost, "/api/transaction-lists", string(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, endpoint)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Contains(t, payload["error"], "upstream origin")
	}
	assert.Zero(t, s.registry.Count())
	assert.Empty(t, internal.paths)
	assert.Empty(t, s.bank.paths)

	body, err := json.Marshal(map[string]string{"apiEndpoint": s.baseURL + "/api/employee/transactions"})
	require.NoError(t, err)
	rec := s.do(t, http.MethodPost, "/api/transaction-lists", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, decodeResponse(t, rec).Synthetic)
	assert.Equal(t, []string{"/api/employee/transactions"}, s.bank.paths)
}
