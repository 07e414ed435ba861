package transactionlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/jababank/backend/src/dashboard"
	"github.com/username/jababank/backend/src/models"
)

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name             string
		meta             *models.PaginationMeta
		wantOK           bool
		wantPrevDisabled bool
		wantNextDisabled bool
		wantLabel        string
	}{
		{name: "nil meta", meta: nil},
		{name: "single page", meta: &models.PaginationMeta{TotalPages: 1, CurrentPage: 1}},
		{name: "zero pages", meta: &models.PaginationMeta{}},
		{"first page", &models.PaginationMeta{TotalPages: 6, CurrentPage: 1}, true, true, false, "Page 1 of 6"},
		{"middle page", &models.PaginationMeta{TotalPages: 6, CurrentPage: 3}, true, false, false, "Page 3 of 6"},
		{"last page", &models.PaginationMeta{TotalPages: 6, CurrentPage: 6}, true, false, true, "Page 6 of 6"},
		{"missing current page", &models.PaginationMeta{TotalPages: 2}, true, true, false, "Page 1 of 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, ok := BuildPagination(tt.meta)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantPrevDisabled, view.PrevDisabled)
			assert.Equal(t, tt.wantNextDisabled, view.NextDisabled)
			assert.Equal(t, tt.wantLabel, view.Label)
			assert.Equal(t, view.CurrentPage-1, view.PrevPage)
			assert.Equal(t, view.CurrentPage+1, view.NextPage)
		})
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/transaction-lists/abc?page=3", PageURL("/transaction-lists/abc", 3))
	assert.Equal(t, "/t?page=2&theme=dark", PageURL("/t?page=9&theme=dark", 2))
}

func TestRenderPagination(t *testing.T) {
	doc := dashboard.NewDocument("Transactions", "pager")

	require.NoError(t, RenderPagination(doc, "pager", &models.PaginationMeta{TotalPages: 6, CurrentPage: 1}, "/transaction-lists/w1"))
	html, _ := doc.Inner("pager")
	assert.Contains(t, html, `<div class="pagination-controls">`)
	assert.Contains(t, html, `<span class="pagination-info">Page 1 of 6</span>`)
	assert.Contains(t, html, `value="0" data-href="/transaction-lists/w1?page=0" class="action-button secondary" disabled>Previous</button>`)
	assert.Contains(t, html, `value="2" data-href="/transaction-lists/w1?page=2" class="action-button secondary">Next</button>`)

	require.NoError(t, RenderPagination(doc, "pager", &models.PaginationMeta{TotalPages: 1, CurrentPage: 1}, "/x"))
	html, _ = doc.Inner("pager")
	assert.Empty(t, html)

	assert.ErrorIs(t, RenderPagination(doc, "missing", &models.PaginationMeta{TotalPages: 3}, "/x"), dashboard.ErrElementNotFound)
}
