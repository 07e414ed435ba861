package transactionlist

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/username/jababank/backend/src/dashboard"
	"github.com/username/jababank/backend/src/models"
)

// PaginationView is the view-model for the pagination controls.
type PaginationView struct {
	CurrentPage  int
	TotalPages   int
	PrevPage     int
	NextPage     int
	PrevDisabled bool
	NextDisabled bool
	Label        string
}

// BuildPagination returns the controls for meta. The second result is false
// when there is nothing to paginate.
func BuildPagination(meta *models.PaginationMeta) (PaginationView, bool) {
	if meta == nil {
		return PaginationView{}, false
	}
	total := meta.TotalPages
	if total < 1 {
		total = 1
	}
	current := meta.CurrentPage
	if current < 1 {
		current = 1
	}
	if total <= 1 {
		return PaginationView{}, false
	}
	return PaginationView{
		CurrentPage:  current,
		TotalPages:   total,
		PrevPage:     current - 1,
		NextPage:     current + 1,
		PrevDisabled: current <= 1,
		NextDisabled: current >= total,
		Label:        fmt.Sprintf("Page %d of %d", current, total),
	}, true
}

// PageURL returns action with its page query set to n.
func PageURL(action string, n int) string {
	u, err := url.Parse(action)
	if err != nil {
		return action
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}

type paginationData struct {
	PaginationView
	Action  string
	PrevURL string
	NextURL string
}

var paginationTemplate = template.Must(template.New("pagination").Parse(
	`<div class="pagination-controls">` +
		`<form class="pagination-nav" method="get" action="{{.Action}}">` +
		`<button type="submit" name="page" value="{{.PrevPage}}" data-href="{{.PrevURL}}" class="action-button secondary"{{if .PrevDisabled}} disabled{{end}}>Previous</button>` +
		`</form>` +
		`<span class="pagination-info">{{.Label}}</span>` +
		`<form class="pagination-nav" method="get" action="{{.Action}}">` +
		`<button type="submit" name="page" value="{{.NextPage}}" data-href="{{.NextURL}}" class="action-button secondary"{{if .NextDisabled}} disabled{{end}}>Next</button>` +
		`</form></div>`))

// RenderPagination writes the controls for meta into the pagination
// container, or clears it when there is a single page.
func RenderPagination(doc *dashboard.Document, paginationID string, meta *models.PaginationMeta, action string) error {
	view, ok := BuildPagination(meta)
	if !ok {
		return doc.SetInner(paginationID, "")
	}
	var buf bytes.Buffer
	if err := paginationTemplate.Execute(&buf, paginationData{
		PaginationView: view,
		Action:         action,
		PrevURL:        PageURL(action, view.PrevPage),
		NextURL:        PageURL(action, view.NextPage),
	}); err != nil {
		return fmt.Errorf("rendering pagination: %w", err)
	}
	return doc.SetInner(paginationID, buf.String())
}
