package transactionlist

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/username/jababank/backend/src/dashboard"
)

const (
	StyleElementID = "transaction-type-styles"

	LoadingHTML   = `<div class="loading-indicator">Loading transactions...</div>`
	NoResultsHTML = `<div class="no-requests">No transactions found.</div>`
	ErrorMessage  = "Failed to load transactions. Please try again later."
)

// TransactionTypeCSS colours the amount cell by class.
const TransactionTypeCSS = `.transaction-table .withdrawal { color: #e74c3c; }
.transaction-table .deposit { color: #27ae60; }
.transaction-table .transfer { color: #7f8c8d; }
.transaction-table .debit { color: #e74c3c; }
.transaction-table .credit { color: #27ae60; }
`

var tableTemplate = template.Must(template.New("table").Parse(
	`<table class="transaction-table"{{if .Synthetic}} data-source="synthetic"{{end}}>` +
		`<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>` +
		`<tbody>{{range .Rows}}` +
		`{{if .Broken}}<tr><td colspan="{{$.ColumnCount}}" class="error-row">Error displaying transaction</td></tr>` +
		`{{else}}<tr><td>{{.ID}}</td><td>{{.Date}}</td>{{if $.ShowUser}}<td>{{.User}}</td>{{end}}` +
		`<td>{{.Description}}</td><td>{{.Type}}</td><td class="{{.AmountClass}}">{{.AmountHTML}}</td><td>{{.Account}}</td></tr>` +
		`{{end}}{{end}}</tbody></table>`))

// AmountHTML is the amount cell content. The text escaper in html/template
// would turn the leading "+" into "&#43;".
func (r RowView) AmountHTML() template.HTML {
	return template.HTML(template.HTMLEscapeString(r.Amount))
}

var errorTemplate = template.Must(template.New("error").Parse(
	`<div class="error-message"><p>{{.Message}}</p>` +
		`<form class="retry-form" method="get" action="{{.Action}}">` +
		`<input type="hidden" name="page" value="1">` +
		`<button type="submit" class="action-button secondary">Retry</button>` +
		`</form></div>`))

// RenderTable writes the table for view into the container. An empty view
// shows the no-results message and leaves the styles untouched.
func RenderTable(doc *dashboard.Document, containerID string, view TableView) error {
	if view.Empty() {
		return doc.SetInner(containerID, NoResultsHTML)
	}
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("rendering transaction table: %w", err)
	}
	doc.EnsureStyle(StyleElementID, TransactionTypeCSS)
	return doc.SetInner(containerID, buf.String())
}

// RenderLoading shows the loading indicator.
func RenderLoading(doc *dashboard.Document, containerID string) error {
	return doc.SetInner(containerID, LoadingHTML)
}

// RenderError shows the error panel with a Retry control that reloads page 1
// through action.
func RenderError(doc *dashboard.Document, containerID, action string) error {
	var buf bytes.Buffer
	err := errorTemplate.Execute(&buf, struct{ Message, Action string }{ErrorMessage, action})
	if err != nil {
		return fmt.Errorf("rendering error panel: %w", err)
	}
	return doc.SetInner(containerID, buf.String())
}
