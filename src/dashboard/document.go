// Package dashboard holds the page-view surface that widgets render into.
// A Document plays the role the browser DOM plays for the dashboard scripts:
// a set of addressable elements plus shared style fragments in the head.
package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"sort"
	"sync"
)

// ErrElementNotFound is returned when a widget targets an id the document
// does not contain.
var ErrElementNotFound = errors.New("element not found")

// Snapshot is a point-in-time copy of a Document.
type Snapshot struct {
	Elements map[string]string `json:"elements"`
	Styles   map[string]string `json:"styles"`
}

// Document is safe for concurrent use.
type Document struct {
	mu         sync.RWMutex
	title      string
	order      []string
	elements   map[string]string
	styleOrder []string
	styles     map[string]string
}

// NewDocument creates a document containing empty elements with the given ids.
func NewDocument(title string, ids ...string) *Document {
	d := &Document{
		title:    title,
		elements: make(map[string]string),
		styles:   make(map[string]string),
	}
	for _, id := range ids {
		d.AddElement(id)
	}
	return d
}

// AddElement registers an empty element. Adding an existing id is a no-op.
func (d *Document) AddElement(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.elements[id]; ok {
		return
	}
	d.elements[id] = ""
	d.order = append(d.order, id)
}

// Has reports whether the element exists.
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elements[id]
	return ok
}

// SetInner replaces the content of an element.
func (d *Document) SetInner(id, html string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.elements[id]; !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	d.elements[id] = html
	return nil
}

// Inner returns the content of an element.
func (d *Document) Inner(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	html, ok := d.elements[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	return html, nil
}

// EnsureStyle adds a style fragment under id unless one is already present.
// It reports whether the fragment was inserted.
func (d *Document) EnsureStyle(id, css string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.styles[id]; ok {
		return false
	}
	d.styles[id] = css
	d.styleOrder = append(d.styleOrder, id)
	return true
}

// StyleCount returns the number of injected style fragments.
func (d *Document) StyleCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.styles)
}

// Snapshot copies the current state.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Snapshot{
		Elements: make(map[string]string, len(d.elements)),
		Styles:   make(map[string]string, len(d.styles)),
	}
	for k, v := range d.elements {
		s.Elements[k] = v
	}
	for k, v := range d.styles {
		s.Styles[k] = v
	}
	return s
}

type styleView struct {
	ID  string
	CSS template.CSS
}

type elementView struct {
	ID   string
	HTML template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{range .Styles}}<style id="{{.ID}}">{{.CSS}}</style>
{{end}}</head>
<body>
{{range .Elements}}<div id="{{.ID}}">{{.HTML}}</div>
{{end}}</body>
</html>
`))

// WriteHTML renders the whole document. Element content is trusted: it was
// produced by widget renderers that escape their inputs.
func (d *Document) WriteHTML(w io.Writer) error {
	d.mu.RLock()
	data := struct {
		Title    string
		Styles   []styleView
		Elements []elementView
	}{Title: d.title}
	for _, id := range d.styleOrder {
		data.Styles = append(data.Styles, styleView{ID: id, CSS: template.CSS(d.styles[id])})
	}
	for _, id := range d.order {
		data.Elements = append(data.Elements, elementView{ID: id, HTML: template.HTML(d.elements[id])})
	}
	d.mu.RUnlock()

	return pageTemplate.Execute(w, data)
}

// IDs returns element ids in insertion order.
func (d *Document) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := append([]string(nil), d.order...)
	return out
}

// StyleIDs returns the injected style ids, sorted.
func (d *Document) StyleIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.styles))
	for id := range d.styles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
