// Package view turns visible records into table rows a front end can draw.
package view

import (
	"fmt"
	"net/http"
	"net/url"

	"backoffice/internal/catalog/domain/model"
)

// Action kinds offered on every row.
const (
	ActionDetails = "details"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
)

// Action is a row button: the route that performs it.
type Action struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Method string `json:"method"`
	Href   string `json:"href"`
}

// Cell is one rendered column value.
type Cell struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Row is one rendered record.
type Row struct {
	ID      model.ID `json:"id"`
	Cells   []Cell   `json:"cells"`
	Actions []Action `json:"actions"`
}

// Header names one column.
type Header struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Table is the rendered page.
type Table struct {
	Entity  string   `json:"entity"`
	Headers []Header `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Renderer renders records of one schema under basePath (for example /api/v1).
type Renderer[T any] struct {
	schema   model.Schema[T]
	basePath string
}

// NewRenderer returns a renderer for schema.
func NewRenderer[T any](schema model.Schema[T], basePath string) *Renderer[T] {
	return &Renderer[T]{schema: schema, basePath: basePath}
}

// Render builds one row per visible record, in order.
func (r *Renderer[T]) Render(visible []T) Table {
	headers := make([]Header, len(r.schema.Columns))
	for i, col := range r.schema.Columns {
		headers[i] = Header{Key: col.Key, Label: col.Header}
	}

	rows := make([]Row, 0, len(visible))
	for _, rec := range visible {
		id := r.schema.IDOf(rec)
		cells := make([]Cell, len(r.schema.Columns))
		for i, col := range r.schema.Columns {
			cells[i] = Cell{Key: col.Key, Value: col.Value(rec)}
		}
		rows = append(rows, Row{ID: id, Cells: cells, Actions: r.actions(id)})
	}

	return Table{Entity: r.schema.Name, Headers: headers, Rows: rows}
}

func (r *Renderer[T]) actions(id model.ID) []Action {
	item := r.ItemPath(id)
	return []Action{
		{Kind: ActionDetails, ID: id.String(), Method: http.MethodGet, Href: item},
		{Kind: ActionEdit, ID: id.String(), Method: http.MethodPost, Href: item + "/form"},
		{Kind: ActionDelete, ID: id.String(), Method: http.MethodDelete, Href: item + "?confirm=true"},
	}
}

// ItemPath is the route of a single record.
func (r *Renderer[T]) ItemPath(id model.ID) string {
	return fmt.Sprintf("%s/%s/%s", r.basePath, r.schema.Name, url.PathEscape(id.String()))
}
