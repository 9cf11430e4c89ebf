// Package query builds dialect-neutral SELECT statements over a projection.
// Statements use ? placeholders; callers rebind them for their dialect.
package query

import (
	"strings"
)

// ProjectionMap maps logical field names to qualified column references (alias.column).
type ProjectionMap struct {
	table      string
	alias      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for table under alias.
func NewProjectionMap(table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project adds column to the select list under the logical name field.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Computed adds a raw expression to the select list. Computed expressions
// cannot be filtered or sorted on.
func (p *ProjectionMap) Computed(expr string) *ProjectionMap {
	p.columnList = append(p.columnList, expr)
	return p
}

// From returns the aliased table reference.
func (p *ProjectionMap) From() string {
	return p.table + " " + p.alias
}

// Column returns the qualified column for field.
func (p *ProjectionMap) Column(field string) (string, bool) {
	col, ok := p.columns[field]
	return col, ok
}

// Columns returns the select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
