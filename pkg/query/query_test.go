package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/invoicer/pkg/query"
)

func projection() *query.ProjectionMap {
	return query.NewProjectionMap("invoices", "i").
		Project("id", "id").
		Project("pdf_name", "pdf_name").
		Project("account_number", "account_number").
		Project("processed_at", "processed_at")
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []query.SortField
	}{
		{"empty", "", nil},
		{"single", "pdf_name", []query.SortField{{Field: "pdf_name"}}},
		{"descending", "-processed_at", []query.SortField{{Field: "processed_at", Descending: true}}},
		{"mixed with blanks", " pdf_name, ,-id ", []query.SortField{
			{Field: "pdf_name"},
			{Field: "id", Descending: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildDefaultSort(t *testing.T) {
	b := query.NewBuilder(projection(), query.SortField{Field: "processed_at", Descending: true})

	sql, args := b.Build()
	want := "SELECT i.id, i.pdf_name, i.account_number, i.processed_at FROM invoices i ORDER BY i.processed_at DESC"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args: got %v", args)
	}
}

func TestBuildPageWithSearch(t *testing.T) {
	b := query.NewBuilder(projection()).
		WhereSearch("%acme%", "pdf_name", "account_number").
		OrderBy(query.ParseSortFields("pdf_name"))

	sql, args := b.BuildPage(10, 20)
	want := "SELECT i.id, i.pdf_name, i.account_number, i.processed_at FROM invoices i" +
		" WHERE (i.pdf_name LIKE ? OR i.account_number LIKE ?) ORDER BY i.pdf_name ASC LIMIT ? OFFSET ?"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"%acme%", "%acme%", 10, 20}) {
		t.Errorf("args: got %v", args)
	}
}

func TestBuildCount(t *testing.T) {
	b := query.NewBuilder(projection()).WhereEquals("pdf_name", "a.pdf")

	sql, args := b.BuildCount()
	if sql != "SELECT COUNT(*) FROM invoices i WHERE i.pdf_name = ?" {
		t.Errorf("sql: got %s", sql)
	}
	if !reflect.DeepEqual(args, []any{"a.pdf"}) {
		t.Errorf("args: got %v", args)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	b := query.NewBuilder(projection(), query.SortField{Field: "id"}).
		WhereEquals("1=1; DROP TABLE invoices", "x").
		WhereSearch("%x%", "nope").
		OrderBy(query.ParseSortFields("-nope"))

	sql, args := b.Build()
	want := "SELECT i.id, i.pdf_name, i.account_number, i.processed_at FROM invoices i ORDER BY i.id ASC"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args: got %v", args)
	}
}

func TestComputedColumn(t *testing.T) {
	p := query.NewProjectionMap("invoices", "i").
		Project("id", "id").
		Computed("(SELECT 1)")

	if p.Columns() != "i.id, (SELECT 1)" {
		t.Errorf("columns: got %s", p.Columns())
	}
	if _, ok := p.Column("(SELECT 1)"); ok {
		t.Error("computed expression should not be addressable")
	}
}
