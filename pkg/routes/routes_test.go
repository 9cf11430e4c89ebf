package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/invoicer/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	patterns := routes.Register(mux, routes.Group{
		Prefix: "/invoices",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{name}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/{name}/document",
				Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: ok}},
			},
		},
	})

	want := []string{
		"GET /invoices",
		"GET /invoices/{name}",
		"GET /invoices/{name}/document",
	}
	if !slices.Equal(patterns, want) {
		t.Errorf("patterns: got %v, want %v", patterns, want)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/invoices", http.StatusOK},
		{"GET", "/invoices/inv.pdf", http.StatusOK},
		{"GET", "/invoices/inv.pdf/document", http.StatusOK},
		{"POST", "/invoices", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
