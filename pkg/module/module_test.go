package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/invoicer/pkg/module"
)

func echoPath(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, r.URL.Path)
}

func TestNewPrefixValidation(t *testing.T) {
	tests := []struct {
		prefix string
		panics bool
	}{
		{"/api", false},
		{"/batch", false},
		{"", true},
		{"api", true},
		{"/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.panics {
					t.Errorf("panic = %v, want panic %v", r, tt.panics)
				}
			}()
			if m := module.New(tt.prefix, http.NewServeMux()); m.Prefix() != tt.prefix {
				t.Errorf("prefix: got %s, want %s", m.Prefix(), tt.prefix)
			}
		})
	}
}

func TestServeStripsPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", echoPath)
	mux.HandleFunc("GET /invoices/{name}", echoPath)

	m := module.New("/api", mux)

	tests := []struct {
		path string
		want string
	}{
		{"/api", "/"},
		{"/api/invoices/inv.pdf", "/invoices/inv.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			m.Serve(rec, req)

			if rec.Body.String() != tt.want {
				t.Errorf("inner path: got %s, want %s", rec.Body.String(), tt.want)
			}
			if req.URL.Path != tt.path {
				t.Errorf("outer request mutated: %s", req.URL.Path)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", echoPath)

	m := module.New("/api", mux)

	var calls int
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	})

	for range 2 {
		m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))
	}

	if calls != 2 {
		t.Errorf("middleware calls: got %d, want 2", calls)
	}
}

func TestRouter(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /invoices", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "api")
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", api))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"module", "/api/invoices", http.StatusOK, "api"},
		{"trailing slash", "/api/invoices/", http.StatusOK, "api"},
		{"native", "/healthz", http.StatusOK, "ok"},
		{"unmatched", "/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate mount")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
