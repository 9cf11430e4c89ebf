package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/invoicer/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want 20", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")
	t.Setenv("TEST_MAX_PAGE", "200")

	cfg := pagination.Config{}
	err := cfg.Finalize(&pagination.ConfigEnv{
		DefaultPageSize: "TEST_PAGE_SIZE",
		MaxPageSize:     "TEST_MAX_PAGE",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
		t.Errorf("config = %+v, want 50/200", cfg)
	}
}

func TestConfigFinalizeDefaultExceedsMax(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}
}

func TestNormalize(t *testing.T) {
	blank := "  "
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantSize     int
		wantSearched bool
	}{
		{"zero values", pagination.PageRequest{}, 1, 20, false},
		{"clamps page size", pagination.PageRequest{Page: 3, PageSize: 500}, 3, 100, false},
		{"blank search dropped", pagination.PageRequest{Search: &blank}, 1, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage || tt.req.PageSize != tt.wantSize {
				t.Errorf("page/size = %d/%d, want %d/%d", tt.req.Page, tt.req.PageSize, tt.wantPage, tt.wantSize)
			}
			if (tt.req.Search != nil) != tt.wantSearched {
				t.Errorf("search = %v", tt.req.Search)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{"page": {"2"}, "page_size": {"10"}, "search": {"101"}, "sort": {"-total_due"}}
	req := pagination.PageRequestFromQuery(values, defaultConfig())

	if req.Page != 2 || req.PageSize != 10 {
		t.Errorf("page/size = %d/%d, want 2/10", req.Page, req.PageSize)
	}
	if req.Offset() != 10 {
		t.Errorf("offset = %d, want 10", req.Offset())
	}
	if got := req.SearchPattern(); got != "%101%" {
		t.Errorf("search pattern = %q, want %%101%%", got)
	}
	if req.Sort != "-total_due" {
		t.Errorf("sort = %q, want -total_due", req.Sort)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int
	}{
		{"exact", 40, 20, 2},
		{"remainder", 41, 20, 3},
		{"empty", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult[int](nil, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantPages {
				t.Errorf("total pages = %d, want %d", result.TotalPages, tt.wantPages)
			}
			if result.Data == nil {
				t.Error("data should be an empty slice, not nil")
			}
		})
	}
}

func TestConfigFinalizeMalformedEnv(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "twenty")

	cfg := pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE"}); err == nil {
		t.Error("expected error for malformed page size")
	}
}
