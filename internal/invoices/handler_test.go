package invoices_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/invoicer/internal/docstore"
	"github.com/JaimeStill/invoicer/internal/invoices"
	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/internal/verify"
	"github.com/JaimeStill/invoicer/pkg/pagination"
	"github.com/JaimeStill/invoicer/pkg/routes"
	"github.com/JaimeStill/invoicer/pkg/storage"
)

type mockSystem struct {
	result   invoices.Result
	uploaded string
	page     pagination.PageRequest
	strict   bool
	invoice  *relational.Invoice
	document *docstore.Document
	file     string
	err      error
}

func (m *mockSystem) Handler(maxUploadSize int64) *invoices.Handler {
	return invoices.NewHandler(m, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, maxUploadSize)
}

func (m *mockSystem) Upload(_ context.Context, filename string, r io.Reader) (invoices.Result, error) {
	if m.err != nil {
		return invoices.Result{}, m.err
	}
	data, _ := io.ReadAll(r)
	m.uploaded = filename + ":" + string(data)
	return m.result, nil
}

func (m *mockSystem) Process(context.Context, string, string) invoices.Result {
	return m.result
}

func (m *mockSystem) List(_ context.Context, page pagination.PageRequest) (*pagination.PageResult[relational.Invoice], error) {
	m.page = page
	r := pagination.NewPageResult([]relational.Invoice{}, 0, page.Page, page.PageSize)
	return &r, m.err
}

func (m *mockSystem) Find(context.Context, string) (*relational.Invoice, error) {
	return m.invoice, m.err
}

func (m *mockSystem) Document(context.Context, string) (*docstore.Document, error) {
	return m.document, m.err
}

func (m *mockSystem) File(context.Context, string) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return io.NopCloser(strings.NewReader(m.file)), nil
}

func (m *mockSystem) Verify(_ context.Context, _ string, strict bool) verify.Report {
	m.strict = strict
	return verify.Report{Relational: true, Document: strict, Attempts: 1}
}

func (m *mockSystem) Delete(context.Context, string) error {
	return m.err
}

func serve(t *testing.T, m *mockSystem, maxUpload int64, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	routes.Register(mux, m.Handler(maxUpload).Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(part, content)
	w.Close()

	req := httptest.NewRequest("POST", "/invoices", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandlerUploadStatus(t *testing.T) {
	tests := []struct {
		status invoices.Status
		want   int
	}{
		{invoices.StatusConfirmed, http.StatusOK},
		{invoices.StatusDelayed, http.StatusAccepted},
		{invoices.StatusExtractionFailed, http.StatusUnprocessableEntity},
		{invoices.StatusPersistenceFailed, http.StatusInternalServerError},
		{invoices.StatusBusy, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			m := &mockSystem{result: invoices.Result{Status: tt.status, PDFName: "inv.pdf"}}
			rec := serve(t, m, 1<<20, multipartUpload(t, "file", "inv.pdf", "%PDF-1.4"))

			if rec.Code != tt.want {
				t.Fatalf("code = %d, want %d", rec.Code, tt.want)
			}
			if m.uploaded != "inv.pdf:%PDF-1.4" {
				t.Errorf("uploaded = %q", m.uploaded)
			}

			var got invoices.Result
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got.Status != tt.status {
				t.Errorf("body status = %s", got.Status)
			}
		})
	}
}

func TestHandlerUploadRejects(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
		sys  *mockSystem
		max  int64
		want int
	}{
		{
			name: "missing file field",
			req:  func(t *testing.T) *http.Request { return multipartUpload(t, "document", "inv.pdf", "x") },
			sys:  &mockSystem{},
			max:  1 << 20,
			want: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "file", "inv.pdf", strings.Repeat("x", 4096))
			},
			sys:  &mockSystem{},
			max:  512,
			want: http.StatusRequestEntityTooLarge,
		},
		{
			name: "not a pdf",
			req:  func(t *testing.T) *http.Request { return multipartUpload(t, "file", "inv.txt", "x") },
			sys:  &mockSystem{err: invoices.ErrInvalidFile},
			max:  1 << 20,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.sys, tt.max, tt.req(t))
			if rec.Code != tt.want {
				t.Fatalf("code = %d, want %d", rec.Code, tt.want)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["error"] == "" {
				t.Error("error body expected")
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	m := &mockSystem{}
	rec := serve(t, m, 0, httptest.NewRequest("GET", "/invoices?page=2&page_size=500&search=101", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if m.page.Page != 2 || m.page.PageSize != 100 {
		t.Errorf("page = %+v", m.page)
	}
	if m.page.Search == nil || *m.page.Search != "101" {
		t.Errorf("search = %v", m.page.Search)
	}
}

func TestHandlerLookups(t *testing.T) {
	tests := []struct {
		name string
		path string
		sys  *mockSystem
		want int
	}{
		{"find", "/invoices/inv.pdf", &mockSystem{invoice: &relational.Invoice{PDFName: "inv.pdf"}}, http.StatusOK},
		{"find missing", "/invoices/inv.pdf", &mockSystem{err: relational.ErrNotFound}, http.StatusNotFound},
		{"document", "/invoices/inv.pdf/document", &mockSystem{document: &docstore.Document{ID: "inv.pdf"}}, http.StatusOK},
		{"document missing", "/invoices/inv.pdf/document", &mockSystem{err: docstore.ErrNotFound}, http.StatusNotFound},
		{"file missing", "/invoices/inv.pdf/file", &mockSystem{err: storage.ErrNotFound}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.sys, 0, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerFileStreams(t *testing.T) {
	m := &mockSystem{file: "%PDF-1.4 body"}
	rec := serve(t, m, 0, httptest.NewRequest("GET", "/invoices/inv.pdf/file", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "%PDF-1.4 body" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandlerVerify(t *testing.T) {
	tests := []struct {
		query     string
		strict    bool
		confirmed bool
	}{
		{"", false, false},
		{"?strict=true", true, true},
	}

	for _, tt := range tests {
		t.Run("strict="+tt.query, func(t *testing.T) {
			m := &mockSystem{}
			rec := serve(t, m, 0, httptest.NewRequest("GET", "/invoices/inv.pdf/verify"+tt.query, nil))

			var got invoices.VerifyResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if m.strict != tt.strict || got.Strict != tt.strict {
				t.Errorf("strict = %v / %v, want %v", m.strict, got.Strict, tt.strict)
			}
			if got.Confirmed != tt.confirmed || got.PDFName != "inv.pdf" {
				t.Errorf("response = %+v", got)
			}
		})
	}
}

func TestHandlerDelete(t *testing.T) {
	rec := serve(t, &mockSystem{}, 0, httptest.NewRequest("DELETE", "/invoices/inv.pdf", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("code = %d, want 204", rec.Code)
	}

	rec = serve(t, &mockSystem{err: invoices.ErrNotFound}, 0, httptest.NewRequest("DELETE", "/invoices/inv.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}
