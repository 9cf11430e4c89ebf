package invoices

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/JaimeStill/invoicer/pkg/handlers"
	"github.com/JaimeStill/invoicer/pkg/pagination"
	"github.com/JaimeStill/invoicer/pkg/routes"
)

// Handler provides HTTP endpoints for invoice operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "invoices"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for invoice endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/invoices",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "GET", Pattern: "/{name}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{name}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{name}/document", Handler: h.Document},
			{Method: "GET", Pattern: "/{name}/file", Handler: h.File},
			{Method: "GET", Pattern: "/{name}/verify", Handler: h.Verify},
		},
	}
}

// List returns a paginated list of relational invoices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload accepts a multipart "file" field and processes it. The response
// code follows the processing status.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("upload rejected", "limit", humanize.IBytes(uint64(maxErr.Limit)))
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	result, err := h.sys.Upload(r.Context(), header.Filename, file)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, result.Status.HTTPStatus(), result)
}

// Find returns the relational invoice with its usage details.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	inv, err := h.sys.Find(r.Context(), r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, inv)
}

// Document returns the stored document for an invoice.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sys.Document(r.Context(), r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// File streams the archived source PDF.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	rc, err := h.sys.File(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("file stream interrupted", "pdf_name", name, "error", err)
	}
}

// Verify runs a single existence check against both stores.
// The strict query parameter also requires stored usage rows.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	strict, _ := strconv.ParseBool(r.URL.Query().Get("strict"))

	report := h.sys.Verify(r.Context(), name, strict)

	handlers.RespondJSON(w, http.StatusOK, newVerifyResponse(name, strict, report))
}

// Delete removes an invoice from both stores.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("name")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
