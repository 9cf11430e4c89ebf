package invoices

import (
	"net/http"

	"github.com/JaimeStill/invoicer/internal/dualwrite"
	"github.com/JaimeStill/invoicer/internal/verify"
)

// Status is the outward result of processing one document.
type Status string

const (
	StatusConfirmed         Status = "confirmed"
	StatusDelayed           Status = "delayed"
	StatusExtractionFailed  Status = "extraction_failed"
	StatusPersistenceFailed Status = "persistence_failed"
	StatusBusy              Status = "busy"
)

// HTTPStatus maps the result status to the response code returned to uploaders.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusConfirmed:
		return http.StatusOK
	case StatusDelayed:
		return http.StatusAccepted
	case StatusExtractionFailed:
		return http.StatusUnprocessableEntity
	case StatusBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Result describes the processing of one document.
type Result struct {
	Status       Status          `json:"status"`
	Success      bool            `json:"success"`
	PDFName      string          `json:"pdf_name"`
	InvoiceID    int64           `json:"invoice_id,omitempty"`
	DocumentID   string          `json:"document_id,omitempty"`
	State        dualwrite.State `json:"state,omitempty"`
	Verification *verify.Report  `json:"verification,omitempty"`
	Archived     string          `json:"archived,omitempty"`
	Retryable    bool            `json:"retryable,omitempty"`
	Error        string          `json:"error,omitempty"`
	Seconds      float64         `json:"processing_time_seconds"`
}

func (r *Result) fail(status Status, err error) Result {
	r.Status = status
	r.Success = false
	r.Error = err.Error()
	return *r
}

// VerifyResponse is the body of a single verification check.
type VerifyResponse struct {
	PDFName    string `json:"pdf_name"`
	Strict     bool   `json:"strict"`
	Confirmed  bool   `json:"confirmed"`
	Relational bool   `json:"relational"`
	Document   bool   `json:"document"`
}

func newVerifyResponse(name string, strict bool, r verify.Report) VerifyResponse {
	return VerifyResponse{
		PDFName:    name,
		Strict:     strict,
		Confirmed:  r.Confirmed(),
		Relational: r.Relational,
		Document:   r.Document,
	}
}
