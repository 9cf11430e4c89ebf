package docstore

import (
	"time"

	"github.com/JaimeStill/invoicer/internal/invoice"
)

// Metadata describes where and when a document was produced.
type Metadata struct {
	PDFName        string    `json:"pdf_name" bson:"pdf_name"`
	ProcessingDate time.Time `json:"processing_date" bson:"processing_date"`
}

// Document is the denormalized per-invoice record, keyed by document name.
type Document struct {
	ID                string         `json:"_id" bson:"_id"`
	Metadata          Metadata       `json:"metadata" bson:"metadata"`
	InvoiceData       invoice.Header `json:"invoice_data" bson:"invoice_data"`
	UsageData         invoice.Usage  `json:"usage_data" bson:"usage_data"`
	ProcessingSeconds *float64       `json:"processing_time_seconds,omitempty" bson:"processing_time_seconds,omitempty"`
}

// NewDocument maps a canonical record to its stored form.
func NewDocument(rec invoice.Record) Document {
	return Document{
		ID: rec.DocumentID,
		Metadata: Metadata{
			PDFName:        rec.DocumentID,
			ProcessingDate: rec.ProcessedAt,
		},
		InvoiceData:       rec.Header,
		UsageData:         rec.Usage,
		ProcessingSeconds: rec.ProcessingSeconds,
	}
}

// Record maps a stored document back to a canonical record.
func (d Document) Record() invoice.Record {
	usage := invoice.NewUsage()
	for c, t := range d.UsageData {
		if t.Records == nil {
			t.Records = []invoice.UsageRecord{}
		}
		usage[c] = t
	}

	return invoice.Record{
		DocumentID:        d.ID,
		ProcessedAt:       d.Metadata.ProcessingDate,
		Header:            d.InvoiceData,
		Usage:             usage,
		ProcessingSeconds: d.ProcessingSeconds,
	}
}
