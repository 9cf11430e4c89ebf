// Package invoice defines the canonical invoice record assembled from
// document text and persisted to both stores.
package invoice

import "time"

// Header holds the scalar fields recognized at the top of an invoice.
// Any field may be absent.
type Header struct {
	AccountNumber  *string  `json:"account_number,omitempty" bson:"account_number,omitempty"`
	BillPeriod     *string  `json:"bill_period,omitempty" bson:"bill_period,omitempty"`
	CurrentCharges *float64 `json:"current_charges,omitempty" bson:"current_charges,omitempty"`
	TotalDue       *float64 `json:"total_due,omitempty" bson:"total_due,omitempty"`
}

// Empty reports whether no header field was recognized.
func (h Header) Empty() bool {
	return h.AccountNumber == nil &&
		h.BillPeriod == nil &&
		h.CurrentCharges == nil &&
		h.TotalDue == nil
}

// Summary is the aggregate line printed for a category.
type Summary struct {
	TotalDuration string  `json:"total_duration" bson:"total_duration"`
	TotalAmount   float64 `json:"total_amount" bson:"total_amount"`
}

// UsageRecord is a single itemized call.
type UsageRecord struct {
	Date     string  `json:"date" bson:"date"`
	Time     string  `json:"time" bson:"time"`
	ToNumber string  `json:"to_number" bson:"to_number"`
	Duration string  `json:"duration" bson:"duration"`
	Amount   float64 `json:"amount" bson:"amount"`
}

// Table groups a category's summary with its itemized records.
type Table struct {
	Summary *Summary      `json:"summary" bson:"summary"`
	Records []UsageRecord `json:"records" bson:"records"`
}

// Empty reports whether the table has neither a summary nor records.
func (t Table) Empty() bool {
	return t.Summary == nil && len(t.Records) == 0
}

// Usage maps every category to its table.
type Usage map[Category]Table

// NewUsage returns a Usage with an empty table for every category.
func NewUsage() Usage {
	u := make(Usage, len(Categories()))
	for _, c := range Categories() {
		u[c] = Table{Records: []UsageRecord{}}
	}
	return u
}

// Empty reports whether every category table is empty.
func (u Usage) Empty() bool {
	for _, t := range u {
		if !t.Empty() {
			return false
		}
	}
	return true
}

// RecordCount returns the number of itemized records across all categories.
func (u Usage) RecordCount() int {
	n := 0
	for _, t := range u {
		n += len(t.Records)
	}
	return n
}

// Record is the canonical invoice assembled from one document.
type Record struct {
	DocumentID        string    `json:"document_id"`
	ProcessedAt       time.Time `json:"processed_at"`
	Header            Header    `json:"header"`
	Usage             Usage     `json:"usage"`
	ProcessingSeconds *float64  `json:"processing_time_seconds,omitempty"`
}

// WithProcessingTime returns a copy of r with the pipeline duration attached.
func (r Record) WithProcessingTime(d time.Duration) Record {
	secs := d.Seconds()
	r.ProcessingSeconds = &secs
	return r
}
