package relational

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/invoicer/internal/invoice"
	"github.com/JaimeStill/invoicer/pkg/query"
	"github.com/JaimeStill/invoicer/pkg/repository"
)

// Invoice is a persisted invoice row with its usage details.
type Invoice struct {
	ID                int64         `json:"id"`
	PDFName           string        `json:"pdf_name"`
	AccountNumber     *string       `json:"account_number,omitempty"`
	BillPeriod        *string       `json:"bill_period,omitempty"`
	CurrentCharges    *float64      `json:"current_charges,omitempty"`
	TotalDue          *float64      `json:"total_due,omitempty"`
	ProcessedAt       time.Time     `json:"processed_at"`
	ProcessingSeconds *float64      `json:"processing_time_seconds,omitempty"`
	UsageCount        int           `json:"usage_count"`
	Usage             []UsageDetail `json:"usage,omitempty"`
}

// UsageDetail is one persisted usage row.
type UsageDetail struct {
	ID       int64            `json:"id"`
	Category invoice.Category `json:"category"`
	Date     string           `json:"date"`
	Time     string           `json:"time"`
	ToNumber string           `json:"to_number"`
	Duration string           `json:"duration"`
	Amount   float64          `json:"amount"`
}

// UsageDate is the layout stored usage dates are rendered with.
const UsageDate = "02 Jan 2006"

// usageDateInput accepts call dates with one- or two-digit days.
const usageDateInput = "2 Jan 2006"

// invoiceProjection lists invoice columns in scanInvoice order.
var invoiceProjection = query.NewProjectionMap("invoices", "i").
	Project("id", "id").
	Project("pdf_name", "pdf_name").
	Project("account_number", "account_number").
	Project("bill_period", "bill_period").
	Project("current_charges", "current_charges").
	Project("total_due", "total_due").
	Project("processed_at", "processed_at").
	Project("processing_time_seconds", "processing_time_seconds").
	Computed("(SELECT COUNT(*) FROM usage_details u WHERE u.invoice_id = i.id)")

var defaultSort = []query.SortField{
	{Field: "processed_at", Descending: true},
	{Field: "id", Descending: true},
}

func scanInvoice(s repository.Scanner) (Invoice, error) {
	var (
		inv Invoice
		at  timeValue
	)
	err := s.Scan(
		&inv.ID,
		&inv.PDFName,
		&inv.AccountNumber,
		&inv.BillPeriod,
		&inv.CurrentCharges,
		&inv.TotalDue,
		&at,
		&inv.ProcessingSeconds,
		&inv.UsageCount,
	)
	inv.ProcessedAt = at.Time
	return inv, err
}

func scanUsageDetail(s repository.Scanner) (UsageDetail, error) {
	var (
		u    UsageDetail
		date timeValue
	)
	err := s.Scan(&u.ID, &u.Category, &date, &u.Time, &u.ToNumber, &u.Duration, &u.Amount)
	u.Date = date.Format(UsageDate)
	return u, err
}

// timeValue scans DATE and TIMESTAMP columns regardless of whether the
// driver returns time.Time or text.
type timeValue struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("cannot scan %T into time", src)
}

func (t *timeValue) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}

// Value stores dates and timestamps as UTC time.Time.
func (t timeValue) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}
