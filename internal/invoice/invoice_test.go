package invoice_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/invoicer/internal/invoice"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		destination string
		want        invoice.Category
	}{
		{"free mobile", 0, "0501234567", invoice.CategoryMobile},
		{"free mobile 058", 0, "0589999999", invoice.CategoryMobile},
		{"charged mobile prefix", 5, "0501234567", invoice.CategorySpecialNumber},
		{"charged landline", 0.5, "042345678", invoice.CategorySpecialNumber},
		{"free landline", 0, "042345678", invoice.CategoryTelephone},
		{"unknown 05 prefix", 0, "0511234567", invoice.CategoryTelephone},
		{"short number", 0, "05", invoice.CategoryTelephone},
		{"empty destination", 0, "", invoice.CategoryTelephone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := invoice.Classify(tt.amount, tt.destination); got != tt.want {
				t.Errorf("Classify(%v, %q) = %s, want %s", tt.amount, tt.destination, got, tt.want)
			}
		})
	}
}

func TestClassifyAmountPrecedence(t *testing.T) {
	for _, prefix := range invoice.MobilePrefixes {
		dest := prefix + "1234567"
		if got := invoice.Classify(0.01, dest); got != invoice.CategorySpecialNumber {
			t.Errorf("Classify(0.01, %q) = %s, want special_number", dest, got)
		}
		if got := invoice.Classify(0, dest); got != invoice.CategoryMobile {
			t.Errorf("Classify(0, %q) = %s, want mobile", dest, got)
		}
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		label  string
		want   invoice.Category
		wantOK bool
	}{
		{"Calls to Mobile", invoice.CategoryMobile, true},
		{"calls to special number", invoice.CategorySpecialNumber, true},
		{"Calls To Telephone", invoice.CategoryTelephone, true},
		{"Calls  to\tMobile", invoice.CategoryMobile, true},
		{"Calls to Roaming", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := invoice.ParseLabel(tt.label)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseLabel(%q) = (%s, %v), want (%s, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewUsage(t *testing.T) {
	u := invoice.NewUsage()

	if len(u) != 3 {
		t.Fatalf("categories = %d, want 3", len(u))
	}
	for _, c := range invoice.Categories() {
		if _, ok := u[c]; !ok {
			t.Errorf("missing category %s", c)
		}
	}
	if !u.Empty() {
		t.Error("new usage should be empty")
	}

	u[invoice.CategoryMobile] = invoice.Table{Summary: &invoice.Summary{TotalDuration: "00:01:00"}}
	if u.Empty() {
		t.Error("usage with a summary should not be empty")
	}
}

func TestHeaderEmpty(t *testing.T) {
	var h invoice.Header
	if !h.Empty() {
		t.Error("zero header should be empty")
	}

	total := 10.0
	h.TotalDue = &total
	if h.Empty() {
		t.Error("header with total due should not be empty")
	}
}

func TestWithProcessingTime(t *testing.T) {
	rec := invoice.Record{DocumentID: "a.pdf", ProcessedAt: time.Now()}
	timed := rec.WithProcessingTime(1500 * time.Millisecond)

	if rec.ProcessingSeconds != nil {
		t.Error("original record was modified")
	}
	if timed.ProcessingSeconds == nil || *timed.ProcessingSeconds != 1.5 {
		t.Errorf("processing seconds = %v, want 1.5", timed.ProcessingSeconds)
	}
}
