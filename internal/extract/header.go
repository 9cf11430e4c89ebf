package extract

import (
	"regexp"

	"github.com/JaimeStill/invoicer/internal/invoice"
)

var (
	accountRule = Rule{
		Field:     "account_number",
		Pattern:   regexp.MustCompile(`Account Number[:\s-]*(\d+(?:[ \t]*-[ \t]*\d+)*)`),
		Normalize: stripWhitespaceAndHyphens,
	}

	billPeriodRule = Rule{
		Field:     "bill_period",
		Pattern:   regexp.MustCompile(`(?s)Bill period[\s:-]*(\d{1,2} [A-Za-z]{3} \d{4}.*?\d{1,2} [A-Za-z]{3} \d{4})`),
		Normalize: collapseWhitespace,
	}

	currentChargesRule = AmountRule{Rule{
		Field:   "current_charges",
		Pattern: regexp.MustCompile(`Current month charges \(including VAT\)\D*(\d[\d,]*\.\d+)`),
	}}

	totalDueRule = AmountRule{Rule{
		Field:     "total_due",
		Pattern:   regexp.MustCompile(`(?s)Total Amount Due\D*(\d[\d,]*\.\s*\d+)`),
		Normalize: stripWhitespace,
	}}
)

// ExtractHeader recognizes the invoice header fields in text. Fields that
// cannot be found are left nil and reported in the returned diagnostics.
func ExtractHeader(text string) (invoice.Header, []Diagnostic) {
	var (
		h     invoice.Header
		diags []Diagnostic
	)

	note := func(field string, res Result) {
		if !res.Present {
			diags = append(diags, Diagnostic{Field: field, Reason: res.Reason})
		}
	}

	if res := accountRule.Apply(text); res.Present {
		h.AccountNumber = &res.Value
	} else {
		note(accountRule.Field, res)
	}

	if res := billPeriodRule.Apply(text); res.Present {
		h.BillPeriod = &res.Value
	} else {
		note(billPeriodRule.Field, res)
	}

	var res Result
	h.CurrentCharges, res = currentChargesRule.Parse(text)
	note(currentChargesRule.Field, res)

	h.TotalDue, res = totalDueRule.Parse(text)
	note(totalDueRule.Field, res)

	return h, diags
}
