// Package extract turns raw invoice text into a canonical invoice record.
//
// Extraction is a set of independent rules. Each rule reports whether its
// field was found and, when it was not, why. One rule failing never prevents
// another from running.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of applying a single Rule.
type Result struct {
	Value   string
	Present bool
	Reason  string
}

func absent(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Diagnostic records why a field could not be extracted.
type Diagnostic struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Rule captures one field from text with a pattern whose first group is the value.
type Rule struct {
	Field     string
	Pattern   *regexp.Regexp
	Normalize func(string) string
}

// Apply runs the rule against text.
func (r Rule) Apply(text string) Result {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return absent("no match for %s", r.Field)
	}

	v := m[1]
	if r.Normalize != nil {
		v = r.Normalize(v)
	}
	if v == "" {
		return absent("%s matched but normalized to empty", r.Field)
	}

	return Result{Value: v, Present: true}
}

// AmountRule wraps a Rule whose value is a monetary amount.
type AmountRule struct {
	Rule
}

// Parse applies the rule and converts the value to a float. A value that
// fails to parse is reported absent.
func (r AmountRule) Parse(text string) (*float64, Result) {
	res := r.Apply(text)
	if !res.Present {
		return nil, res
	}

	f, err := parseAmount(res.Value)
	if err != nil {
		return nil, absent("%s %q is not a valid amount", r.Field, res.Value)
	}
	if f < 0 {
		return nil, absent("%s %q is negative", r.Field, res.Value)
	}

	return &f, res
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(stripSeparators(s), 64)
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' {
			return -1
		}
		return r
	}, s)
}

func stripWhitespaceAndHyphens(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
