package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JaimeStill/invoicer/internal/invoice"
)

// Section markers delimiting the itemized usage pages.
const (
	UsageStartMarker = "National Calls And Usages"
	UsageEndMarker   = "C O N V E N I E N T W A Y S T O P A Y"
)

var (
	summaryPattern = regexp.MustCompile(`(?i)(Calls to (?:Mobile|Special Number|Telephone))\s+([\d:]+)\s+([\d.]+)`)
	recordPattern  = regexp.MustCompile(`(\d{1,2} [A-Za-z]{3} \d{4})\s+(\d{2}:\d{2}:\d{2})\s+[ÌÍ]?(\d+)[ÌÍ]?\s+(\d{2}:\d{2}:\d{2})\s+([\d.]+)`)
)

// UsageSection returns the text between the usage start and end markers.
// It reports false when the start marker is missing; a missing end marker
// extends the section to the end of text.
func UsageSection(text string) (string, bool) {
	start := strings.Index(text, UsageStartMarker)
	if start < 0 {
		return "", false
	}

	section := text[start:]
	if end := strings.Index(section, UsageEndMarker); end >= 0 {
		section = section[:end]
	}
	return section, true
}

// ExtractUsage locates the usage section and groups its records by category.
// It reports false only when the section is absent; a section with no
// recognizable lines yields empty tables.
func ExtractUsage(text string) (invoice.Usage, bool) {
	section, ok := UsageSection(text)
	if !ok {
		return nil, false
	}

	usage := invoice.NewUsage()

	for _, m := range summaryPattern.FindAllStringSubmatch(section, -1) {
		category, ok := invoice.ParseLabel(m[1])
		if !ok {
			continue
		}
		table := usage[category]
		if table.Summary != nil {
			continue
		}
		amount, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		table.Summary = &invoice.Summary{TotalDuration: m[2], TotalAmount: amount}
		usage[category] = table
	}

	for _, m := range recordPattern.FindAllStringSubmatch(section, -1) {
		amount, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			continue
		}
		rec := invoice.UsageRecord{
			Date:     m[1],
			Time:     m[2],
			ToNumber: m[3],
			Duration: m[4],
			Amount:   amount,
		}
		category := invoice.Classify(rec.Amount, rec.ToNumber)
		table := usage[category]
		table.Records = append(table.Records, rec)
		usage[category] = table
	}

	return usage, true
}
