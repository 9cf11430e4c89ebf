package invoice

import (
	"slices"
	"strings"
)

// Category identifies one of the fixed usage groupings on an invoice.
type Category string

const (
	CategoryMobile        Category = "mobile"
	CategorySpecialNumber Category = "special_number"
	CategoryTelephone     Category = "telephone"
)

// MobilePrefixes are the destination prefixes treated as mobile numbers.
var MobilePrefixes = []string{"050", "052", "054", "055", "056", "058"}

var labels = map[Category]string{
	CategoryMobile:        "Calls to Mobile",
	CategorySpecialNumber: "Calls to Special Number",
	CategoryTelephone:     "Calls to Telephone",
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryMobile, CategorySpecialNumber, CategoryTelephone}
}

// Label returns the heading used for the category on the printed invoice.
func (c Category) Label() string {
	return labels[c]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// ParseLabel maps a printed heading such as "Calls To Telephone" to its category.
// Matching ignores case and surrounding whitespace.
func ParseLabel(label string) (Category, bool) {
	label = strings.Join(strings.Fields(label), " ")
	for c, l := range labels {
		if strings.EqualFold(l, label) {
			return c, true
		}
	}
	return "", false
}

// Classify assigns a usage line to a category. Any charged call is a special
// number call regardless of destination; otherwise the destination prefix
// decides between mobile and telephone.
func Classify(amount float64, destination string) Category {
	if amount > 0 {
		return CategorySpecialNumber
	}
	if slices.ContainsFunc(MobilePrefixes, func(p string) bool {
		return strings.HasPrefix(destination, p)
	}) {
		return CategoryMobile
	}
	return CategoryTelephone
}
