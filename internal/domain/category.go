package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a spending bucket. The set is closed; see Categories.
type Category string

const (
	CategoryDining        Category = "dining"
	CategorySubscriptions Category = "subscriptions"
	CategoryGroceries     Category = "groceries"
	CategoryTransport     Category = "transport"
	CategoryUtilities     Category = "utilities"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryDining,
	CategorySubscriptions,
	CategoryGroceries,
	CategoryTransport,
	CategoryUtilities,
	CategoryOther,
}

// ParseCategory normalizes name (trim, lower-case) and reports whether it
// names one of the known categories.
func ParseCategory(name string) (Category, bool) {
	c := Category(cases.Lower(language.Und).String(strings.TrimSpace(name)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}
