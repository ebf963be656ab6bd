package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldCase lower-cases s. A Caser keeps state, so each call builds its own.
func foldCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// normalizeHeader trims and lower-cases a header cell, dropping a UTF-8 BOM.
func normalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	return foldCase(strings.TrimSpace(cell))
}

// collapseWhitespace replaces every run of whitespace with one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
