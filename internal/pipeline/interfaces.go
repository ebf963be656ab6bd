package pipeline

import (
	"context"
)

// TextExtractor turns a PDF into per-page text.
// Implementations report a locked document with pdftext.ErrPasswordRequired
// or pdftext.ErrPasswordIncorrect.
type TextExtractor interface {
	// ExtractPages returns the text of every page, in page order.
	ExtractPages(ctx context.Context, data []byte, password string) ([]string, error)
}
