// Package pdftext extracts plain text from PDF statements.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finora/internal/logger"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPasswordRequired is returned when the document is encrypted and no
	// password was supplied.
	ErrPasswordRequired = errors.New("pdf: password required")

	// ErrPasswordIncorrect is returned when the supplied password does not
	// open the document.
	ErrPasswordIncorrect = errors.New("pdf: password incorrect")
)

// DefaultConcurrency bounds how many pages are read at once.
const DefaultConcurrency = 4

// Extractor reads page text with github.com/ledongthuc/pdf.
type Extractor struct {
	concurrency int
	open        func(data []byte, password string) (*pdf.Reader, error)
}

// NewExtractor creates an Extractor. A non-positive concurrency selects
// DefaultConcurrency.
func NewExtractor(concurrency int) *Extractor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Extractor{concurrency: concurrency, open: openReader}
}

// ExtractPages returns the text of every page in page order. Within a page,
// text runs on the same row are joined by single spaces and rows by newlines.
// The document is parsed once and its pages are read concurrently.
func (e *Extractor) ExtractPages(ctx context.Context, data []byte, password string) ([]string, error) {
	log := logger.FromContext(ctx)

	r, err := e.open(data, password)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	pages := make([]string, numPages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	// r is read-only after open and reads through bytes.Reader.ReadAt, so
	// page workers share it.
	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := pageText(r, pageNum)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNum, err)
			}
			pages[pageNum-1] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Int("pages", numPages).Msg("PDF pages extracted")
	return pages, nil
}

// openReader opens data, trying password exactly once.
func openReader(data []byte, password string) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("pdf: open: %v", rec)
		}
	}()

	tried := false
	r, err = pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	})
	if err != nil {
		return nil, passwordError(err, password)
	}
	return r, nil
}

// passwordError maps the library's invalid password error onto
// ErrPasswordRequired or ErrPasswordIncorrect.
func passwordError(err error, password string) error {
	if !errors.Is(err, pdf.ErrInvalidPassword) {
		return fmt.Errorf("pdf: open: %w", err)
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return ErrPasswordIncorrect
}

func pageText(r *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("pdf: read: %v", rec)
		}
	}()

	p := r.Page(pageNum)
	if p.V.IsNull() {
		return "", nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		words := make([]string, 0, len(row.Content))
		for _, t := range row.Content {
			if s := strings.TrimSpace(t.S); s != "" {
				words = append(words, s)
			}
		}
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	}
	return strings.Join(lines, "\n"), nil
}
