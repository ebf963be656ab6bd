package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ledongthuc/pdf"
)

// buildPDF writes an unencrypted document with one line of text per page.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	buf.WriteString("%PDF-1.4\n")
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 700 Td (%s) Tj ET", text)
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestPasswordError(t *testing.T) {
	other := errors.New("malformed xref")

	tests := []struct {
		name     string
		err      error
		password string
		want     error
	}{
		{"no password", pdf.ErrInvalidPassword, "", ErrPasswordRequired},
		{"wrong password", pdf.ErrInvalidPassword, "hunter2", ErrPasswordIncorrect},
		{"other error", other, "", other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := passwordError(tt.err, tt.password)
			if !errors.Is(got, tt.want) {
				t.Errorf("passwordError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPages_NotAPDF(t *testing.T) {
	e := NewExtractor(0)

	_, err := e.ExtractPages(context.Background(), []byte("Date,Description\n"), "")
	if err == nil {
		t.Fatal("expected error for non-PDF input, got nil")
	}
	if errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordIncorrect) {
		t.Errorf("expected open failure, got password error %v", err)
	}
}

func TestNewExtractor_DefaultConcurrency(t *testing.T) {
	if got := NewExtractor(-1).concurrency; got != DefaultConcurrency {
		t.Errorf("concurrency = %d, want %d", got, DefaultConcurrency)
	}
	if got := NewExtractor(2).concurrency; got != 2 {
		t.Errorf("concurrency = %d, want 2", got)
	}
}

func TestExtractPages_ParsesOnce(t *testing.T) {
	data := buildPDF("Opening", "Swiggy", "Uber", "Closing", "Summary")

	var opens atomic.Int32
	e := NewExtractor(3)
	e.open = func(data []byte, password string) (*pdf.Reader, error) {
		opens.Add(1)
		return openReader(data, password)
	}

	got, err := e.ExtractPages(context.Background(), data, "")
	if err != nil {
		t.Fatalf("ExtractPages failed: %v", err)
	}

	want := []string{"Opening", "Swiggy", "Uber", "Closing", "Summary"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	if n := opens.Load(); n != 1 {
		t.Errorf("document parsed %d times, want 1", n)
	}
}

func TestExtractPages_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(1).ExtractPages(ctx, buildPDF("Opening", "Closing"), "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
