package pipeline

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dvloznov/finora/internal/domain"
)

// FileType is the kind of statement file being ingested.
type FileType string

const (
	FileTypeCSV FileType = "csv"
	FileTypePDF FileType = "pdf"
)

// DetectFileType decides between CSV and PDF from the file name, falling
// back to the declared media type.
func DetectFileType(filename, contentType string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extCSV:
		return FileTypeCSV, nil
	case extPDF:
		return FileTypePDF, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case mediaTypeCSV, mediaTypeExcelCSV:
			return FileTypeCSV, nil
		case mediaTypePDF:
			return FileTypePDF, nil
		}
	}

	return "", newIngestionError(KindUnsupportedFileType, "expected a .csv or .pdf file, got "+describeFile(filename, contentType), nil)
}

func describeFile(filename, contentType string) string {
	switch {
	case filename != "" && contentType != "":
		return filename + " (" + contentType + ")"
	case filename != "":
		return filename
	case contentType != "":
		return contentType
	default:
		return "an unnamed file"
	}
}

// Request is one ingestion attempt.
type Request struct {
	Data     []byte
	FileType FileType
	Password string
}

// Result is a successful ingestion.
type Result struct {
	Summary          domain.FinancialSummary `json:"summary"`
	Schema           SchemaKind              `json:"schema"`
	TransactionCount int                     `json:"transactionCount"`
	PageCount        int                     `json:"pageCount,omitempty"`
}

// Ingestor turns statement files into financial summaries. It keeps no state
// between calls and is safe for concurrent use if its TextExtractor is.
type Ingestor struct {
	extractor TextExtractor
}

// NewIngestor creates an Ingestor that reads PDFs with extractor.
func NewIngestor(extractor TextExtractor) *Ingestor {
	return &Ingestor{extractor: extractor}
}

// Ingest runs one ingestion to completion. Failures are *IngestionError
// (possibly wrapped); no partial result accompanies an error. A PDF that
// needs a password is retried by calling Ingest again with one.
func (i *Ingestor) Ingest(ctx context.Context, req Request) (*Result, error) {
	var p *Pipeline
	switch req.FileType {
	case FileTypeCSV:
		p = NewCSVIngestionPipeline()
	case FileTypePDF:
		p = NewPDFIngestionPipeline(i.extractor)
	default:
		return nil, newIngestionError(KindUnsupportedFileType, "file type "+string(req.FileType), nil)
	}

	state := &IngestState{Request: req}
	if err := p.Execute(ctx, state); err != nil {
		return nil, err
	}

	return &Result{
		Summary:          state.Summary,
		Schema:           state.Schema,
		TransactionCount: len(state.Table.Rows),
		PageCount:        len(state.PageTexts),
	}, nil
}
