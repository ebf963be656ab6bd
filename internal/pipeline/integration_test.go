package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/dvloznov/finora/internal/pdftext"
	"github.com/dvloznov/finora/internal/pipeline"
	"github.com/shopspring/decimal"
)

var lockedStatementPages = []string{
	"Date Particulars Debit Credit Balance Total Amount\n2024-01-01 00:00:00 Swiggy 450.00 9,550.00 CR",
	"2024-01-02 00:00:00 SALARY ACME LTD 0.00 50,000.00 59,550.00 CR",
}

func lockedExtractor(secret string) *MockTextExtractor {
	return &MockTextExtractor{
		ExtractPagesFunc: func(ctx context.Context, data []byte, password string) ([]string, error) {
			switch password {
			case "":
				return nil, pdftext.ErrPasswordRequired
			case secret:
				return lockedStatementPages, nil
			default:
				return nil, pdftext.ErrPasswordIncorrect
			}
		},
	}
}

func TestIngest_PasswordProtectedPDF(t *testing.T) {
	ctx := context.Background()
	extractor := lockedExtractor("s3cret")
	ingestor := pipeline.NewIngestor(extractor)
	data := []byte("%PDF-1.7 locked")

	t.Run("NoPassword", func(t *testing.T) {
		_, err := ingestor.Ingest(ctx, pipeline.Request{Data: data, FileType: pipeline.FileTypePDF})
		if !errors.Is(err, pipeline.ErrPdfPasswordRequired) {
			t.Fatalf("expected ErrPdfPasswordRequired, got %v", err)
		}
		var ierr *pipeline.IngestionError
		if !errors.As(err, &ierr) || !ierr.Kind.Recoverable() {
			t.Errorf("expected recoverable IngestionError, got %v", err)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := ingestor.Ingest(ctx, pipeline.Request{Data: data, FileType: pipeline.FileTypePDF, Password: "guess"})
		if !errors.Is(err, pipeline.ErrPdfPasswordIncorrect) {
			t.Fatalf("expected ErrPdfPasswordIncorrect, got %v", err)
		}
	})

	t.Run("CorrectPassword", func(t *testing.T) {
		res, err := ingestor.Ingest(ctx, pipeline.Request{Data: data, FileType: pipeline.FileTypePDF, Password: "s3cret"})
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if !res.Summary.Income.Equal(decimal.NewFromInt(50000)) {
			t.Errorf("Income = %s, want 50000", res.Summary.Income)
		}
		if !res.Summary.Total(domain.CategoryDining).Equal(decimal.NewFromInt(450)) {
			t.Errorf("dining = %s, want 450", res.Summary.Total(domain.CategoryDining))
		}
		if res.Schema != pipeline.SchemaBankStatement {
			t.Errorf("Schema = %v, want %v", res.Schema, pipeline.SchemaBankStatement)
		}
		if res.TransactionCount != 2 || res.PageCount != 2 {
			t.Errorf("TransactionCount, PageCount = %d, %d, want 2, 2", res.TransactionCount, res.PageCount)
		}
	})
}

func TestIngest_PDFFailures(t *testing.T) {
	tests := []struct {
		name    string
		pages   []string
		err     error
		wantErr error
	}{
		{"open failure", nil, errors.New("not a PDF file"), pipeline.ErrPdfOpenFailed},
		{"no date anchors", []string{"Date Particulars Total Amount\n01/02/2024 Swiggy 450.00"}, nil, pipeline.ErrNoTransactionsDetected},
		{"no pages", []string{}, nil, pipeline.ErrNoTransactionsDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &MockTextExtractor{
				ExtractPagesFunc: func(ctx context.Context, data []byte, password string) ([]string, error) {
					return tt.pages, tt.err
				},
			}
			_, err := pipeline.NewIngestor(extractor).Ingest(context.Background(), pipeline.Request{
				Data:     []byte("%PDF"),
				FileType: pipeline.FileTypePDF,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIngest_PasswordRejectedWhenSupplied(t *testing.T) {
	// Some readers cannot tell a wrong password from a missing one.
	extractor := &MockTextExtractor{
		ExtractPagesFunc: func(ctx context.Context, data []byte, password string) ([]string, error) {
			return nil, pdftext.ErrPasswordRequired
		},
	}
	_, err := pipeline.NewIngestor(extractor).Ingest(context.Background(), pipeline.Request{
		Data:     []byte("%PDF"),
		FileType: pipeline.FileTypePDF,
		Password: "wrong",
	})
	if !errors.Is(err, pipeline.ErrPdfPasswordIncorrect) {
		t.Errorf("expected ErrPdfPasswordIncorrect, got %v", err)
	}
}

func TestIngest_CSV(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantErr    error
		wantSchema pipeline.SchemaKind
		wantIncome int64
		wantSpend  int64
	}{
		{
			name:       "bank statement",
			data:       "Date,Description,Debit (INR),Credit (INR)\n2024-01-01,Salary Credit,0,50000\n2024-01-02,Swiggy Order,450,0\n",
			wantSchema: pipeline.SchemaBankStatement,
			wantIncome: 50000,
			wantSpend:  450,
		},
		{
			name:       "quoted amounts",
			data:       "Date,Description,Type,Amount (INR)\n2024-01-01,Uber,DEBIT,\"1,200\"\n",
			wantSchema: pipeline.SchemaUpiStatement,
			wantSpend:  1200,
		},
		{
			name:       "positional",
			data:       "a,b,c\nx,Uber ride,-120\n",
			wantSchema: pipeline.SchemaUnknown,
			wantSpend:  120,
		},
		{
			name:    "header only",
			data:    "Date,Description,Debit (INR),Credit (INR)\n",
			wantErr: pipeline.ErrNoTransactionsDetected,
		},
		{
			name:    "empty file",
			data:    "",
			wantErr: pipeline.ErrMalformedTabularData,
		},
	}

	ingestor := pipeline.NewIngestor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ingestor.Ingest(context.Background(), pipeline.Request{
				Data:     []byte(tt.data),
				FileType: pipeline.FileTypeCSV,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if res != nil {
					t.Errorf("expected no result alongside error, got %+v", res)
				}
				return
			}
			if err != nil {
				t.Fatalf("Ingest failed: %v", err)
			}
			if res.Schema != tt.wantSchema {
				t.Errorf("Schema = %v, want %v", res.Schema, tt.wantSchema)
			}
			if !res.Summary.Income.Equal(decimal.NewFromInt(tt.wantIncome)) {
				t.Errorf("Income = %s, want %d", res.Summary.Income, tt.wantIncome)
			}
			if !res.Summary.TotalExpenses.Equal(decimal.NewFromInt(tt.wantSpend)) {
				t.Errorf("TotalExpenses = %s, want %d", res.Summary.TotalExpenses, tt.wantSpend)
			}
		})
	}
}

func TestIngest_UnsupportedFileType(t *testing.T) {
	_, err := pipeline.NewIngestor(nil).Ingest(context.Background(), pipeline.Request{
		Data:     []byte("hello"),
		FileType: pipeline.FileType("xlsx"),
	})
	if !errors.Is(err, pipeline.ErrUnsupportedFileType) {
		t.Errorf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestIngest_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &MockTextExtractor{}
	_, err := pipeline.NewIngestor(extractor).Ingest(ctx, pipeline.Request{Data: []byte("%PDF"), FileType: pipeline.FileTypePDF})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if extractor.Calls != 0 {
		t.Errorf("extractor called %d times, want 0", extractor.Calls)
	}
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        pipeline.FileType
		wantErr     bool
	}{
		{"statement.csv", "", pipeline.FileTypeCSV, false},
		{"STATEMENT.PDF", "application/octet-stream", pipeline.FileTypePDF, false},
		{"upload", "text/csv; charset=utf-8", pipeline.FileTypeCSV, false},
		{"", "application/pdf", pipeline.FileTypePDF, false},
		{"export", "application/vnd.ms-excel", pipeline.FileTypeCSV, false},
		{"notes.txt", "text/plain", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"|"+tt.contentType, func(t *testing.T) {
			got, err := pipeline.DetectFileType(tt.filename, tt.contentType)
			if tt.wantErr {
				if !errors.Is(err, pipeline.ErrUnsupportedFileType) {
					t.Errorf("expected ErrUnsupportedFileType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFileType failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFileType = %q, want %q", got, tt.want)
			}
		})
	}
}
