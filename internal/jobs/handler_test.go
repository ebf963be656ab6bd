package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finora/internal/gcs"
	"github.com/dvloznov/finora/internal/pipeline"
	"github.com/shopspring/decimal"
	"google.golang.org/api/googleapi"
)

// MockStatementSource is a mock implementation of gcs.StatementSource for testing.
type MockStatementSource struct {
	FetchFunc func(ctx context.Context, uri string) ([]byte, error)
}

func (m *MockStatementSource) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, uri)
	}
	return nil, nil
}

func serving(data string) *MockStatementSource {
	return &MockStatementSource{
		FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
			return []byte(data), nil
		},
	}
}

func TestIngestHandler(t *testing.T) {
	const statement = "Date,Description,Debit (INR),Credit (INR)\n2024-01-01,Salary,0,50000\n2024-01-02,Swiggy,450,0\n"
	fetchErr := errors.New("connection reset")

	tests := []struct {
		name          string
		source        *MockStatementSource
		job           *IngestStatementJob
		wantErr       bool
		wantPermanent bool
		wantKind      string
	}{
		{
			name:   "ingests csv",
			source: serving(statement),
			job:    &IngestStatementJob{JobID: "1", GCSURI: "gs://b/jan.csv"},
		},
		{
			name:          "header only",
			source:        serving("Date,Description,Debit (INR),Credit (INR)\n"),
			job:           &IngestStatementJob{JobID: "2", GCSURI: "gs://b/jan.csv"},
			wantErr:       true,
			wantPermanent: true,
			wantKind:      "no_transactions_detected",
		},
		{
			name:          "unsupported extension",
			source:        serving(statement),
			job:           &IngestStatementJob{JobID: "3", GCSURI: "gs://b/jan.xlsx"},
			wantErr:       true,
			wantPermanent: true,
			wantKind:      "unsupported_file_type",
		},
		{
			name:   "explicit file type wins",
			source: serving(statement),
			job:    &IngestStatementJob{JobID: "4", GCSURI: "gs://b/export", FileType: pipeline.FileTypeCSV},
		},
		{
			name: "fetch failure is retryable",
			source: &MockStatementSource{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
				return nil, fetchErr
			}},
			job:     &IngestStatementJob{JobID: "5", GCSURI: "gs://b/jan.csv"},
			wantErr: true,
		},
		{
			name: "invalid uri is permanent",
			source: &MockStatementSource{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
				_, _, err := gcs.ParseURI(uri)
				return nil, err
			}},
			job:           &IngestStatementJob{JobID: "6", GCSURI: "gs://bucket-only.csv"},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "missing object is permanent",
			source: &MockStatementSource{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
				return nil, fmt.Errorf("Fetch: reading object b/jan.csv: %w", storage.ErrObjectNotExist)
			}},
			job:           &IngestStatementJob{JobID: "7", GCSURI: "gs://b/jan.csv"},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "access denied is permanent",
			source: &MockStatementSource{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
				return nil, &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}
			}},
			job:           &IngestStatementJob{JobID: "8", GCSURI: "gs://b/jan.csv"},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "server error is retryable",
			source: &MockStatementSource{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
				return nil, &googleapi.Error{Code: http.StatusServiceUnavailable}
			}},
			job:     &IngestStatementJob{JobID: "9", GCSURI: "gs://b/jan.csv"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewIngestHandler(tt.source, pipeline.NewIngestor(nil))
			err := handler(context.Background(), tt.job)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("handler failed: %v", err)
				}
				if tt.job.Result == nil || !tt.job.Result.Summary.Income.Equal(decimal.NewFromInt(50000)) {
					t.Errorf("unexpected result %+v", tt.job.Result)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if IsPermanent(err) != tt.wantPermanent {
				t.Errorf("IsPermanent = %v, want %v (%v)", IsPermanent(err), tt.wantPermanent, err)
			}
			if tt.job.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q", tt.job.ErrorKind, tt.wantKind)
			}
		})
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("bad input")
	err := Permanent(base)
	if !IsPermanent(err) || !errors.Is(err, base) {
		t.Errorf("Permanent(%v) lost its identity: %v", base, err)
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	if IsPermanent(base) {
		t.Error("plain error reported as permanent")
	}
}
