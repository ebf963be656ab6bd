package pipeline

import (
	"fmt"
)

// ErrorKind classifies a failed ingestion.
type ErrorKind int

const (
	KindPdfPasswordRequired ErrorKind = iota + 1
	KindPdfPasswordIncorrect
	KindPdfOpenFailed
	KindNoTransactionsDetected
	KindMalformedTabularData
	KindUnsupportedFileType
)

var errorKindNames = map[ErrorKind]string{
	KindPdfPasswordRequired:    "pdf_password_required",
	KindPdfPasswordIncorrect:   "pdf_password_incorrect",
	KindPdfOpenFailed:          "pdf_open_failed",
	KindNoTransactionsDetected: "no_transactions_detected",
	KindMalformedTabularData:   "malformed_tabular_data",
	KindUnsupportedFileType:    "unsupported_file_type",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Recoverable reports whether the caller can retry with more input
// (a password) rather than a different file.
func (k ErrorKind) Recoverable() bool {
	return k == KindPdfPasswordRequired || k == KindPdfPasswordIncorrect
}

// IngestionError is the terminal outcome of a failed ingestion attempt.
type IngestionError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Is matches any IngestionError of the same kind, so the sentinels below work
// with errors.Is regardless of reason.
func (e *IngestionError) Is(target error) bool {
	t, ok := target.(*IngestionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrPdfPasswordRequired    = &IngestionError{Kind: KindPdfPasswordRequired}
	ErrPdfPasswordIncorrect   = &IngestionError{Kind: KindPdfPasswordIncorrect}
	ErrPdfOpenFailed          = &IngestionError{Kind: KindPdfOpenFailed}
	ErrNoTransactionsDetected = &IngestionError{Kind: KindNoTransactionsDetected}
	ErrMalformedTabularData   = &IngestionError{Kind: KindMalformedTabularData}
	ErrUnsupportedFileType    = &IngestionError{Kind: KindUnsupportedFileType}
)

func newIngestionError(kind ErrorKind, reason string, err error) *IngestionError {
	return &IngestionError{Kind: kind, Reason: reason, Err: err}
}
