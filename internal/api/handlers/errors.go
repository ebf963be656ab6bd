package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/finora/internal/api/middleware"
	"github.com/dvloznov/finora/internal/pipeline"
)

// ingestionErrorResponse lets the client tell a password prompt apart from a
// dead end.
type ingestionErrorResponse struct {
	Error            string `json:"error"`
	Kind             string `json:"kind"`
	PasswordRequired bool   `json:"password_required"`
}

var ingestionMessages = map[pipeline.ErrorKind]string{
	pipeline.KindPdfPasswordRequired:    "This PDF is password-protected. Please enter the password.",
	pipeline.KindPdfPasswordIncorrect:   "Incorrect password. Please try again.",
	pipeline.KindPdfOpenFailed:          "Failed to open PDF.",
	pipeline.KindNoTransactionsDetected: "No transactions detected. Please upload a CSV or try a different PDF.",
	pipeline.KindMalformedTabularData:   "Could not read the statement. Please check the file and try again.",
	pipeline.KindUnsupportedFileType:    "Please upload a CSV or PDF file.",
}

func ingestionStatus(kind pipeline.ErrorKind) int {
	switch kind {
	case pipeline.KindUnsupportedFileType:
		return http.StatusUnsupportedMediaType
	case pipeline.KindMalformedTabularData:
		return http.StatusBadRequest
	case pipeline.KindPdfPasswordRequired, pipeline.KindPdfPasswordIncorrect,
		pipeline.KindPdfOpenFailed, pipeline.KindNoTransactionsDetected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeIngestionError maps err to a status and body. It reports false when
// err is not an ingestion error, leaving the response untouched.
func writeIngestionError(w http.ResponseWriter, err error) bool {
	var ierr *pipeline.IngestionError
	if !errors.As(err, &ierr) {
		return false
	}
	msg, ok := ingestionMessages[ierr.Kind]
	if !ok {
		msg = "Failed to process statement."
	}
	middleware.WriteJSON(w, ingestionStatus(ierr.Kind), ingestionErrorResponse{
		Error:            msg,
		Kind:             ierr.Kind.String(),
		PasswordRequired: ierr.Kind.Recoverable(),
	})
	return true
}
