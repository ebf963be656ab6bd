package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/dvloznov/finora/internal/api/middleware"
	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pipeline"
	"github.com/rs/zerolog"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// StatementsHandler handles synchronous statement uploads.
type StatementsHandler struct {
	ingestor       StatementIngestor
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(ingestor StatementIngestor, maxUploadBytes int64, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		ingestor:       ingestor,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Ingest handles POST /api/statements/ingest
// The body is multipart with a "file" part and an optional "password" field.
func (h *StatementsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if h.maxUploadBytes > 0 {
		if r.ContentLength > h.maxUploadBytes {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	fileType, err := pipeline.DetectFileType(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeIngestionError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	log := h.log.With().
		Str("request_id", requestID).
		Str("filename", header.Filename).
		Str("file_type", string(fileType)).
		Logger()

	res, err := h.ingestor.Ingest(logger.WithContext(ctx, log), pipeline.Request{
		Data:     data,
		FileType: fileType,
		Password: r.FormValue("password"),
	})
	if err != nil {
		if writeIngestionError(w, err) {
			log.Info().Err(err).Msg("Statement rejected")
			return
		}
		log.Error().Err(err).Msg("Ingestion failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process statement")
		return
	}

	log.Info().
		Int("transactions", res.TransactionCount).
		Stringer("schema", res.Schema).
		Msg("Statement ingested")

	middleware.WriteJSON(w, http.StatusOK, res)
}
