package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/finora/internal/api/middleware"
	"github.com/dvloznov/finora/internal/gcs"
	"github.com/dvloznov/finora/internal/jobs"
	"github.com/dvloznov/finora/internal/pipeline"
	"github.com/rs/zerolog"
)

// JobsHandler handles asynchronous ingestion jobs.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	bucket    string
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler. Only objects in bucket are
// accepted for ingestion; an empty bucket accepts any.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, bucket string, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		bucket:    bucket,
		log:       log,
	}
}

// EnqueueIngestion handles POST /api/statements/jobs
func (h *JobsHandler) EnqueueIngestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI   string `json:"gcs_uri"`
		Password string `json:"password"`
	}

	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri is required")
		return
	}
	bucket, _, err := gcs.ParseURI(req.GCSURI)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must look like gs://bucket/object")
		return
	}
	if h.bucket != "" && bucket != h.bucket {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must name an object in bucket "+h.bucket)
		return
	}

	fileType, err := pipeline.DetectFileType(gcs.FilenameFromURI(req.GCSURI), "")
	if err != nil {
		writeIngestionError(w, err)
		return
	}

	ctx := r.Context()

	job := &jobs.IngestStatementJob{
		GCSURI:   req.GCSURI,
		FileType: fileType,
		Password: req.Password,
	}

	if err := h.publisher.PublishIngestStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(ctx)).Msg("Failed to enqueue ingestion job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue ingestion job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", req.GCSURI).Msg("Ingestion job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": req.GCSURI,
		"status":  string(jobs.JobStatusPending),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		GCSURI: query.Get("gcs_uri"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	if jobsList == nil {
		jobsList = []*jobs.IngestStatementJob{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
