package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finora/internal/gcs"
	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pipeline"
)

// NewIngestHandler returns a JobHandler that fetches a statement from source
// and ingests it. Fetch failures are retried; ingestion failures are not,
// since the same bytes would fail the same way.
func NewIngestHandler(source gcs.StatementSource, ingestor *pipeline.Ingestor) JobHandler {
	return func(ctx context.Context, j Job) error {
		job, ok := j.(*IngestStatementJob)
		if !ok {
			return Permanent(fmt.Errorf("unexpected job type %s", j.GetType()))
		}

		log := logger.FromContext(ctx).With().
			Str("job_id", job.JobID).
			Str("gcs_uri", job.GCSURI).
			Logger()
		ctx = logger.WithContext(ctx, log)

		fileType := job.FileType
		if fileType == "" {
			ft, err := pipeline.DetectFileType(gcs.FilenameFromURI(job.GCSURI), "")
			if err != nil {
				return permanentIngestionError(job, err)
			}
			fileType = ft
		}

		data, err := source.Fetch(ctx, job.GCSURI)
		if err != nil {
			if gcs.IsPermanent(err) {
				return Permanent(fmt.Errorf("fetch statement: %w", err))
			}
			return fmt.Errorf("fetch statement: %w", err)
		}

		res, err := ingestor.Ingest(ctx, pipeline.Request{
			Data:     data,
			FileType: fileType,
			Password: job.Password,
		})
		if err != nil {
			return permanentIngestionError(job, err)
		}

		job.Result = res
		job.ErrorKind = ""
		log.Info().
			Int("transactions", res.TransactionCount).
			Stringer("schema", res.Schema).
			Msg("Statement ingested")
		return nil
	}
}

func permanentIngestionError(job *IngestStatementJob, err error) error {
	var ierr *pipeline.IngestionError
	if errors.As(err, &ierr) {
		job.ErrorKind = ierr.Kind.String()
	}
	return Permanent(err)
}
