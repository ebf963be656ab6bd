package gcs

import (
	"context"
)

// StatementSource fetches statement bytes by URI.
// This interface enables mocking the bucket in job and CLI tests.
type StatementSource interface {
	// Fetch downloads the object at a gs://bucket/object URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
