// Package gcs reads statement files from Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finora/internal/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const uriScheme = "gs://"

var (
	// ErrInvalidURI is returned for anything that is not gs://bucket/object.
	ErrInvalidURI = errors.New("gcs: invalid URI")

	// ErrObjectTooLarge is returned when an object exceeds the size limit.
	ErrObjectTooLarge = errors.New("gcs: object too large")
)

// Client downloads objects, by default with Application Default Credentials.
type Client struct {
	storage  *storage.Client
	maxBytes int64
}

// NewClient creates a Client. Objects larger than maxBytes are rejected;
// a non-positive maxBytes disables the limit.
func NewClient(ctx context.Context, maxBytes int64, opts ...option.ClientOption) (*Client, error) {
	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Client{storage: sc, maxBytes: maxBytes}, nil
}

// CredentialsOptions authenticates with a service account key file. An
// empty path keeps Application Default Credentials.
func CredentialsOptions(file string) []option.ClientOption {
	if file == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(file)}
}

// IsPermanent reports whether a Fetch error will recur on retry: a bad URI,
// an oversized or missing object, or a request the server refused.
func IsPermanent(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidURI),
		errors.Is(err, ErrObjectTooLarge),
		errors.Is(err, storage.ErrObjectNotExist),
		errors.Is(err, storage.ErrBucketNotExist):
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}
	return false
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.storage.Close()
}

// Fetch downloads the object named by uri.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := c.storage.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if c.maxBytes > 0 {
		r = io.LimitReader(rc, c.maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrObjectTooLarge, uri, c.maxBytes)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("bucket", bucket).
		Str("object", object).
		Int("bytes", len(data)).
		Msg("Fetched object")
	return data, nil
}

// ParseURI splits gs://bucket/path/to/file into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, uriScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w (no object path): %q", ErrInvalidURI, uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI returns the last path element of a storage URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, uriScheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
