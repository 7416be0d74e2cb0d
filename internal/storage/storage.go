// Package storage handles claim documents in object storage. Clients upload
// either directly through a presigned PUT URL or through the API, which
// streams the file to the bucket on their behalf.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

const documentContentType = "application/pdf"

// ObjectStore abstracts the document bucket.
type ObjectStore interface {
	// PresignUpload returns a time-limited URL the client may PUT the
	// document to, plus the URL's lifetime.
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Duration, error)
	// Upload writes the document server-side.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// DocumentKey returns the bucket key for a claim's supporting document.
func DocumentKey(claimID string) string {
	return fmt.Sprintf("claims/%s/document.pdf", claimID)
}
