package service

import (
	"context"
	"io"
)

// Uploader is the blob-store port. Upload persists the file under
// folder/publicID and returns a publicly resolvable URL. Size and type
// limits are the caller's job, not the blob store's.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
