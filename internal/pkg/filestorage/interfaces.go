package filestorage

import (
	"context"
	"mime/multipart"
	"path"

	"github.com/google/uuid"
)

// FileStorage stores uploaded files under opaque keys
type FileStorage interface {
	// Save stores the upload under dir and returns its key
	Save(ctx context.Context, fileHeader *multipart.FileHeader, dir string) (string, error)

	// Delete removes a stored file. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a link clients can download the file from
	URL(ctx context.Context, key string) (string, error)
}

// newKey builds a collision free key under dir keeping the original extension
func newKey(dir, filename string) string {
	return path.Join(dir, uuid.New().String()+path.Ext(filename))
}
