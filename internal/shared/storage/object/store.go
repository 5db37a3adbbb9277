package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for durable blob storage. Save streams
// the reader into the store and reports the byte count it actually wrote;
// URL maps a storage key to the durable URL recorded on documents.
type ObjectStore interface {
	Save(ctx context.Context, ownerKey string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	URL(storageKey string) string
}
