// Package storage defines the interface for the object-storage collaborator.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by Remove when no object exists at the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage is the set of operations the gateway needs from object storage.
// File bytes never pass through this interface: uploads happen directly
// between the client and storage via the presigned URL.
type Storage interface {
	// BucketExists probes for the bucket without creating it.
	BucketExists(ctx context.Context, bucket string) (bool, error)
	// MakeBucket creates the bucket. Losing a creation race to a concurrent
	// caller is success, not failure.
	MakeBucket(ctx context.Context, bucket string) error
	// PresignPut returns a time-limited URL authorizing a single PUT of the
	// given content type to bucket/key.
	PresignPut(ctx context.Context, bucket, key, contentType string, expiry time.Duration) (string, error)
	// Remove deletes one object. Returns ErrObjectNotFound when the object
	// does not exist.
	Remove(ctx context.Context, bucket, key string) error
}
