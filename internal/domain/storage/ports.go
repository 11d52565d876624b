// Package storage defines the blob store port for shipment documents.
package storage

import (
	"context"
	"time"
)

// BlobStore persists file content and signs time-limited download
// URLs. Keys are hierarchical: company/{id}/shipments/{id}/{filename}.
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
