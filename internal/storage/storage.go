// Package storage publishes uploaded document bytes to a location clients
// can GET. The ingestion pipeline publishes bytes before persisting the
// File record that references them, so a published URL always resolves.
package storage

import (
	"context"
	"io"
)

// Store publishes uploaded files under collision-resistant names.
type Store interface {
	// Publish makes the bytes at the given name retrievable and returns
	// the URL to record on the File.
	Publish(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes a published file. Used to back out of a failed
	// ingestion after publication.
	Remove(ctx context.Context, name string) error
}
