// Package storage defines the interface for the optional snapshot mirror.
// The abstraction keeps the snapshot store independent of a specific backend
// (Google Cloud Storage today, anything else later).
package storage

import "context"

// Provider defines the common interface for a blob storage backend.
type Provider interface {
	// Save uploads data to a specified object path/key in the blob store.
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider is a storage provider that performs no operations. It is the
// default when mirroring is disabled, and useful in tests.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
