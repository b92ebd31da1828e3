// Package storage provides blob storage for portal file uploads.
package storage

import (
	"context"
	"io"
)

// StoredObject describes a persisted upload.
type StoredObject struct {
	// Key is the backend-relative object key.
	Key string
	// URL is the address handed back to the portal and stored in step data.
	URL string
	// SizeBytes is the number of bytes written.
	SizeBytes int64
}

// BlobStore persists uploaded files. Keys are scoped per client and
// onboarding so one client's uploads can never collide with another's.
type BlobStore interface {
	Put(ctx context.Context, clientID, onboardingID, filename string, content io.Reader) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}
