// Package media hides the backing implementation for storing and serving
// binary objects.
package media

import (
	"context"
	"errors"
	"io"
)

// ErrStoreDisabled indicates that object storage is not currently enabled.
var ErrStoreDisabled = errors.New("media store disabled")

// ErrObjectNotFound indicates a missing key.
var ErrObjectNotFound = errors.New("object not found")

// UploadInput wraps the payload required for persisting a file. When Key is
// empty a random key derived from Filename is generated.
type UploadInput struct {
	Key         string
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// UploadResult captures the canonical object key and its accessible URL.
type UploadResult struct {
	Key string
	URL string
}

// ObjectInfo describes a stored object during listing.
type ObjectInfo struct {
	Key string
	URL string
}

// ObjectStore is the durable storage contract: timestamp-qualified uploads,
// content reads, prefix listing, and deletion.
type ObjectStore interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, UploadInput) (UploadResult, error) {
	return UploadResult{}, ErrStoreDisabled
}

func (disabledStore) Download(context.Context, string) ([]byte, error) {
	return nil, ErrStoreDisabled
}

func (disabledStore) List(context.Context, string) ([]ObjectInfo, error) {
	return nil, ErrStoreDisabled
}

func (disabledStore) Delete(context.Context, string) error {
	return ErrStoreDisabled
}

// Disabled returns a store that always signals disabled storage.
func Disabled() ObjectStore {
	return disabledStore{}
}
