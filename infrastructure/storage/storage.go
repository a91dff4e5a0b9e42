package storage

import "context"

// Storage persists raw image blobs. Locators are opaque to callers;
// only the storage that issued one can resolve it.
type Storage interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, locator string) error
}
