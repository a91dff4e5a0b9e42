package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"face-search/pkg/logger"
)

// LocalStorage writes blobs to a directory on local disk. Locators are
// generated file names relative to that directory.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the storage directory, used to mount static file serving.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	name := uuid.New().String() + extensionFor(contentType)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Storage("blob_saved", "Saved image blob", map[string]interface{}{
		"locator": name,
		"bytes":   len(data),
	})
	return name, nil
}

func (s *LocalStorage) Delete(ctx context.Context, locator string) error {
	// Reject locators that escape the storage directory
	if locator == "" || filepath.Base(locator) != locator {
		return fmt.Errorf("invalid locator: %q", locator)
	}

	if err := os.Remove(filepath.Join(s.dir, locator)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Storage("blob_deleted", "Deleted image blob", map[string]interface{}{
		"locator": locator,
	})
	return nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
