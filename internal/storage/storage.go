// Package storage persists uploaded product images
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/onlineshop/backend/internal/config"
	"go.uber.org/zap"
)

// ErrPathEscapes is returned for names that would resolve outside the storage directory
var ErrPathEscapes = errors.New("path escapes storage directory")

// Storage stores files under a single directory or key prefix
type Storage interface {
	// Save writes the content under name and returns the resolved path of the stored file.
	// Returns ErrPathEscapes if name resolves outside the storage directory.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes a file previously returned by Save. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// ResolvePath returns where name is stored, rejecting names that escape the storage directory.
	ResolvePath(name string) (string, error)
}

// New creates the storage backend selected by the configuration
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case config.StorageDriverMinio:
		s, err := NewMinioStorage(ctx, cfg.Minio, cfg.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		logger.Info("using minio storage",
			zap.String("endpoint", cfg.Minio.Endpoint),
			zap.String("bucket", cfg.Minio.Bucket),
			zap.String("prefix", s.prefix),
		)
		return s, nil
	case config.StorageDriverLocal, "":
		s, err := NewLocalStorage(cfg.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("using local storage", zap.String("directory", s.basePath))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
