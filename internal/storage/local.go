package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements Storage using the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates the storage directory if needed and returns a localStorage rooted at its absolute path
func NewLocalStorage(basePath string) (*localStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localStorage{basePath: abs}, nil
}

// ResolvePath joins name under the storage directory
func (s *localStorage) ResolvePath(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", ErrPathEscapes
	}

	path := filepath.Join(s.basePath, name)
	if !s.contains(path) || path == s.basePath {
		return "", ErrPathEscapes
	}
	return path, nil
}

func (s *localStorage) contains(path string) bool {
	rel, err := filepath.Rel(s.basePath, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Save writes the content to a new file; a partially written file is removed
func (s *localStorage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	path, err := s.ResolvePath(name)
	if err != nil {
		return "", err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return path, nil
}

// Delete removes a file inside the storage directory
func (s *localStorage) Delete(ctx context.Context, path string) error {
	if !s.contains(path) {
		return ErrPathEscapes
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
