package storage

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GenerateFileName returns a fresh UUID-based name carrying the lower-cased extension of originalName.
// Client supplied names never reach the filesystem.
func GenerateFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))))
	// Extensions made of anything but letters and digits are dropped
	for _, r := range strings.TrimPrefix(ext, ".") {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			ext = ""
			break
		}
	}
	return uuid.New().String() + ext
}
