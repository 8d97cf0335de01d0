// Package upload accepts multipart product submissions and stores their files
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/storage"
	"go.uber.org/zap"
)

// File describes one stored upload
type File struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	StoredName   string `json:"filename"`
	Path         string `json:"path"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// Result is a parsed multipart body: the first value of every text field and every stored file
type Result struct {
	Fields map[string]string
	Files  []File
}

// First returns the first stored file, if any
func (r *Result) First() (File, bool) {
	if r == nil || len(r.Files) == 0 {
		return File{}, false
	}
	return r.Files[0], true
}

// Handler parses multipart requests, accepting files under any field name
type Handler struct {
	storage   storage.Storage
	maxMemory int64
	logger    *zap.Logger
}

// NewHandler creates an upload handler; maxMemory bounds the part of the body kept in memory
func NewHandler(storage storage.Storage, maxMemory int64, logger *zap.Logger) *Handler {
	return &Handler{
		storage:   storage,
		maxMemory: maxMemory,
		logger:    logger,
	}
}

// Parse reads the multipart body and stores every file it carries.
// If storing any file fails, the files already stored are removed.
func (h *Handler) Parse(r *http.Request) (*Result, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, apperrors.BadRequest("request must be multipart/form-data")
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		return nil, apperrors.Wrap(apperrors.BadRequest("malformed multipart body"), err)
	}
	defer r.MultipartForm.RemoveAll()

	result := &Result{Fields: make(map[string]string, len(r.MultipartForm.Value))}
	for name, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			result.Fields[name] = values[0]
		}
	}

	fieldNames := make([]string, 0, len(r.MultipartForm.File))
	for name := range r.MultipartForm.File {
		fieldNames = append(fieldNames, name)
	}
	slices.Sort(fieldNames)

	ctx := r.Context()
	for _, fieldName := range fieldNames {
		for _, header := range r.MultipartForm.File[fieldName] {
			file, err := h.store(ctx, fieldName, header)
			if err != nil {
				// The request context may already be expired
				h.Discard(context.WithoutCancel(ctx), result.Files)
				return nil, err
			}
			result.Files = append(result.Files, file)
		}
	}

	return result, nil
}

func (h *Handler) store(ctx context.Context, fieldName string, header *multipart.FileHeader) (File, error) {
	originalName := header.Filename
	contentType := header.Header.Get("Content-Type")

	src, err := header.Open()
	if err != nil {
		return File{}, apperrors.Internal("failed to read uploaded file", err)
	}
	defer src.Close()

	storedName := storage.GenerateFileName(originalName)
	path, err := h.storage.Save(ctx, storedName, src, header.Size, contentType)
	if err != nil {
		h.logger.Error("failed to store uploaded file",
			zap.Error(err),
			zap.String("field", fieldName),
			zap.String("original_name", originalName),
		)
		if errors.Is(err, storage.ErrPathEscapes) {
			return File{}, apperrors.BadRequest("invalid file name")
		}
		return File{}, apperrors.Internal("failed to store uploaded file", err)
	}

	return File{
		FieldName:    fieldName,
		OriginalName: originalName,
		StoredName:   storedName,
		Path:         path,
		MimeType:     contentType,
		Size:         header.Size,
	}, nil
}

// Discard removes stored files. Every file is attempted; the failures are returned joined.
func (h *Handler) Discard(ctx context.Context, files []File) error {
	var errs []error
	for _, f := range files {
		if err := h.storage.Delete(ctx, f.Path); err != nil {
			h.logger.Warn("failed to remove uploaded file", zap.Error(err), zap.String("path", f.Path))
			errs = append(errs, fmt.Errorf("remove %s: %w", f.Path, err))
		}
	}
	return errors.Join(errs...)
}
