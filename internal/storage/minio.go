package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/onlineshop/backend/internal/config"
)

// minioStorage implements Storage on an S3 compatible bucket; the storage directory becomes the key prefix
type minioStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioStorage connects to the object store and creates the bucket if it does not exist
func NewMinioStorage(ctx context.Context, cfg config.MinioConfig, directory string) (*minioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", cfg.Bucket, err)
		}
	}

	return newMinioStorage(client, cfg.Bucket, directory), nil
}

func newMinioStorage(client *minio.Client, bucket, directory string) *minioStorage {
	prefix := strings.Trim(path.Clean("/"+strings.ReplaceAll(directory, "\\", "/")), "/")
	return &minioStorage{client: client, bucket: bucket, prefix: prefix}
}

// ResolvePath returns the object key of name under the prefix
func (s *minioStorage) ResolvePath(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return "", ErrPathEscapes
	}

	key := path.Join(s.prefix, name)
	if !s.contains(key) {
		return "", ErrPathEscapes
	}
	return key, nil
}

func (s *minioStorage) contains(key string) bool {
	if strings.HasPrefix(key, "../") || key == ".." || key == s.prefix {
		return false
	}
	if s.prefix == "" || s.prefix == "." {
		return key != "."
	}
	return strings.HasPrefix(key, s.prefix+"/")
}

// Save uploads the content as a new object
func (s *minioStorage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := s.ResolvePath(name)
	if err != nil {
		return "", err
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}

// Delete removes an object; removing a missing object succeeds
func (s *minioStorage) Delete(ctx context.Context, key string) error {
	if !s.contains(path.Clean(key)) {
		return ErrPathEscapes
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
