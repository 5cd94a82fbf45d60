package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient failed: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
