package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUploadsDisabled = errors.New("image uploads are not configured")
	ErrNotAnImage      = errors.New("images only: jpeg, jpg or png")
	ErrTooManyFiles    = errors.New("too many files")
)

var allowedTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// Uploader checks multipart image files and stores them in an ImageStore.
// A nil store disables uploads; requests without files still succeed.
type Uploader struct {
	store ImageStore
	now   func() time.Time
}

func NewUploader(store ImageStore) *Uploader {
	return &Uploader{store: store, now: time.Now}
}

// Upload stores files in order and returns their URLs.
func (u *Uploader) Upload(ctx context.Context, files []*multipart.FileHeader, max int) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	if u == nil || u.store == nil {
		return nil, ErrUploadsDisabled
	}
	if max > 0 && len(files) > max {
		return nil, fmt.Errorf("%w: at most %d", ErrTooManyFiles, max)
	}
	for _, fh := range files {
		if _, err := contentType(fh); err != nil {
			return nil, err
		}
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		ct, _ := contentType(fh)
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		url, err := u.store.Put(ctx, u.objectName(fh.Filename), ct, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// objectName is img-YYYY-MM-DD-HH-MM-SS-<short id>-<original name>.
func (u *Uploader) objectName(original string) string {
	base := strings.ReplaceAll(filepath.Base(original), " ", "_")
	return fmt.Sprintf("img-%s-%s-%s", u.now().UTC().Format("2006-01-02-15-04-05"), uuid.NewString()[:8], base)
}

func contentType(fh *multipart.FileHeader) (string, error) {
	ct, ok := allowedTypes[strings.ToLower(filepath.Ext(fh.Filename))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, fh.Filename)
	}
	if declared := fh.Header.Get("Content-Type"); declared != "" && !strings.HasPrefix(declared, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, fh.Filename)
	}
	return ct, nil
}
