package http

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"
)

// ImageUploader stores multipart image files and returns their URLs.
type ImageUploader interface {
	Upload(ctx context.Context, files []*multipart.FileHeader, max int) ([]string, error)
}

// parseMultipart reads a multipart body of at most maxBytes. URL-encoded
// forms are accepted as well.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxBytes)
	}
	return r.ParseForm()
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}
