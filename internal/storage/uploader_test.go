package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	m       sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMockStore() *mockStore {
	return &mockStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *mockStore) Put(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[name] = data
	s.types[name] = contentType
	return "mem://" + name, nil
}

type testFile struct {
	name        string
	contentType string
	body        string
}

func fileHeaders(t *testing.T, field string, files ...testFile) []*multipart.FileHeader {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field]
}

func TestUpload_StoresImagesInOrder(t *testing.T) {
	store := newMockStore()
	u := NewUploader(store)
	u.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	files := fileHeaders(t, "previewImages",
		testFile{"front.png", "image/png", "png-bytes"},
		testFile{"Back Side.JPG", "image/jpeg", "jpg-bytes"},
	)
	urls, err := u.Upload(context.Background(), files, 5)
	require.NoError(t, err)
	require.Len(t, urls, 2)

	assert.True(t, strings.HasPrefix(urls[0], "mem://img-2024-05-06-07-08-09-"))
	assert.True(t, strings.HasSuffix(urls[0], "-front.png"))
	assert.True(t, strings.HasSuffix(urls[1], "-Back_Side.JPG"))

	name := strings.TrimPrefix(urls[1], "mem://")
	assert.Equal(t, "jpg-bytes", string(store.objects[name]))
	assert.Equal(t, "image/jpeg", store.types[name])
}

func TestUpload_RejectsNonImages(t *testing.T) {
	store := newMockStore()
	u := NewUploader(store)

	files := fileHeaders(t, "f",
		testFile{"ok.png", "image/png", "x"},
		testFile{"notes.txt", "text/plain", "y"},
	)
	_, err := u.Upload(context.Background(), files, 5)
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Empty(t, store.objects, "nothing is stored when any file is rejected")

	files = fileHeaders(t, "f", testFile{"fake.png", "application/pdf", "z"})
	_, err = u.Upload(context.Background(), files, 5)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestUpload_TooManyFiles(t *testing.T) {
	u := NewUploader(newMockStore())

	files := fileHeaders(t, "f",
		testFile{"1.png", "image/png", "a"},
		testFile{"2.png", "image/png", "b"},
	)
	_, err := u.Upload(context.Background(), files, 1)
	assert.ErrorIs(t, err, ErrTooManyFiles)
}

func TestUpload_NoStore(t *testing.T) {
	u := NewUploader(nil)

	urls, err := u.Upload(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, urls)

	files := fileHeaders(t, "f", testFile{"1.png", "image/png", "a"})
	_, err = u.Upload(context.Background(), files, 5)
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestUpload_StoreError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("bucket missing")
	u := NewUploader(store)

	files := fileHeaders(t, "f", testFile{"1.png", "image/png", "a"})
	_, err := u.Upload(context.Background(), files, 5)
	assert.ErrorContains(t, err, "bucket missing")
}
