// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostImageKey(t *testing.T) {
	key := PostImageKey(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), ".jpg")
	assert.Regexp(t, regexp.MustCompile(`^posts/2026/03/[0-9a-f-]{36}\.jpg$`), key)
}

func TestLocalStorage_PutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "posts/2026/03/a.jpg", "image/jpeg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/posts/2026/03/a.jpg", url)

	got, err := os.ReadFile(filepath.Join(dir, "posts", "2026", "03", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	require.NoError(t, s.Delete(context.Background(), "posts/2026/03/a.jpg"))
	require.NoError(t, s.Delete(context.Background(), "posts/2026/03/a.jpg"))
	_, err = os.Stat(filepath.Join(dir, "posts", "2026", "03", "a.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../escape.txt", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Storage_PutDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewS3(context.Background(), S3Config{
		Bucket:    "media",
		Region:    "ap-northeast-2",
		Endpoint:  srv.URL,
		AccessKey: "AKIATEST",
		SecretKey: "secret",
		PathStyle: true,
	})
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "posts/2026/03/a.png", "image/png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/media/posts/2026/03/a.png", url)

	fake.mu.Lock()
	assert.Equal(t, "png-bytes", string(fake.objects["/media/posts/2026/03/a.png"]))
	assert.Equal(t, "image/png", fake.types["/media/posts/2026/03/a.png"])
	fake.mu.Unlock()

	require.NoError(t, s.Delete(context.Background(), "posts/2026/03/a.png"))
	fake.mu.Lock()
	assert.Empty(t, fake.objects)
	fake.mu.Unlock()
}

func TestNewS3_PublicBaseURL(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Bucket:        "media",
		AccessKey:     "a",
		SecretKey:     "b",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", s.baseURL)

	_, err = NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
