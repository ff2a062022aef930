// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"scholarsite/internal/docstore"
	"scholarsite/internal/docstore/memstore"
)

// fakeBlobs records uploads and fails the first failures calls.
type fakeBlobs struct {
	mu       sync.Mutex
	failures int
	calls    int
	objects  map[string][]byte
	types    map[string]string
}

func newFakeBlobs(failures int) *fakeBlobs {
	return &fakeBlobs{failures: failures, objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBlobs) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("connection reset")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return f.URL(key), nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) URL(key string) string { return "https://cdn.test/" + key }

func (f *fakeBlobs) count() (calls, stored int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, len(f.objects)
}

// flakyStore fails writes or reads on demand.
type flakyStore struct {
	docstore.Store
	failWrites bool
	failReads  bool
}

var errBackend = errors.New("backend down")

func (s *flakyStore) Create(ctx context.Context, c string, f docstore.Fields) (string, error) {
	if s.failWrites {
		return "", errBackend
	}
	return s.Store.Create(ctx, c, f)
}

func (s *flakyStore) Merge(ctx context.Context, c, id string, f docstore.Fields) error {
	if s.failWrites {
		return errBackend
	}
	return s.Store.Merge(ctx, c, id, f)
}

func (s *flakyStore) Query(ctx context.Context, c string, q docstore.Query) ([]docstore.Document, error) {
	if s.failReads {
		return nil, errBackend
	}
	return s.Store.Query(ctx, c, q)
}

func (s *flakyStore) Get(ctx context.Context, c, id string) (*docstore.Document, error) {
	if s.failReads {
		return nil, errBackend
	}
	return s.Store.Get(ctx, c, id)
}

var fastRetry = RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}

func newTestService(t *testing.T, blobs *fakeBlobs) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewService(store, NewUploader(blobs, fastRetry, 0)), store
}

func pngFile(t *testing.T, name string) *File {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return &File{Name: name, Data: buf.Bytes()}
}
