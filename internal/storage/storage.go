// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides blob storage for uploaded images. Two backends
// exist: an S3 client built on the AWS SDK v2 and a MinIO client.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned by Disabled when no blob backend is set up.
var ErrNotConfigured = errors.New("storage: blob storage not configured")

// Blobs stores objects under keys and returns their public URLs.
type Blobs interface {
	// Upload stores body under key and returns the durable public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Disabled is the Blobs used when BLOB_DRIVER=none. Every upload fails.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return ErrNotConfigured }

func (Disabled) URL(string) string { return "" }

func joinURL(base, key string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	for len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	return base + "/" + key
}
