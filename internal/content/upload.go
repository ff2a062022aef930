// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"scholarsite/internal/imaging"
	"scholarsite/internal/metrics"
	"scholarsite/internal/slug"
	"scholarsite/internal/storage"
)

// File is an image submitted alongside a draft.
type File struct {
	Name string
	Data []byte
}

// RetryPolicy bounds blob upload retries.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy makes up to three attempts one second apart.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: time.Second}

func (p RetryPolicy) backoff() retry.Backoff {
	attempts := max(p.MaxAttempts, 1)
	// NewConstant panics on a non-positive interval.
	interval := max(p.Backoff, time.Nanosecond)
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(interval))
}

// Uploader stores files in blob storage under unique keys.
type Uploader struct {
	blobs  storage.Blobs
	policy RetryPolicy
	maxDim int
	now    func() time.Time
}

// NewUploader returns an Uploader. maxDim bounds the longest image side;
// zero keeps images at their original size.
func NewUploader(blobs storage.Blobs, policy RetryPolicy, maxDim int) *Uploader {
	if blobs == nil {
		blobs = storage.Disabled{}
	}
	return &Uploader{blobs: blobs, policy: policy, maxDim: maxDim, now: time.Now}
}

// Key builds the storage key for a file: <prefix>/<unix millis>-<short uuid>-<name>.
// The uuid fragment keeps keys unique for uploads in the same millisecond.
func (u *Uploader) Key(prefix, name, contentType string) string {
	safe := slug.Filename(name)
	if path.Ext(safe) == "" {
		safe += imaging.Extension(contentType)
	}
	return fmt.Sprintf("%s/%d-%s-%s", prefix, u.now().UnixMilli(), uuid.NewString()[:8], safe)
}

// Upload validates and stores f under prefix and returns the key and the
// durable URL. Invalid images fail with a *ValidationError; storage
// failures are retried per the policy and then fail with ErrUploadFailed.
func (u *Uploader) Upload(ctx context.Context, prefix string, f *File) (key, url string, err error) {
	data, contentType, err := imaging.Fit(f.Data, u.maxDim)
	if err != nil {
		return "", "", invalid("image", err.Error())
	}

	key = u.Key(prefix, f.Name, contentType)
	attempt := 0

	err = retry.Do(ctx, u.policy.backoff(), func(ctx context.Context) error {
		attempt++
		var uerr error
		url, uerr = u.blobs.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
		if uerr == nil {
			metrics.UploadAttempts.WithLabelValues("ok").Inc()
			return nil
		}
		metrics.UploadAttempts.WithLabelValues("error").Inc()
		if errors.Is(uerr, storage.ErrNotConfigured) {
			return uerr
		}
		slog.Warn("upload attempt failed", "path", key, "attempt", attempt, "error", uerr)
		return retry.RetryableError(uerr)
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %s after %d attempt(s): %w", ErrUploadFailed, key, attempt, err)
	}

	return key, url, nil
}
