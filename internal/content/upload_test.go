// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsite/internal/storage"
)

func TestUploaderKey(t *testing.T) {
	u := NewUploader(newFakeBlobs(0), fastRetry, 0)
	u.now = func() time.Time { return time.UnixMilli(1718000000123) }

	key := u.Key("events", "Poster (final).png", "image/png")
	assert.Regexp(t, regexp.MustCompile(`^events/1718000000123-[0-9a-f-]{8}-Poster__final_.png$`), key)

	// Names without an extension get one from the content type.
	key = u.Key("gallery", "blob", "image/jpeg")
	assert.Regexp(t, `\.jpg$`, key)

	// Two uploads in the same millisecond never share a key.
	assert.NotEqual(t, u.Key("gallery", "a.png", "image/png"), u.Key("gallery", "a.png", "image/png"))
}

func TestUploaderRecordsContentType(t *testing.T) {
	blobs := newFakeBlobs(0)
	u := NewUploader(blobs, fastRetry, 0)

	key, url, err := u.Upload(context.Background(), "profile", pngFile(t, "me.png"))
	require.NoError(t, err)
	assert.Equal(t, blobs.URL(key), url)
	assert.Equal(t, "image/png", blobs.types[key])
}

func TestUploaderStopsOnCancel(t *testing.T) {
	blobs := newFakeBlobs(100)
	u := NewUploader(blobs, RetryPolicy{MaxAttempts: 50, Backoff: time.Hour}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err := u.Upload(ctx, "gallery", pngFile(t, "x.png"))
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)

	calls, _ := blobs.count()
	assert.Equal(t, 1, calls)
}

func TestUploaderNotConfiguredIsNotRetried(t *testing.T) {
	u := NewUploader(storage.Disabled{}, RetryPolicy{MaxAttempts: 3, Backoff: time.Hour}, 0)

	_, _, err := u.Upload(context.Background(), "gallery", pngFile(t, "x.png"))
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

func TestRetryPolicyZeroBackoff(t *testing.T) {
	blobs := newFakeBlobs(1)
	u := NewUploader(blobs, RetryPolicy{MaxAttempts: 2}, 0)

	_, _, err := u.Upload(context.Background(), "gallery", pngFile(t, "x.png"))
	require.NoError(t, err)
	calls, _ := blobs.count()
	assert.Equal(t, 2, calls)
}
