// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient stores blobs in a MinIO bucket.
type MinIOClient struct {
	client    *mclient.Client
	bucket    string
	publicURL string
}

var _ Blobs = (*MinIOClient)(nil)

// NewMinIO connects to MinIO and makes sure the bucket exists. endpoint is
// host:port without a scheme. When publicURL is empty, object URLs are
// built from the endpoint and bucket.
func NewMinIO(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*MinIOClient, error) {
	const op = "storage.NewMinIO"

	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: bucket exists: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: make bucket: %w", op, err)
		}
	}

	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + endpoint + "/" + bucket
	}

	return &MinIOClient{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (c *MinIOClient) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, body, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio upload %s/%s: %w", c.bucket, key, err)
	}
	return c.URL(key), nil
}

func (c *MinIOClient) Delete(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, mclient.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

func (c *MinIOClient) URL(key string) string {
	return joinURL(c.publicURL, key)
}
