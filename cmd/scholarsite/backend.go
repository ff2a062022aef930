// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"scholarsite/internal/config"
	"scholarsite/internal/content"
	"scholarsite/internal/database"
	"scholarsite/internal/docstore"
	"scholarsite/internal/docstore/memstore"
	"scholarsite/internal/docstore/mongo"
	"scholarsite/internal/docstore/postgres"
	"scholarsite/internal/docstore/sqlite"
	"scholarsite/internal/storage"
)

// openStore connects the configured document store, running SQL migrations
// where the backend needs them.
func openStore(ctx context.Context, c *config.Config) (docstore.Store, error) {
	switch c.DocstoreDriver {
	case "memory":
		slog.Warn("using in-memory document store, content is lost on exit")
		return memstore.New(), nil

	case "postgres":
		db, err := database.Connect(c.DSN())
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, database.Postgres); err != nil {
			db.Close()
			return nil, err
		}
		return postgres.New(db), nil

	case "sqlite":
		db, err := database.OpenSQLite(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, database.SQLite); err != nil {
			db.Close()
			return nil, err
		}
		return sqlite.New(db), nil

	case "mongo":
		store, err := mongo.New(ctx, c.MongoURI)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown docstore driver %q", c.DocstoreDriver)
}

// openBlobs returns the configured blob backend, or nil when uploads are
// disabled.
func openBlobs(ctx context.Context, c *config.Config) (storage.Blobs, error) {
	switch c.BlobDriver {
	case "s3":
		client, err := storage.NewS3(c.S3Endpoint, c.S3Region, c.S3AccessKey, c.S3SecretKey, c.S3Bucket, c.S3PublicURL)
		if err != nil {
			return nil, err
		}
		if client == nil {
			break
		}
		slog.Info("s3 storage configured", "endpoint", c.S3Endpoint, "bucket", c.S3Bucket)
		return client, nil

	case "minio":
		client, err := storage.NewMinIO(ctx, c.S3Endpoint, c.S3AccessKey, c.S3SecretKey, c.S3Bucket, c.S3PublicURL, c.S3UseSSL)
		if err != nil {
			return nil, err
		}
		slog.Info("minio storage configured", "endpoint", c.S3Endpoint, "bucket", c.S3Bucket)
		return client, nil
	}

	slog.Warn("blob storage not configured, image uploads will fail")
	return nil, nil
}

// openContent wires the content service over the configured backends.
// The caller closes the returned store.
func openContent(ctx context.Context, c *config.Config) (*content.Service, docstore.Store, error) {
	store, err := openStore(ctx, c)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s docstore: %w", c.DocstoreDriver, err)
	}

	blobs, err := openBlobs(ctx, c)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open %s blob storage: %w", c.BlobDriver, err)
	}

	policy := content.RetryPolicy{MaxAttempts: c.UploadMaxAttempts, Backoff: c.UploadBackoff}
	uploader := content.NewUploader(blobs, policy, c.ImageMaxDimension)

	return content.NewService(store, uploader), store, nil
}
