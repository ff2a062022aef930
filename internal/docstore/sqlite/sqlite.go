// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sqlite stores documents as JSON text rows in an embedded SQLite
// database, using the JSON1 functions for filtering and ordering.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"scholarsite/internal/docstore"
)

// Store implements docstore.Store on the documents table created by the
// sqlite migrations.
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

// New returns a Store backed by the given database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	const op = "docstore/sqlite.Query"

	if err := docstore.ValidateQuery(q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, data FROM documents WHERE collection = ?`
	args := []any{collection}

	if q.HasFilter() {
		want, err := docstore.NormalizeValue(q.EqualsValue)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if b, ok := want.(bool); ok {
			// json_extract yields 0/1 for JSON booleans.
			want = 0
			if b {
				want = 1
			}
		}
		query += ` AND json_extract(data, ?) = ?`
		args = append(args, "$."+q.EqualsField, want)
	}

	if q.OrderField != "" {
		dir := "ASC"
		if q.OrderDesc {
			dir = "DESC"
		}
		query += ` ORDER BY json_extract(data, ?) ` + dir + `, seq ASC`
		args = append(args, "$."+q.OrderField)
	} else {
		query += ` ORDER BY seq ASC`
	}

	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	docs := []docstore.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	const op = "docstore/sqlite.Get"

	doc, err := get(ctx, s.db, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	const op = "docstore/sqlite.Create"

	data, err := encode(fields)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, data,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	const op = "docstore/sqlite.Set"

	data, err := encode(fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = excluded.data,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Merge reads, merges and writes back inside one transaction. json_patch
// would also delete keys set to null, which a shallow merge must not do.
func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	const op = "docstore/sqlite.Merge"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	doc, err := get(ctx, tx, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %s/%s: %w", op, collection, id, docstore.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	maps.Copy(doc.Fields, fields)
	data, err := encode(doc.Fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET data = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE collection = ? AND id = ?`,
		data, collection, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	const op = "docstore/sqlite.Delete"

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q queryer, collection, id string) (docstore.Document, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? AND id = ?`, collection, id,
	)
	return scanDocument(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (docstore.Document, error) {
	var (
		doc  docstore.Document
		data string
	)
	if err := row.Scan(&doc.ID, &data); err != nil {
		return doc, err
	}
	if err := json.Unmarshal([]byte(data), &doc.Fields); err != nil {
		return doc, fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	if doc.Fields == nil {
		doc.Fields = docstore.Fields{}
	}
	return doc, nil
}

func encode(fields docstore.Fields) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(b), nil
}
