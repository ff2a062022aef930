// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package postgres stores documents as JSONB rows in a single PostgreSQL
// table keyed by (collection, id).
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scholarsite/internal/docstore"
)

// Store implements docstore.Store on the documents table created by the
// postgres migrations.
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

// New returns a Store backed by the given database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	const op = "docstore/postgres.Query"

	if err := docstore.ValidateQuery(q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}

	if q.HasFilter() {
		filter, err := json.Marshal(map[string]any{q.EqualsField: q.EqualsValue})
		if err != nil {
			return nil, fmt.Errorf("%s: encode filter: %w", op, err)
		}
		args = append(args, string(filter))
		query += fmt.Sprintf(` AND data @> $%d::jsonb`, len(args))
	}

	if q.OrderField != "" {
		args = append(args, q.OrderField)
		// Missing fields order lowest, as in the other backends.
		dir := "ASC NULLS FIRST"
		if q.OrderDesc {
			dir = "DESC NULLS LAST"
		}
		query += fmt.Sprintf(` ORDER BY data -> $%d::text %s, seq ASC`, len(args), dir)
	} else {
		query += ` ORDER BY seq ASC`
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
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
	const op = "docstore/postgres.Get"

	row := s.db.QueryRowContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	const op = "docstore/postgres.Create"

	data, err := encode(fields)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO documents (collection, data) VALUES ($1, $2::jsonb) RETURNING id`,
		collection, data,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	const op = "docstore/postgres.Set"

	data, err := encode(fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	const op = "docstore/postgres.Merge"

	data, err := encode(fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// jsonb || jsonb replaces top-level keys, which is exactly a shallow merge.
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s/%s: %w", op, collection, id, docstore.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	const op = "docstore/postgres.Delete"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
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

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (docstore.Document, error) {
	var (
		doc  docstore.Document
		data []byte
	)
	if err := row.Scan(&doc.ID, &data); err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc.Fields); err != nil {
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
