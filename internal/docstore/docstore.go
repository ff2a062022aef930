// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package docstore defines the document capability of the remote store:
// named collections of JSON-like documents addressed by string ids, with
// single-field equality filters, single-field ordering and limits.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound is returned by Merge when the target document does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrInvalidField is returned when a filter or order field name is not a
	// plain identifier.
	ErrInvalidField = errors.New("docstore: invalid field name")
)

// Fields is the content of a document. Values are JSON-compatible: string,
// float64, bool, nil, []any and map[string]any.
type Fields map[string]any

// Document is a stored document together with its id.
type Document struct {
	ID     string
	Fields Fields
}

// Query selects documents from one collection. Zero values mean "no filter",
// "store order" and "no limit".
type Query struct {
	EqualsField string
	EqualsValue any
	OrderField  string
	OrderDesc   bool
	Limit       int
}

// HasFilter reports whether q carries an equality predicate. A blank or nil
// value disables the filter.
func (q Query) HasFilter() bool {
	if q.EqualsField == "" || q.EqualsValue == nil {
		return false
	}
	if s, ok := q.EqualsValue.(string); ok && s == "" {
		return false
	}
	return true
}

// Store is a document database. Implementations must break ties on the order
// field by insertion sequence.
type Store interface {
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Get returns (nil, nil) when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Create inserts a document under a store-assigned id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Set creates or fully replaces the document at id.
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Merge overwrites the given top-level fields and leaves the rest untouched.
	Merge(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
	Close() error
}

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateQuery checks the field names used by q.
func ValidateQuery(q Query) error {
	if q.EqualsField != "" && !fieldName.MatchString(q.EqualsField) {
		return fmt.Errorf("%w: %q", ErrInvalidField, q.EqualsField)
	}
	if q.OrderField != "" && !fieldName.MatchString(q.OrderField) {
		return fmt.Errorf("%w: %q", ErrInvalidField, q.OrderField)
	}
	if q.Limit < 0 {
		return fmt.Errorf("docstore: negative limit %d", q.Limit)
	}
	return nil
}

// Normalize round-trips v through JSON so that every backend sees the same
// value shapes (numbers as float64, times as RFC 3339 strings).
func Normalize(v any) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode fields: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("docstore: decode fields: %w", err)
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

// NormalizeValue converts a single filter value to its normalized shape.
func NormalizeValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("docstore: decode value: %w", err)
	}
	return out, nil
}
