// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"scholarsite/internal/docstore"
)

var (
	// ErrStoreUnavailable wraps any failure of the document store.
	ErrStoreUnavailable = errors.New("content store unavailable")
	// ErrNotFound is returned by list-kind Get, Update and Replace for unknown ids.
	ErrNotFound = errors.New("content not found")
	// ErrUploadFailed is returned when an upload exhausted its retries.
	ErrUploadFailed = errors.New("upload failed")
	// ErrValidationRejected is matched by every *ValidationError.
	ErrValidationRejected = errors.New("validation rejected")
)

// ValidationError lists field-level problems keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation rejected: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidationRejected) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationRejected
}

// fieldErrors accumulates validation messages.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// storeError maps a docstore failure onto the content error taxonomy.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, docstore.ErrInvalidField):
		return fmt.Errorf("%s: %w", op, invalid("query", err.Error()))
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// result names an error for metrics labels.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidationRejected):
		return "invalid"
	case errors.Is(err, ErrUploadFailed):
		return "upload_failed"
	}
	return "unavailable"
}
