// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore is an in-process docstore.Store used by tests and by the
// development server when no database is configured.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"scholarsite/internal/docstore"
)

type record struct {
	seq    uint64
	fields docstore.Fields
}

// Store keeps every collection in memory. Documents are normalized and
// deep-copied on the way in and out.
type Store struct {
	mu          sync.RWMutex
	seq         uint64
	collections map[string]map[string]*record
}

var _ docstore.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]*record)}
}

func (s *Store) Query(_ context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateQuery(q); err != nil {
		return nil, err
	}

	var want any
	if q.HasFilter() {
		v, err := docstore.NormalizeValue(q.EqualsValue)
		if err != nil {
			return nil, err
		}
		want = v
	}

	s.mu.RLock()
	var matched []struct {
		id  string
		rec *record
	}
	for id, rec := range s.collections[collection] {
		if q.HasFilter() && !docstore.Equal(rec.fields[q.EqualsField], want) {
			continue
		}
		matched = append(matched, struct {
			id  string
			rec *record
		}{id, rec})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].rec, matched[j].rec
		if q.OrderField != "" {
			c := docstore.Compare(a.fields[q.OrderField], b.fields[q.OrderField])
			if q.OrderDesc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return a.seq < b.seq
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	docs := make([]docstore.Document, 0, len(matched))
	for _, m := range matched {
		docs = append(docs, docstore.Document{ID: m.id, Fields: clone(m.rec.fields)})
	}
	s.mu.RUnlock()

	return docs, nil
}

func (s *Store) Get(_ context.Context, collection, id string) (*docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &docstore.Document{ID: id, Fields: clone(rec.fields)}, nil
}

func (s *Store) Create(_ context.Context, collection string, fields docstore.Fields) (string, error) {
	f, err := docstore.Normalize(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, f)
	return id, nil
}

func (s *Store) Set(_ context.Context, collection, id string, fields docstore.Fields) error {
	if id == "" {
		return fmt.Errorf("memstore: set %s: empty id", collection)
	}
	f, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.collections[collection][id]; ok {
		rec.fields = f
		return nil
	}
	s.put(collection, id, f)
	return nil
}

func (s *Store) Merge(_ context.Context, collection, id string, fields docstore.Fields) error {
	f, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("memstore: merge %s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	merged := clone(rec.fields)
	maps.Copy(merged, f)
	rec.fields = merged
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// put must be called with the write lock held.
func (s *Store) put(collection, id string, f docstore.Fields) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]*record)
		s.collections[collection] = coll
	}
	s.seq++
	coll[id] = &record{seq: s.seq, fields: f}
}

// clone deep-copies normalized fields so callers never share nested maps or
// slices with the store.
func clone(f docstore.Fields) docstore.Fields {
	out := make(docstore.Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case docstore.Fields:
		return map[string]any(clone(x))
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	}
	return v
}
