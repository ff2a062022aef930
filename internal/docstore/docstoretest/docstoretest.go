// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package docstoretest holds the behavioral checks every docstore.Store
// implementation must pass. Backend test files call Run with a factory
// that returns an empty store.
package docstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsite/internal/docstore"
)

// Run exercises store semantics against fresh stores from newStore.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Run("CreateThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, "publications", docstore.Fields{"title": "A", "year": 2020})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := s.Get(ctx, "publications", id)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, id, doc.ID)
		assert.Equal(t, "A", doc.Fields["title"])
		assert.EqualValues(t, 2020, doc.Fields["year"])
	})

	t.Run("GetMissingReturnsNil", func(t *testing.T) {
		s := newStore(t)
		doc, err := s.Get(context.Background(), "publications", "missing")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("QueryOrdersDescending", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, y := range []int{2020, 2023, 2019} {
			_, err := s.Create(ctx, "publications", docstore.Fields{"year": y})
			require.NoError(t, err)
		}

		docs, err := s.Query(ctx, "publications", docstore.Query{OrderField: "year", OrderDesc: true})
		require.NoError(t, err)
		assert.Equal(t, []float64{2023, 2020, 2019}, years(docs))
	})

	t.Run("QueryMissingOrderFieldSortsLowest", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, f := range []docstore.Fields{
			{"title": "second", "order": 2},
			{"title": "unset"},
			{"title": "first", "order": 1},
		} {
			_, err := s.Create(ctx, "gallery", f)
			require.NoError(t, err)
		}

		docs, err := s.Query(ctx, "gallery", docstore.Query{OrderField: "order"})
		require.NoError(t, err)
		assert.Equal(t, []string{"unset", "first", "second"}, titles(docs))

		docs, err = s.Query(ctx, "gallery", docstore.Query{OrderField: "order", OrderDesc: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first", "unset"}, titles(docs))
	})

	t.Run("QueryFilterKeepsOrderAndTies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		items := []docstore.Fields{
			{"title": "lab-2", "category": "laboratory", "order": 2},
			{"title": "res-1", "category": "research", "order": 1},
			{"title": "lab-1a", "category": "laboratory", "order": 1},
			{"title": "lab-1b", "category": "laboratory", "order": 1},
		}
		for _, f := range items {
			_, err := s.Create(ctx, "gallery", f)
			require.NoError(t, err)
		}

		docs, err := s.Query(ctx, "gallery", docstore.Query{
			EqualsField: "category", EqualsValue: "laboratory", OrderField: "order",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"lab-1a", "lab-1b", "lab-2"}, titles(docs))
	})

	t.Run("QueryBlankFilterMatchesAll", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Create(ctx, "gallery", docstore.Fields{"category": "awards"})
		require.NoError(t, err)
		_, err = s.Create(ctx, "gallery", docstore.Fields{"category": "general"})
		require.NoError(t, err)

		docs, err := s.Query(ctx, "gallery", docstore.Query{EqualsField: "category", EqualsValue: ""})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("QueryBoolAndLimit", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i := range 3 {
			_, err := s.Create(ctx, "feedback", docstore.Fields{"isRead": i == 1, "n": i})
			require.NoError(t, err)
		}

		unread, err := s.Query(ctx, "feedback", docstore.Query{EqualsField: "isRead", EqualsValue: false})
		require.NoError(t, err)
		assert.Len(t, unread, 2)

		limited, err := s.Query(ctx, "feedback", docstore.Query{Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.EqualValues(t, 0, limited[0].Fields["n"])
	})

	t.Run("QueryEmptyCollection", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.Query(context.Background(), "events", docstore.Query{OrderField: "startDate"})
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("QueryRejectsBadField", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Query(context.Background(), "events", docstore.Query{OrderField: "x') OR 1=1"})
		assert.ErrorIs(t, err, docstore.ErrInvalidField)
	})

	t.Run("MergeKeepsUntouchedFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, err := s.Create(ctx, "publications", docstore.Fields{"title": "A", "journal": "J", "year": 2020})
		require.NoError(t, err)

		require.NoError(t, s.Merge(ctx, "publications", id, docstore.Fields{"title": "B"}))

		doc, err := s.Get(ctx, "publications", id)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "B", doc.Fields["title"])
		assert.Equal(t, "J", doc.Fields["journal"])
		assert.EqualValues(t, 2020, doc.Fields["year"])
	})

	t.Run("MergeMissingIsNotFound", func(t *testing.T) {
		s := newStore(t)
		err := s.Merge(context.Background(), "publications", "missing", docstore.Fields{"title": "B"})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("SetCreatesThenReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "contactContent", "main", docstore.Fields{"a": "1", "b": "2"}))
		require.NoError(t, s.Set(ctx, "contactContent", "main", docstore.Fields{"a": "3"}))

		doc, err := s.Get(ctx, "contactContent", "main")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, docstore.Fields{"a": "3"}, doc.Fields)

		docs, err := s.Query(ctx, "contactContent", docstore.Query{})
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("NestedValuesRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		in := docstore.Fields{
			"contactInfo": []any{
				map[string]any{"title": "Email", "details": []any{"a@b.c"}},
			},
		}
		require.NoError(t, s.Set(ctx, "contactContent", "main", in))

		doc, err := s.Get(ctx, "contactContent", "main")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, in["contactInfo"], doc.Fields["contactInfo"])
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, err := s.Create(ctx, "events", docstore.Fields{"title": "E"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "events", id))
		require.NoError(t, s.Delete(ctx, "events", id))

		doc, err := s.Get(ctx, "events", id)
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, err := s.Create(ctx, "events", docstore.Fields{"title": "E"})
		require.NoError(t, err)

		doc, err := s.Get(ctx, "publications", id)
		require.NoError(t, err)
		assert.Nil(t, doc)
	})
}

func years(docs []docstore.Document) []float64 {
	out := make([]float64, 0, len(docs))
	for _, d := range docs {
		y, _ := d.Fields["year"].(float64)
		out = append(out, y)
	}
	return out
}

func titles(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		s, _ := d.Fields["title"].(string)
		out = append(out, s)
	}
	return out
}
