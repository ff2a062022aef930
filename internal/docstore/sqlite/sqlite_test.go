// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsite/internal/database"
	"scholarsite/internal/docstore"
	"scholarsite/internal/docstore/docstoretest"
)

func newTestStore(t *testing.T) docstore.Store {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.SQLite))
	s := New(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	docstoretest.Run(t, newTestStore)
}

func TestCreateIssuesUUIDs(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(context.Background(), "events", docstore.Fields{"title": "E"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
