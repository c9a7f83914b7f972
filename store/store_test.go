// ABOUTME: Tests for the SQLite resource store.
// ABOUTME: Covers CRUD per kind, ULID assignment, ordering, conflicts and reopening the database.
package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/swarmbase/store"
)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "swarmbase.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestCreateAssignsULID(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	doc, err := s.Create(ctx, store.Tools, store.Document{"name": "Search"})
	require.NoError(t, err)
	id, ok := doc["id"].(string)
	require.True(t, ok)
	_, err = ulid.ParseStrict(id)
	assert.NoError(t, err)

	got, err := s.Get(ctx, store.Tools, id)
	require.NoError(t, err)
	assert.Equal(t, store.Document{"id": id, "name": "Search"}, got)
}

func TestCreateWithCallerID(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.Agents, store.Document{"id": "lead", "name": "Lead"})
	require.NoError(t, err)

	_, err = s.Create(ctx, store.Agents, store.Document{"id": "lead"})
	assert.ErrorIs(t, err, store.ErrExists)

	// Same id under another kind is a different resource.
	_, err = s.Create(ctx, store.Swarms, store.Document{"id": "lead"})
	assert.NoError(t, err)
}

func TestCreateDoesNotMutateInput(t *testing.T) {
	s, _ := openStore(t)
	in := store.Document{"name": "Team"}
	_, err := s.Create(context.Background(), store.Swarms, in)
	require.NoError(t, err)
	assert.NotContains(t, in, "id")
}

func TestUpdateAndDelete(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	doc, err := s.Create(ctx, store.Frameworks, store.Document{"name": "Core"})
	require.NoError(t, err)
	id := doc["id"].(string)
	created, err := s.UpdatedAt(ctx, store.Frameworks, id)
	require.NoError(t, err)

	updated, err := s.Update(ctx, store.Frameworks, id, store.Document{"id": "ignored", "name": "Core2"})
	require.NoError(t, err)
	assert.Equal(t, id, updated["id"])

	got, err := s.Get(ctx, store.Frameworks, id)
	require.NoError(t, err)
	assert.Equal(t, "Core2", got["name"])
	touched, err := s.UpdatedAt(ctx, store.Frameworks, id)
	require.NoError(t, err)
	assert.False(t, touched.Before(created))

	require.NoError(t, s.Delete(ctx, store.Frameworks, id))
	_, err = s.Get(ctx, store.Frameworks, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, store.Frameworks, id), store.ErrNotFound)
	_, err = s.Update(ctx, store.Frameworks, id, store.Document{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListInsertionOrder(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	empty, err := s.List(ctx, store.Agents)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Create(ctx, store.Agents, store.Document{"id": id})
		require.NoError(t, err)
	}
	_, err = s.Create(ctx, store.Tools, store.Document{"id": "tool"})
	require.NoError(t, err)

	docs, err := s.List(ctx, store.Agents)
	require.NoError(t, err)
	var ids []string
	for _, d := range docs {
		ids = append(ids, d["id"].(string))
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids)
}

func TestReopenKeepsData(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, store.Agents, store.Document{"id": "a1", "tools": []any{"t1"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	again, err := store.Open(path)
	require.NoError(t, err)
	defer func() { _ = again.Close() }()

	got, err := again.Get(ctx, store.Agents, "a1")
	require.NoError(t, err)
	assert.Equal(t, []any{"t1"}, got["tools"])
}

func TestWritesRejectUnknownKind(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.Kind("Swarms"), store.Document{"name": "x"})
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	_, err = s.Update(ctx, store.Kind("crews"), "c1", store.Document{})
	assert.ErrorIs(t, err, store.ErrUnknownKind)
}
