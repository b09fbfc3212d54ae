package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/db"
)

// Runs against a real database when DATABASE_URL is set
func TestPostgresStore(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	require.NoError(t, db.InitDB(ctx))
	t.Cleanup(func() { db.CloseDB() })
	require.NoError(t, db.EnsureSchema(ctx, db.DB))

	store := NewPostgresStore(db.DB, db.ListenConnString())
	key := "cart:" + uuid.NewString()
	t.Cleanup(func() { store.Remove(context.Background(), key) })

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	changes, err := store.Watch(watchCtx, key)
	require.NoError(t, err)
	// Further watchers share the LISTEN connection
	shared, err := store.Watch(watchCtx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, store.hub.feedStarts())

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(WithOrigin(ctx, "svc-a"), key, `[{"id":1,"qty":1}]`))
	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1,"qty":1}]`, value)

	select {
	case change := <-changes:
		assert.Equal(t, Change{Key: key, Origin: "svc-a"}, change)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	select {
	case change := <-shared:
		assert.Equal(t, Change{Key: key, Origin: "svc-a"}, change)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for shared notification")
	}

	require.NoError(t, store.Set(ctx, key, `[]`))
	value, _, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Remove(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
