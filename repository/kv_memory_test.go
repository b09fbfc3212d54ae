package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case change, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestMemoryStore_GetSetRemove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "cart", `[{"id":1}]`))
	value, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, value)

	require.NoError(t, store.Remove(ctx, "cart"))
	_, ok, err = store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing twice is fine
	require.NoError(t, store.Remove(ctx, "cart"))
}

func TestMemoryStore_Watch(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := store.Watch(ctx, "cart:a")
	require.NoError(t, err)

	require.NoError(t, store.Set(WithOrigin(context.Background(), "tab-1"), "cart:a", "[]"))
	assert.Equal(t, Change{Key: "cart:a", Origin: "tab-1"}, receiveChange(t, changes))

	// Other keys are not reported
	require.NoError(t, store.Set(context.Background(), "cart:b", "[]"))
	require.NoError(t, store.Remove(context.Background(), "cart:a"))
	assert.Equal(t, Change{Key: "cart:a"}, receiveChange(t, changes))

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel was not closed after cancel")
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "cart", "[]"), context.Canceled)
	_, err := store.Watch(ctx, "cart")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrigin(t *testing.T) {
	assert.Empty(t, OriginFrom(context.Background()))
	assert.Equal(t, "abc", OriginFrom(WithOrigin(context.Background(), "abc")))
}
