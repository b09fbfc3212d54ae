package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeed hands out a feed whose changes and failure are driven by the test
type fakeFeed struct {
	changes chan Change
	fail    chan error
	opens   int
	openErr error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{changes: make(chan Change), fail: make(chan error, 1)}
}

func (f *fakeFeed) open(context.Context) (func(context.Context, func(Change)) error, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens++
	return func(ctx context.Context, publish func(Change)) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-f.fail:
				return err
			case change := <-f.changes:
				publish(change)
			}
		}
	}, nil
}

func receive(t *testing.T, ch <-chan Change) (Change, bool) {
	t.Helper()
	select {
	case change, ok := <-ch:
		return change, ok
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher")
		return Change{}, false
	}
}

func TestWatchHub_FansOutPerKey(t *testing.T) {
	feed := newFakeFeed()
	hub := newWatchHub("fake", feed.open)
	ctx := t.Context()

	a1, err := hub.watch(ctx, "cart:a")
	require.NoError(t, err)
	a2, err := hub.watch(ctx, "cart:a")
	require.NoError(t, err)
	b, err := hub.watch(ctx, "cart:b")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.opens)

	feed.changes <- Change{Key: "cart:a", Origin: "x"}
	feed.changes <- Change{Key: "cart:b"}

	change, ok := receive(t, a1)
	require.True(t, ok)
	assert.Equal(t, Change{Key: "cart:a", Origin: "x"}, change)
	change, _ = receive(t, a2)
	assert.Equal(t, "cart:a", change.Key)
	change, _ = receive(t, b)
	assert.Equal(t, "cart:b", change.Key)
}

func TestWatchHub_OpenError(t *testing.T) {
	feed := newFakeFeed()
	feed.openErr = errors.New("connection refused")
	hub := newWatchHub("fake", feed.open)

	_, err := hub.watch(t.Context(), "cart:a")
	assert.ErrorContains(t, err, "connection refused")

	// A later watch retries
	feed.openErr = nil
	_, err = hub.watch(t.Context(), "cart:a")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.opens)
}

func TestWatchHub_CanceledContext(t *testing.T) {
	feed := newFakeFeed()
	hub := newWatchHub("fake", feed.open)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hub.watch(ctx, "cart:a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, feed.opens)
}

func TestWatchHub_FeedFailureClosesWatchers(t *testing.T) {
	feed := newFakeFeed()
	hub := newWatchHub("fake", feed.open)

	a, err := hub.watch(t.Context(), "cart:a")
	require.NoError(t, err)
	b, err := hub.watch(t.Context(), "cart:b")
	require.NoError(t, err)

	feed.fail <- errors.New("connection lost")

	_, ok := receive(t, a)
	assert.False(t, ok)
	_, ok = receive(t, b)
	assert.False(t, ok)

	// The next watcher opens a fresh feed
	c, err := hub.watch(t.Context(), "cart:a")
	require.NoError(t, err)
	assert.Equal(t, 2, feed.opens)
	feed.changes <- Change{Key: "cart:a"}
	change, ok := receive(t, c)
	require.True(t, ok)
	assert.Equal(t, "cart:a", change.Key)
}
