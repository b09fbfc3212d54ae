package service

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"tienda/repository"
)

func TestMain(m *testing.M) {
	// The Drive client used by the catalog loader starts the opencensus worker on import
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// watchSignalStore closes watching once the first watcher is registered
type watchSignalStore struct {
	repository.KeyValueStore
	watching chan struct{}
}

func newWatchSignalStore() *watchSignalStore {
	return &watchSignalStore{
		KeyValueStore: repository.NewMemoryStore(),
		watching:      make(chan struct{}),
	}
}

func (s *watchSignalStore) Watch(ctx context.Context, key string) (<-chan repository.Change, error) {
	ch, err := s.KeyValueStore.Watch(ctx, key)
	close(s.watching)
	return ch, err
}
