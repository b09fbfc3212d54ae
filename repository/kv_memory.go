package repository

import (
	"context"
	"log/slog"
	"sync"
)

// watchBuffer is the per-watcher backlog; watchers that fall behind drop changes.
// Consumers re-read state on every change, so a dropped change is covered by the
// next one still queued.
const watchBuffer = 64

// MemoryStore is an in-process KeyValueStore.
// Changes are delivered to every watcher of the key, including the writer's own.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string]string
	watchers map[string]map[chan Change]struct{}
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]string),
		watchers: make(map[string]map[chan Change]struct{}),
	}
}

// Ensure MemoryStore implements KeyValueStore
var _ KeyValueStore = (*MemoryStore)(nil)

// Get returns the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok, nil
}

// Set stores value under key and notifies watchers
func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.notifyLocked(Change{Key: key, Origin: OriginFrom(ctx)})
	return nil
}

// Remove deletes key; removing a missing key still notifies watchers
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.notifyLocked(Change{Key: key, Origin: OriginFrom(ctx)})
	return nil
}

// Watch subscribes to changes of key until ctx is done
func (s *MemoryStore) Watch(ctx context.Context, key string) (<-chan Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan Change, watchBuffer)

	s.mu.Lock()
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[chan Change]struct{})
	}
	s.watchers[key][ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[key], ch)
		if len(s.watchers[key]) == 0 {
			delete(s.watchers, key)
		}
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *MemoryStore) notifyLocked(change Change) {
	for ch := range s.watchers[change.Key] {
		select {
		case ch <- change:
		default:
			slog.Warn("memory store watcher is full, dropping change", "key", change.Key)
		}
	}
}
