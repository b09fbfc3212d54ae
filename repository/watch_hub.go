package repository

import (
	"context"
	"log/slog"
	"sync"
)

// listenFunc opens a store's change feed. Setup happens with ctx before it
// returns; run then blocks, passing every change to publish, until its own ctx
// is done or the feed fails.
type listenFunc func(ctx context.Context) (run func(ctx context.Context, publish func(Change)) error, err error)

// watchHub shares one change feed among all watchers of a store and fans the
// changes out per key. The feed is opened by the first watcher and closed
// after the last one leaves.
type watchHub struct {
	name string
	open listenFunc

	mu          sync.Mutex
	subscribers map[string]map[chan Change]struct{}
	count       int
	stop        context.CancelFunc // nil while no feed is running
	starts      int
}

func newWatchHub(name string, open listenFunc) *watchHub {
	return &watchHub{
		name:        name,
		open:        open,
		subscribers: make(map[string]map[chan Change]struct{}),
	}
}

// watch subscribes to key until ctx is done, starting the feed if needed
func (h *watchHub) watch(ctx context.Context, key string) (<-chan Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop == nil {
		run, err := h.open(ctx)
		if err != nil {
			return nil, err
		}
		feedCtx, cancel := context.WithCancel(context.Background())
		h.stop = cancel
		h.starts++
		go h.serve(feedCtx, cancel, run)
	}

	ch := make(chan Change, watchBuffer)
	if h.subscribers[key] == nil {
		h.subscribers[key] = make(map[chan Change]struct{})
	}
	h.subscribers[key][ch] = struct{}{}
	h.count++

	go func() {
		<-ctx.Done()
		h.unsubscribe(key, ch)
	}()

	return ch, nil
}

func (h *watchHub) unsubscribe(key string, ch chan Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[key][ch]; !ok {
		// already closed by a failed feed
		return
	}
	delete(h.subscribers[key], ch)
	if len(h.subscribers[key]) == 0 {
		delete(h.subscribers, key)
	}
	close(ch)

	h.count--
	if h.count == 0 && h.stop != nil {
		h.stop()
		h.stop = nil
	}
}

func (h *watchHub) serve(ctx context.Context, cancel context.CancelFunc, run func(context.Context, func(Change)) error) {
	err := run(ctx, h.publish)

	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Err() != nil {
		// stopped after the last watcher left
		return
	}
	slog.Error("store change feed stopped", "store", h.name, "error", err)

	// Close every subscriber so watchers see the feed is gone; the next watch reopens it
	cancel()
	h.stop = nil
	for key, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, key)
	}
	h.count = 0
}

func (h *watchHub) publish(change Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[change.Key] {
		select {
		case ch <- change:
		default:
			slog.Warn("store watcher is full, dropping change", "store", h.name, "key", change.Key)
		}
	}
}

// watching reports whether key has any subscriber
func (h *watchHub) watching(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[key]) > 0
}

// feedStarts counts how many times the shared feed has been opened
func (h *watchHub) feedStarts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.starts
}
