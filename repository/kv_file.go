package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const (
	fileStoreExt     = ".json"
	fileStoreTmpGlob = ".tmp-*"
)

// fileWrite remembers the last value this store wrote for a key, so the watcher
// can attribute the resulting filesystem event to its origin.
type fileWrite struct {
	value   string
	removed bool
	origin  string
}

// FileStore is a KeyValueStore keeping one file per key in a directory.
// Several processes may share the directory; writes from any of them are
// reported to watchers through filesystem notifications.
type FileStore struct {
	dir string
	hub *watchHub

	mu         sync.Mutex
	lastWrites map[string]fileWrite
}

// NewFileStore creates a FileStore rooted at dir, creating the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	s := &FileStore{
		dir:        dir,
		lastWrites: make(map[string]fileWrite),
	}
	s.hub = newWatchHub("file", s.listen)
	return s, nil
}

// Ensure FileStore implements KeyValueStore
var _ KeyValueStore = (*FileStore)(nil)

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+fileStoreExt)
}

// Get reads the value stored under key
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes value under key through a temp file and rename, so readers never see partial values
func (s *FileStore) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, fileStoreTmpGlob)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	s.rememberWrite(key, fileWrite{value: value, origin: OriginFrom(ctx)})

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; a missing key is not an error
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.rememberWrite(key, fileWrite{removed: true, origin: OriginFrom(ctx)})

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Watch reports changes to key made by this store or any other process using the directory.
// All watchers share one filesystem watcher on the directory.
func (s *FileStore) Watch(ctx context.Context, key string) (<-chan Change, error) {
	return s.hub.watch(ctx, key)
}

// listen opens the directory watcher shared by every Watch call
func (s *FileStore) listen(context.Context) (func(context.Context, func(Change)) error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	run := func(ctx context.Context, publish func(Change)) error {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return fmt.Errorf("watcher on %s closed", s.dir)
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				key, ok := s.keyOf(event.Name)
				if !ok || !s.hub.watching(key) {
					continue
				}
				publish(Change{Key: key, Origin: s.originOf(ctx, key)})

			case err, ok := <-watcher.Errors:
				if !ok {
					return fmt.Errorf("watcher on %s closed", s.dir)
				}
				slog.Error("file store watcher error", "dir", s.dir, "error", err)
			}
		}
	}
	return run, nil
}

// keyOf maps a file in the store directory back to its key
func (s *FileStore) keyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".tmp-") || !strings.HasSuffix(base, fileStoreExt) {
		return "", false
	}
	key, err := hex.DecodeString(strings.TrimSuffix(base, fileStoreExt))
	if err != nil {
		return "", false
	}
	return string(key), true
}

// originOf returns the origin of the last local write when the file still holds
// what that write left behind; otherwise the change came from elsewhere.
// The remembered write is forgotten once an event has been attributed.
func (s *FileStore) originOf(ctx context.Context, key string) string {
	s.mu.Lock()
	last, ok := s.lastWrites[key]
	delete(s.lastWrites, key)
	s.mu.Unlock()
	if !ok {
		return ""
	}

	value, exists, err := s.Get(ctx, key)
	if err != nil {
		return ""
	}
	if last.removed && !exists {
		return last.origin
	}
	if !last.removed && exists && value == last.value {
		return last.origin
	}
	return ""
}

// rememberWrite records a local write for origin attribution; only keys with
// watchers are remembered
func (s *FileStore) rememberWrite(key string, write fileWrite) {
	if !s.hub.watching(key) {
		return
	}
	s.mu.Lock()
	s.lastWrites[key] = write
	s.mu.Unlock()
}

// pendingWrites is the number of local writes not yet attributed to an event
func (s *FileStore) pendingWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastWrites)
}
