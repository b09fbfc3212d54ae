package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"tienda/metrics"
	"tienda/models"
	"tienda/repository"
)

// DefaultCartKey is the well-known key of a cart that is not tied to a session
const DefaultCartKey = "cart"

// CartKey returns the store key of the cart owned by a session
func CartKey(sessionID string) string {
	return DefaultCartKey + ":" + sessionID
}

// CartService owns one persisted cart.
// Every operation re-reads the cart from the store before mutating it, so
// changes made through other CartService instances on the same key are never
// overwritten by a stale copy. Concurrent writers follow last-writer-wins.
type CartService struct {
	store  repository.KeyValueStore
	key    string
	origin string

	mu        sync.Mutex
	observers []func(count int)
}

// NewCartService creates a new CartService for the cart stored under key
func NewCartService(store repository.KeyValueStore, key string) *CartService {
	return &CartService{
		store:  store,
		key:    key,
		origin: uuid.NewString(),
	}
}

// Ensure CartService implements CartServiceInterface
var _ CartServiceInterface = (*CartService)(nil)

// Key returns the store key of the cart
func (s *CartService) Key() string {
	return s.key
}

// OnCountChange registers an observer of the cart item count.
// Observers run synchronously after each mutation and on every external change seen by Sync.
func (s *CartService) OnCountChange(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *CartService) publish(count int) {
	s.mu.Lock()
	observers := make([]func(int), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(count)
	}
}

// load reads the persisted cart. A missing key is an empty cart; entries with a
// quantity below 1 are read as 1.
func (s *CartService) load(ctx context.Context) (models.Cart, error) {
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if !ok || raw == "" {
		return models.Cart{}, nil
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", s.key, err)
	}
	if cart == nil {
		cart = models.Cart{}
	}
	for i := range cart {
		if cart[i].Qty < 1 {
			cart[i].Qty = 1
		}
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.store.Set(repository.WithOrigin(ctx, s.origin), s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// mutate runs fn on the freshly loaded cart and persists the result when fn reports a change
func (s *CartService) mutate(ctx context.Context, op string, fn func(cart models.Cart) (models.Cart, bool)) (models.Cart, error) {
	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	cart, changed := fn(cart)
	if !changed {
		return cart, nil
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	metrics.CartMutations.WithLabelValues(op).Inc()
	s.publish(itemCount(cart))
	return cart, nil
}

// Add puts one unit of product in the cart: the existing entry's qty grows by 1,
// or a new entry with qty 1 is appended.
func (s *CartService) Add(ctx context.Context, product models.Product) (*models.CartEntry, error) {
	var added models.CartEntry
	_, err := s.mutate(ctx, "add", func(cart models.Cart) (models.Cart, bool) {
		if i := cart.Find(product.ID); i >= 0 {
			cart[i].Qty++
			added = cart[i]
			return cart, true
		}
		added = models.NewCartEntry(product)
		return append(cart, added), true
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🛒 Add: product %d in cart %s, qty=%d", added.ID, s.key, added.Qty)
	return &added, nil
}

// Increment adds one unit to the entry with the given id; unknown ids are ignored
func (s *CartService) Increment(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, "increment", func(cart models.Cart) (models.Cart, bool) {
		i := cart.Find(id)
		if i < 0 {
			return cart, false
		}
		cart[i].Qty++
		return cart, true
	})
	return err
}

// Decrement removes one unit from the entry with the given id. The quantity
// never drops below 1 and the entry is never removed; unknown ids are ignored.
func (s *CartService) Decrement(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, "decrement", func(cart models.Cart) (models.Cart, bool) {
		i := cart.Find(id)
		if i < 0 || cart[i].Qty <= 1 {
			return cart, false
		}
		cart[i].Qty--
		return cart, true
	})
	return err
}

// Remove deletes the entry with the given id; unknown ids are ignored
func (s *CartService) Remove(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, "remove", func(cart models.Cart) (models.Cart, bool) {
		i := cart.Find(id)
		if i < 0 {
			return cart, false
		}
		return append(cart[:i], cart[i+1:]...), true
	})
	return err
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context) error {
	if err := s.store.Remove(repository.WithOrigin(ctx, s.origin), s.key); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	log.Printf("🧹 Clear: cart %s emptied", s.key)
	s.publish(0)
	return nil
}

// Entries returns a snapshot of the cart
func (s *CartService) Entries(ctx context.Context) (models.Cart, error) {
	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// TotalItemCount returns the sum of quantities, read from the store
func (s *CartService) TotalItemCount(ctx context.Context) (int, error) {
	cart, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return itemCount(cart), nil
}

// Sync republishes the item count whenever the cart is changed by another
// writer. It blocks until ctx is done.
func (s *CartService) Sync(ctx context.Context) error {
	run, err := s.StartSync(ctx)
	if err != nil {
		return err
	}
	return run()
}

// StartSync subscribes to changes of the cart and returns the loop that
// republishes them. Changes made after StartSync returns are never missed.
func (s *CartService) StartSync(ctx context.Context) (func() error, error) {
	changes, err := s.store.Watch(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to watch cart %s: %w", s.key, err)
	}

	return func() error {
		for change := range changes {
			if change.Origin == s.origin {
				continue
			}
			count, err := s.TotalItemCount(ctx)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				slog.Warn("cart sync could not read cart", "key", s.key, "error", err)
				continue
			}
			slog.Debug("cart changed elsewhere", "key", s.key, "origin", change.Origin, "count", count)
			s.publish(count)
		}
		return nil
	}, nil
}

func itemCount(cart models.Cart) int {
	count := 0
	for _, entry := range cart {
		count += entry.Qty
	}
	return count
}
