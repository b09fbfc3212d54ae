package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"tienda/models"
	"tienda/pricing"
	"tienda/repository"
	"tienda/service"
)

// CartController handles HTTP requests for the session cart
type CartController struct {
	store   repository.KeyValueStore
	catalog repository.CatalogSourceInterface
	engine  *pricing.Engine
}

// NewCartController creates a new CartController
func NewCartController(store repository.KeyValueStore, catalog repository.CatalogSourceInterface, engine *pricing.Engine) *CartController {
	return &CartController{
		store:   store,
		catalog: catalog,
		engine:  engine,
	}
}

func (c *CartController) cartFor(w http.ResponseWriter, r *http.Request) *service.CartService {
	return service.NewCartService(c.store, cartKey(w, r))
}

// writeSummary re-reads the cart and responds with its summary
func (c *CartController) writeSummary(w http.ResponseWriter, r *http.Request, cart *service.CartService) {
	entries, err := cart.Entries(r.Context())
	if err != nil {
		log.Printf("❌ Cart %s: %v", cart.Key(), err)
		http.Error(w, fmt.Sprintf("Failed to read cart: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c.engine.Summarize(entries))
}

// GetCart handles GET /tienda/cart
// Returns the entries with subtotals, the total and the checkout strategy
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c.writeSummary(w, r, c.cartFor(w, r))
}

// AddItem handles POST /tienda/cart/items
// Body: {"productId": 3}
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductID <= 0 {
		http.Error(w, "productId is required and must be greater than 0", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	product, err := c.catalog.Get(ctx, req.ProductID)
	if errors.Is(err, repository.ErrProductNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read catalog: %v", err), http.StatusInternalServerError)
		return
	}
	if product.SoldOut {
		http.Error(w, fmt.Sprintf("product %d is sold out", product.ID), http.StatusConflict)
		return
	}

	cart := c.cartFor(w, r)
	entry, err := cart.Add(ctx, *product)
	if err != nil {
		log.Printf("❌ AddItem: %v", err)
		http.Error(w, fmt.Sprintf("Failed to add product: %v", err), http.StatusInternalServerError)
		return
	}
	count, err := cart.TotalItemCount(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to count cart items: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.AddItemResponse{Entry: *entry, Count: count})
}

// Increment handles POST /tienda/cart/items/{id}/increment
func (c *CartController) Increment(w http.ResponseWriter, r *http.Request) {
	c.updateEntry(w, r, "increment", (*service.CartService).Increment)
}

// Decrement handles POST /tienda/cart/items/{id}/decrement
// The quantity stops at 1; use DELETE to drop the entry.
func (c *CartController) Decrement(w http.ResponseWriter, r *http.Request) {
	c.updateEntry(w, r, "decrement", (*service.CartService).Decrement)
}

// RemoveItem handles DELETE /tienda/cart/items/{id}
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c.updateEntry(w, r, "remove", (*service.CartService).Remove)
}

func (c *CartController) updateEntry(w http.ResponseWriter, r *http.Request, op string, apply func(*service.CartService, context.Context, int64) error) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	cart := c.cartFor(w, r)
	if err := apply(cart, r.Context(), id); err != nil {
		log.Printf("❌ %s %d: %v", op, id, err)
		http.Error(w, fmt.Sprintf("Failed to %s item: %v", op, err), http.StatusInternalServerError)
		return
	}
	c.writeSummary(w, r, cart)
}

// ClearCart handles DELETE /tienda/cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart := c.cartFor(w, r)
	if err := cart.Clear(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to clear cart: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Count handles GET /tienda/cart/count
func (c *CartController) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.cartFor(w, r).TotalItemCount(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to count cart items: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.CartCountResponse{Count: count})
}

// CountStream handles GET /tienda/cart/count/stream
// Server-sent events: one "count" event on connect, then one per change made
// to the cart from any other request, tab or server instance.
func (c *CartController) CountStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	cart := c.cartFor(w, r)

	counts := make(chan int, 16)
	cart.OnCountChange(func(count int) {
		select {
		case counts <- count:
		default:
		}
	})
	run, err := cart.StartSync(ctx)
	if err != nil {
		log.Printf("❌ CountStream: %v", err)
		http.Error(w, fmt.Sprintf("Failed to watch cart: %v", err), http.StatusInternalServerError)
		return
	}
	synced := make(chan error, 1)
	go func() {
		synced <- run()
	}()

	initial, err := cart.TotalItemCount(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to count cart items: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(count int) error {
		data, err := json.Marshal(models.CartCountResponse{Count: count})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: count\ndata: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := send(initial); err != nil {
		return
	}
	log.Printf("📡 CountStream: %s subscribed", cart.Key())

	for {
		select {
		case <-ctx.Done():
			log.Printf("📡 CountStream: %s disconnected", cart.Key())
			return
		case err := <-synced:
			if err != nil {
				log.Printf("❌ CountStream: %v", err)
			}
			return
		case count := <-counts:
			if err := send(count); err != nil {
				return
			}
		}
	}
}
