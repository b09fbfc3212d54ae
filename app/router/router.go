package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tienda/app/controller"
)

type Controllers struct {
	Product  *controller.ProductController
	Cart     *controller.CartController
	Checkout *controller.CheckoutController
	Image    *controller.ImageController
	Static   http.Handler // Storefront pages and assets, optional
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers the storefront routes on mux. Requests with a method a
// route does not accept get 405 from the mux.
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("GET /ping", pingHandler)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catalog
	mux.HandleFunc("GET /tienda/products", controllers.Product.ListProducts)

	// Cart
	mux.HandleFunc("GET /tienda/cart", controllers.Cart.GetCart)
	mux.HandleFunc("DELETE /tienda/cart", controllers.Cart.ClearCart)
	mux.HandleFunc("POST /tienda/cart/items", controllers.Cart.AddItem)
	mux.HandleFunc("POST /tienda/cart/items/{id}/increment", controllers.Cart.Increment)
	mux.HandleFunc("POST /tienda/cart/items/{id}/decrement", controllers.Cart.Decrement)
	mux.HandleFunc("DELETE /tienda/cart/items/{id}", controllers.Cart.RemoveItem)
	mux.HandleFunc("GET /tienda/cart/count", controllers.Cart.Count)
	mux.HandleFunc("GET /tienda/cart/count/stream", controllers.Cart.CountStream)

	// Checkout
	mux.HandleFunc("POST /tienda/checkout", controllers.Checkout.Checkout)
	mux.HandleFunc("POST /tienda/checkout/download", controllers.Checkout.Download)
	mux.HandleFunc("GET /tienda/checkout/payment", controllers.Checkout.Payment)
	mux.HandleFunc("POST /tienda/checkout/payment", controllers.Checkout.Payment)

	// Images
	mux.HandleFunc("GET /tienda/images/thumb", controllers.Image.Thumbnail)

	// Storefront pages (carrito.html, products.json, images)
	if controllers.Static != nil {
		mux.Handle("GET /tienda/", controllers.Static)
	}
}
