package controller

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"tienda/pricing"
	"tienda/repository"
	"tienda/service"
)

// CheckoutController handles HTTP requests for checking out the session cart
type CheckoutController struct {
	store      repository.KeyValueStore
	engine     *pricing.Engine
	dispatcher service.DownloadDispatcher
	redirector service.PaymentRedirector
	config     service.CheckoutConfig
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(store repository.KeyValueStore, engine *pricing.Engine, dispatcher service.DownloadDispatcher, redirector service.PaymentRedirector, config service.CheckoutConfig) *CheckoutController {
	return &CheckoutController{
		store:      store,
		engine:     engine,
		dispatcher: dispatcher,
		redirector: redirector,
		config:     config,
	}
}

func (c *CheckoutController) checkoutFor(w http.ResponseWriter, r *http.Request) *service.CheckoutService {
	cart := service.NewCartService(c.store, cartKey(w, r))
	return service.NewCheckoutService(cart, c.engine, c.dispatcher, c.config)
}

// writeCheckoutError maps checkout failures to HTTP statuses
func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCartEmpty):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrNothingToDownload):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrNotAllFree):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("❌ Checkout failed: %v", err)
		http.Error(w, fmt.Sprintf("Checkout failed: %v", err), http.StatusInternalServerError)
	}
}

// Checkout handles POST /tienda/checkout
// An all-free cart returns the started downloads; any other cart returns the payment request.
func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := c.checkoutFor(w, r).Checkout(r.Context())
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Download handles POST /tienda/checkout/download
func (c *CheckoutController) Download(w http.ResponseWriter, r *http.Request) {
	result, err := c.checkoutFor(w, r).DownloadFree(r.Context())
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Payment handles GET|POST /tienda/checkout/payment
// Browsers asking for HTML get a form that posts itself to the payment provider.
func (c *CheckoutController) Payment(w http.ResponseWriter, r *http.Request) {
	req, err := c.checkoutFor(w, r).BuildPayment(r.Context())
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		writeJSON(w, http.StatusOK, req)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.redirector.Redirect(w, req); err != nil {
		log.Printf("❌ Payment: %v", err)
		http.Error(w, "Failed to render payment form", http.StatusInternalServerError)
		return
	}
	log.Printf("💳 Payment: redirecting %d line item(s) to %s", len(req.Items), req.Endpoint)
}
