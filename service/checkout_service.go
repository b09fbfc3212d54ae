package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tienda/metrics"
	"tienda/models"
	"tienda/pricing"
	"tienda/utils"
)

var (
	// ErrCartEmpty is returned when checkout is attempted on an empty cart
	ErrCartEmpty = errors.New("cart is empty")
	// ErrNothingToDownload is returned when no free entry carries a download URL
	ErrNothingToDownload = errors.New("no products to download")
	// ErrNotAllFree is returned when the free-download path is requested for a cart with paid entries
	ErrNotAllFree = errors.New("cart contains products that must be paid")
)

// DefaultPaymentEndpoint is the PayPal cart upload endpoint
const DefaultPaymentEndpoint = "https://www.paypal.com/cgi-bin/webscr"

// CheckoutConfig holds the payment destination and free-download settings
type CheckoutConfig struct {
	Endpoint   string        // Payment form action
	Recipient  string        // Merchant account receiving the payment
	Currency   string        // ISO currency code
	BaseURL    string        // Origin used for return locations, e.g. "https://shop.example.com"
	ReturnPath string        // Page the provider sends the buyer back to
	ClearDelay time.Duration // Delay between starting downloads and clearing the cart; 0 clears at once
}

// returnURL appends the status marker the provider echoes back to the page
func (c CheckoutConfig) returnURL(status string) string {
	return strings.TrimRight(c.BaseURL, "/") + c.ReturnPath + "?status=" + status
}

// CheckoutService routes a cart to the free-download or the payment strategy.
// The strategies never mix: a cart with one paid entry goes entirely to payment.
type CheckoutService struct {
	cart       CartServiceInterface
	engine     *pricing.Engine
	dispatcher DownloadDispatcher
	config     CheckoutConfig
	schedule   func(delay time.Duration, fn func())
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cart CartServiceInterface, engine *pricing.Engine, dispatcher DownloadDispatcher, config CheckoutConfig) *CheckoutService {
	if config.Endpoint == "" {
		config.Endpoint = DefaultPaymentEndpoint
	}
	return &CheckoutService{
		cart:       cart,
		engine:     engine,
		dispatcher: dispatcher,
		config:     config,
		schedule: func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		},
	}
}

// Ensure CheckoutService implements CheckoutServiceInterface
var _ CheckoutServiceInterface = (*CheckoutService)(nil)

// Route returns the strategy for a cart snapshot
func (s *CheckoutService) Route(entries []models.CartEntry) string {
	return pricing.StrategyFor(s.engine.IsAllFree(entries))
}

// Checkout reads the cart once and runs the strategy selected by its classification
func (s *CheckoutService) Checkout(ctx context.Context) (*models.CheckoutResult, error) {
	entries, err := s.cart.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		metrics.Checkouts.WithLabelValues("none", metrics.OutcomeEmptyCart).Inc()
		return nil, ErrCartEmpty
	}

	strategy := s.Route(entries)
	log.Printf("🧾 Checkout: cart has %d entries, strategy=%s", len(entries), strategy)

	result := &models.CheckoutResult{Strategy: strategy}
	if strategy == models.StrategyFreeDownload {
		result.Download, err = s.downloadFree(ctx, entries)
	} else {
		result.Payment = s.buildPayment(entries)
		metrics.Checkouts.WithLabelValues(models.StrategyPayment, metrics.OutcomeOK).Inc()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadFree runs the free-download strategy on the current cart
func (s *CheckoutService) DownloadFree(ctx context.Context) (*models.DownloadResult, error) {
	entries, err := s.cart.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		metrics.Checkouts.WithLabelValues(models.StrategyFreeDownload, metrics.OutcomeEmptyCart).Inc()
		return nil, ErrCartEmpty
	}
	if !s.engine.IsAllFree(entries) {
		metrics.Checkouts.WithLabelValues(models.StrategyFreeDownload, metrics.OutcomeRejected).Inc()
		return nil, ErrNotAllFree
	}
	return s.downloadFree(ctx, entries)
}

// FreeDownloads lists one directive per entry priced exactly 0 with a download URL, in cart order
func FreeDownloads(entries []models.CartEntry) []models.DownloadDirective {
	var directives []models.DownloadDirective
	for _, entry := range entries {
		if entry.DownloadURL == "" || !pricing.Parse(entry.Price).IsFree() {
			continue
		}
		directives = append(directives, models.DownloadDirective{
			URL:      entry.DownloadURL,
			Filename: utils.DownloadFilename(entry.Title),
		})
	}
	return directives
}

// downloadFree dispatches the downloads of an all-free snapshot and then
// schedules the cart clear. Nothing is dispatched or cleared when no entry
// qualifies.
func (s *CheckoutService) downloadFree(ctx context.Context, entries []models.CartEntry) (*models.DownloadResult, error) {
	directives := FreeDownloads(entries)
	if len(directives) == 0 {
		log.Printf("⚠️  DownloadFree: cart has %d free entries but none can be downloaded", len(entries))
		metrics.Checkouts.WithLabelValues(models.StrategyFreeDownload, metrics.OutcomeNothingToDownload).Inc()
		return nil, ErrNothingToDownload
	}

	started := make([]models.DownloadDirective, 0, len(directives))
	var firstErr error
	for _, d := range directives {
		if err := s.dispatcher.Dispatch(ctx, d); err != nil {
			log.Printf("❌ DownloadFree: failed to dispatch %s: %v", d.URL, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		started = append(started, d)
		metrics.DownloadsDispatched.Inc()
	}
	if len(started) == 0 {
		metrics.Checkouts.WithLabelValues(models.StrategyFreeDownload, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to dispatch downloads: %w", firstErr)
	}

	s.scheduleClear(ctx)
	metrics.Checkouts.WithLabelValues(models.StrategyFreeDownload, metrics.OutcomeOK).Inc()
	log.Printf("✅ DownloadFree: %d download(s) started, cart will be cleared", len(started))

	return &models.DownloadResult{
		Count:        len(started),
		Downloads:    started,
		ClearPending: true,
	}, nil
}

// scheduleClear empties the cart once the downloads have been handed off.
// The clear removes the key as it is then, so items added during the delay go too.
func (s *CheckoutService) scheduleClear(ctx context.Context) {
	clearCtx := context.WithoutCancel(ctx)
	clearCart := func() {
		if err := s.cart.Clear(clearCtx); err != nil {
			log.Printf("❌ DownloadFree: failed to clear cart: %v", err)
		}
	}
	if s.config.ClearDelay <= 0 {
		clearCart()
		return
	}
	s.schedule(s.config.ClearDelay, clearCart)
}

// BuildPayment builds the payment request for the current cart
func (s *CheckoutService) BuildPayment(ctx context.Context) (*models.PaymentRequest, error) {
	entries, err := s.cart.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		metrics.Checkouts.WithLabelValues(models.StrategyPayment, metrics.OutcomeEmptyCart).Inc()
		return nil, ErrCartEmpty
	}
	metrics.Checkouts.WithLabelValues(models.StrategyPayment, metrics.OutcomeOK).Inc()
	return s.buildPayment(entries), nil
}

// buildPayment maps every entry to a line item, free entries included as 0.00
func (s *CheckoutService) buildPayment(entries []models.CartEntry) *models.PaymentRequest {
	formatter := s.engine.Formatter()
	items := make([]models.PaymentLineItem, 0, len(entries))
	for i, entry := range entries {
		name := entry.Title
		if name == "" {
			name = fmt.Sprintf("Item %d", i+1)
		}
		items = append(items, models.PaymentLineItem{
			Name:     name,
			Amount:   formatter.Amount(pricing.Parse(entry.Price).OrZero()),
			Quantity: entry.Qty,
		})
	}

	return &models.PaymentRequest{
		Endpoint:  s.config.Endpoint,
		Recipient: s.config.Recipient,
		Currency:  s.config.Currency,
		ReturnURL: s.config.returnURL("success"),
		CancelURL: s.config.returnURL("cancel"),
		Items:     items,
	}
}
