package service

import (
	"context"
	"io"

	"tienda/models"
)

// DownloadDispatcher starts the fetch of one file. It does not wait for the
// download to finish.
type DownloadDispatcher interface {
	Dispatch(ctx context.Context, directive models.DownloadDirective) error
}

// PaymentRedirector hands a payment request to the external provider
type PaymentRedirector interface {
	Redirect(w io.Writer, req *models.PaymentRequest) error
}

// CheckoutServiceInterface defines the contract for checkout operations
type CheckoutServiceInterface interface {
	Checkout(ctx context.Context) (*models.CheckoutResult, error)
	DownloadFree(ctx context.Context) (*models.DownloadResult, error)
	BuildPayment(ctx context.Context) (*models.PaymentRequest, error)
}
