package service

import (
	"context"
	"log"

	"tienda/models"
)

// ClientDispatcher leaves the fetch to the HTTP client: the directives are
// returned in the checkout response and the browser downloads them itself.
type ClientDispatcher struct{}

// NewClientDispatcher creates a new ClientDispatcher
func NewClientDispatcher() *ClientDispatcher {
	return &ClientDispatcher{}
}

// Ensure ClientDispatcher implements DownloadDispatcher
var _ DownloadDispatcher = (*ClientDispatcher)(nil)

// Dispatch records the directive for the client
func (d *ClientDispatcher) Dispatch(ctx context.Context, directive models.DownloadDirective) error {
	log.Printf("📥 ClientDispatcher: %s -> %s", directive.URL, directive.Filename)
	return nil
}
