// Package metrics holds the Prometheus collectors of the storefront.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcomes
const (
	OutcomeOK                = "ok"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeNothingToDownload = "nothing_to_download"
	OutcomeRejected          = "rejected"
	OutcomeError             = "error"
)

var (
	// CartMutations counts cart writes by operation (add, increment, decrement, remove, clear)
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tienda",
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})

	// Checkouts counts checkout attempts by strategy and outcome
	Checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tienda",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// DownloadsDispatched counts download directives handed to a dispatcher
	DownloadsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tienda",
		Name:      "downloads_dispatched_total",
		Help:      "Free downloads dispatched.",
	})
)
