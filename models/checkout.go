package models

// Checkout strategies
const (
	StrategyFreeDownload = "free_download"
	StrategyPayment      = "payment"
)

// DownloadDirective is one file the client should fetch
type DownloadDirective struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// DownloadResult reports the outcome of the free-download strategy
type DownloadResult struct {
	Count        int                 `json:"count"`
	Downloads    []DownloadDirective `json:"downloads"`
	ClearPending bool                `json:"clearPending"` // Cart clear scheduled after the downloads started
}

// CheckoutResult represents the response of a routed checkout.
// Exactly one of Download or Payment is set, matching Strategy.
type CheckoutResult struct {
	Strategy string          `json:"strategy"`
	Download *DownloadResult `json:"download,omitempty"`
	Payment  *PaymentRequest `json:"payment,omitempty"`
}
