package models

// Product represents a catalog product as published in products.json
type Product struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Price         string `json:"price"`                   // Display text, e.g. "$19.99" or "Gratis"
	OriginalPrice string `json:"originalPrice,omitempty"` // Pre-discount display text, empty when absent
	Image         string `json:"image"`
	DownloadURL   string `json:"downloadUrl,omitempty"`
	SoldOut       bool   `json:"soldOut"`
}

// ProductCard represents a product enriched with pricing information for listings
type ProductCard struct {
	Product
	DisplayPrice    string `json:"displayPrice"`
	DiscountVisible bool   `json:"discountVisible"`
}

// ProductListResponse represents the response for listing catalog products
type ProductListResponse struct {
	Products []ProductCard `json:"products"`
	Count    int           `json:"count"`
}
