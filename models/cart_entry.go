package models

// CartEntry represents one line of the shopping cart, identified by product id.
// Price keeps the catalog display text; numbers are derived from it when needed.
type CartEntry struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Qty         int    `json:"qty"`
}

// NewCartEntry builds a cart entry with qty 1 from a catalog product
func NewCartEntry(p Product) CartEntry {
	return CartEntry{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Image:       p.Image,
		DownloadURL: p.DownloadURL,
		Qty:         1,
	}
}

// Cart is the ordered list of entries, in the order they were first added
type Cart []CartEntry

// Find returns the index of the entry with the given id, or -1
func (c Cart) Find(id int64) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares nothing with c
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// AddItemRequest represents the request body for adding a product to the cart
// Example: {"productId": 3}
type AddItemRequest struct {
	ProductID int64 `json:"productId"`
}

// CartLine represents a cart entry with its computed subtotal
type CartLine struct {
	CartEntry
	Subtotal        string `json:"subtotal"`        // Two-decimal amount
	DisplaySubtotal string `json:"displaySubtotal"` // "$20.00" or the free label
}

// CartSummary represents the response for the cart page
// Example response:
// {
//   "items": [
//     {"id": 1, "title": "Pack", "price": "$10.00", "image": "img/1.png", "qty": 2,
//      "subtotal": "20.00", "displaySubtotal": "$20.00"}
//   ],
//   "total": "20.00",
//   "displayTotal": "$20.00",
//   "itemCount": 2,
//   "allFree": false,
//   "strategy": "payment"
// }
type CartSummary struct {
	Items        []CartLine `json:"items"`
	Total        string     `json:"total"`
	DisplayTotal string     `json:"displayTotal"`
	ItemCount    int        `json:"itemCount"`
	AllFree      bool       `json:"allFree"`
	Strategy     string     `json:"strategy,omitempty"`
}

// CartCountResponse represents the cart badge count
type CartCountResponse struct {
	Count int `json:"count"`
}

// AddItemResponse represents the response after adding a product to the cart
type AddItemResponse struct {
	Entry CartEntry `json:"entry"`
	Count int       `json:"count"`
}
