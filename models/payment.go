package models

import "strconv"

// PaymentLineItem represents one item line of the payment form
type PaymentLineItem struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"` // Two-decimal fixed, e.g. "10.00"
	Quantity int    `json:"quantity"`
}

// FormField is a hidden input of the payment form
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PaymentRequest represents the payload handed to the payment redirect
// Example:
// {
//   "endpoint": "https://www.paypal.com/cgi-bin/webscr",
//   "recipient": "shop@example.com",
//   "currency": "USD",
//   "returnUrl": "http://localhost:8080/tienda/carrito.html?status=success",
//   "cancelUrl": "http://localhost:8080/tienda/carrito.html?status=cancel",
//   "items": [{"name": "Pack", "amount": "10.00", "quantity": 2}]
// }
type PaymentRequest struct {
	Endpoint  string            `json:"endpoint"`
	Recipient string            `json:"recipient"`
	Currency  string            `json:"currency"`
	ReturnURL string            `json:"returnUrl"`
	CancelURL string            `json:"cancelUrl"`
	Items     []PaymentLineItem `json:"items"`
}

// FormFields returns the cart-upload form fields in submission order.
// Item fields are numbered from 1.
func (p *PaymentRequest) FormFields() []FormField {
	fields := []FormField{
		{Name: "cmd", Value: "_cart"},
		{Name: "upload", Value: "1"},
		{Name: "business", Value: p.Recipient},
		{Name: "currency_code", Value: p.Currency},
		{Name: "return", Value: p.ReturnURL},
		{Name: "cancel_return", Value: p.CancelURL},
	}
	for i, item := range p.Items {
		n := strconv.Itoa(i + 1)
		fields = append(fields,
			FormField{Name: "item_name_" + n, Value: item.Name},
			FormField{Name: "amount_" + n, Value: item.Amount},
			FormField{Name: "quantity_" + n, Value: strconv.Itoa(item.Quantity)},
		)
	}
	return fields
}
