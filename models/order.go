package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Order statuses. An order is created in OrderStatusPaymentPending and moves
// to OrderStatusPending once the gateway confirms payment.
const (
	OrderStatusPaymentPending = "payment_pending"
	OrderStatusPending        = "pending"
	OrderStatusFailed         = "failed"
)

// Order is a customer purchase in the hosted orders table.
type Order struct {
	ID              string      `json:"id"`
	CustomerID      string      `json:"customer_id,omitempty"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `json:"status"`
	ShippingAddress string      `json:"shipping_address,omitempty"`
	TxRef           string      `json:"tx_ref,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"order_items,omitempty"`
	ItemCount       int         `json:"item_count,omitempty"`
}

// OrderItem is one purchased line, priced at checkout time.
type OrderItem struct {
	ID           string        `json:"id,omitempty"`
	OrderID      string        `json:"order_id,omitempty"`
	ProductID    string        `json:"product_id"`
	Quantity     int           `json:"quantity"`
	PricePerUnit float64       `json:"price_per_unit"`
	Product      *OrderProduct `json:"product,omitempty"`
}

// OrderProduct is the product projection embedded in order lines.
type OrderProduct struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	ImageURL string       `json:"image_url"`
	SellerID string       `json:"seller_id,omitempty"`
	Seller   *UserSummary `json:"seller,omitempty"`
}

// NewOrder is what the checkout initiator persists before contacting the gateway.
type NewOrder struct {
	CustomerID      string
	TotalAmount     float64
	ShippingAddress string
	TxRef           string
	Items           []OrderItem
}

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID    string  `json:"product_id" validate:"required"`
	Quantity     int     `json:"quantity" validate:"gt=0"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gte=0"`
}

// CheckoutRequest is the payload of POST /api/chapa.
type CheckoutRequest struct {
	UserID      string          `json:"userId" validate:"required"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email" validate:"omitempty,email"`
	PhoneNumber string          `json:"phoneNumber"`
	TotalAmount float64         `json:"totalAmount" validate:"gt=0"`
	Address     json.RawMessage `json:"address"`
	CartItems   []CheckoutItem  `json:"cartItems" validate:"required,min=1,dive"`
}

// ShippingAddress flattens the address field. A JSON string is used as is;
// any other JSON value is stored as its compact encoding.
func (r *CheckoutRequest) ShippingAddress() string {
	raw := strings.TrimSpace(string(r.Address))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Address, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if raw == "{}" || raw == "[]" {
		return ""
	}
	return raw
}

// CheckoutResponse is returned once the gateway session is ready.
type CheckoutResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkout_url"`
	TxRef       string `json:"tx_ref"`
	OrderID     string `json:"order_id"`
}

// VerifyResult is the outcome of a payment verification.
type VerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
	TxRef   string `json:"tx_ref,omitempty"`
}
