package models

import "time"

// Notification types
const (
	NotificationOrderConfirmed = "order_confirmed"
	NotificationPaymentFailed  = "payment_failed"
	NotificationNewProduct     = "new_product"
	NotificationSellerApproved = "seller_approved"
	NotificationNewSubscriber  = "new_subscriber"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	ProductID *string   `json:"product_id,omitempty"`
	SellerID  *string   `json:"seller_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event types published on the domain event topic.
const (
	EventCheckoutInitiated   = "checkout_initiated"
	EventPaymentSucceeded    = "payment_succeeded"
	EventPaymentFailed       = "payment_failed"
	EventProductCreated      = "product_created"
	EventSellerApplied       = "seller_applied"
	EventSellerApproved      = "seller_approved"
	EventSubscriptionCreated = "subscription_created"
)

// Event is the JSON body published to SNS and consumed from SQS.
type Event struct {
	EventType   string    `json:"event_type"`
	UserID      string    `json:"user_id,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	TxRef       string    `json:"tx_ref,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	SellerID    string    `json:"seller_id,omitempty"`
	SellerName  string    `json:"seller_name,omitempty"`
	CustomerID  string    `json:"customer_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
