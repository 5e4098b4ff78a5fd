package models

import "time"

// CartItem is a line in a customer's cart.
type CartItem struct {
	ID         string   `json:"id"`
	CustomerID string   `json:"customer_id"`
	ProductID  string   `json:"product_id"`
	Quantity   int      `json:"quantity"`
	Product    *Product `json:"product,omitempty"`
}

// AddToCartRequest is the payload of POST /api/cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest is the payload of PUT /api/cart/:id.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// WishlistItem is a product saved by a customer.
type WishlistItem struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	ProductID  string    `json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddToWishlistRequest is the payload of POST /api/wishlist.
type AddToWishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// Subscription links a customer to a seller whose new products they follow.
type Subscription struct {
	ID         string       `json:"id"`
	CustomerID string       `json:"customer_id"`
	SellerID   string       `json:"seller_id"`
	CreatedAt  time.Time    `json:"created_at"`
	Seller     *UserSummary `json:"seller,omitempty"`
	Customer   *UserSummary `json:"customer,omitempty"`
}
