package repository

import (
	"context"

	"github.com/yashrajoria/shoptube-backend/models"
)

// CartRepository defines data-access operations for cart lines. Every
// mutation is scoped to the owning customer.
type CartRepository interface {
	ListByCustomer(ctx context.Context, customerID string) ([]models.CartItem, error)
	FindByProduct(ctx context.Context, customerID, productID string) (*models.CartItem, error)
	Add(ctx context.Context, customerID, productID string, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, customerID, itemID string, quantity int) error
	Remove(ctx context.Context, customerID, itemID string) error
	Clear(ctx context.Context, customerID string) (int, error)
}

type affectedRows struct {
	AffectedRows int `json:"affected_rows"`
}

// HasuraCartRepository implements CartRepository over GraphQL.
type HasuraCartRepository struct {
	gql GraphQLClient
}

// NewHasuraCartRepository creates a new HasuraCartRepository.
func NewHasuraCartRepository(gql GraphQLClient) CartRepository {
	return &HasuraCartRepository{gql: gql}
}

const cartFields = `id customer_id product_id quantity product { id name description price stock image_url seller_id created_at }`

func (r *HasuraCartRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.CartItem, error) {
	if !validID(customerID) {
		return []models.CartItem{}, nil
	}
	var out struct {
		Items []models.CartItem `json:"cart_items"`
	}
	q := `query GetUserCart($customerId: uuid!) {
  cart_items(where: {customer_id: {_eq: $customerId}}) { ` + cartFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *HasuraCartRepository) FindByProduct(ctx context.Context, customerID, productID string) (*models.CartItem, error) {
	if !validID(customerID) || !validID(productID) {
		return nil, ErrNotFound
	}
	var out struct {
		Items []models.CartItem `json:"cart_items"`
	}
	q := `query GetCartLine($customerId: uuid!, $productId: uuid!) {
  cart_items(where: {customer_id: {_eq: $customerId}, product_id: {_eq: $productId}}, limit: 1) { ` + cartFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID, "productId": productID}, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}
	return &out.Items[0], nil
}

func (r *HasuraCartRepository) Add(ctx context.Context, customerID, productID string, quantity int) (*models.CartItem, error) {
	var out struct {
		Item models.CartItem `json:"insert_cart_items_one"`
	}
	q := `mutation AddToCart($customerId: uuid!, $productId: uuid!, $quantity: Int!) {
  insert_cart_items_one(object: {customer_id: $customerId, product_id: $productId, quantity: $quantity}) { ` + cartFields + ` }
}`
	vars := map[string]interface{}{"customerId": customerID, "productId": productID, "quantity": quantity}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, mapConstraint(err)
	}
	return &out.Item, nil
}

func (r *HasuraCartRepository) UpdateQuantity(ctx context.Context, customerID, itemID string, quantity int) error {
	if !validID(customerID) || !validID(itemID) {
		return ErrNotFound
	}
	var out struct {
		Result affectedRows `json:"update_cart_items"`
	}
	q := `mutation UpdateCartItem($id: uuid!, $customerId: uuid!, $quantity: Int!) {
  update_cart_items(where: {id: {_eq: $id}, customer_id: {_eq: $customerId}}, _set: {quantity: $quantity}) { affected_rows }
}`
	vars := map[string]interface{}{"id": itemID, "customerId": customerID, "quantity": quantity}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return err
	}
	if out.Result.AffectedRows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HasuraCartRepository) Remove(ctx context.Context, customerID, itemID string) error {
	if !validID(customerID) || !validID(itemID) {
		return ErrNotFound
	}
	var out struct {
		Result affectedRows `json:"delete_cart_items"`
	}
	q := `mutation RemoveFromCart($id: uuid!, $customerId: uuid!) {
  delete_cart_items(where: {id: {_eq: $id}, customer_id: {_eq: $customerId}}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": itemID, "customerId": customerID}, &out); err != nil {
		return err
	}
	if out.Result.AffectedRows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HasuraCartRepository) Clear(ctx context.Context, customerID string) (int, error) {
	if !validID(customerID) {
		return 0, nil
	}
	var out struct {
		Result affectedRows `json:"delete_cart_items"`
	}
	q := `mutation ClearCart($customerId: uuid!) {
  delete_cart_items(where: {customer_id: {_eq: $customerId}}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID}, &out); err != nil {
		return 0, err
	}
	return out.Result.AffectedRows, nil
}
