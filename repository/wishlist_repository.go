package repository

import (
	"context"

	"github.com/yashrajoria/shoptube-backend/models"
)

// WishlistRepository defines data-access operations for wishlist items.
type WishlistRepository interface {
	ListByCustomer(ctx context.Context, customerID string) ([]models.WishlistItem, error)
	Exists(ctx context.Context, customerID, productID string) (bool, error)
	Add(ctx context.Context, customerID, productID string) (*models.WishlistItem, error)
	Remove(ctx context.Context, customerID, itemID string) error
}

// HasuraWishlistRepository implements WishlistRepository over GraphQL.
type HasuraWishlistRepository struct {
	gql GraphQLClient
}

// NewHasuraWishlistRepository creates a new HasuraWishlistRepository.
func NewHasuraWishlistRepository(gql GraphQLClient) WishlistRepository {
	return &HasuraWishlistRepository{gql: gql}
}

const wishlistFields = `id customer_id product_id created_at`

func (r *HasuraWishlistRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.WishlistItem, error) {
	if !validID(customerID) {
		return []models.WishlistItem{}, nil
	}
	var out struct {
		Items []models.WishlistItem `json:"wishlist_items"`
	}
	q := `query GetUserWishlist($customerId: uuid!) {
  wishlist_items(where: {customer_id: {_eq: $customerId}}, order_by: {created_at: desc}) { ` + wishlistFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *HasuraWishlistRepository) Exists(ctx context.Context, customerID, productID string) (bool, error) {
	if !validID(customerID) || !validID(productID) {
		return false, nil
	}
	var out struct {
		Aggregate aggregateCount `json:"wishlist_items_aggregate"`
	}
	q := `query WishlistContains($customerId: uuid!, $productId: uuid!) {
  wishlist_items_aggregate(where: {customer_id: {_eq: $customerId}, product_id: {_eq: $productId}}) { aggregate { count } }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID, "productId": productID}, &out); err != nil {
		return false, err
	}
	return out.Aggregate.Aggregate.Count > 0, nil
}

func (r *HasuraWishlistRepository) Add(ctx context.Context, customerID, productID string) (*models.WishlistItem, error) {
	var out struct {
		Item models.WishlistItem `json:"insert_wishlist_items_one"`
	}
	q := `mutation AddToWishlist($customerId: uuid!, $productId: uuid!) {
  insert_wishlist_items_one(object: {customer_id: $customerId, product_id: $productId}) { ` + wishlistFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID, "productId": productID}, &out); err != nil {
		return nil, mapConstraint(err)
	}
	return &out.Item, nil
}

func (r *HasuraWishlistRepository) Remove(ctx context.Context, customerID, itemID string) error {
	if !validID(customerID) || !validID(itemID) {
		return ErrNotFound
	}
	var out struct {
		Result affectedRows `json:"delete_wishlist_items"`
	}
	q := `mutation RemoveFromWishlist($id: uuid!, $customerId: uuid!) {
  delete_wishlist_items(where: {id: {_eq: $id}, customer_id: {_eq: $customerId}}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": itemID, "customerId": customerID}, &out); err != nil {
		return err
	}
	if out.Result.AffectedRows == 0 {
		return ErrNotFound
	}
	return nil
}
