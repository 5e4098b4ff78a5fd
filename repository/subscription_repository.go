package repository

import (
	"context"

	"github.com/yashrajoria/shoptube-backend/models"
)

// SubscriptionRepository defines data-access operations for customer to
// seller subscriptions.
type SubscriptionRepository interface {
	ListByCustomer(ctx context.Context, customerID string) ([]models.Subscription, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Subscription, error)
	Exists(ctx context.Context, customerID, sellerID string) (bool, error)
	Create(ctx context.Context, customerID, sellerID string) (*models.Subscription, error)
	Delete(ctx context.Context, customerID, sellerID string) (int, error)
}

// HasuraSubscriptionRepository implements SubscriptionRepository over GraphQL.
type HasuraSubscriptionRepository struct {
	gql GraphQLClient
}

// NewHasuraSubscriptionRepository creates a new HasuraSubscriptionRepository.
func NewHasuraSubscriptionRepository(gql GraphQLClient) SubscriptionRepository {
	return &HasuraSubscriptionRepository{gql: gql}
}

const subscriptionFields = `id customer_id seller_id created_at`

func (r *HasuraSubscriptionRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Subscription, error) {
	if !validID(customerID) {
		return []models.Subscription{}, nil
	}
	var out struct {
		Subscriptions []models.Subscription `json:"subscriptions"`
	}
	q := `query GetCustomerSubscriptions($customerId: uuid!) {
  subscriptions(where: {customer_id: {_eq: $customerId}}, order_by: {created_at: desc}) { ` + subscriptionFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID}, &out); err != nil {
		return nil, err
	}
	return out.Subscriptions, nil
}

func (r *HasuraSubscriptionRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Subscription, error) {
	if !validID(sellerID) {
		return []models.Subscription{}, nil
	}
	var out struct {
		Subscriptions []models.Subscription `json:"subscriptions"`
	}
	q := `query GetSellerSubscribers($sellerId: uuid!) {
  subscriptions(where: {seller_id: {_eq: $sellerId}}, order_by: {created_at: desc}) { ` + subscriptionFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"sellerId": sellerID}, &out); err != nil {
		return nil, err
	}
	return out.Subscriptions, nil
}

func (r *HasuraSubscriptionRepository) Exists(ctx context.Context, customerID, sellerID string) (bool, error) {
	if !validID(customerID) || !validID(sellerID) {
		return false, nil
	}
	var out struct {
		Aggregate aggregateCount `json:"subscriptions_aggregate"`
	}
	q := `query CheckUserSubscribed($customerId: uuid!, $sellerId: uuid!) {
  subscriptions_aggregate(where: {customer_id: {_eq: $customerId}, seller_id: {_eq: $sellerId}}) { aggregate { count } }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID, "sellerId": sellerID}, &out); err != nil {
		return false, err
	}
	return out.Aggregate.Aggregate.Count > 0, nil
}

func (r *HasuraSubscriptionRepository) Create(ctx context.Context, customerID, sellerID string) (*models.Subscription, error) {
	var out struct {
		Subscription models.Subscription `json:"insert_subscriptions_one"`
	}
	q := `mutation SubscribeToSeller($customerId: uuid!, $sellerId: uuid!) {
  insert_subscriptions_one(object: {customer_id: $customerId, seller_id: $sellerId}) { ` + subscriptionFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID, "sellerId": sellerID}, &out); err != nil {
		return nil, mapConstraint(err)
	}
	return &out.Subscription, nil
}

func (r *HasuraSubscriptionRepository) Delete(ctx context.Context, customerID, sellerID string) (int, error) {
	if !validID(customerID) || !validID(sellerID) {
		return 0, nil
	}
	var out struct {
		Result affectedRows `json:"delete_subscriptions"`
	}
	q := `mutation UnsubscribeFromSeller($customerId: uuid!, $sellerId: uuid!) {
  delete_subscriptions(where: {customer_id: {_eq: $customerId}, seller_id: {_eq: $sellerId}}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID, "sellerId": sellerID}, &out); err != nil {
		return 0, err
	}
	return out.Result.AffectedRows, nil
}
