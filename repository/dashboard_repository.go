package repository

import (
	"context"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
)

// paidOrderFilter limits revenue aggregates to orders whose payment was
// confirmed. Eager checkout leaves unpaid and failed orders in the table.
const paidOrderFilter = `status: {_nin: ["` + models.OrderStatusPaymentPending + `", "` + models.OrderStatusFailed + `"]}`

// DashboardRepository runs the aggregate queries behind the dashboards.
type DashboardRepository interface {
	CustomerStats(ctx context.Context, customerID string) (*models.CustomerDashboard, error)
	SellerStats(ctx context.Context, sellerID string) (*models.SellerDashboard, error)
	AdminStats(ctx context.Context) (*models.AdminDashboard, error)
	WindowStats(ctx context.Context, from, to time.Time) (*models.WindowStats, error)
	TotalSellers(ctx context.Context) (int, error)
}

// HasuraDashboardRepository implements DashboardRepository over GraphQL.
type HasuraDashboardRepository struct {
	gql GraphQLClient
}

// NewHasuraDashboardRepository creates a new HasuraDashboardRepository.
func NewHasuraDashboardRepository(gql GraphQLClient) DashboardRepository {
	return &HasuraDashboardRepository{gql: gql}
}

func (r *HasuraDashboardRepository) CustomerStats(ctx context.Context, customerID string) (*models.CustomerDashboard, error) {
	if !validID(customerID) {
		return &models.CustomerDashboard{RecentSubscriptions: []models.Subscription{}}, nil
	}
	var out struct {
		Subscriptions aggregateCount        `json:"subscriptions_aggregate"`
		Orders        aggregateCount        `json:"orders_aggregate"`
		Recent        []models.Subscription `json:"subscriptions"`
	}
	q := `query GetCustomerDashboardStats($customerId: uuid!) {
  subscriptions_aggregate(where: {customer_id: {_eq: $customerId}}) { aggregate { count } }
  orders_aggregate(where: {customer_id: {_eq: $customerId}}) { aggregate { count } }
  subscriptions(where: {customer_id: {_eq: $customerId}}, order_by: {created_at: desc}, limit: 3) { id customer_id seller_id created_at }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID}, &out); err != nil {
		return nil, err
	}
	if out.Recent == nil {
		out.Recent = []models.Subscription{}
	}
	return &models.CustomerDashboard{
		SubscriptionCount:   out.Subscriptions.Aggregate.Count,
		OrderCount:          out.Orders.Aggregate.Count,
		RecentSubscriptions: out.Recent,
	}, nil
}

func (r *HasuraDashboardRepository) SellerStats(ctx context.Context, sellerID string) (*models.SellerDashboard, error) {
	if !validID(sellerID) {
		return &models.SellerDashboard{RecentOrders: []models.Order{}}, nil
	}
	var out struct {
		Sales       aggregateSum   `json:"orders_aggregate"`
		Products    aggregateCount `json:"products_aggregate"`
		Subscribers aggregateCount `json:"subscriptions_aggregate"`
		Orders      []struct {
			models.Order
			Items aggregateCount `json:"order_items_aggregate"`
		} `json:"orders"`
	}
	q := `query GetSellerDashboardStats($sellerId: uuid!) {
  orders_aggregate(where: {order_items: {product: {seller_id: {_eq: $sellerId}}}, ` + paidOrderFilter + `}) { aggregate { count sum { total_amount } } }
  products_aggregate(where: {seller_id: {_eq: $sellerId}}) { aggregate { count } }
  subscriptions_aggregate(where: {seller_id: {_eq: $sellerId}}) { aggregate { count } }
  orders(where: {order_items: {product: {seller_id: {_eq: $sellerId}}}}, order_by: {created_at: desc}, limit: 5) {
    id total_amount status created_at
    order_items_aggregate { aggregate { count } }
  }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"sellerId": sellerID}, &out); err != nil {
		return nil, err
	}
	recent := make([]models.Order, 0, len(out.Orders))
	for _, o := range out.Orders {
		order := o.Order
		order.ItemCount = o.Items.Aggregate.Count
		recent = append(recent, order)
	}
	return &models.SellerDashboard{
		TotalSales:      out.Sales.total(),
		ProductCount:    out.Products.Aggregate.Count,
		SubscriberCount: out.Subscribers.Aggregate.Count,
		RecentOrders:    recent,
	}, nil
}

func (r *HasuraDashboardRepository) AdminStats(ctx context.Context) (*models.AdminDashboard, error) {
	var out struct {
		Users    aggregateCount `json:"users_aggregate"`
		Sellers  aggregateCount `json:"seller_profiles_aggregate"`
		Products aggregateCount `json:"products_aggregate"`
		Revenue  aggregateSum   `json:"orders_aggregate"`
	}
	q := `query GetAdminDashboardStats {
  users_aggregate { aggregate { count } }
  seller_profiles_aggregate(where: {is_approved: {_eq: true}}) { aggregate { count } }
  products_aggregate { aggregate { count } }
  orders_aggregate(where: {` + paidOrderFilter + `}) { aggregate { count sum { total_amount } } }
}`
	if err := r.gql.Do(ctx, q, nil, &out); err != nil {
		return nil, err
	}
	return &models.AdminDashboard{
		TotalUsers:      out.Users.Aggregate.Count,
		ActiveSellers:   out.Sellers.Aggregate.Count,
		TotalProducts:   out.Products.Aggregate.Count,
		PlatformRevenue: out.Revenue.total(),
	}, nil
}

// WindowStats aggregates activity with created_at in [from, to).
func (r *HasuraDashboardRepository) WindowStats(ctx context.Context, from, to time.Time) (*models.WindowStats, error) {
	var out struct {
		Revenue  aggregateSum   `json:"orders_aggregate"`
		Users    aggregateCount `json:"users_aggregate"`
		Products aggregateCount `json:"products_aggregate"`
		Sellers  []struct {
			SellerID string `json:"seller_id"`
		} `json:"products"`
	}
	q := `query GetWindowStats($from: timestamptz!, $to: timestamptz!) {
  orders_aggregate(where: {created_at: {_gte: $from, _lt: $to}, ` + paidOrderFilter + `}) { aggregate { count sum { total_amount } } }
  users_aggregate(where: {created_at: {_gte: $from, _lt: $to}}) { aggregate { count } }
  products_aggregate(where: {created_at: {_gte: $from, _lt: $to}}) { aggregate { count } }
  products(distinct_on: seller_id, where: {created_at: {_gte: $from, _lt: $to}}) { seller_id }
}`
	vars := map[string]interface{}{
		"from": from.UTC().Format(time.RFC3339),
		"to":   to.UTC().Format(time.RFC3339),
	}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, err
	}
	return &models.WindowStats{
		Revenue:       out.Revenue.total(),
		NewUsers:      out.Users.Aggregate.Count,
		NewProducts:   out.Products.Aggregate.Count,
		ActiveSellers: len(out.Sellers),
	}, nil
}

func (r *HasuraDashboardRepository) TotalSellers(ctx context.Context) (int, error) {
	var out struct {
		Sellers aggregateCount `json:"seller_profiles_aggregate"`
	}
	q := `query GetSellerTotal {
  seller_profiles_aggregate(where: {is_approved: {_eq: true}}) { aggregate { count } }
}`
	if err := r.gql.Do(ctx, q, nil, &out); err != nil {
		return 0, err
	}
	return out.Sellers.Aggregate.Count, nil
}
