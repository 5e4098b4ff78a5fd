package repository

import (
	"context"

	"github.com/yashrajoria/shoptube-backend/models"
)

// OrderRepository defines data-access operations for orders. Status updates
// are keyed by tx_ref so that repeated verifications are idempotent.
type OrderRepository interface {
	Create(ctx context.Context, order models.NewOrder) (*models.Order, error)
	UpdateStatusByTxRef(ctx context.Context, txRef, status string) (int, error)
	FindForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
}

const (
	orderFields     = `id customer_id total_amount status shipping_address tx_ref created_at`
	orderItemFields = `order_items { id order_id product_id quantity price_per_unit product { id name image_url seller_id } }`
)

// HasuraOrderRepository implements OrderRepository over GraphQL.
type HasuraOrderRepository struct {
	gql GraphQLClient
}

// NewHasuraOrderRepository creates a new HasuraOrderRepository.
func NewHasuraOrderRepository(gql GraphQLClient) OrderRepository {
	return &HasuraOrderRepository{gql: gql}
}

// Create inserts the order and its lines in a single mutation with status
// payment_pending.
func (r *HasuraOrderRepository) Create(ctx context.Context, order models.NewOrder) (*models.Order, error) {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, map[string]interface{}{
			"product_id":     it.ProductID,
			"quantity":       it.Quantity,
			"price_per_unit": it.PricePerUnit,
		})
	}
	object := map[string]interface{}{
		"customer_id":      order.CustomerID,
		"total_amount":     order.TotalAmount,
		"status":           models.OrderStatusPaymentPending,
		"shipping_address": order.ShippingAddress,
		"tx_ref":           order.TxRef,
		"order_items":      map[string]interface{}{"data": items},
	}

	var out struct {
		Order models.Order `json:"insert_orders_one"`
	}
	q := `mutation CreateOrder($object: orders_insert_input!) {
  insert_orders_one(object: $object) { ` + orderFields + ` ` + orderItemFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"object": object}, &out); err != nil {
		return nil, mapConstraint(err)
	}
	return &out.Order, nil
}

func (r *HasuraOrderRepository) UpdateStatusByTxRef(ctx context.Context, txRef, status string) (int, error) {
	var out struct {
		Result affectedRows `json:"update_orders"`
	}
	q := `mutation UpdateOrderStatus($txRef: String!, $status: String!) {
  update_orders(where: {tx_ref: {_eq: $txRef}}, _set: {status: $status}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"txRef": txRef, "status": status}, &out); err != nil {
		return 0, err
	}
	return out.Result.AffectedRows, nil
}

// FindForCustomer returns the order only when it belongs to customerID.
func (r *HasuraOrderRepository) FindForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	if !validID(orderID) || !validID(customerID) {
		return nil, ErrNotFound
	}
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	q := `query GetOrderById($orderId: uuid!, $customerId: uuid!) {
  orders(where: {id: {_eq: $orderId}, customer_id: {_eq: $customerId}}) { ` + orderFields + ` ` + orderItemFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"orderId": orderID, "customerId": customerID}, &out); err != nil {
		return nil, err
	}
	if len(out.Orders) == 0 {
		return nil, ErrNotFound
	}
	return &out.Orders[0], nil
}

func (r *HasuraOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	if !validID(customerID) {
		return []models.Order{}, nil
	}
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	q := `query GetUserOrders($customerId: uuid!) {
  orders(where: {customer_id: {_eq: $customerId}}, order_by: {created_at: desc}) { ` + orderFields + ` ` + orderItemFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"customerId": customerID}, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// ListBySeller returns orders containing at least one of the seller's
// products. Only the seller's own lines are included.
func (r *HasuraOrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	if !validID(sellerID) {
		return []models.Order{}, nil
	}
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	q := `query GetSellerOrders($sellerId: uuid!) {
  orders(where: {order_items: {product: {seller_id: {_eq: $sellerId}}}}, order_by: {created_at: desc}) {
    ` + orderFields + `
    order_items(where: {product: {seller_id: {_eq: $sellerId}}}) { id order_id product_id quantity price_per_unit product { id name image_url seller_id } }
  }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"sellerId": sellerID}, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (r *HasuraOrderRepository) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	q := `query GetRecentOrders($limit: Int!) {
  orders(order_by: {created_at: desc}, limit: $limit) { ` + orderFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"limit": limit}, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}
