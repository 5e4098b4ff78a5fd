package services

import (
	"context"
	"errors"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

// OrderService exposes a customer's orders.
type OrderService interface {
	GetOrder(ctx context.Context, orderID, userID, requesterID string) (*models.Order, *ServiceError)
	ListCustomerOrders(ctx context.Context, customerID string) ([]models.Order, *ServiceError)
}

type orderServiceImpl struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, logger *zap.Logger) OrderService {
	return &orderServiceImpl{orders: orders, users: users, logger: logger}
}

// GetOrder returns the order only when userID is the requester and owns it.
func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, userID, requesterID string) (*models.Order, *ServiceError) {
	if orderID == "" || userID == "" {
		return nil, badRequest("Order ID and User ID are required")
	}
	if requesterID == "" {
		return nil, unauthorized("Authentication required")
	}
	if requesterID != userID {
		return nil, forbidden("Unauthorized")
	}

	order, err := s.orders.FindForCustomer(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, internal("Failed to fetch order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListCustomerOrders(ctx context.Context, customerID string) ([]models.Order, *ServiceError) {
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.String("customer_id", customerID), zap.Error(err))
		return nil, internal("Failed to fetch orders")
	}
	if err := attachItemSellers(ctx, s.users, orders); err != nil {
		s.logger.Error("Failed to attach sellers to order items", zap.Error(err))
		return nil, internal("Failed to fetch orders")
	}
	return orders, nil
}

func attachItemSellers(ctx context.Context, users repository.UserRepository, orders []models.Order) error {
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			if it.Product != nil && it.Product.SellerID != "" {
				ids = append(ids, it.Product.SellerID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	summaries, err := users.FindSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for i := range orders {
		for j := range orders[i].Items {
			p := orders[i].Items[j].Product
			if p == nil {
				continue
			}
			if u, ok := summaries[p.SellerID]; ok {
				p.Seller = &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
	}
	return nil
}
