package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

const (
	defaultNotificationLimit = 10
	maxNotificationLimit     = 100
)

// NotificationService lists in-app notifications and creates them from
// domain events.
type NotificationService interface {
	List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, *ServiceError)
	UnreadCount(ctx context.Context, userID string) (int, *ServiceError)
	MarkRead(ctx context.Context, userID, id string) *ServiceError
	MarkAllRead(ctx context.Context, userID string) (int, *ServiceError)
	ProcessEvent(ctx context.Context, event models.Event) error
}

type notificationServiceImpl struct {
	notifications repository.NotificationRepository
	subscriptions repository.SubscriptionRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notifications repository.NotificationRepository,
	subscriptions repository.SubscriptionRepository,
	logger *zap.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, *ServiceError) {
	if offset < 0 {
		offset = 0
	}
	items, err := s.notifications.ListByUser(ctx, userID, clampLimit(limit, defaultNotificationLimit, maxNotificationLimit), offset)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to fetch notifications")
	}
	return items, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int, *ServiceError) {
	n, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count notifications", zap.String("user_id", userID), zap.Error(err))
		return 0, internal("Failed to fetch unread count")
	}
	return n, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, id string) *ServiceError {
	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Notification not found")
		}
		s.logger.Error("Failed to mark notification read", zap.String("id", id), zap.Error(err))
		return internal("Failed to update notification")
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) (int, *ServiceError) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark notifications read", zap.String("user_id", userID), zap.Error(err))
		return 0, internal("Failed to update notifications")
	}
	return n, nil
}

// ProcessEvent turns a domain event into notifications. Events nobody is
// notified about are ignored.
func (s *notificationServiceImpl) ProcessEvent(ctx context.Context, event models.Event) error {
	notifications, err := s.build(ctx, event)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		return nil
	}
	n, err := s.notifications.CreateMany(ctx, notifications)
	if err != nil {
		return fmt.Errorf("create notifications for %s: %w", event.EventType, err)
	}
	s.logger.Info("Notifications created", zap.String("event_type", event.EventType), zap.Int("count", n))
	return nil
}

func (s *notificationServiceImpl) build(ctx context.Context, event models.Event) ([]models.Notification, error) {
	switch event.EventType {
	case models.EventPaymentSucceeded:
		if event.CustomerID == "" {
			return nil, nil
		}
		return []models.Notification{{
			UserID:  event.CustomerID,
			Title:   "Order confirmed",
			Message: fmt.Sprintf("Your payment of %.2f was received and your order is being processed.", event.Amount),
			Type:    models.NotificationOrderConfirmed,
		}}, nil

	case models.EventPaymentFailed:
		if event.CustomerID == "" {
			return nil, nil
		}
		return []models.Notification{{
			UserID:  event.CustomerID,
			Title:   "Payment failed",
			Message: "We could not confirm your payment. Your order was not placed.",
			Type:    models.NotificationPaymentFailed,
		}}, nil

	case models.EventProductCreated:
		if event.SellerID == "" {
			return nil, nil
		}
		subs, err := s.subscriptions.ListBySeller(ctx, event.SellerID)
		if err != nil {
			return nil, fmt.Errorf("list subscribers of %s: %w", event.SellerID, err)
		}
		seller := event.SellerName
		if seller == "" {
			seller = "A seller you follow"
		}
		out := make([]models.Notification, 0, len(subs))
		for _, sub := range subs {
			productID, sellerID := event.ProductID, event.SellerID
			out = append(out, models.Notification{
				UserID:    sub.CustomerID,
				Title:     "New product",
				Message:   fmt.Sprintf("%s just listed %s.", seller, event.ProductName),
				Type:      models.NotificationNewProduct,
				ProductID: &productID,
				SellerID:  &sellerID,
			})
		}
		return out, nil

	case models.EventSellerApproved:
		if event.SellerID == "" {
			return nil, nil
		}
		return []models.Notification{{
			UserID:  event.SellerID,
			Title:   "Seller account approved",
			Message: "Your seller account has been approved. You can now log in and list products.",
			Type:    models.NotificationSellerApproved,
		}}, nil

	case models.EventSubscriptionCreated:
		if event.SellerID == "" {
			return nil, nil
		}
		sellerID := event.SellerID
		return []models.Notification{{
			UserID:   event.SellerID,
			Title:    "New subscriber",
			Message:  "A customer subscribed to your shop.",
			Type:     models.NotificationNewSubscriber,
			SellerID: &sellerID,
		}}, nil
	}
	return nil, nil
}
