package services

import (
	"context"
	"errors"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

// SubscriptionService lets customers follow sellers.
type SubscriptionService interface {
	ListForCustomer(ctx context.Context, customerID string) ([]models.Subscription, *ServiceError)
	Subscribe(ctx context.Context, customerID, sellerID string) (*models.Subscription, *ServiceError)
	Unsubscribe(ctx context.Context, customerID, sellerID string) (int, *ServiceError)
	IsSubscribed(ctx context.Context, customerID, sellerID string) (bool, *ServiceError)
}

type subscriptionServiceImpl struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	profiles      repository.SellerProfileRepository
	events        EventPublisher
	logger        *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
	profiles repository.SellerProfileRepository,
	events EventPublisher,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionServiceImpl{
		subscriptions: subscriptions,
		users:         users,
		profiles:      profiles,
		events:        events,
		logger:        logger,
	}
}

func (s *subscriptionServiceImpl) ListForCustomer(ctx context.Context, customerID string) ([]models.Subscription, *ServiceError) {
	subs, err := s.subscriptions.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list subscriptions", zap.String("customer_id", customerID), zap.Error(err))
		return nil, internal("Failed to fetch subscriptions")
	}
	if err := attachSubscriptionSellers(ctx, s.users, subs); err != nil {
		s.logger.Error("Failed to attach sellers", zap.Error(err))
		return nil, internal("Failed to fetch subscriptions")
	}
	return subs, nil
}

func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, customerID, sellerID string) (*models.Subscription, *ServiceError) {
	if sellerID == "" {
		return nil, badRequest("Seller ID is required")
	}

	profile, err := s.profiles.FindByUserID(ctx, sellerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to fetch seller profile", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to subscribe")
	}
	if profile == nil || !profile.IsApproved {
		return nil, notFound("Seller not found")
	}

	exists, err := s.subscriptions.Exists(ctx, customerID, sellerID)
	if err != nil {
		s.logger.Error("Failed to check subscription", zap.Error(err))
		return nil, internal("Failed to subscribe")
	}
	if exists {
		return nil, conflict("Already subscribed")
	}

	sub, err := s.subscriptions.Create(ctx, customerID, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Already subscribed")
		}
		s.logger.Error("Failed to create subscription", zap.Error(err))
		return nil, internal("Failed to subscribe")
	}

	s.events.Publish(ctx, models.Event{
		EventType:  models.EventSubscriptionCreated,
		UserID:     sellerID,
		SellerID:   sellerID,
		SellerName: profile.BusinessName,
		CustomerID: customerID,
	})
	return sub, nil
}

func (s *subscriptionServiceImpl) Unsubscribe(ctx context.Context, customerID, sellerID string) (int, *ServiceError) {
	n, err := s.subscriptions.Delete(ctx, customerID, sellerID)
	if err != nil {
		s.logger.Error("Failed to delete subscription", zap.Error(err))
		return 0, internal("Failed to unsubscribe")
	}
	if n == 0 {
		return 0, notFound("Subscription not found")
	}
	return n, nil
}

func (s *subscriptionServiceImpl) IsSubscribed(ctx context.Context, customerID, sellerID string) (bool, *ServiceError) {
	ok, err := s.subscriptions.Exists(ctx, customerID, sellerID)
	if err != nil {
		s.logger.Error("Failed to check subscription", zap.Error(err))
		return false, internal("Failed to check subscription")
	}
	return ok, nil
}

func attachSubscriptionSellers(ctx context.Context, users repository.UserRepository, subs []models.Subscription) error {
	if len(subs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.SellerID)
	}
	summaries, err := users.FindSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for i := range subs {
		if u, ok := summaries[subs[i].SellerID]; ok {
			seller := models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
			subs[i].Seller = &seller
		}
	}
	return nil
}
