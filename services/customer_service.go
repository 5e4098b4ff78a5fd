package services

import (
	"context"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

// CustomerService builds the customer dashboard.
type CustomerService interface {
	Dashboard(ctx context.Context, customerID string) (*models.CustomerDashboard, *ServiceError)
}

type customerServiceImpl struct {
	dashboards repository.DashboardRepository
	users      repository.UserRepository
	logger     *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(dashboards repository.DashboardRepository, users repository.UserRepository, logger *zap.Logger) CustomerService {
	return &customerServiceImpl{dashboards: dashboards, users: users, logger: logger}
}

func (s *customerServiceImpl) Dashboard(ctx context.Context, customerID string) (*models.CustomerDashboard, *ServiceError) {
	dash, err := s.dashboards.CustomerStats(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to load customer dashboard", zap.String("customer_id", customerID), zap.Error(err))
		return nil, internal("Failed to fetch dashboard data")
	}
	if dash.RecentSubscriptions == nil {
		dash.RecentSubscriptions = []models.Subscription{}
	}
	if err := attachSubscriptionSellers(ctx, s.users, dash.RecentSubscriptions); err != nil {
		s.logger.Error("Failed to attach sellers", zap.Error(err))
		return nil, internal("Failed to fetch dashboard data")
	}
	return dash, nil
}
