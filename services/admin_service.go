package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 50
)

var timeframeWindows = map[string]time.Duration{
	models.Timeframe7Days:  7 * 24 * time.Hour,
	models.Timeframe30Days: 30 * 24 * time.Hour,
	models.Timeframe90Days: 90 * 24 * time.Hour,
	models.TimeframeYear:   365 * 24 * time.Hour,
}

// AdminService backs the platform administration console.
type AdminService interface {
	Dashboard(ctx context.Context) (*models.AdminDashboard, *ServiceError)
	PendingSellers(ctx context.Context, limit int) ([]models.SellerProfile, *ServiceError)
	ApproveSeller(ctx context.Context, profileID string) (*models.SellerProfile, *ServiceError)
	Customers(ctx context.Context) ([]models.CustomerSummary, *ServiceError)
	RecentUsers(ctx context.Context, limit int) ([]models.User, *ServiceError)
	RecentProducts(ctx context.Context, limit int) ([]models.Product, *ServiceError)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, *ServiceError)
	Analytics(ctx context.Context, timeframe string) (*models.Analytics, *ServiceError)
}

type adminServiceImpl struct {
	users      repository.UserRepository
	profiles   repository.SellerProfileRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	dashboards repository.DashboardRepository
	cache      CatalogCache
	events     EventPublisher
	metrics    MetricsRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	users repository.UserRepository,
	profiles repository.SellerProfileRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	dashboards repository.DashboardRepository,
	cache CatalogCache,
	events EventPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) AdminService {
	return &adminServiceImpl{
		users:      users,
		profiles:   profiles,
		products:   products,
		orders:     orders,
		dashboards: dashboards,
		cache:      cache,
		events:     events,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *adminServiceImpl) Dashboard(ctx context.Context) (*models.AdminDashboard, *ServiceError) {
	dash, err := s.dashboards.AdminStats(ctx)
	if err != nil {
		s.logger.Error("Failed to load admin dashboard", zap.Error(err))
		return nil, internal("Failed to fetch dashboard data")
	}
	return dash, nil
}

func (s *adminServiceImpl) PendingSellers(ctx context.Context, limit int) ([]models.SellerProfile, *ServiceError) {
	if limit < 0 {
		limit = 0
	}
	profiles, err := s.profiles.ListPending(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list pending sellers", zap.Error(err))
		return nil, internal("Failed to fetch pending sellers")
	}
	return profiles, nil
}

func (s *adminServiceImpl) ApproveSeller(ctx context.Context, profileID string) (*models.SellerProfile, *ServiceError) {
	profile, err := s.profiles.Approve(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Seller profile not found")
		}
		s.logger.Error("Failed to approve seller", zap.String("profile_id", profileID), zap.Error(err))
		return nil, internal("Failed to approve seller")
	}

	if err := s.cache.InvalidateLists(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
	s.events.Publish(ctx, models.Event{
		EventType:  models.EventSellerApproved,
		UserID:     profile.UserID,
		SellerID:   profile.UserID,
		SellerName: profile.BusinessName,
	})
	recordCount(s.metrics, pkgaws.MetricSellersApproved, nil)

	s.logger.Info("Seller approved", zap.String("profile_id", profileID), zap.String("user_id", profile.UserID))
	return profile, nil
}

func (s *adminServiceImpl) Customers(ctx context.Context) ([]models.CustomerSummary, *ServiceError) {
	customers, err := s.users.ListCustomers(ctx)
	if err != nil {
		s.logger.Error("Failed to list customers", zap.Error(err))
		return nil, internal("Failed to fetch customers")
	}
	return customers, nil
}

func (s *adminServiceImpl) RecentUsers(ctx context.Context, limit int) ([]models.User, *ServiceError) {
	users, err := s.users.ListRecent(ctx, clampLimit(limit, defaultRecentLimit, maxRecentLimit))
	if err != nil {
		s.logger.Error("Failed to list recent users", zap.Error(err))
		return nil, internal("Failed to fetch users")
	}
	return users, nil
}

func (s *adminServiceImpl) RecentProducts(ctx context.Context, limit int) ([]models.Product, *ServiceError) {
	products, err := s.products.ListRecent(ctx, clampLimit(limit, defaultRecentLimit, maxRecentLimit))
	if err != nil {
		s.logger.Error("Failed to list recent products", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	if err := attachSellers(ctx, s.users, s.profiles, products); err != nil {
		s.logger.Error("Failed to attach sellers", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	return products, nil
}

func (s *adminServiceImpl) RecentOrders(ctx context.Context, limit int) ([]models.Order, *ServiceError) {
	orders, err := s.orders.ListRecent(ctx, clampLimit(limit, defaultRecentLimit, maxRecentLimit))
	if err != nil {
		s.logger.Error("Failed to list recent orders", zap.Error(err))
		return nil, internal("Failed to fetch orders")
	}
	return orders, nil
}

// Analytics compares the timeframe window with the window of equal length
// right before it.
func (s *adminServiceImpl) Analytics(ctx context.Context, timeframe string) (*models.Analytics, *ServiceError) {
	if timeframe == "" {
		timeframe = models.Timeframe30Days
	}
	now := s.now().UTC()

	var from time.Time
	window, ok := timeframeWindows[timeframe]
	switch {
	case ok:
		from = now.Add(-window)
	case timeframe == models.TimeframeAll:
		from = time.Unix(0, 0).UTC()
	default:
		return nil, badRequest("Invalid timeframe")
	}

	current, err := s.dashboards.WindowStats(ctx, from, now)
	if err != nil {
		s.logger.Error("Failed to load analytics window", zap.String("timeframe", timeframe), zap.Error(err))
		return nil, internal("Failed to fetch analytics")
	}
	previous := &models.WindowStats{}
	if ok {
		previous, err = s.dashboards.WindowStats(ctx, from.Add(-window), from)
		if err != nil {
			s.logger.Error("Failed to load previous analytics window", zap.String("timeframe", timeframe), zap.Error(err))
			return nil, internal("Failed to fetch analytics")
		}
	}
	totalSellers, err := s.dashboards.TotalSellers(ctx)
	if err != nil {
		s.logger.Error("Failed to count sellers", zap.Error(err))
		return nil, internal("Failed to fetch analytics")
	}

	return &models.Analytics{
		Timeframe: timeframe,
		Revenue: models.GrowthMetric{
			Total:  current.Revenue,
			Growth: growth(current.Revenue, previous.Revenue),
		},
		Users: models.NewCountMetric{
			New:    current.NewUsers,
			Growth: growth(float64(current.NewUsers), float64(previous.NewUsers)),
		},
		Products: models.NewCountMetric{
			New:    current.NewProducts,
			Growth: growth(float64(current.NewProducts), float64(previous.NewProducts)),
		},
		Sellers: models.SellerActivity{
			Active: current.ActiveSellers,
			Total:  totalSellers,
		},
	}, nil
}

// growth is the percentage change rounded to one decimal; 0 when there is no
// previous value to compare with.
func growth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}
