package services

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

const imageUploadExpiry = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImagePresigner is implemented by pkg/aws.S3Presigner.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error)
	PublicURL(key string) string
}

// SellerService backs the seller console.
type SellerService interface {
	Dashboard(ctx context.Context, sellerID string) (*models.SellerDashboard, *ServiceError)
	Orders(ctx context.Context, sellerID string) ([]models.Order, *ServiceError)
	Products(ctx context.Context, sellerID string) ([]models.Product, *ServiceError)
	CreateProduct(ctx context.Context, sellerID string, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	PresignProductImage(ctx context.Context, sellerID string, req *models.ImageUploadRequest) (*models.ImageUpload, *ServiceError)
	Subscribers(ctx context.Context, sellerID string) ([]models.Subscription, *ServiceError)
	Profile(ctx context.Context, sellerID string) (*models.SellerAccount, *ServiceError)
	UpdateProfile(ctx context.Context, sellerID string, req *models.UpdateSellerProfileRequest) (*models.SellerProfile, *ServiceError)
}

type sellerServiceImpl struct {
	products      repository.ProductRepository
	orders        repository.OrderRepository
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	profiles      repository.SellerProfileRepository
	dashboards    repository.DashboardRepository
	cache         CatalogCache
	images        ImagePresigner
	events        EventPublisher
	metrics       MetricsRecorder
	logger        *zap.Logger
}

// NewSellerService creates a new SellerService. images may be nil when no
// upload bucket is configured.
func NewSellerService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
	profiles repository.SellerProfileRepository,
	dashboards repository.DashboardRepository,
	cache CatalogCache,
	images ImagePresigner,
	events EventPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) SellerService {
	return &sellerServiceImpl{
		products:      products,
		orders:        orders,
		subscriptions: subscriptions,
		users:         users,
		profiles:      profiles,
		dashboards:    dashboards,
		cache:         cache,
		images:        images,
		events:        events,
		metrics:       metrics,
		logger:        logger,
	}
}

func (s *sellerServiceImpl) Dashboard(ctx context.Context, sellerID string) (*models.SellerDashboard, *ServiceError) {
	dash, err := s.dashboards.SellerStats(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to load seller dashboard", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch dashboard data")
	}
	return dash, nil
}

func (s *sellerServiceImpl) Orders(ctx context.Context, sellerID string) ([]models.Order, *ServiceError) {
	orders, err := s.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to list seller orders", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch orders")
	}
	return orders, nil
}

func (s *sellerServiceImpl) Products(ctx context.Context, sellerID string) ([]models.Product, *ServiceError) {
	products, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to list seller products", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	return products, nil
}

func (s *sellerServiceImpl) CreateProduct(ctx context.Context, sellerID string, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Struct(req); err != nil {
		return nil, badRequest("Invalid product data")
	}

	product, err := s.products.Create(ctx, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		SellerID:    sellerID,
	})
	if err != nil {
		s.logger.Error("Failed to create product", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to create product")
	}

	if err := s.cache.InvalidateLists(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}

	sellerName := ""
	if profile, err := s.profiles.FindByUserID(ctx, sellerID); err == nil {
		sellerName = profile.BusinessName
	}
	s.events.Publish(ctx, models.Event{
		EventType:   models.EventProductCreated,
		UserID:      sellerID,
		SellerID:    sellerID,
		SellerName:  sellerName,
		ProductID:   product.ID,
		ProductName: product.Name,
	})
	recordCount(s.metrics, pkgaws.MetricProductsCreated, nil)

	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("seller_id", sellerID))
	return product, nil
}

func (s *sellerServiceImpl) PresignProductImage(ctx context.Context, sellerID string, req *models.ImageUploadRequest) (*models.ImageUpload, *ServiceError) {
	if s.images == nil {
		return nil, &ServiceError{StatusCode: 503, Message: "Image uploads are not configured"}
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	defaultExt, ok := imageExtensions[contentType]
	if !ok {
		return nil, badRequest("Only JPEG, PNG, WebP and GIF images are allowed")
	}
	ext := strings.ToLower(path.Ext(req.Filename))
	if ext == "" || len(ext) > 5 {
		ext = defaultExt
	}

	key := "products/" + sellerID + "/" + uuid.NewString() + ext
	uploadURL, headers, err := s.images.PresignPut(ctx, key, contentType, imageUploadExpiry)
	if err != nil {
		s.logger.Error("Failed to presign image upload", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to prepare image upload")
	}
	return &models.ImageUpload{
		UploadURL: uploadURL,
		PublicURL: s.images.PublicURL(key),
		Key:       key,
		Headers:   headers,
		ExpiresIn: int(imageUploadExpiry.Seconds()),
	}, nil
}

func (s *sellerServiceImpl) Subscribers(ctx context.Context, sellerID string) ([]models.Subscription, *ServiceError) {
	subs, err := s.subscriptions.ListBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to list subscribers", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch subscribers")
	}
	if len(subs) == 0 {
		return subs, nil
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.CustomerID)
	}
	summaries, err := s.users.FindSummaries(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load subscriber details", zap.Error(err))
		return nil, internal("Failed to fetch subscribers")
	}
	for i := range subs {
		if u, ok := summaries[subs[i].CustomerID]; ok {
			customer := u
			subs[i].Customer = &customer
		}
	}
	return subs, nil
}

func (s *sellerServiceImpl) Profile(ctx context.Context, sellerID string) (*models.SellerAccount, *ServiceError) {
	user, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Seller not found")
		}
		s.logger.Error("Failed to load seller", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch profile")
	}
	profile, err := s.profiles.FindByUserID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Seller profile not found")
		}
		s.logger.Error("Failed to load seller profile", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch profile")
	}
	return &models.SellerAccount{User: user, Profile: profile}, nil
}

func (s *sellerServiceImpl) UpdateProfile(ctx context.Context, sellerID string, req *models.UpdateSellerProfileRequest) (*models.SellerProfile, *ServiceError) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return nil, badRequest("Business name is required")
	}
	current, err := s.profiles.FindByUserID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Seller profile not found")
		}
		s.logger.Error("Failed to load seller profile", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to update profile")
	}

	profile, err := s.profiles.Update(ctx, current.ID, name, strings.TrimSpace(req.Description))
	if err != nil {
		s.logger.Error("Failed to update seller profile", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to update profile")
	}
	if err := s.cache.InvalidateLists(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
	return profile, nil
}
