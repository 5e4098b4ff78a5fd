package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

const (
	defaultMarketplaceLimit = 12
	maxMarketplaceLimit     = 100
	approvedSellersCacheKey = "approved-sellers"
)

// CatalogCache is implemented by repository.CacheRepository.
type CatalogCache interface {
	GetList(ctx context.Context, key string, out interface{}) bool
	SetList(ctx context.Context, key string, value interface{})
	GetProduct(ctx context.Context, productID string, out interface{}) bool
	SetProduct(ctx context.Context, productID string, value interface{})
	InvalidateLists(ctx context.Context) error
}

// CatalogService serves the public product catalog.
type CatalogService interface {
	Marketplace(ctx context.Context, q models.ProductQuery) (*models.ProductPage, *ServiceError)
	ListProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetProduct(ctx context.Context, id string) (*models.Product, *ServiceError)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, *ServiceError)
	GetShop(ctx context.Context, sellerID string) (*models.Shop, *ServiceError)
}

type catalogServiceImpl struct {
	products repository.ProductRepository
	users    repository.UserRepository
	profiles repository.SellerProfileRepository
	cache    CatalogCache
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	products repository.ProductRepository,
	users repository.UserRepository,
	profiles repository.SellerProfileRepository,
	cache CatalogCache,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		products: products,
		users:    users,
		profiles: profiles,
		cache:    cache,
		logger:   logger,
	}
}

func (s *catalogServiceImpl) Marketplace(ctx context.Context, q models.ProductQuery) (*models.ProductPage, *ServiceError) {
	q.Search = strings.TrimSpace(q.Search)
	q.Limit = clampLimit(q.Limit, defaultMarketplaceLimit, maxMarketplaceLimit)
	if q.Offset < 0 {
		q.Offset = 0
	}

	cacheKey := fmt.Sprintf("marketplace:%d:%d:%s", q.Limit, q.Offset, strings.ToLower(q.Search))
	var cached models.ProductPage
	if s.cache.GetList(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	sellerIDs, err := s.approvedSellers(ctx)
	if err != nil {
		s.logger.Error("Failed to load approved sellers", zap.Error(err))
		return nil, internal("Failed to load marketplace")
	}

	products, total, err := s.products.Search(ctx, sellerIDs, q)
	if err != nil {
		s.logger.Error("Marketplace search failed", zap.Error(err))
		return nil, internal("Failed to load marketplace")
	}
	if err := s.attachSellers(ctx, products); err != nil {
		s.logger.Error("Failed to attach sellers", zap.Error(err))
		return nil, internal("Failed to load marketplace")
	}

	page := &models.ProductPage{Products: products, TotalCount: total}
	s.cache.SetList(ctx, cacheKey, page)
	return page, nil
}

func (s *catalogServiceImpl) approvedSellers(ctx context.Context) ([]string, error) {
	var ids []string
	if s.cache.GetList(ctx, approvedSellersCacheKey, &ids) {
		return ids, nil
	}
	ids, err := s.profiles.ApprovedSellerIDs(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, approvedSellersCacheKey, ids)
	return ids, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.products.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	if err := s.attachSellers(ctx, products); err != nil {
		s.logger.Error("Failed to attach sellers", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	return products, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id string) (*models.Product, *ServiceError) {
	var cached models.Product
	if s.cache.GetProduct(ctx, id, &cached) {
		return &cached, nil
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", id), zap.Error(err))
		return nil, internal("Failed to fetch product")
	}

	one := []models.Product{*product}
	if err := s.attachSellers(ctx, one); err != nil {
		s.logger.Error("Failed to attach seller", zap.String("product_id", id), zap.Error(err))
		return nil, internal("Failed to fetch product")
	}
	s.cache.SetProduct(ctx, id, one[0])
	return &one[0], nil
}

func (s *catalogServiceImpl) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, *ServiceError) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return nil, badRequest("Product IDs are required")
	}

	products, err := s.products.FindByIDs(ctx, clean)
	if err != nil {
		s.logger.Error("Failed to fetch products by ids", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	if err := s.attachSellers(ctx, products); err != nil {
		s.logger.Error("Failed to attach sellers", zap.Error(err))
		return nil, internal("Failed to fetch products")
	}
	return products, nil
}

func (s *catalogServiceImpl) GetShop(ctx context.Context, sellerID string) (*models.Shop, *ServiceError) {
	user, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Seller not found")
		}
		s.logger.Error("Failed to fetch seller", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch shop")
	}
	if user.Role != models.RoleSeller {
		return nil, notFound("Seller not found")
	}

	profile, err := s.profiles.FindByUserID(ctx, sellerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to fetch seller profile", zap.String("seller_id", sellerID), zap.Error(err))
			return nil, internal("Failed to fetch shop")
		}
		profile = &models.SellerProfile{UserID: sellerID, BusinessName: models.UnknownBusiness}
	}

	products, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to fetch seller products", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, internal("Failed to fetch shop")
	}

	created := user.CreatedAt
	return &models.Shop{
		Seller:   models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, CreatedAt: &created},
		Profile:  profile,
		Products: products,
	}, nil
}

// attachSellers fills Seller on every product in place, defaulting missing
// records to the unknown seller and business names.
func (s *catalogServiceImpl) attachSellers(ctx context.Context, products []models.Product) error {
	return attachSellers(ctx, s.users, s.profiles, products)
}

func attachSellers(ctx context.Context, users repository.UserRepository, profiles repository.SellerProfileRepository, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.SellerID)
	}

	summaries, err := users.FindSummaries(ctx, ids)
	if err != nil {
		return err
	}
	profileMap, err := profiles.FindByUserIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range products {
		seller := &models.ProductSeller{ID: products[i].SellerID, Name: models.UnknownSeller}
		if u, ok := summaries[products[i].SellerID]; ok && u.Name != "" {
			seller.Name = u.Name
		}
		if p, ok := profileMap[products[i].SellerID]; ok {
			profile := p
			profile.User = nil
			seller.SellerProfile = &profile
		} else {
			seller.SellerProfile = &models.SellerProfile{UserID: products[i].SellerID, BusinessName: models.UnknownBusiness}
		}
		products[i].Seller = seller
	}
	return nil
}
