package services

import (
	"context"
	"errors"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

// WishlistService manages saved products.
type WishlistService interface {
	GetWishlist(ctx context.Context, customerID string) ([]models.WishlistItem, *ServiceError)
	AddToWishlist(ctx context.Context, customerID, productID string) (*models.WishlistItem, *ServiceError)
	RemoveFromWishlist(ctx context.Context, customerID, itemID string) *ServiceError
}

type wishlistServiceImpl struct {
	wishlist repository.WishlistRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlist repository.WishlistRepository, products repository.ProductRepository, logger *zap.Logger) WishlistService {
	return &wishlistServiceImpl{wishlist: wishlist, products: products, logger: logger}
}

func (s *wishlistServiceImpl) GetWishlist(ctx context.Context, customerID string) ([]models.WishlistItem, *ServiceError) {
	items, err := s.wishlist.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to load wishlist", zap.String("customer_id", customerID), zap.Error(err))
		return nil, internal("Failed to fetch wishlist")
	}
	return items, nil
}

func (s *wishlistServiceImpl) AddToWishlist(ctx context.Context, customerID, productID string) (*models.WishlistItem, *ServiceError) {
	if productID == "" {
		return nil, badRequest("Product ID is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", productID), zap.Error(err))
		return nil, internal("Failed to add to wishlist")
	}

	exists, err := s.wishlist.Exists(ctx, customerID, productID)
	if err != nil {
		s.logger.Error("Failed to check wishlist", zap.Error(err))
		return nil, internal("Failed to add to wishlist")
	}
	if exists {
		return nil, conflict("Product already in wishlist")
	}

	item, err := s.wishlist.Add(ctx, customerID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Product already in wishlist")
		}
		s.logger.Error("Failed to add wishlist item", zap.Error(err))
		return nil, internal("Failed to add to wishlist")
	}
	return item, nil
}

func (s *wishlistServiceImpl) RemoveFromWishlist(ctx context.Context, customerID, itemID string) *ServiceError {
	if err := s.wishlist.Remove(ctx, customerID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Wishlist item not found")
		}
		s.logger.Error("Failed to remove wishlist item", zap.String("item_id", itemID), zap.Error(err))
		return internal("Failed to remove from wishlist")
	}
	return nil
}
