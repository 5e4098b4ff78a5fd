package services

import (
	"context"
	"errors"

	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

// CartService manages a customer's cart lines.
type CartService interface {
	GetCart(ctx context.Context, customerID string) ([]models.CartItem, *ServiceError)
	AddToCart(ctx context.Context, customerID string, req *models.AddToCartRequest) (*models.CartItem, *ServiceError)
	UpdateItem(ctx context.Context, customerID, itemID string, quantity int) *ServiceError
	RemoveItem(ctx context.Context, customerID, itemID string) *ServiceError
	ClearCart(ctx context.Context, customerID string) (int, *ServiceError)
}

type cartServiceImpl struct {
	cart     repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(cart repository.CartRepository, products repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{cart: cart, products: products, logger: logger}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, customerID string) ([]models.CartItem, *ServiceError) {
	items, err := s.cart.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("customer_id", customerID), zap.Error(err))
		return nil, internal("Failed to fetch cart")
	}
	return items, nil
}

// AddToCart inserts a line, or increments the existing line for the product.
func (s *cartServiceImpl) AddToCart(ctx context.Context, customerID string, req *models.AddToCartRequest) (*models.CartItem, *ServiceError) {
	if req.ProductID == "" || req.Quantity <= 0 {
		return nil, badRequest("Product ID and a positive quantity are required")
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, internal("Failed to add to cart")
	}

	existing, err := s.cart.FindByProduct(ctx, customerID, req.ProductID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to look up cart line", zap.Error(err))
		return nil, internal("Failed to add to cart")
	}

	quantity := req.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}
	if quantity > product.Stock {
		return nil, badRequest("Requested quantity exceeds available stock")
	}

	if existing != nil {
		if err := s.cart.UpdateQuantity(ctx, customerID, existing.ID, quantity); err != nil {
			s.logger.Error("Failed to update cart line", zap.String("item_id", existing.ID), zap.Error(err))
			return nil, internal("Failed to add to cart")
		}
		existing.Quantity = quantity
		existing.Product = product
		return existing, nil
	}

	item, err := s.cart.Add(ctx, customerID, req.ProductID, quantity)
	if err != nil {
		s.logger.Error("Failed to add cart line", zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, internal("Failed to add to cart")
	}
	return item, nil
}

// UpdateItem sets a line's quantity; zero or less removes it.
func (s *cartServiceImpl) UpdateItem(ctx context.Context, customerID, itemID string, quantity int) *ServiceError {
	if quantity <= 0 {
		return s.RemoveItem(ctx, customerID, itemID)
	}

	lines, err := s.cart.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("customer_id", customerID), zap.Error(err))
		return internal("Failed to update cart")
	}
	var line *models.CartItem
	for i := range lines {
		if lines[i].ID == itemID {
			line = &lines[i]
			break
		}
	}
	if line == nil {
		return notFound("Cart item not found")
	}
	product, err := s.products.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Product not found")
		}
		s.logger.Error("Failed to load product", zap.String("product_id", line.ProductID), zap.Error(err))
		return internal("Failed to update cart")
	}
	if quantity > product.Stock {
		return badRequest("Requested quantity exceeds available stock")
	}

	if err := s.cart.UpdateQuantity(ctx, customerID, itemID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Cart item not found")
		}
		s.logger.Error("Failed to update cart line", zap.String("item_id", itemID), zap.Error(err))
		return internal("Failed to update cart")
	}
	return nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, customerID, itemID string) *ServiceError {
	if err := s.cart.Remove(ctx, customerID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Cart item not found")
		}
		s.logger.Error("Failed to remove cart line", zap.String("item_id", itemID), zap.Error(err))
		return internal("Failed to remove from cart")
	}
	return nil
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, customerID string) (int, *ServiceError) {
	n, err := s.cart.Clear(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to clear cart", zap.String("customer_id", customerID), zap.Error(err))
		return 0, internal("Failed to clear cart")
	}
	return n, nil
}
