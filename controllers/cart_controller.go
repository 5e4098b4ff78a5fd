package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/services"
)

// CartController handles a customer's cart and wishlist.
type CartController struct {
	cartService     services.CartService
	wishlistService services.WishlistService
}

func NewCartController(cart services.CartService, wishlist services.WishlistService) *CartController {
	return &CartController{cartService: cart, wishlistService: wishlist}
}

// GetCart handles GET /api/cart
func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, svcErr := cc.cartService.GetCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// AddToCart handles POST /api/cart
func (cc *CartController) AddToCart(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.AddToCartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Product ID and a positive quantity are required")
		return
	}
	item, svcErr := cc.cartService.AddToCart(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// UpdateItem handles PUT /api/cart/:id
func (cc *CartController) UpdateItem(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Quantity is required")
		return
	}
	if svcErr := cc.cartService.UpdateItem(ctx.Request.Context(), userID, ctx.Param("id"), req.Quantity); svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveItem handles DELETE /api/cart/:id
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	if svcErr := cc.cartService.RemoveItem(ctx.Request.Context(), userID, ctx.Param("id")); svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearCart handles DELETE /api/cart
func (cc *CartController) ClearCart(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	removed, svcErr := cc.cartService.ClearCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "affectedRows": removed})
}

// GetWishlist handles GET /api/wishlist
func (cc *CartController) GetWishlist(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, svcErr := cc.wishlistService.GetWishlist(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// AddToWishlist handles POST /api/wishlist
func (cc *CartController) AddToWishlist(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.AddToWishlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Product ID is required")
		return
	}
	item, svcErr := cc.wishlistService.AddToWishlist(ctx.Request.Context(), userID, req.ProductID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "item": item})
}

// RemoveFromWishlist handles DELETE /api/wishlist/:id
func (cc *CartController) RemoveFromWishlist(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	if svcErr := cc.wishlistService.RemoveFromWishlist(ctx.Request.Context(), userID, ctx.Param("id")); svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
