package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/services"
)

// SellerController serves the seller console. Every handler acts on the
// authenticated seller.
type SellerController struct {
	sellerService services.SellerService
}

func NewSellerController(svc services.SellerService) *SellerController {
	return &SellerController{sellerService: svc}
}

// Dashboard handles GET /api/seller/dashboard
func (sc *SellerController) Dashboard(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	stats, svcErr := sc.sellerService.Dashboard(ctx.Request.Context(), sellerID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// Orders handles GET /api/seller/orders
func (sc *SellerController) Orders(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	orders, svcErr := sc.sellerService.Orders(ctx.Request.Context(), sellerID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// Products handles GET /api/seller/products
func (sc *SellerController) Products(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	products, svcErr := sc.sellerService.Products(ctx.Request.Context(), sellerID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// CreateProduct handles POST /api/seller/products
func (sc *SellerController) CreateProduct(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Invalid product data")
		return
	}
	product, svcErr := sc.sellerService.CreateProduct(ctx.Request.Context(), sellerID, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// PresignImage handles POST /api/seller/products/image-upload
func (sc *SellerController) PresignImage(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.ImageUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Filename and content type are required")
		return
	}
	upload, svcErr := sc.sellerService.PresignProductImage(ctx.Request.Context(), sellerID, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "upload": upload})
}

// Subscribers handles GET /api/seller/subscribers
func (sc *SellerController) Subscribers(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	subs, svcErr := sc.sellerService.Subscribers(ctx.Request.Context(), sellerID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "subscribers": subs})
}

// Profile handles GET /api/seller/profile
func (sc *SellerController) Profile(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	account, svcErr := sc.sellerService.Profile(ctx.Request.Context(), sellerID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": account.User, "profile": account.Profile})
}

// UpdateProfile handles PUT /api/seller/profile
func (sc *SellerController) UpdateProfile(ctx *gin.Context) {
	sellerID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.UpdateSellerProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Business name is required")
		return
	}
	profile, svcErr := sc.sellerService.UpdateProfile(ctx.Request.Context(), sellerID, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}
