package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/services"
)

// CatalogController serves the public marketplace and shop pages.
type CatalogController struct {
	catalogService services.CatalogService
}

func NewCatalogController(svc services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: svc}
}

// Marketplace handles GET /api/marketplace
func (cc *CatalogController) Marketplace(ctx *gin.Context) {
	offset := queryInt(ctx, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	page, svcErr := cc.catalogService.Marketplace(ctx.Request.Context(), models.ProductQuery{
		Search: strings.TrimSpace(ctx.Query("search")),
		Limit:  queryInt(ctx, "limit", 12),
		Offset: offset,
	})
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "products": page.Products, "totalCount": page.TotalCount})
}

// ListProducts handles GET /api/products
func (cc *CatalogController) ListProducts(ctx *gin.Context) {
	products, svcErr := cc.catalogService.ListProducts(ctx.Request.Context())
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// GetProduct handles GET /api/products/:id
func (cc *CatalogController) GetProduct(ctx *gin.Context) {
	product, svcErr := cc.catalogService.GetProduct(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// GetProductsByIDs handles GET /api/products/batch?ids=a,b
func (cc *CatalogController) GetProductsByIDs(ctx *gin.Context) {
	raw := ctx.Query("ids")
	if strings.TrimSpace(raw) == "" {
		failWith(ctx, http.StatusBadRequest, "Product IDs are required")
		return
	}
	products, svcErr := cc.catalogService.GetProductsByIDs(ctx.Request.Context(), strings.Split(raw, ","))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// GetShop handles GET /api/shops/:id
func (cc *CatalogController) GetShop(ctx *gin.Context) {
	shop, svcErr := cc.catalogService.GetShop(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"seller":   shop.Seller,
		"profile":  shop.Profile,
		"products": shop.Products,
	})
}
