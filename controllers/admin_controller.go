package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/services"
)

// AdminController serves the admin console.
type AdminController struct {
	adminService services.AdminService
}

func NewAdminController(svc services.AdminService) *AdminController {
	return &AdminController{adminService: svc}
}

// Dashboard handles GET /api/admin/dashboard
func (ac *AdminController) Dashboard(ctx *gin.Context) {
	stats, svcErr := ac.adminService.Dashboard(ctx.Request.Context())
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// PendingSellers handles GET /api/admin/sellers/pending
func (ac *AdminController) PendingSellers(ctx *gin.Context) {
	sellers, svcErr := ac.adminService.PendingSellers(ctx.Request.Context(), queryInt(ctx, "limit", 0))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "sellers": sellers})
}

// ApproveSeller handles POST /api/admin/sellers/:profileId/approve
func (ac *AdminController) ApproveSeller(ctx *gin.Context) {
	profile, svcErr := ac.adminService.ApproveSeller(ctx.Request.Context(), ctx.Param("profileId"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

// Customers handles GET /api/admin/customers
func (ac *AdminController) Customers(ctx *gin.Context) {
	customers, svcErr := ac.adminService.Customers(ctx.Request.Context())
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "customers": customers})
}

// RecentUsers handles GET /api/admin/users/recent
func (ac *AdminController) RecentUsers(ctx *gin.Context) {
	users, svcErr := ac.adminService.RecentUsers(ctx.Request.Context(), queryInt(ctx, "limit", 0))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// RecentProducts handles GET /api/admin/products/recent
func (ac *AdminController) RecentProducts(ctx *gin.Context) {
	products, svcErr := ac.adminService.RecentProducts(ctx.Request.Context(), queryInt(ctx, "limit", 0))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// RecentOrders handles GET /api/admin/orders/recent
func (ac *AdminController) RecentOrders(ctx *gin.Context) {
	orders, svcErr := ac.adminService.RecentOrders(ctx.Request.Context(), queryInt(ctx, "limit", 0))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// Analytics handles GET /api/admin/analytics
func (ac *AdminController) Analytics(ctx *gin.Context) {
	analytics, svcErr := ac.adminService.Analytics(ctx.Request.Context(), ctx.Query("timeframe"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "analytics": analytics})
}
