package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/middleware"
	"github.com/yashrajoria/shoptube-backend/services"
)

// OrderController serves order lookups and the customer dashboard.
type OrderController struct {
	orderService    services.OrderService
	customerService services.CustomerService
}

func NewOrderController(orders services.OrderService, customers services.CustomerService) *OrderController {
	return &OrderController{orderService: orders, customerService: customers}
}

// GetOrder handles GET /api/orders/:id?userId=. The route uses OptionalAuth
// so that a missing id is reported before a missing session.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	requesterID, _ := middleware.GetUserID(ctx)
	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), ctx.Param("id"), ctx.Query("userId"), requesterID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// ListCustomerOrders handles GET /api/customer/orders
func (oc *OrderController) ListCustomerOrders(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	orders, svcErr := oc.orderService.ListCustomerOrders(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// CustomerDashboard handles GET /api/customer/dashboard
func (oc *OrderController) CustomerDashboard(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	stats, svcErr := oc.customerService.Dashboard(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
