package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/services"
)

// SubscriptionController lets customers follow sellers.
type SubscriptionController struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionController(svc services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptionService: svc}
}

// List handles GET /api/customer/subscriptions
func (sc *SubscriptionController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	subs, svcErr := sc.subscriptionService.ListForCustomer(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "subscriptions": subs})
}

// Subscribe handles POST /api/subscriptions/:sellerId
func (sc *SubscriptionController) Subscribe(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	sub, svcErr := sc.subscriptionService.Subscribe(ctx.Request.Context(), userID, ctx.Param("sellerId"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "subscription": sub})
}

// Unsubscribe handles DELETE /api/subscriptions/:sellerId
func (sc *SubscriptionController) Unsubscribe(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	affected, svcErr := sc.subscriptionService.Unsubscribe(ctx.Request.Context(), userID, ctx.Param("sellerId"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "affectedRows": affected})
}

// Status handles GET /api/subscriptions/:sellerId/status
func (sc *SubscriptionController) Status(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	subscribed, svcErr := sc.subscriptionService.IsSubscribed(ctx.Request.Context(), userID, ctx.Param("sellerId"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "isSubscribed": subscribed})
}
