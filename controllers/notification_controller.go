package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/services"
)

type NotificationController struct {
	notificationService services.NotificationService
}

func NewNotificationController(svc services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: svc}
}

// List handles GET /api/notifications
func (nc *NotificationController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	offset := queryInt(ctx, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	items, svcErr := nc.notificationService.List(ctx.Request.Context(), userID, queryInt(ctx, "limit", 0), offset)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "notifications": items})
}

// UnreadCount handles GET /api/notifications/unread-count
func (nc *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	count, svcErr := nc.notificationService.UnreadCount(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// MarkRead handles PUT /api/notifications/:id/read
func (nc *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	if svcErr := nc.notificationService.MarkRead(ctx.Request.Context(), userID, ctx.Param("id")); svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllRead handles PUT /api/notifications/read-all
func (nc *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	updated, svcErr := nc.notificationService.MarkAllRead(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "affectedRows": updated})
}
