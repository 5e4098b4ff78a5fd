package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/middleware"
	"github.com/yashrajoria/shoptube-backend/services"
)

func fail(ctx *gin.Context, svcErr *services.ServiceError) {
	ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
}

func failWith(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, gin.H{"success": false, "error": msg})
}

// currentUser answers 401 when the route was registered without AuthMiddleware.
func currentUser(ctx *gin.Context) (string, bool) {
	id, err := middleware.GetUserID(ctx)
	if err != nil {
		failWith(ctx, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return id, true
}

func queryInt(ctx *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return def
	}
	return v
}
