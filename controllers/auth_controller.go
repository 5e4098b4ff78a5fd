package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/middleware"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/services"
)

// CookieConfig controls the auth-token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge int // seconds
}

// AuthController handles signup, login and the current session.
type AuthController struct {
	authService services.AuthService
	cookie      CookieConfig
}

func NewAuthController(svc services.AuthService, cookie CookieConfig) *AuthController {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 24 * 60 * 60
	}
	return &AuthController{authService: svc, cookie: cookie}
}

func (ac *AuthController) setAuthCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AuthCookieName, token, maxAge, "/", "", ac.cookie.Secure, true)
}

// Signup handles POST /api/auth/signup
func (ac *AuthController) Signup(ctx *gin.Context) {
	var req models.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Name, email, password and role are required")
		return
	}

	result, svcErr := ac.authService.Signup(ctx.Request.Context(), &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	if result.Token == "" {
		ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": result.Message})
		return
	}
	ac.setAuthCookie(ctx, result.Token, ac.cookie.MaxAge)
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": result.Message,
		"user":    result.User,
		"token":   result.Token,
	})
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, svcErr := ac.authService.Login(ctx.Request.Context(), &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ac.setAuthCookie(ctx, result.Token, ac.cookie.MaxAge)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": result.User, "token": result.Token})
}

// Logout handles POST /api/auth/logout. The cookie is cleared even when the
// token could not be revoked.
func (ac *AuthController) Logout(ctx *gin.Context) {
	svcErr := ac.authService.Logout(ctx.Request.Context(), middleware.TokenFromRequest(ctx))
	ac.setAuthCookie(ctx, "", -1)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// Session handles GET /api/session. It always answers 200.
func (ac *AuthController) Session(ctx *gin.Context) {
	claims, ok := middleware.GetClaims(ctx)
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"user": nil, "token": nil})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    claims.ID,
			"name":  claims.Name,
			"email": claims.Email,
			"role":  claims.Role,
		},
		"token": middleware.TokenFromRequest(ctx),
	})
}

// Profile handles GET /api/account/profile
func (ac *AuthController) Profile(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	user, svcErr := ac.authService.GetProfile(ctx.Request.Context(), userID)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile handles PUT /api/account/profile
func (ac *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Name and a valid email are required")
		return
	}
	user, svcErr := ac.authService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ChangePassword handles PUT /api/account/password
func (ac *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Current and new password are required")
		return
	}
	if svcErr := ac.authService.ChangePassword(ctx.Request.Context(), userID, &req); svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}
