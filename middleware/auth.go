package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/common/auth"
	apperrors "github.com/yashrajoria/shoptube-backend/common/errors"
	"github.com/yashrajoria/shoptube-backend/services"
)

const (
	UserContextKey   = "userID"
	RoleContextKey   = "role"
	ClaimsContextKey = "claims"

	// AuthCookieName holds the session token set at login.
	AuthCookieName = "auth-token"
)

// Authenticator validates a raw token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, *services.ServiceError)
}

// TokenFromRequest returns the session cookie, falling back to a Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid, unrevoked access token.
func AuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, svcErr := authn.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if svcErr != nil {
			apperrors.Respond(c, apperrors.New(svcErr.StatusCode, svcErr.Message, nil))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c); token != "" {
			if claims, svcErr := authn.Authenticate(c.Request.Context(), token); svcErr == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleContextKey)
		if role == "" {
			apperrors.Respond(c, apperrors.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		apperrors.Respond(c, apperrors.New(http.StatusForbidden, "Access denied", nil))
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(UserContextKey, claims.ID)
	c.Set(RoleContextKey, claims.Role)
	c.Set(ClaimsContextKey, claims)
}

func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

// GetClaims returns the decoded token of the current request, if any.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	val, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*auth.Claims)
	return claims, ok && claims != nil
}
