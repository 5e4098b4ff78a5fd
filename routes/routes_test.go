package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/shoptube-backend/common/auth"
	"github.com/yashrajoria/shoptube-backend/controllers"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/routes"
	"github.com/yashrajoria/shoptube-backend/services"
	"go.uber.org/zap"
)

type fixedAuth map[string]auth.Identity

func (a fixedAuth) Authenticate(ctx context.Context, token string) (*auth.Claims, *services.ServiceError) {
	id, ok := a[token]
	if !ok {
		return nil, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "Authentication required"}
	}
	return &auth.Claims{Identity: id}, nil
}

// Handlers behind the gates are never reached in these tests, so the
// controllers can be built without services.
func setupEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrls := routes.Controllers{
		Auth:          controllers.NewAuthController(nil, controllers.CookieConfig{}),
		Catalog:       controllers.NewCatalogController(nil),
		Cart:          controllers.NewCartController(nil, nil),
		Subscriptions: controllers.NewSubscriptionController(nil),
		Checkout:      controllers.NewCheckoutController(nil, nil, nil, zap.NewNop()),
		Orders:        controllers.NewOrderController(nil, nil),
		Seller:        controllers.NewSellerController(nil),
		Admin:         controllers.NewAdminController(nil),
		Notifications: controllers.NewNotificationController(nil),
	}
	authn := fixedAuth{
		"customer": {ID: "c1", Role: models.RoleCustomer},
		"seller":   {ID: "s1", Role: models.RoleSeller},
	}
	routes.RegisterRoutes(r, ctrls, authn, nil)
	return r
}

func request(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := request(setupEngine(), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "shoptube-backend", body["service"])
}

func TestRoleGates(t *testing.T) {
	r := setupEngine()

	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/api/seller/dashboard", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/seller/dashboard", "customer", http.StatusForbidden},
		{http.MethodGet, "/api/admin/dashboard", "seller", http.StatusForbidden},
		{http.MethodPost, "/api/chapa", "seller", http.StatusForbidden},
		{http.MethodPost, "/api/checkout", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/cart", "seller", http.StatusForbidden},
		{http.MethodGet, "/api/notifications", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/account/profile", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path+" as "+tc.token, func(t *testing.T) {
			w := request(r, tc.method, tc.path, tc.token)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestSessionIsPublic(t *testing.T) {
	w := request(setupEngine(), http.MethodGet, "/api/session", "")

	assert.Equal(t, http.StatusOK, w.Code)
}
