package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/shoptube-backend/common/auth"
	"github.com/yashrajoria/shoptube-backend/controllers"
	"github.com/yashrajoria/shoptube-backend/middleware"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/services"
)

func setupAuthRouter(svc *MockAuthService, secure bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ac := controllers.NewAuthController(svc, controllers.CookieConfig{Secure: secure})
	r.POST("/api/auth/signup", ac.Signup)
	r.POST("/api/auth/login", ac.Login)
	r.POST("/api/auth/logout", ac.Logout)
	r.GET("/api/session", middleware.OptionalAuth(svc), ac.Session)
	r.PUT("/api/account/password", asUser("user-1", models.RoleCustomer), ac.ChangePassword)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func authCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	return nil
}

func TestSignup_CustomerGetsCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Signup", mock.Anything, mock.Anything).Return(&models.AuthResult{
		User:    &models.User{ID: "u1", Name: "Abebe", Email: "a@example.com", Role: models.RoleCustomer},
		Token:   "tok-1",
		Message: "Account created successfully.",
	}, nil).Once()
	r := setupAuthRouter(svc, true)

	w := postJSON(r, "/api/auth/signup", map[string]string{
		"name": "Abebe", "email": "a@example.com", "password": "secret123", "role": "customer",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tok-1", body["token"])

	cookie := authCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 86400, cookie.MaxAge)
	svc.AssertExpectations(t)
}

func TestSignup_SellerGetsNoCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Signup", mock.Anything, mock.Anything).Return(&models.AuthResult{
		User:    &models.User{ID: "s1", Role: models.RoleSeller},
		Message: "Your seller application has been submitted for review. You'll be notified once it's approved.",
	}, nil).Once()
	r := setupAuthRouter(svc, false)

	w := postJSON(r, "/api/auth/signup", map[string]string{
		"name": "Shop", "email": "s@example.com", "password": "secret123", "role": "seller", "business_name": "Shop PLC",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, authCookie(w))
	body := decode(t, w)
	assert.NotContains(t, body, "token")
	assert.Contains(t, body["message"], "submitted for review")
}

func TestSignup_InvalidRoleNeverReachesService(t *testing.T) {
	svc := new(MockAuthService)
	r := setupAuthRouter(svc, false)

	w := postJSON(r, "/api/auth/signup", map[string]string{
		"name": "X", "email": "x@example.com", "password": "secret123", "role": "admin",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}).Once()
	r := setupAuthRouter(svc, false)

	w := postJSON(r, "/api/auth/login", map[string]string{"email": "a@example.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["error"])
	assert.Nil(t, authCookie(w))
}

func TestLogin_SetsCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).Return(&models.AuthResult{
		User:  &models.User{ID: "u1", Role: models.RoleCustomer},
		Token: "tok-2",
	}, nil).Once()
	r := setupAuthRouter(svc, false)

	w := postJSON(r, "/api/auth/login", map[string]string{"email": "a@example.com", "password": "secret123"})

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := authCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-2", cookie.Value)
	assert.False(t, cookie.Secure)
}

func TestLogout_RevokesAndClearsCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, "tok-3").Return(nil).Once()
	r := setupAuthRouter(svc, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "tok-3"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := authCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
	svc.AssertExpectations(t)
}

func TestSession_AnonymousIsOK(t *testing.T) {
	svc := new(MockAuthService)
	r := setupAuthRouter(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Nil(t, body["user"])
	assert.Nil(t, body["token"])
}

func TestSession_InvalidTokenIsStillOK(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Authenticate", mock.Anything, "expired").
		Return(nil, &services.ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid or expired token"}).Once()
	r := setupAuthRouter(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "expired"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["user"])
}

func TestSession_ReturnsIdentity(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Authenticate", mock.Anything, "tok-4").Return(&auth.Claims{
		Identity: auth.Identity{ID: "u1", Name: "Abebe", Email: "a@example.com", Role: models.RoleCustomer},
	}, nil).Once()
	r := setupAuthRouter(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "tok-4"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "tok-4", body["token"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, "customer", user["role"])
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("ChangePassword", mock.Anything, "user-1", mock.Anything).
		Return(&services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Current password is incorrect"}).Once()
	r := setupAuthRouter(svc, false)

	b, _ := json.Marshal(map[string]string{"current_password": "old", "new_password": "newpass123"})
	req := httptest.NewRequest(http.MethodPut, "/api/account/password", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w)["error"])
}
