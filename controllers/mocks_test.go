package controllers_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/yashrajoria/shoptube-backend/common/auth"
	"github.com/yashrajoria/shoptube-backend/middleware"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/providers"
	"github.com/yashrajoria/shoptube-backend/services"
)

func svcErrAt(args mock.Arguments, i int) *services.ServiceError {
	if e, ok := args.Get(i).(*services.ServiceError); ok {
		return e
	}
	return nil
}

// asUser stands in for AuthMiddleware.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, id)
		c.Set(middleware.RoleContextKey, role)
		c.Set(middleware.ClaimsContextKey, &auth.Claims{Identity: auth.Identity{ID: id, Role: role}})
		c.Next()
	}
}

// --- AuthService ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResult, *services.ServiceError) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*models.AuthResult)
	return res, svcErrAt(args, 1)
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, *services.ServiceError) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*models.AuthResult)
	return res, svcErrAt(args, 1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) *services.ServiceError {
	args := m.Called(ctx, token)
	return svcErrAt(args, 0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, *services.ServiceError) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, svcErrAt(args, 1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*models.User, *services.ServiceError) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, svcErrAt(args, 1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, *services.ServiceError) {
	args := m.Called(ctx, userID, req)
	user, _ := args.Get(0).(*models.User)
	return user, svcErrAt(args, 1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) *services.ServiceError {
	args := m.Called(ctx, userID, req)
	return svcErrAt(args, 0)
}

// --- CheckoutService ---

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Initiate(ctx context.Context, customerID string, req *models.CheckoutRequest) (*models.CheckoutResponse, *services.ServiceError) {
	args := m.Called(ctx, customerID, req)
	resp, _ := args.Get(0).(*models.CheckoutResponse)
	return resp, svcErrAt(args, 1)
}

func (m *MockCheckoutService) Verify(ctx context.Context, txRef string) (*models.VerifyResult, *services.ServiceError) {
	args := m.Called(ctx, txRef)
	res, _ := args.Get(0).(*models.VerifyResult)
	return res, svcErrAt(args, 1)
}

func (m *MockCheckoutService) Reconcile(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCheckoutService) StartReconciler(ctx context.Context, interval time.Duration) {
	m.Called(ctx, interval)
}

// --- queue and webhook stubs ---

type stubQueue struct {
	bodies []string
	err    error
}

func (q *stubQueue) SendMessage(ctx context.Context, body string) error {
	if q.err != nil {
		return q.err
	}
	q.bodies = append(q.bodies, body)
	return nil
}

type stubWebhooks struct {
	event *providers.WebhookEvent
	err   error
	sigs  []string
}

func (s *stubWebhooks) ParseWebhook(payload []byte, signature string) (*providers.WebhookEvent, error) {
	s.sigs = append(s.sigs, signature)
	return s.event, s.err
}
