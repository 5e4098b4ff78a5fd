package controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/shoptube-backend/controllers"
	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/providers"
	"github.com/yashrajoria/shoptube-backend/services"
	"go.uber.org/zap"
)

func setupCheckoutRouter(svc *MockCheckoutService, queue pkgaws.QueueSender, webhooks controllers.WebhookParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cc := controllers.NewCheckoutController(svc, queue, webhooks, zap.NewNop())
	r.POST("/api/chapa", asUser("cust-1", models.RoleCustomer), cc.Initiate)
	r.GET("/api/chapa/verify/:tx_ref", cc.Verify)
	r.GET("/api/chapa/callback/:tx_ref", cc.Callback)
	r.POST("/api/stripe/webhook", cc.StripeWebhook)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInitiate_RejectsMissingFields(t *testing.T) {
	svc := new(MockCheckoutService)
	r := setupCheckoutRouter(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chapa", bytes.NewReader([]byte(`{"userId": 42`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing or invalid request data", body["error"])
	svc.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiate_PassesServiceValidationError(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Initiate", mock.Anything, "cust-1", mock.Anything).
		Return(nil, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Missing or invalid request data"}).Once()
	r := setupCheckoutRouter(svc, nil, nil)

	w := postJSON(r, "/api/chapa", map[string]interface{}{"userId": "cust-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing or invalid request data", decode(t, w)["error"])
}

func TestInitiate_Success(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Initiate", mock.Anything, "cust-1", mock.MatchedBy(func(req *models.CheckoutRequest) bool {
		return req.UserID == "cust-1" && len(req.CartItems) == 1 && req.ShippingAddress() == "Bole, Addis Ababa"
	})).Return(&models.CheckoutResponse{
		Success:     true,
		CheckoutURL: "https://checkout.chapa.co/pay/abc",
		TxRef:       "shoptube-1-abc",
		OrderID:     "order-1",
	}, nil).Once()
	r := setupCheckoutRouter(svc, nil, nil)

	w := postJSON(r, "/api/chapa", map[string]interface{}{
		"userId":      "cust-1",
		"fullName":    "Abebe Kebede",
		"email":       "a@example.com",
		"totalAmount": 100,
		"address":     "Bole, Addis Ababa",
		"cartItems":   []map[string]interface{}{{"product_id": "p1", "quantity": 1, "price_per_unit": 100}},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://checkout.chapa.co/pay/abc", body["checkout_url"])
	assert.Equal(t, "shoptube-1-abc", body["tx_ref"])
	assert.Equal(t, "order-1", body["order_id"])
	svc.AssertExpectations(t)
}

func TestInitiate_GatewayFailure(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Initiate", mock.Anything, "cust-1", mock.Anything).
		Return(nil, &services.ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to initialize payment"}).Once()
	r := setupCheckoutRouter(svc, nil, nil)

	w := postJSON(r, "/api/chapa", map[string]interface{}{"userId": "cust-1"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to initialize payment", decode(t, w)["error"])
}

func TestVerify_Outcomes(t *testing.T) {
	cases := []struct {
		name       string
		result     *models.VerifyResult
		err        *services.ServiceError
		wantStatus int
	}{
		{
			name:       "success",
			result:     &models.VerifyResult{Success: true, Message: "Payment verified and order updated.", OrderID: "o1", TxRef: "t1"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "gateway rejected",
			result:     &models.VerifyResult{Success: false, Message: "Payment verification failed."},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "gateway unreachable",
			err:        &services.ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment gateway unreachable"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown reference",
			err:        &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Unknown transaction reference"},
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("Verify", mock.Anything, "t1").Return(tc.result, tc.err).Once()
			r := setupCheckoutRouter(svc, nil, nil)

			w := get(r, "/api/chapa/verify/t1")

			assert.Equal(t, tc.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.wantStatus == http.StatusOK, body["success"])
		})
	}
}

func TestCallback_EnqueuesWhenQueueConfigured(t *testing.T) {
	svc := new(MockCheckoutService)
	queue := &stubQueue{}
	r := setupCheckoutRouter(svc, queue, nil)

	w := get(r, "/api/chapa/callback/t1")

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, queue.bodies, 1)
	var msg models.CallbackMessage
	require.NoError(t, json.Unmarshal([]byte(queue.bodies[0]), &msg))
	assert.Equal(t, "t1", msg.TxRef)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestCallback_VerifiesInlineWithoutQueue(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Verify", mock.Anything, "t1").Return(&models.VerifyResult{Success: true, TxRef: "t1"}, nil).Once()
	r := setupCheckoutRouter(svc, nil, nil)

	w := get(r, "/api/chapa/callback/t1")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCallback_FallsBackWhenEnqueueFails(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Verify", mock.Anything, "t1").Return(&models.VerifyResult{Success: true, TxRef: "t1"}, nil).Once()
	r := setupCheckoutRouter(svc, &stubQueue{err: errors.New("sqs down")}, nil)

	w := get(r, "/api/chapa/callback/t1")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestStripeWebhook_VerifiesCheckoutSession(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Verify", mock.Anything, "t9").Return(&models.VerifyResult{Success: true}, nil).Once()
	hooks := &stubWebhooks{event: &providers.WebhookEvent{Type: "checkout.session.completed", TxRef: "t9"}}
	r := setupCheckoutRouter(svc, nil, hooks)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"t=1,v1=abc"}, hooks.sigs)
	svc.AssertExpectations(t)
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	svc := new(MockCheckoutService)
	hooks := &stubWebhooks{event: &providers.WebhookEvent{Type: "customer.created"}}
	r := setupCheckoutRouter(svc, nil, hooks)

	w := postJSON(r, "/api/stripe/webhook", map[string]string{})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestStripeWebhook_StorageErrorAsksForRetry(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("Verify", mock.Anything, "t9").
		Return(nil, &services.ServiceError{StatusCode: http.StatusInternalServerError, Message: "Internal server error."}).Once()
	hooks := &stubWebhooks{event: &providers.WebhookEvent{Type: "checkout.session.completed", TxRef: "t9"}}
	r := setupCheckoutRouter(svc, nil, hooks)

	w := postJSON(r, "/api/stripe/webhook", map[string]string{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	svc := new(MockCheckoutService)
	r := setupCheckoutRouter(svc, nil, &stubWebhooks{err: errors.New("signature mismatch")})

	w := postJSON(r, "/api/stripe/webhook", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestStripeWebhook_NotConfigured(t *testing.T) {
	r := setupCheckoutRouter(new(MockCheckoutService), nil, nil)

	w := postJSON(r, "/api/stripe/webhook", map[string]string{})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
