package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
)

func stripeTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return NewStripeGateway("sk_test_123", "whsec_test", backend)
}

func TestStripeInitialize_CreatesSession(t *testing.T) {
	gw := stripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tx-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "10000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "etb", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "order-1", r.PostForm.Get("metadata[order_id]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	checkout, err := gw.Initialize(context.Background(), InitializeRequest{
		TxRef: "tx-1", OrderID: "order-1", CustomerID: "user-1", Amount: 100, Currency: "ETB",
		ReturnURL: "http://localhost:3000/customer/order-confirmation?tx_ref=tx-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", checkout.ProviderRef)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", checkout.CheckoutURL)
}

func TestStripeVerify_PaidSession(t *testing.T) {
	gw := stripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"complete","payment_status":"paid","amount_total":10000,"currency":"etb","client_reference_id":"tx-1"}`))
	})

	v, err := gw.Verify(context.Background(), "tx-1", "cs_test_1")
	require.NoError(t, err)
	assert.True(t, v.Success)
	assert.Equal(t, 100.0, v.Amount)
	assert.Equal(t, "ETB", v.Currency)
}

func TestStripeVerify_UnpaidSession(t *testing.T) {
	gw := stripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"expired","payment_status":"unpaid","amount_total":10000,"currency":"etb","client_reference_id":"tx-1"}`))
	})

	v, err := gw.Verify(context.Background(), "tx-1", "cs_test_1")
	require.NoError(t, err)
	assert.False(t, v.Success)
}

func TestStripeVerify_RequiresSession(t *testing.T) {
	gw := NewStripeGateway("sk", "wh", nil)
	_, err := gw.Verify(context.Background(), "tx-1", "")
	assert.Error(t, err)
}

func signStripePayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeParseWebhook_CheckoutCompleted(t *testing.T) {
	gw := NewStripeGateway("sk", "whsec_test", nil)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":"tx-9"}}}`)

	event, err := gw.ParseWebhook(payload, signStripePayload(payload, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "tx-9", event.TxRef)
}

func TestStripeParseWebhook_BadSignature(t *testing.T) {
	gw := NewStripeGateway("sk", "whsec_test", nil)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	_, err := gw.ParseWebhook(payload, signStripePayload(payload, "other", time.Now()))
	assert.Error(t, err)
}
