package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
	"github.com/yashrajoria/shoptube-backend/models"
)

// StripeGateway implements PaymentGateway with Stripe Checkout Sessions.
type StripeGateway struct {
	sessions   session.Client
	webhookKey string
}

// NewStripeGateway creates a StripeGateway. A nil backend selects the live
// Stripe API.
func NewStripeGateway(secretKey, webhookKey string, backend stripe.Backend) *StripeGateway {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		sessions:   session.Client{B: backend, Key: secretKey},
		webhookKey: webhookKey,
	}
}

func (s *StripeGateway) Name() string { return models.GatewayStripe }

// Initialize creates a one-line Checkout Session for the order total.
func (s *StripeGateway) Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.TxRef),
		SuccessURL:        stripe.String(req.ReturnURL),
		CancelURL:         stripe.String(firstNonEmpty(req.CancelURL, req.ReturnURL)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(models.ToMinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("ShopTube order"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("user_id", req.CustomerID)

	sess, err := s.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 {
			return nil, &RejectedError{Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("stripe Initialize: %w", err)
	}

	return &Checkout{CheckoutURL: sess.URL, ProviderRef: sess.ID}, nil
}

// Verify fetches the Checkout Session recorded at initialization. It is paid
// only when the session is complete and its payment status is paid.
func (s *StripeGateway) Verify(ctx context.Context, txRef, providerRef string) (*Verification, error) {
	if providerRef == "" {
		return nil, fmt.Errorf("stripe Verify: no session recorded for %s", txRef)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.sessions.Get(providerRef, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return &Verification{Status: "not_found", ProviderRef: providerRef}, nil
		}
		return nil, fmt.Errorf("stripe Verify: %w", err)
	}

	raw, _ := json.Marshal(map[string]interface{}{
		"id":             sess.ID,
		"status":         sess.Status,
		"payment_status": sess.PaymentStatus,
		"amount_total":   sess.AmountTotal,
		"currency":       sess.Currency,
	})

	return &Verification{
		Success: sess.Status == stripe.CheckoutSessionStatusComplete &&
			sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid &&
			sess.ClientReferenceID == txRef,
		Status:      string(sess.PaymentStatus),
		Amount:      models.FromMinorUnits(sess.AmountTotal),
		HasAmount:   true,
		Currency:    strings.ToUpper(string(sess.Currency)),
		ProviderRef: sess.ID,
		Raw:         string(raw),
	}, nil
}

// WebhookEvent is the part of a Stripe event the verifier needs.
type WebhookEvent struct {
	Type  string
	TxRef string
}

// ParseWebhook checks the signature and extracts the tx_ref of checkout
// session events. Other event types return an empty TxRef.
func (s *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &WebhookEvent{Type: string(event.Type)}
	switch out.Type {
	case "checkout.session.completed", "checkout.session.expired",
		"checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.TxRef = sess.ClientReferenceID
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
