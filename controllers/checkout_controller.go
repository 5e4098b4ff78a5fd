package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/providers"
	"github.com/yashrajoria/shoptube-backend/services"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

// WebhookParser is implemented by providers.StripeGateway.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*providers.WebhookEvent, error)
}

// CheckoutController exposes checkout initiation, verification and the
// gateway callbacks.
type CheckoutController struct {
	checkoutService services.CheckoutService
	callbacks       pkgaws.QueueSender
	stripe          WebhookParser
	logger          *zap.Logger
}

// NewCheckoutController creates a CheckoutController. callbacks and stripe may
// be nil; callbacks then verify inline and the Stripe webhook answers 404.
func NewCheckoutController(svc services.CheckoutService, callbacks pkgaws.QueueSender, stripe WebhookParser, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{checkoutService: svc, callbacks: callbacks, stripe: stripe, logger: logger}
}

// Initiate handles POST /api/chapa and POST /api/checkout
func (cc *CheckoutController) Initiate(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failWith(ctx, http.StatusBadRequest, "Missing or invalid request data")
		return
	}

	resp, svcErr := cc.checkoutService.Initiate(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Verify handles GET /api/chapa/verify/:tx_ref
func (cc *CheckoutController) Verify(ctx *gin.Context) {
	cc.verify(ctx, ctx.Param("tx_ref"))
}

func (cc *CheckoutController) verify(ctx *gin.Context, txRef string) {
	result, svcErr := cc.checkoutService.Verify(ctx.Request.Context(), txRef)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}
	if !result.Success {
		ctx.JSON(http.StatusBadRequest, result)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Callback handles GET|POST /api/chapa/callback/:tx_ref
func (cc *CheckoutController) Callback(ctx *gin.Context) {
	txRef := strings.TrimSpace(ctx.Param("tx_ref"))
	if txRef == "" {
		txRef = firstQuery(ctx, "trx_ref", "tx_ref")
	}
	if txRef == "" {
		failWith(ctx, http.StatusBadRequest, "Transaction reference is required")
		return
	}

	if cc.callbacks != nil {
		body, _ := json.Marshal(models.CallbackMessage{TxRef: txRef})
		err := cc.callbacks.SendMessage(ctx.Request.Context(), string(body))
		if err == nil {
			ctx.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Callback accepted", "tx_ref": txRef})
			return
		}
		cc.logger.Warn("Failed to enqueue callback, verifying inline", zap.String("tx_ref", txRef), zap.Error(err))
	}
	cc.verify(ctx, txRef)
}

// StripeWebhook handles POST /api/stripe/webhook
func (cc *CheckoutController) StripeWebhook(ctx *gin.Context) {
	if cc.stripe == nil {
		failWith(ctx, http.StatusNotFound, "Stripe is not configured")
		return
	}
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		failWith(ctx, http.StatusBadRequest, "Invalid webhook")
		return
	}
	event, err := cc.stripe.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		cc.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		failWith(ctx, http.StatusBadRequest, "Invalid webhook")
		return
	}

	cc.logger.Info("Processing Stripe webhook", zap.String("event_type", event.Type))

	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired",
		"checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed":
		if event.TxRef == "" {
			cc.logger.Warn("Checkout session without client_reference_id", zap.String("event_type", event.Type))
			break
		}
		if _, svcErr := cc.checkoutService.Verify(ctx.Request.Context(), event.TxRef); svcErr != nil &&
			svcErr.StatusCode >= http.StatusInternalServerError {
			// Stripe retries non-2xx deliveries.
			fail(ctx, svcErr)
			return
		}
	default:
		cc.logger.Info("Unhandled webhook event type", zap.String("event_type", event.Type))
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "received"})
}

func firstQuery(ctx *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(ctx.Query(k)); v != "" {
			return v
		}
	}
	return ""
}
