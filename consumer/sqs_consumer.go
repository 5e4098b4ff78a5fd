package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/services"
	"go.uber.org/zap"
)

// Poller is implemented by pkg/aws.SQSConsumer.
type Poller interface {
	StartPolling(ctx context.Context, handler pkgaws.MessageHandler) error
}

// EventProcessor is implemented by services.NotificationService.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event models.Event) error
}

// Verifier is implemented by services.CheckoutService.
type Verifier interface {
	Verify(ctx context.Context, txRef string) (*models.VerifyResult, *services.ServiceError)
}

// snsEnvelope unwraps the SNS → SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// EventConsumer feeds domain events from the events queue into notifications.
type EventConsumer struct {
	poller    Poller
	processor EventProcessor
	logger    *zap.Logger
}

func NewEventConsumer(poller Poller, processor EventProcessor, logger *zap.Logger) *EventConsumer {
	return &EventConsumer{poller: poller, processor: processor, logger: logger}
}

// Start blocks until ctx is cancelled.
func (c *EventConsumer) Start(ctx context.Context) {
	c.logger.Info("Event consumer started")
	if err := c.poller.StartPolling(ctx, c.HandleMessage); err != nil && ctx.Err() == nil {
		c.logger.Error("Event consumer stopped", zap.Error(err))
	}
}

// HandleMessage accepts both SNS-wrapped and raw event bodies. Returning nil
// deletes the message, so unparseable bodies are dropped instead of looping.
func (c *EventConsumer) HandleMessage(ctx context.Context, body string) error {
	if body == "" {
		c.logger.Error("Received empty SQS message body")
		return nil
	}

	payload := body
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		c.logger.Error("Failed to unmarshal SQS message", zap.Error(err))
		return nil
	}
	if envelope.Message != "" {
		payload = envelope.Message
	}

	var event models.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil || event.EventType == "" {
		c.logger.Error("Failed to unmarshal event payload", zap.Error(err))
		return nil
	}

	if err := c.processor.ProcessEvent(ctx, event); err != nil {
		c.logger.Error("Failed to process event",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// CallbackConsumer runs the payment verifier for queued gateway callbacks.
type CallbackConsumer struct {
	poller   Poller
	verifier Verifier
	logger   *zap.Logger
}

func NewCallbackConsumer(poller Poller, verifier Verifier, logger *zap.Logger) *CallbackConsumer {
	return &CallbackConsumer{poller: poller, verifier: verifier, logger: logger}
}

// Start blocks until ctx is cancelled.
func (c *CallbackConsumer) Start(ctx context.Context) {
	c.logger.Info("Callback consumer started")
	if err := c.poller.StartPolling(ctx, c.HandleMessage); err != nil && ctx.Err() == nil {
		c.logger.Error("Callback consumer stopped", zap.Error(err))
	}
}

// HandleMessage leaves the message queued when the verification may succeed
// on a later attempt: gateway or storage errors and a concurrent verify.
func (c *CallbackConsumer) HandleMessage(ctx context.Context, body string) error {
	var msg models.CallbackMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil || msg.TxRef == "" {
		c.logger.Error("Dropping malformed callback message", zap.Error(err))
		return nil
	}

	result, svcErr := c.verifier.Verify(ctx, msg.TxRef)
	if svcErr != nil {
		if svcErr.StatusCode >= http.StatusInternalServerError || svcErr.StatusCode == http.StatusConflict {
			return fmt.Errorf("verify %s: %s", msg.TxRef, svcErr.Message)
		}
		c.logger.Warn("Dropping callback",
			zap.String("tx_ref", msg.TxRef),
			zap.Int("status", svcErr.StatusCode),
			zap.String("error", svcErr.Message),
		)
		return nil
	}

	c.logger.Info("Callback verified",
		zap.String("tx_ref", msg.TxRef),
		zap.Bool("success", result.Success),
	)
	return nil
}
