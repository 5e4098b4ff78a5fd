package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
	"go.uber.org/zap"
)

// EventPublisher fans domain events out to interested consumers. Publishing
// never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event)
}

// TypedSNSPublisher is implemented by pkg/aws.SNSClient.
type TypedSNSPublisher interface {
	PublishWithType(ctx context.Context, topicArn string, message []byte, eventType string) error
}

// SNSEventPublisher publishes events to an SNS topic.
type SNSEventPublisher struct {
	client   TypedSNSPublisher
	topicArn string
	logger   *zap.Logger
}

// NewSNSEventPublisher creates a new SNSEventPublisher.
func NewSNSEventPublisher(client TypedSNSPublisher, topicArn string, logger *zap.Logger) *SNSEventPublisher {
	return &SNSEventPublisher{client: client, topicArn: topicArn, logger: logger}
}

func (p *SNSEventPublisher) Publish(ctx context.Context, event models.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := p.client.PublishWithType(ctx, p.topicArn, b, event.EventType); err != nil {
		p.logger.Error("Failed to publish SNS event", zap.String("event_type", event.EventType), zap.Error(err))
		return
	}
	p.logger.Info("Published SNS event", zap.String("event_type", event.EventType), zap.String("topic", p.topicArn))
}

// EventHandler consumes a single event; NotificationService.ProcessEvent is one.
type EventHandler func(ctx context.Context, event models.Event) error

// LocalEventPublisher hands events straight to an in-process handler when no
// topic is configured. The handler runs detached from the request; Drain
// waits for the ones still in flight.
type LocalEventPublisher struct {
	handler EventHandler
	logger  *zap.Logger

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// NewLocalEventPublisher creates a new LocalEventPublisher.
func NewLocalEventPublisher(handler EventHandler, logger *zap.Logger) *LocalEventPublisher {
	return &LocalEventPublisher{handler: handler, logger: logger}
}

func (p *LocalEventPublisher) Publish(_ context.Context, event models.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		p.handle(event)
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		p.handle(event)
	}()
}

func (p *LocalEventPublisher) handle(event models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := p.handler(ctx, event); err != nil {
		p.logger.Warn("Local event handler failed", zap.String("event_type", event.EventType), zap.Error(err))
	}
}

// Drain waits for in-flight handlers until ctx is done. Events published
// afterwards are handled synchronously.
func (p *LocalEventPublisher) Drain(ctx context.Context) error {
	p.mu.Lock()
	p.draining = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
