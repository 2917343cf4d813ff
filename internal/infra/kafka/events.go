package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/core/port"
	"github.com/arklim/social-platform-users/internal/infra/config"
)

// EventPublisher implements port.EventPublisher using Kafka. All events share
// one topic and are keyed by user id, so events for the same account land on
// the same partition in publication order.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

var _ port.EventPublisher = (*EventPublisher)(nil)

func (p *EventPublisher) publish(ctx context.Context, event domain.UserEvent) error {
	metadata := map[string]string{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	bytes, err := EncodeEvent(event, metadata)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.EventType(), err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.Topic(),
		Key:   sarama.StringEncoder(event.Envelope().UserID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserCreated publishes USER_CREATED events.
func (p *EventPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	return p.publish(ctx, event)
}

// PublishUserUpdated publishes USER_UPDATED events.
func (p *EventPublisher) PublishUserUpdated(ctx context.Context, event domain.UserUpdatedEvent) error {
	return p.publish(ctx, event)
}

// PublishUserSuspended publishes USER_SUSPENDED events.
func (p *EventPublisher) PublishUserSuspended(ctx context.Context, event domain.UserSuspendedEvent) error {
	return p.publish(ctx, event)
}

// PublishUserDeleted publishes USER_DELETED events.
func (p *EventPublisher) PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error {
	return p.publish(ctx, event)
}

// PublishUserProfile publishes USER_PROFILE events.
func (p *EventPublisher) PublishUserProfile(ctx context.Context, event domain.UserProfileEvent) error {
	return p.publish(ctx, event)
}
