package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/core/port"
	"github.com/arklim/social-platform-users/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

var _ port.EventPublisher = (*StubPublisher)(nil)

func (p *StubPublisher) logEvent(event domain.UserEvent, fields ...zap.Field) {
	env := event.Envelope()
	base := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", env.EventID),
		zap.String("user_id", env.UserID),
		zap.String("email", logger.MaskEmail(env.Email)),
		zap.Time("occurred_at", env.OccurredAt),
	}
	p.logger.Info("Stub event published", append(base, fields...)...)
}

// PublishUserCreated logs USER_CREATED events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	p.logEvent(event, zap.String("name", event.Name))
	return nil
}

// PublishUserUpdated logs USER_UPDATED events.
func (p *StubPublisher) PublishUserUpdated(_ context.Context, event domain.UserUpdatedEvent) error {
	p.logEvent(event, zap.String("name", event.Name))
	return nil
}

// PublishUserSuspended logs USER_SUSPENDED events.
func (p *StubPublisher) PublishUserSuspended(_ context.Context, event domain.UserSuspendedEvent) error {
	p.logEvent(event)
	return nil
}

// PublishUserDeleted logs USER_DELETED events.
func (p *StubPublisher) PublishUserDeleted(_ context.Context, event domain.UserDeletedEvent) error {
	p.logEvent(event)
	return nil
}

// PublishUserProfile logs USER_PROFILE events.
func (p *StubPublisher) PublishUserProfile(_ context.Context, event domain.UserProfileEvent) error {
	p.logEvent(event, zap.String("name", event.Name), zap.String("action", event.Action))
	return nil
}
