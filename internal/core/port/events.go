package port

import (
	"context"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
//
// Publication is best-effort and asynchronous relative to the caller: an
// implementation hands the event to the transport and returns without waiting
// for acknowledgment. Transport failures are logged by the implementation and
// never surface to the triggering mutation.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
	PublishUserUpdated(ctx context.Context, event domain.UserUpdatedEvent) error
	PublishUserSuspended(ctx context.Context, event domain.UserSuspendedEvent) error
	PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error
	PublishUserProfile(ctx context.Context, event domain.UserProfileEvent) error
}
