package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/core/port"
	"github.com/arklim/social-platform-users/internal/infra/logger"
	"github.com/arklim/social-platform-users/internal/infra/security"
	"github.com/arklim/social-platform-users/internal/repository"
)

var (
	// ErrEmailTaken indicates another account already owns the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates the email or secret did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSuspended indicates the account exists but is deactivated.
	ErrSuspended = errors.New("account suspended")
	// ErrPasswordPolicyViolation indicates the password fails complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrValidation indicates a request field fails shape validation.
	ErrValidation = errors.New("validation failed")
)

// RegisterInput captures the payload for local account creation.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// OAuth2RegisterInput captures the payload for provider-backed provisioning.
type OAuth2RegisterInput struct {
	Email    string
	Name     string
	Provider domain.Provider
}

// UpdateUserInput carries a partial profile update. Nil fields are untouched.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// UserService orchestrates the account lifecycle and emits domain events.
//
// Event publication is strictly post-commit and best-effort: a mutation that
// reached the store succeeds even when its event never reaches the broker.
// Publish errors are logged and counted, not returned.
type UserService struct {
	users             port.UserRepository
	events            port.EventPublisher
	hasher            port.CredentialVerifier
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
}

// NewUserService constructs the orchestrator.
func NewUserService(
	users port.UserRepository,
	events port.EventPublisher,
	hasher port.CredentialVerifier,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *UserService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &UserService{
		users:             users,
		events:            events,
		hasher:            hasher,
		passwordValidator: validator,
		logger:            log,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a local account. The store's unique constraint is the
// source of truth on email ownership; the ExistsByEmail pre-check only gives
// a friendlier fast path.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if err := domain.ValidateEmail(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := domain.ValidateName(name); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	password := strings.TrimSpace(input.Password)
	if password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email availability: %w", err)
	}
	if taken {
		return domain.User{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          name,
		PasswordHash:  &hash,
		Role:          domain.RoleUser,
		Provider:      domain.ProviderLocal,
		EmailVerified: false,
		Active:        true,
		CreatedAt:     s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost the race against a concurrent registration.
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.publishCreated(ctx, user)

	return user, nil
}

// RegisterOAuth2 provisions an account asserted by an external identity
// provider. No secret is stored and the email arrives pre-verified.
func (s *UserService) RegisterOAuth2(ctx context.Context, input OAuth2RegisterInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if err := domain.ValidateEmail(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := domain.ValidateName(name); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !domain.ValidProvider(input.Provider) || input.Provider == domain.ProviderLocal {
		return domain.User{}, fmt.Errorf("%w: provider %q is not a valid oauth2 provider", ErrValidation, input.Provider)
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email availability: %w", err)
	}
	if taken {
		return domain.User{}, ErrEmailTaken
	}

	user := domain.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          name,
		Role:          domain.RoleUser,
		Provider:      input.Provider,
		EmailVerified: true,
		Active:        true,
		CreatedAt:     s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.publishCreated(ctx, user)

	return user, nil
}

// GetByID fetches a single account.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return *user, nil
}

// GetByEmail fetches a single account by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user by email: %w", err)
	}
	return *user, nil
}

// ExistsByEmail reports email availability without loading the row.
func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns a stable page of accounts plus the total count.
func (s *UserService) List(ctx context.Context, page port.UserPage) ([]domain.User, int, error) {
	users, err := s.users.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// Update applies a partial profile change. Untouched fields keep their stored
// values; an email change re-checks uniqueness.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := domain.ValidateName(name); err != nil {
			return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		user.Name = name
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := domain.ValidateEmail(email); err != nil {
			return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if email != user.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return domain.User{}, fmt.Errorf("check email availability: %w", err)
			}
			if taken {
				return domain.User{}, ErrEmailTaken
			}
			user.Email = email
		}
	}

	if err := s.users.Update(ctx, *user); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return domain.User{}, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	s.publish(ctx, domain.EventTypeUserUpdated, func(env domain.EventEnvelope) error {
		if err := s.events.PublishUserUpdated(ctx, domain.UserUpdatedEvent{EventEnvelope: env, Name: user.Name}); err != nil {
			return err
		}
		return s.events.PublishUserProfile(ctx, domain.UserProfileEvent{
			EventEnvelope: s.envelope(*user),
			Name:          user.Name,
			Action:        domain.ProfileActionUpdated,
		})
	}, *user)

	return *user, nil
}

// Suspend deactivates an account and announces the suspension.
func (s *UserService) Suspend(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	user.Active = false
	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("suspend user: %w", err)
	}

	s.publish(ctx, domain.EventTypeUserSuspended, func(env domain.EventEnvelope) error {
		return s.events.PublishUserSuspended(ctx, domain.UserSuspendedEvent{EventEnvelope: env})
	}, *user)

	return *user, nil
}

// Activate reinstates a suspended account. Reinstatement emits no event;
// downstream consumers only track suspensions.
func (s *UserService) Activate(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	user.Active = true
	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("activate user: %w", err)
	}

	return *user, nil
}

// Delete removes an account permanently. The deletion events are published
// BEFORE the row is removed so the envelope still carries the account's email;
// the row delete proceeds regardless of publish outcome.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	s.publish(ctx, domain.EventTypeUserDeleted, func(env domain.EventEnvelope) error {
		if err := s.events.PublishUserDeleted(ctx, domain.UserDeletedEvent{EventEnvelope: env}); err != nil {
			return err
		}
		return s.events.PublishUserProfile(ctx, domain.UserProfileEvent{
			EventEnvelope: s.envelope(*user),
			Name:          user.Name,
			Action:        domain.ProfileActionDeleted,
		})
	}, *user)

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

// Authenticate verifies a local credential. A suspended account is rejected
// before the secret is checked, so suspension is visible to the caller even
// with a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, secret string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user by email: %w", err)
	}

	if !user.Active {
		return domain.User{}, ErrSuspended
	}

	if !user.IsLocal() || user.PasswordHash == nil {
		return domain.User{}, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(secret, *user.PasswordHash)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify credential: %w", err)
	}
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLoginAt = &now
	user.LoginCount++
	if err := s.users.Update(ctx, *user); err != nil {
		return domain.User{}, fmt.Errorf("record login: %w", err)
	}

	return *user, nil
}

func (s *UserService) envelope(user domain.User) domain.EventEnvelope {
	return domain.EventEnvelope{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: s.now(),
	}
}

func (s *UserService) publishCreated(ctx context.Context, user domain.User) {
	s.publish(ctx, domain.EventTypeUserCreated, func(env domain.EventEnvelope) error {
		if err := s.events.PublishUserCreated(ctx, domain.UserCreatedEvent{EventEnvelope: env, Name: user.Name}); err != nil {
			return err
		}
		return s.events.PublishUserProfile(ctx, domain.UserProfileEvent{
			EventEnvelope: s.envelope(user),
			Name:          user.Name,
			Action:        domain.ProfileActionCreated,
		})
	}, user)
}

// publish runs fn with a fresh envelope and swallows failures; the mutation
// already committed and must not be rolled back by a broker problem.
func (s *UserService) publish(ctx context.Context, eventType string, fn func(domain.EventEnvelope) error, user domain.User) {
	if s.events == nil {
		return
	}
	if err := fn(s.envelope(user)); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("user_id", user.ID),
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}
