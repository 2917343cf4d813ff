package port

import (
	"context"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

// UserPage describes zero-based pagination parameters for listings.
type UserPage struct {
	Page int
	Size int
}

// UserRepository exposes persistence behavior for users.
//
// The store's unique constraint on email is the source of truth for
// uniqueness; Create and Update return repository.ErrConflict when it is
// violated. Ordering of List is stable (created_at, then id).
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page UserPage) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}
