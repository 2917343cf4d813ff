package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/core/port"
	"github.com/arklim/social-platform-users/internal/repository"
)

var userColumns = []string{
	"id",
	"email",
	"name",
	"password_hash",
	"role",
	"provider",
	"email_verified",
	"active",
	"created_at",
	"last_login_at",
	"login_count",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithExecutor returns a repository instance bound to the supplied executor.
// Used by tests and callers operating inside a transaction.
func (r *UserRepository) WithExecutor(exec pgExecutor) *UserRepository {
	if exec == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    exec,
		builder: r.builder,
	}
}

// Create inserts a new user row. A duplicate email surfaces as
// repository.ErrConflict via the unique constraint.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var hashValue any
	if user.PasswordHash != nil && *user.PasswordHash != "" {
		hashValue = *user.PasswordHash
	}

	query := r.builder.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Email,
			user.Name,
			hashValue,
			user.Role,
			user.Provider,
			user.EmailVerified,
			user.Active,
			user.CreatedAt,
			user.LastLoginAt,
			user.LoginCount,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanOne(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	return r.scanOne(r.exec.QueryRow(ctx, stmt, args...))
}

// ExistsByEmail reports whether a live user already holds the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("users").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists by email sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan exists by email: %w", err)
	}

	return true, nil
}

// Update persists the full mutable state of an existing user row.
// created_at and id are immutable and never written after insert.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	var hashValue any
	if user.PasswordHash != nil && *user.PasswordHash != "" {
		hashValue = *user.PasswordHash
	}

	stmt, args, err := r.builder.Update("users").
		Set("email", user.Email).
		Set("name", user.Name).
		Set("password_hash", hashValue).
		Set("role", user.Role).
		Set("provider", user.Provider).
		Set("email_verified", user.EmailVerified).
		Set("active", user.Active).
		Set("last_login_at", user.LastLoginAt).
		Set("login_count", user.LoginCount).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the user row. Hard delete; no tombstone is retained.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns one page of users in stable creation order.
func (r *UserRepository) List(ctx context.Context, page port.UserPage) ([]domain.User, error) {
	size := page.Size
	if size <= 0 {
		size = 10
	}
	offset := 0
	if page.Page > 0 {
		offset = page.Page * size
	}

	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(size)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan users count: %w", err)
	}

	return int(count), nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user        domain.User
		hash        sql.NullString
		lastLoginAt *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&hash,
		&user.Role,
		&user.Provider,
		&user.EmailVerified,
		&user.Active,
		&user.CreatedAt,
		&lastLoginAt,
		&user.LoginCount,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if hash.Valid {
		val := hash.String
		user.PasswordHash = &val
	}
	user.LastLoginAt = lastLoginAt

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
