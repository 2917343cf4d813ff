package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/core/port"
	"github.com/arklim/social-platform-users/internal/infra/config"
	"github.com/arklim/social-platform-users/internal/repository"
	"github.com/arklim/social-platform-users/internal/usecase"
)

type emptyUserRepo struct{}

func (emptyUserRepo) Create(context.Context, domain.User) error { return nil }
func (emptyUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (emptyUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (emptyUserRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }
func (emptyUserRepo) Update(context.Context, domain.User) error {
	return repository.ErrNotFound
}
func (emptyUserRepo) Delete(context.Context, string) error { return repository.ErrNotFound }
func (emptyUserRepo) List(context.Context, port.UserPage) ([]domain.User, error) {
	return nil, nil
}
func (emptyUserRepo) Count(context.Context) (int, error) { return 0, nil }

type noopPublisher struct{}

func (noopPublisher) PublishUserCreated(context.Context, domain.UserCreatedEvent) error { return nil }
func (noopPublisher) PublishUserUpdated(context.Context, domain.UserUpdatedEvent) error { return nil }
func (noopPublisher) PublishUserSuspended(context.Context, domain.UserSuspendedEvent) error {
	return nil
}
func (noopPublisher) PublishUserDeleted(context.Context, domain.UserDeletedEvent) error { return nil }
func (noopPublisher) PublishUserProfile(context.Context, domain.UserProfileEvent) error { return nil }

type noopHasher struct{}

func (noopHasher) Hash(secret string) (string, error)  { return secret, nil }
func (noopHasher) Verify(string, string) (bool, error) { return false, nil }

func newEngine(t *testing.T) http.Handler {
	t.Helper()

	log := zaptest.NewLogger(t)
	svc := usecase.NewUserService(emptyUserRepo{}, noopPublisher{}, noopHasher{}, nil, log)

	return Register(Dependencies{
		Config: &config.AppConfig{
			App:  config.AppSettings{Name: "user-service", Env: "test"},
			HTTP: config.HTTPSettings{CORSAllowedOrigins: []string{"*"}},
		},
		Logger: log,
		Users:  svc,
		Policy: usecase.NewAccessPolicy(),
	})
}

func TestHealthzRoute(t *testing.T) {
	engine := newEngine(t)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestReadyzRouteWithoutCheckers(t *testing.T) {
	engine := newEngine(t)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	engine := newEngine(t)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestUnknownUserRoute(t *testing.T) {
	engine := newEngine(t)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/users/lookup/ghost@example.com", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
