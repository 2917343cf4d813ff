package usecase

import (
	"testing"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

func TestCanAccessUserMatrix(t *testing.T) {
	policy := NewAccessPolicy()

	owner := domain.Principal{UserID: "user-1", Email: "jane@example.com", Roles: []string{"USER"}}
	admin := domain.Principal{UserID: "admin-1", Email: "root@example.com", Roles: []string{"ROLE_ADMIN"}}
	stranger := domain.Principal{UserID: "user-2", Email: "john@example.com", Roles: []string{"USER"}}
	anonymous := domain.Principal{}

	cases := []struct {
		name      string
		principal domain.Principal
		want      bool
	}{
		{"owner", owner, true},
		{"admin", admin, true},
		{"stranger", stranger, false},
		{"anonymous", anonymous, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.CanAccessUser(tc.principal, "user-1"); got != tc.want {
				t.Fatalf("CanAccessUser(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestCanAccessUserByEmailMatrix(t *testing.T) {
	policy := NewAccessPolicy()

	owner := domain.Principal{UserID: "user-1", Email: "jane@example.com", Roles: []string{"USER"}}
	admin := domain.Principal{UserID: "admin-1", Email: "root@example.com", Roles: []string{"ADMIN"}}
	stranger := domain.Principal{UserID: "user-2", Email: "john@example.com", Roles: []string{"USER"}}
	anonymous := domain.Principal{}

	cases := []struct {
		name      string
		principal domain.Principal
		want      bool
	}{
		{"owner", owner, true},
		{"admin", admin, true},
		{"stranger", stranger, false},
		{"anonymous", anonymous, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.CanAccessUserByEmail(tc.principal, "jane@example.com"); got != tc.want {
				t.Fatalf("CanAccessUserByEmail(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestCanAccessUserByEmailCaseInsensitive(t *testing.T) {
	policy := NewAccessPolicy()
	owner := domain.Principal{UserID: "user-1", Email: "Jane@Example.com", Roles: []string{"USER"}}

	if !policy.CanAccessUserByEmail(owner, "jane@example.com") {
		t.Fatal("email ownership should compare case-insensitively")
	}
}

func TestHasRoleNormalizesPrefix(t *testing.T) {
	policy := NewAccessPolicy()
	p := domain.Principal{UserID: "u", Email: "u@example.com", Roles: []string{"ROLE_ADMIN"}}

	if !policy.HasRole(p, "ADMIN") {
		t.Fatal("ROLE_ADMIN should satisfy ADMIN")
	}
	if !policy.HasRole(p, "ROLE_ADMIN") {
		t.Fatal("ROLE_ADMIN should satisfy ROLE_ADMIN")
	}
	if policy.HasRole(p, "admin") {
		t.Fatal("role comparison is case-sensitive")
	}
	if policy.HasRole(domain.Principal{}, "ADMIN") {
		t.Fatal("anonymous principal satisfies no role")
	}
}
