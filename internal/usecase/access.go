package usecase

import (
	"strings"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

// AccessPolicy decides whether a request principal may act on a target
// account. Access is granted to the account owner or to an administrator;
// an anonymous principal is granted nothing.
type AccessPolicy struct{}

// NewAccessPolicy constructs the policy.
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// CanAccessUser reports whether the principal owns the target account or
// holds the ADMIN role.
func (AccessPolicy) CanAccessUser(p domain.Principal, targetID string) bool {
	if p.Anonymous() {
		return false
	}
	if p.UserID != "" && p.UserID == targetID {
		return true
	}
	return p.HasRole(string(domain.RoleAdmin))
}

// CanAccessUserByEmail is the email-addressed variant of CanAccessUser.
// Emails compare case-insensitively.
func (AccessPolicy) CanAccessUserByEmail(p domain.Principal, targetEmail string) bool {
	if p.Anonymous() {
		return false
	}
	if strings.EqualFold(p.Email, strings.TrimSpace(targetEmail)) {
		return true
	}
	return p.HasRole(string(domain.RoleAdmin))
}

// HasRole reports whether the principal holds the role, ROLE_ prefix aside.
func (AccessPolicy) HasRole(p domain.Principal, role string) bool {
	return p.HasRole(role)
}
