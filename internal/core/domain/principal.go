package domain

import "strings"

const rolePrefix = "ROLE_"

// Principal is the caller identity asserted by the upstream gateway for a
// single request. It is never persisted. An empty Email means the caller is
// anonymous and satisfies no role and no self-match.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// Anonymous reports whether no caller identity was asserted.
func (p Principal) Anonymous() bool {
	return p.Email == ""
}

// HasRole performs a case-sensitive match against the caller's role set.
// Role names are normalized so "ADMIN" and "ROLE_ADMIN" compare equal.
func (p Principal) HasRole(role string) bool {
	if p.Anonymous() {
		return false
	}
	want := NormalizeRole(role)
	for _, held := range p.Roles {
		if NormalizeRole(held) == want {
			return true
		}
	}
	return false
}

// NormalizeRole strips the structural ROLE_ prefix when present.
func NormalizeRole(role string) string {
	return strings.TrimPrefix(strings.TrimSpace(role), rolePrefix)
}
