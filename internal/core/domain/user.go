package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Role enumerates the authorization roles a user can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Provider enumerates the authentication providers an account can originate from.
type Provider string

const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
	ProviderGithub Provider = "GITHUB"
)

const (
	nameMinLength = 2
	nameMaxLength = 100
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User mirrors the persisted representation in the users table.
// The identifier is a randomly generated UUID assigned at creation and is
// immutable afterwards; it is never reused once a user has been deleted.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  *string
	Role          Role
	Provider      Provider
	EmailVerified bool
	Active        bool
	CreatedAt     time.Time
	LastLoginAt   *time.Time
	LoginCount    int
}

// IsLocal reports whether the account authenticates with a stored credential.
func (u User) IsLocal() bool {
	return u.Provider == ProviderLocal
}

// ValidateEmail checks the email has a plausible address shape.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email %q is not a valid address", email)
	}
	return nil
}

// ValidateName checks the display name length bounds.
func ValidateName(name string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(name))
	if length < nameMinLength || length > nameMaxLength {
		return fmt.Errorf("name must be between %d and %d characters", nameMinLength, nameMaxLength)
	}
	return nil
}

// ValidProvider reports whether the provider value belongs to the known set.
func ValidProvider(p Provider) bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderGithub:
		return true
	}
	return false
}
