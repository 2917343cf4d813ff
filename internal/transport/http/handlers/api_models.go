package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterUserRequest defines the payload for local account creation.
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OAuth2RegisterRequest defines the payload for provider-backed provisioning.
type OAuth2RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Provider string `json:"provider" binding:"required"`
}

// UpdateUserRequest carries a partial profile update; absent fields are untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// AuthenticateRequest defines the payload for credential verification.
type AuthenticateRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PublicUserResponse is the projection visible to any authenticated caller.
type PublicUserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// UserProfileResponse is the projection visible to the owner.
type UserProfileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdminUserResponse is the full projection visible to administrators.
type AdminUserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	Provider      string     `json:"provider"`
	EmailVerified bool       `json:"email_verified"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	LoginCount    int        `json:"login_count"`
}

// LookupResponse is the minimal projection served to the gateway.
type LookupResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserListResponse wraps a page of public user projections.
type UserListResponse struct {
	Users []PublicUserResponse `json:"users"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// HealthResponse reports liveness state.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the outcome of each readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func newPublicUserResponse(u domain.User) PublicUserResponse {
	return PublicUserResponse{
		ID:   u.ID,
		Name: u.Name,
		Role: string(u.Role),
	}
}

func newUserProfileResponse(u domain.User) UserProfileResponse {
	return UserProfileResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func newAdminUserResponse(u domain.User) AdminUserResponse {
	return AdminUserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		Provider:      string(u.Provider),
		EmailVerified: u.EmailVerified,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
		LoginCount:    u.LoginCount,
	}
}
