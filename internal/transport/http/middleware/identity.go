package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

// Gateway identity headers. The upstream gateway authenticates the caller and
// asserts these on every proxied request; this service trusts them as-is.
const (
	UserIDHeader    = "X-User-Id"
	UserEmailHeader = "X-User-Email"
	UserRolesHeader = "X-User-Roles"

	principalKey = "principal"
)

// Identity builds the request principal from the gateway headers. A request
// without identity headers proceeds as anonymous; route handlers decide what
// anonymous callers may do.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := domain.Principal{
			UserID: strings.TrimSpace(c.GetHeader(UserIDHeader)),
			Email:  strings.TrimSpace(c.GetHeader(UserEmailHeader)),
		}

		if raw := c.GetHeader(UserRolesHeader); raw != "" {
			for _, role := range strings.Split(raw, ",") {
				role = strings.TrimSpace(role)
				if role != "" {
					principal.Roles = append(principal.Roles, role)
				}
			}
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// GetPrincipal retrieves the request principal set by Identity. Requests that
// bypassed the middleware read as anonymous.
func GetPrincipal(c *gin.Context) domain.Principal {
	if value, exists := c.Get(principalKey); exists {
		if p, ok := value.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
