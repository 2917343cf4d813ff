package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/core/port"
	"github.com/arklim/social-platform-users/internal/transport/http/middleware"
	"github.com/arklim/social-platform-users/internal/usecase"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserHandler exposes the account lifecycle endpoints.
type UserHandler struct {
	users  *usecase.UserService
	policy *usecase.AccessPolicy
}

// NewUserHandler builds a user handler.
func NewUserHandler(users *usecase.UserService, policy *usecase.AccessPolicy) *UserHandler {
	if policy == nil {
		policy = usecase.NewAccessPolicy()
	}
	return &UserHandler{users: users, policy: policy}
}

// RegisterRoutes binds the user endpoints. Authenticate may carry extra
// middleware (rate limiting).
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, authenticateMiddleware ...gin.HandlerFunc) {
	r.POST("", h.Register)
	r.POST("/oauth2", h.RegisterOAuth2)
	r.GET("", h.List)
	r.GET("/me", h.Me)
	r.GET("/:id", h.GetByID)
	r.GET("/email/:email", h.GetByEmail)
	r.GET("/lookup/:email", h.Lookup)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
	r.POST("/:id/suspend", h.Suspend)
	r.POST("/:id/activate", h.Activate)

	authenticate := append([]gin.HandlerFunc{}, authenticateMiddleware...)
	authenticate = append(authenticate, h.Authenticate)
	r.POST("/authenticate", authenticate...)
}

// Register creates a local account.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserProfileResponse(user))
}

// RegisterOAuth2 provisions a provider-backed account.
func (h *UserHandler) RegisterOAuth2(c *gin.Context) {
	var req OAuth2RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid provisioning payload"))
		return
	}

	user, err := h.users.RegisterOAuth2(c.Request.Context(), usecase.OAuth2RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Provider: domain.Provider(req.Provider),
	})
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserProfileResponse(user))
}

// List returns a page of users. Administrators only.
func (h *UserHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if !h.policy.HasRole(principal, string(domain.RoleAdmin)) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "access denied"))
		return
	}

	page, size := paginationParams(c)
	users, total, err := h.users.List(c.Request.Context(), port.UserPage{Page: page, Size: size})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	response := UserListResponse{
		Users: make([]PublicUserResponse, 0, len(users)),
		Total: total,
		Page:  page,
		Size:  size,
	}
	for _, u := range users {
		response.Users = append(response.Users, newPublicUserResponse(u))
	}

	c.JSON(http.StatusOK, response)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal.Anonymous() {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), principal.Email)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load profile"))
		return
	}

	c.JSON(http.StatusOK, newUserProfileResponse(user))
}

// GetByID returns a single user. Owners see their profile; administrators see
// the full projection.
func (h *UserHandler) GetByID(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	targetID := c.Param("id")

	if !h.policy.CanAccessUser(principal, targetID) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "access denied"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load user"))
		return
	}

	if h.policy.HasRole(principal, string(domain.RoleAdmin)) {
		c.JSON(http.StatusOK, newAdminUserResponse(user))
		return
	}
	c.JSON(http.StatusOK, newUserProfileResponse(user))
}

// GetByEmail returns a single user addressed by email.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	targetEmail := c.Param("email")

	if !h.policy.CanAccessUserByEmail(principal, targetEmail) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "access denied"))
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), targetEmail)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load user"))
		return
	}

	if h.policy.HasRole(principal, string(domain.RoleAdmin)) {
		c.JSON(http.StatusOK, newAdminUserResponse(user))
		return
	}
	c.JSON(http.StatusOK, newUserProfileResponse(user))
}

// Lookup resolves an email to an account id. Served to the gateway for header
// assertion; exposes nothing beyond id and email.
func (h *UserHandler) Lookup(c *gin.Context) {
	user, err := h.users.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to look up user"))
		return
	}

	c.JSON(http.StatusOK, LookupResponse{ID: user.ID, Email: user.Email})
}

// Update applies a partial profile change.
func (h *UserHandler) Update(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	targetID := c.Param("id")

	if !h.policy.CanAccessUser(principal, targetID) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "access denied"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update payload"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), targetID, usecase.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserProfileResponse(user))
}

// Delete removes an account permanently.
func (h *UserHandler) Delete(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	targetID := c.Param("id")

	if !h.policy.CanAccessUser(principal, targetID) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "access denied"))
		return
	}

	if err := h.users.Delete(c.Request.Context(), targetID); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to delete user"))
		return
	}

	c.Status(http.StatusNoContent)
}

// Suspend deactivates an account. Administrators only.
func (h *UserHandler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

// Activate reinstates an account. Administrators only.
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	principal := middleware.GetPrincipal(c)
	if !h.policy.HasRole(principal, string(domain.RoleAdmin)) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "access denied"))
		return
	}

	targetID := c.Param("id")

	var (
		user domain.User
		err  error
	)
	if active {
		user, err = h.users.Activate(c.Request.Context(), targetID)
	} else {
		user, err = h.users.Suspend(c.Request.Context(), targetID)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to change user state"))
		return
	}

	c.JSON(http.StatusOK, newAdminUserResponse(user))
}

// Authenticate verifies an email/password pair.
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid authentication payload"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrSuspended, Status: http.StatusForbidden, Message: "account suspended"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, newUserProfileResponse(user))
}

func (h *UserHandler) respondMutationError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, []ErrorCase{
		{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid request"},
	}, http.StatusInternalServerError, "request failed")
}

func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return page, size
}
