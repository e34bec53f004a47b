package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/store"
)

// UserHandlers provides HTTP handlers for user profile endpoints.
type UserHandlers struct {
	store   store.Store
	gateway *core.Gateway
	log     *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, gateway *core.Gateway, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{store: st, gateway: gateway, log: logger}
}

// UpdateProfileRequest carries the optional profile fields to change.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
	Status    *string `json:"status"`
}

// GetUser returns a user's public profile.
// GET /users/:id
func (h *UserHandlers) GetUser(c *gin.Context) {
	user, err := h.store.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", c.Param("id")).Msg("failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// UpdateProfile updates the authenticated user's name, avatar or status
// line. Absent fields are left untouched.
// PUT /users/me
func (h *UserHandlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == nil && req.AvatarURL == nil && req.Status == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "nothing to update"})
		return
	}

	email := c.GetString(ContextKeyEmail)
	user, err := h.store.UpdateUserProfile(c.Request.Context(), email, req.Name, req.AvatarURL, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("email", email).Msg("failed to update profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// UpdateActivityRequest reports which chat the caller is typing in, if any.
type UpdateActivityRequest struct {
	TypingIn string `json:"typingIn"`
}

// UpdateActivity stamps the caller's lastSeen and records the chat they
// are typing in. An empty typingIn clears the hint.
// POST /users/activity
func (h *UserHandlers) UpdateActivity(c *gin.Context) {
	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	userID := c.GetString(ContextKeyUserID)
	user, err := h.store.UpdateUserActivity(c.Request.Context(), userID, req.TypingIn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to update activity")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// Online returns the identities currently connected over the event
// channel.
// GET /users/online
func (h *UserHandlers) Online(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.gateway.OnlineIdentities()})
}
