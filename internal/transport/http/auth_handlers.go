package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/auth"
)

// AuthHandlers provides HTTP handlers for authentication endpoints.
type AuthHandlers struct {
	authService *auth.Service
	otpService  *auth.OTPService
	log         *zerolog.Logger
}

// NewAuthHandlers creates a new auth handlers instance. otpService may be
// nil when no Redis backend is configured.
func NewAuthHandlers(authService *auth.Service, otpService *auth.OTPService, logger *zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		otpService:  otpService,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// OTPRequest asks for a one-time code to be sent.
type OTPRequest struct {
	To string `json:"to" binding:"required"`
}

// OTPVerifyRequest submits a one-time code for verification.
type OTPVerifyRequest struct {
	To   string `json:"to" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// Register handles user registration.
// POST /auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name, email, password required"})
		return
	}

	token, user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
		case errors.Is(err, auth.ErrMissingField):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("failed to register user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.log.Info().Str("email", user.Email).Msg("user registered")
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: userSummary(user)})
}

// Login handles user login.
// POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password required"})
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("failed to login user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: userSummary(user)})
}

// Me returns the authenticated user's account.
// GET /auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	userID := c.GetString(ContextKeyUserID)

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load account")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userView(user))
}

// RequestOTP sends a one-time code over SMS.
// POST /auth/otp/request
func (h *AuthHandlers) RequestOTP(c *gin.Context) {
	if h.otpService == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "otp not configured"})
		return
	}

	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to is required"})
		return
	}

	if err := h.otpService.Request(c.Request.Context(), req.To); err != nil {
		h.log.Error().Err(err).Msg("failed to issue otp")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// VerifyOTP checks a submitted one-time code.
// POST /auth/otp/verify
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	if h.otpService == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "otp not configured"})
		return
	}

	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to and code are required"})
		return
	}

	if err := h.otpService.Verify(c.Request.Context(), req.To, req.Code); err != nil {
		if errors.Is(err, auth.ErrOTPMismatch) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired code"})
			return
		}
		h.log.Error().Err(err).Msg("failed to verify otp")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}
