package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/events"
	"github.com/Steve1314/ChatBackend/internal/store"
)

// NotificationHandlers provides HTTP handlers for in-app notifications.
type NotificationHandlers struct {
	store     store.Store
	publisher *events.Publisher
	log       *zerolog.Logger
}

// NewNotificationHandlers creates a new notification handlers instance.
func NewNotificationHandlers(st store.Store, publisher *events.Publisher, logger *zerolog.Logger) *NotificationHandlers {
	return &NotificationHandlers{store: st, publisher: publisher, log: logger}
}

// CreateNotificationRequest stores a notification for a user.
type CreateNotificationRequest struct {
	UserID string         `json:"userId" binding:"required"`
	Type   string         `json:"type" binding:"required"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Meta   map[string]any `json:"meta"`
}

// Create stores a notification.
// POST /notifications
func (h *NotificationHandlers) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "userId and type are required"})
		return
	}

	n, err := h.store.CreateNotification(c.Request.Context(), &store.Notification{
		UserID: req.UserID,
		Type:   req.Type,
		Title:  req.Title,
		Body:   req.Body,
		Meta:   req.Meta,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to create notification")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.publisher.NotificationCreated(n.UserID, n.ID)
	c.JSON(http.StatusCreated, notificationView(n))
}

// List returns the caller's notifications, newest first.
// GET /notifications
func (h *NotificationHandlers) List(c *gin.Context) {
	userID := c.GetString(ContextKeyUserID)

	notifications, err := h.store.ListNotificationsForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to list notifications")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	views := make([]NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, notificationView(n))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": views})
}
