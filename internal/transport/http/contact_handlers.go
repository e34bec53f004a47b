package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/store"
)

// ContactHandlers resolves contact lists against registered accounts.
type ContactHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewContactHandlers creates a new contact handlers instance.
func NewContactHandlers(st store.Store, logger *zerolog.Logger) *ContactHandlers {
	return &ContactHandlers{store: st, log: logger}
}

// SyncContactsRequest carries the caller's address-book emails.
type SyncContactsRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

// Sync matches the submitted emails against registered users and returns
// the ones that exist, excluding the caller's own account.
// POST /contacts/sync
func (h *ContactHandlers) Sync(c *gin.Context) {
	var req SyncContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "emails is required"})
		return
	}

	own := c.GetString(ContextKeyEmail)
	seen := make(map[string]struct{}, len(req.Emails))
	emails := make([]string, 0, len(req.Emails))
	for _, e := range req.Emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == own {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		emails = append(emails, e)
	}

	matched, err := h.store.ListUsersByEmails(c.Request.Context(), emails)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to sync contacts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	contacts := make([]UserSummary, 0, len(matched))
	for _, u := range matched {
		contacts = append(contacts, userSummary(u))
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}
