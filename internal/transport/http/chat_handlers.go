package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/events"
	"github.com/Steve1314/ChatBackend/internal/store"
)

// ChatHandlers provides HTTP handlers for chat and message endpoints.
type ChatHandlers struct {
	store     store.Store
	gateway   *core.Gateway
	publisher *events.Publisher
	log       *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(st store.Store, gateway *core.Gateway, publisher *events.Publisher, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{store: st, gateway: gateway, publisher: publisher, log: logger}
}

// CreateChatRequest creates a private or group chat.
type CreateChatRequest struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds" binding:"required"`
}

// SendMessageRequest carries a new message's content.
type SendMessageRequest struct {
	Text     string   `json:"text"`
	MediaIDs []string `json:"mediaIds"`
}

// CreateChat creates a chat. Private chats are deduplicated: if one
// already exists between the two members it is returned instead.
// POST /chats
func (h *ChatHandlers) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "memberIds is required"})
		return
	}

	userID := c.GetString(ContextKeyUserID)
	ctx := c.Request.Context()

	chatType := store.ChatType(req.Type)
	if chatType == "" {
		chatType = store.ChatTypePrivate
	}
	if chatType != store.ChatTypePrivate && chatType != store.ChatTypeGroup {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "type must be private or group"})
		return
	}

	// The caller is always a member.
	members := make([]string, 0, len(req.MemberIDs)+1)
	seen := map[string]struct{}{userID: {}}
	members = append(members, userID)
	for _, id := range req.MemberIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	if chatType == store.ChatTypePrivate {
		if len(members) != 2 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "private chat requires exactly one other member"})
			return
		}
		existing, err := h.store.GetPrivateChat(ctx, members[0], members[1])
		if err == nil {
			h.respondChat(c, http.StatusOK, existing)
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Error().Err(err).Msg("failed to look up private chat")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	} else if len(members) < 2 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "group chat requires at least one other member"})
		return
	}

	chat, err := h.store.CreateChat(ctx, &store.Chat{
		Type:      chatType,
		Name:      req.Name,
		MemberIDs: members,
		AdminID:   userID,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create chat")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("chat_id", chat.ID).Str("type", string(chatType)).Msg("chat created")
	h.respondChat(c, http.StatusCreated, chat)
}

// ListChats lists the caller's chats, most recently active first.
// GET /chats
func (h *ChatHandlers) ListChats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	chats, err := h.store.ListChatsForUser(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to list chats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	var memberIDs []string
	for _, chat := range chats {
		memberIDs = append(memberIDs, chat.MemberIDs...)
	}
	users, err := userIndex(ctx, h.store, memberIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load chat members")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	views := make([]ChatView, 0, len(chats))
	for _, chat := range chats {
		views = append(views, chatView(chat, users))
	}
	c.JSON(http.StatusOK, gin.H{"chats": views})
}

// GetChat returns one chat the caller belongs to.
// GET /chats/:id
func (h *ChatHandlers) GetChat(c *gin.Context) {
	chat, ok := h.memberChat(c)
	if !ok {
		return
	}
	h.respondChat(c, http.StatusOK, chat)
}

// ListMessages returns a chat's messages in chronological order, with
// senders and media populated.
// GET /chats/:id/messages
func (h *ChatHandlers) ListMessages(c *gin.Context) {
	chat, ok := h.memberChat(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	messages, err := h.store.ListMessagesForChat(ctx, chat.ID)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	var senderIDs, mediaIDs []string
	for _, m := range messages {
		senderIDs = append(senderIDs, m.SenderID)
		mediaIDs = append(mediaIDs, m.MediaIDs...)
	}
	users, err := userIndex(ctx, h.store, senderIDs)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to populate messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	media, err := mediaIndex(ctx, h.store, mediaIDs)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to populate messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView(m, users, media))
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

// SendMessage persists a message, bumps the chat's activity and pushes a
// newMessage event to the chat room.
// POST /chats/:id/messages
func (h *ChatHandlers) SendMessage(c *gin.Context) {
	chat, ok := h.memberChat(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" && len(req.MediaIDs) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message needs text or media"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	msg, err := h.store.CreateMessage(ctx, &store.Message{
		ChatID:   chat.ID,
		SenderID: userID,
		Text:     req.Text,
		MediaIDs: req.MediaIDs,
		Status:   store.MessageStatusSent,
	})
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to create message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := h.store.TouchChat(ctx, chat.ID, msg.ID, msg.CreatedAt); err != nil {
		h.log.Warn().Err(err).Str("chat_id", chat.ID).Msg("failed to touch chat")
	}

	users, err := userIndex(ctx, h.store, []string{userID})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load sender")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	media, err := mediaIndex(ctx, h.store, msg.MediaIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load message media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	view := messageView(msg, users, media)
	h.gateway.BroadcastToRoom(chat.ID, core.EventNewMessage, view)
	h.publisher.MessageCreated(chat.ID, msg.ID, userID)

	c.JSON(http.StatusCreated, view)
}

// DeleteMessage soft-deletes the caller's own message and pushes a
// messageDeleted event to the chat room.
// DELETE /messages/:id
func (h *ChatHandlers) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	msg, err := h.store.GetMessageByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to load message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your message"})
		return
	}

	if err := h.store.MarkMessageDeleted(ctx, msg.ID, time.Now()); err != nil {
		h.log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to delete message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.gateway.BroadcastToRoom(msg.ChatID, core.EventMessageDeleted, gin.H{
		"messageId": msg.ID,
		"chatId":    msg.ChatID,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// memberChat loads the chat in the :id param and checks the caller is a
// member, writing the error response itself when not.
func (h *ChatHandlers) memberChat(c *gin.Context) (*store.Chat, bool) {
	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	chat, err := h.store.GetChatByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "chat not found"})
			return nil, false
		}
		h.log.Error().Err(err).Str("chat_id", c.Param("id")).Msg("failed to load chat")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, false
	}

	for _, id := range chat.MemberIDs {
		if id == userID {
			return chat, true
		}
	}
	c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a chat member"})
	return nil, false
}

func (h *ChatHandlers) respondChat(c *gin.Context, status int, chat *store.Chat) {
	users, err := userIndex(c.Request.Context(), h.store, chat.MemberIDs)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to load chat members")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, chatView(chat, users))
}
