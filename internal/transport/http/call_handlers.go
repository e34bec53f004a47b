package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/events"
	"github.com/Steve1314/ChatBackend/internal/store"
)

// defaultCallHistoryLimit bounds call history queries when the client
// does not say how many it wants.
const defaultCallHistoryLimit = 50

// CallHandlers provides HTTP handlers for the call lifecycle. Signaling
// itself (SDP, ICE) travels over the event channel; these endpoints own
// the persisted call record and its status transitions.
type CallHandlers struct {
	store     store.Store
	gateway   *core.Gateway
	publisher *events.Publisher
	log       *zerolog.Logger
}

// NewCallHandlers creates a new call handlers instance.
func NewCallHandlers(st store.Store, gateway *core.Gateway, publisher *events.Publisher, logger *zerolog.Logger) *CallHandlers {
	return &CallHandlers{store: st, gateway: gateway, publisher: publisher, log: logger}
}

// InitiateCallRequest starts a call in a chat.
type InitiateCallRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	Type   string `json:"type"`
}

// RejectCallRequest optionally carries a rejection reason.
type RejectCallRequest struct {
	Reason string `json:"reason"`
}

// Initiate creates a ringing call record and announces it to the chat
// room. The callee's device-level ring travels over the event channel.
// POST /calls
func (h *CallHandlers) Initiate(c *gin.Context) {
	var req InitiateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "chatId is required"})
		return
	}

	callType := store.CallType(req.Type)
	if callType == "" {
		callType = store.CallTypeAudio
	}
	if callType != store.CallTypeAudio && callType != store.CallTypeVideo {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "type must be audio or video"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	chat, err := h.store.GetChatByID(ctx, req.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "chat not found"})
			return
		}
		h.log.Error().Err(err).Str("chat_id", req.ChatID).Msg("failed to load chat")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	receivers := make([]string, 0, len(chat.MemberIDs))
	isMember := false
	for _, id := range chat.MemberIDs {
		if id == userID {
			isMember = true
			continue
		}
		receivers = append(receivers, id)
	}
	if !isMember {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a chat member"})
		return
	}

	call, err := h.store.CreateCall(ctx, &store.Call{
		ChatID:      chat.ID,
		CallerID:    userID,
		ReceiverIDs: receivers,
		Type:        callType,
		Status:      store.CallStatusRinging,
	})
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to create call")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.gateway.BroadcastToRoom(chat.ID, core.EventIncomingCall, gin.H{
		"callId":   call.ID,
		"chatId":   chat.ID,
		"callerId": userID,
		"callType": string(callType),
	})

	h.log.Info().Str("call_id", call.ID).Str("chat_id", chat.ID).Msg("call initiated")
	h.respondCall(c, http.StatusCreated, call)
}

// Accept moves a ringing call to ongoing and stamps its start.
// POST /calls/:id/accept
func (h *CallHandlers) Accept(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	call, ok := h.loadCall(c)
	if !ok {
		return
	}
	if call.Status != store.CallStatusRinging {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "call is not ringing"})
		return
	}

	now := time.Now()
	call.Status = store.CallStatusOngoing
	call.StartedAt = &now
	call.Participants = append(call.Participants,
		store.CallParticipant{UserID: call.CallerID, JoinedAt: &now},
		store.CallParticipant{UserID: userID, JoinedAt: &now},
	)

	if err := h.store.UpdateCall(ctx, call); err != nil {
		h.log.Error().Err(err).Str("call_id", call.ID).Msg("failed to accept call")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.gateway.BroadcastToRoom(call.ChatID, core.EventCallAccepted, gin.H{
		"callId":     call.ID,
		"acceptedBy": userID,
		"status":     string(call.Status),
	})
	h.respondCall(c, http.StatusOK, call)
}

// Reject declines a ringing call.
// POST /calls/:id/reject
func (h *CallHandlers) Reject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	var req RejectCallRequest
	// Body is optional; a missing reason falls back to the default.
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = core.DefaultRejectReason
	}

	call, ok := h.loadCall(c)
	if !ok {
		return
	}
	if call.Status != store.CallStatusRinging {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "call is not ringing"})
		return
	}

	now := time.Now()
	call.Status = store.CallStatusRejected
	call.EndedAt = &now
	call.RejectionReason = req.Reason

	if err := h.store.UpdateCall(ctx, call); err != nil {
		h.log.Error().Err(err).Str("call_id", call.ID).Msg("failed to reject call")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.gateway.BroadcastToRoom(call.ChatID, core.EventCallRejected, gin.H{
		"callId":     call.ID,
		"rejectedBy": userID,
		"reason":     req.Reason,
	})
	h.respondCall(c, http.StatusOK, call)
}

// End finishes a call. An ongoing call ends with its duration recorded;
// a ringing call that the caller hangs up on becomes missed.
// POST /calls/:id/end
func (h *CallHandlers) End(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ContextKeyUserID)

	call, ok := h.loadCall(c)
	if !ok {
		return
	}

	now := time.Now()
	switch call.Status {
	case store.CallStatusOngoing:
		call.Status = store.CallStatusEnded
		call.EndedAt = &now
		if call.StartedAt != nil {
			call.Duration = int64(now.Sub(*call.StartedAt).Seconds())
		}
		for i := range call.Participants {
			if call.Participants[i].LeftAt == nil {
				call.Participants[i].LeftAt = &now
				if j := call.Participants[i].JoinedAt; j != nil {
					call.Participants[i].Duration = int64(now.Sub(*j).Seconds())
				}
			}
		}
	case store.CallStatusRinging:
		call.Status = store.CallStatusMissed
		call.EndedAt = &now
	default:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "call already finished"})
		return
	}

	if err := h.store.UpdateCall(ctx, call); err != nil {
		h.log.Error().Err(err).Str("call_id", call.ID).Msg("failed to end call")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.gateway.BroadcastToRoom(call.ChatID, core.EventCallEnded, gin.H{
		"callId":   call.ID,
		"endedBy":  userID,
		"status":   string(call.Status),
		"duration": call.Duration,
	})
	h.publisher.CallEnded(call.ID, call.ChatID, call.Duration)

	h.log.Info().Str("call_id", call.ID).Int64("duration", call.Duration).Msg("call ended")
	h.respondCall(c, http.StatusOK, call)
}

// Get returns one call record.
// GET /calls/:id
func (h *CallHandlers) Get(c *gin.Context) {
	call, ok := h.loadCall(c)
	if !ok {
		return
	}
	h.respondCall(c, http.StatusOK, call)
}

// History lists a chat's calls, newest first.
// GET /calls/chat/:chatId
func (h *CallHandlers) History(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultCallHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	calls, err := h.store.ListCallsForChat(ctx, c.Param("chatId"), limit)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", c.Param("chatId")).Msg("failed to list calls")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	var userIDs []string
	for _, call := range calls {
		userIDs = append(userIDs, call.CallerID)
		userIDs = append(userIDs, call.ReceiverIDs...)
	}
	users, err := userIndex(ctx, h.store, userIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load call participants")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	views := make([]CallView, 0, len(calls))
	for _, call := range calls {
		views = append(views, callView(call, users))
	}
	c.JSON(http.StatusOK, gin.H{"calls": views})
}

// Delete removes a call record. Only a participant may.
// DELETE /calls/:id
func (h *CallHandlers) Delete(c *gin.Context) {
	userID := c.GetString(ContextKeyUserID)

	call, ok := h.loadCall(c)
	if !ok {
		return
	}
	participant := call.CallerID == userID
	for _, id := range call.ReceiverIDs {
		if id == userID {
			participant = true
			break
		}
	}
	if !participant {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your call"})
		return
	}

	if err := h.store.DeleteCall(c.Request.Context(), call.ID); err != nil {
		h.log.Error().Err(err).Str("call_id", call.ID).Msg("failed to delete call")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *CallHandlers) loadCall(c *gin.Context) (*store.Call, bool) {
	call, err := h.store.GetCallByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "call not found"})
			return nil, false
		}
		h.log.Error().Err(err).Str("call_id", c.Param("id")).Msg("failed to load call")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, false
	}
	return call, true
}

func (h *CallHandlers) respondCall(c *gin.Context, status int, call *store.Call) {
	ids := append([]string{call.CallerID}, call.ReceiverIDs...)
	users, err := userIndex(c.Request.Context(), h.store, ids)
	if err != nil {
		h.log.Error().Err(err).Str("call_id", call.ID).Msg("failed to load call participants")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, callView(call, users))
}
