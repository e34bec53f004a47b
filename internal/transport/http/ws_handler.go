package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/proto"
	"github.com/Steve1314/ChatBackend/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	gateway *core.Gateway
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(gateway *core.Gateway, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{gateway: gateway, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(utils.NewID())
	h.gateway.Attach(client)
	defer h.gateway.Disconnect(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}
		h.dispatch(client, inbound)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, proto.Outbound{Event: event.Name, Data: event.Data}); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// dispatch routes one inbound event to the gateway. Malformed payloads
// and unknown types are dropped without closing the connection.
func (h *WSHandler) dispatch(client *core.Client, inbound proto.Inbound) {
	switch inbound.Type {
	case proto.InboundTypeIdentify:
		var d proto.IdentifyData
		if h.decode(client, inbound, &d) {
			h.gateway.Identify(client, d.Identity)
		}
	case proto.InboundTypeJoinChat:
		var d proto.RoomData
		if h.decode(client, inbound, &d) {
			h.gateway.JoinChat(client, d.RoomID)
		}
	case proto.InboundTypeLeaveChat:
		var d proto.RoomData
		if h.decode(client, inbound, &d) {
			h.gateway.LeaveChat(client, d.RoomID)
		}
	case proto.InboundTypeTyping:
		var d proto.TypingData
		if h.decode(client, inbound, &d) {
			h.gateway.Typing(client, d.RoomID, d.Identity)
		}
	case proto.InboundTypeStopTyping:
		var d proto.TypingData
		if h.decode(client, inbound, &d) {
			h.gateway.StopTyping(client, d.RoomID, d.Identity)
		}
	case proto.InboundTypeMessageRead:
		var d proto.MessageReadData
		if h.decode(client, inbound, &d) {
			h.gateway.MessageRead(client, d.RoomID, d.MessageID, d.Identity)
		}
	case proto.InboundTypeMessagesDelivered:
		var d proto.MessagesDeliveredData
		if h.decode(client, inbound, &d) {
			h.gateway.MessagesDelivered(client, d.RoomID, d.MessageIDs)
		}
	case proto.InboundTypeInitiateCall:
		var d proto.InitiateCallData
		if h.decode(client, inbound, &d) {
			h.gateway.InitiateCall(d.ToIdentity, d.FromIdentity, d.RoomID, d.CallType)
		}
	case proto.InboundTypeCallOffer:
		var d proto.SignalData
		if h.decode(client, inbound, &d) {
			h.gateway.CallOffer(d.ToIdentity, d.FromIdentity, d.Payload, d.CallID)
		}
	case proto.InboundTypeCallAnswer:
		var d proto.SignalData
		if h.decode(client, inbound, &d) {
			h.gateway.CallAnswer(d.ToIdentity, d.FromIdentity, d.Payload, d.CallID)
		}
	case proto.InboundTypeIceCandidate:
		var d proto.IceCandidateData
		if h.decode(client, inbound, &d) {
			h.gateway.IceCandidate(d.ToIdentity, d.FromIdentity, d.Candidate, d.CallID)
		}
	case proto.InboundTypeMuteState:
		var d proto.MuteStateData
		if h.decode(client, inbound, &d) {
			h.gateway.MuteState(d.ToIdentity, d.IsMuted, d.CallID)
		}
	case proto.InboundTypeEndCall:
		var d proto.EndCallData
		if h.decode(client, inbound, &d) {
			h.gateway.EndCall(d.ToIdentity, d.CallID)
		}
	case proto.InboundTypeRejectCall:
		var d proto.EndCallData
		if h.decode(client, inbound, &d) {
			h.gateway.RejectCall(d.ToIdentity, d.CallID, d.Reason)
		}
	default:
		h.log.Debug().Str("client_id", client.ID).Str("type", inbound.Type).Msg("unknown inbound type dropped")
	}
}

func (h *WSHandler) decode(client *core.Client, inbound proto.Inbound, v any) bool {
	if len(inbound.Data) == 0 {
		h.log.Debug().Str("client_id", client.ID).Str("type", inbound.Type).Msg("inbound without data dropped")
		return false
	}
	if err := json.Unmarshal(inbound.Data, v); err != nil {
		h.log.Debug().Err(err).Str("client_id", client.ID).Str("type", inbound.Type).Msg("malformed inbound dropped")
		return false
	}
	return true
}
