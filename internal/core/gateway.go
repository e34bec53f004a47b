package core

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Gateway is the single dispatch point between inbound transport events
// and the coordinator state: connection registry, presence tracker, room
// membership and the signaling relay. It is also the only place allowed
// to emit outbound events, whether to a single connection, a room, or
// every attached connection.
//
// One mutex is held for the whole of each inbound event, so every event
// is processed to completion (including the broadcasts it triggers)
// before the next one mutates shared state.
type Gateway struct {
	mu       sync.Mutex
	clients  map[*Client]struct{}
	registry *Registry
	presence *Presence
	rooms    *Rooms
	relay    *Relay
	log      *zerolog.Logger
	now      func() time.Time
}

// NewGateway constructs a gateway with empty coordinator state.
func NewGateway(logger *zerolog.Logger) *Gateway {
	registry := NewRegistry()
	return &Gateway{
		clients:  make(map[*Client]struct{}),
		registry: registry,
		presence: NewPresence(),
		rooms:    NewRooms(),
		relay:    NewRelay(registry, logger),
		log:      logger,
		now:      time.Now,
	}
}

// Attach starts tracking a freshly accepted connection. Nothing else
// happens until the client identifies itself.
func (g *Gateway) Attach(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c] = struct{}{}
	g.log.Debug().Str("client_id", c.ID).Msg("client connected")
}

// Disconnect tears down a closing connection. If the connection had
// identified and is still the registered one for its identity, the
// identity goes offline and the change is broadcast; a superseded
// connection's disconnect touches neither registry nor presence.
func (g *Gateway) Disconnect(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.clients, c)
	g.rooms.LeaveAll(c)

	identity := c.identity
	if identity == "" {
		g.log.Debug().Str("client_id", c.ID).Msg("client disconnected before identifying")
		return
	}
	if !g.registry.Unregister(identity, c) {
		// A newer connection owns this identity now.
		g.log.Debug().Str("client_id", c.ID).Str("identity", identity).Msg("stale disconnect ignored")
		return
	}

	g.presence.MarkOffline(identity, g.now())
	g.broadcastStatus(identity, false)
	g.broadcastPresence()
	g.log.Debug().Str("client_id", c.ID).Str("identity", identity).Msg("client disconnected")
}

// Identify binds identity to the connection, marks it online, announces
// the status change to everyone and drains any ICE candidates queued
// while the identity was offline. Ignored when identity is empty.
func (g *Gateway) Identify(c *Client, identity string) {
	if identity == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	c.identity = identity
	g.registry.Register(identity, c)
	g.presence.MarkOnline(identity)

	g.broadcastStatus(identity, true)
	g.broadcastPresence()
	g.relay.DrainPending(identity, c)
	g.log.Debug().Str("client_id", c.ID).Str("identity", identity).Msg("client identified")
}

// JoinChat subscribes the connection to a chat room. Ignored when roomID
// is empty. Any connection may join any room it knows; chat membership
// is enforced by the REST layer, not here.
func (g *Gateway) JoinChat(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms.Join(c, roomID)
}

// LeaveChat unsubscribes the connection from a chat room.
func (g *Gateway) LeaveChat(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms.Leave(c, roomID)
}

// Typing relays a typing indicator to the room, excluding the sender.
func (g *Gateway) Typing(c *Client, roomID, identity string) {
	g.relayTyping(EventTyping, c, roomID, identity)
}

// StopTyping relays the end of a typing indicator, excluding the sender.
func (g *Gateway) StopTyping(c *Client, roomID, identity string) {
	g.relayTyping(EventStopTyping, c, roomID, identity)
}

func (g *Gateway) relayTyping(name string, c *Client, roomID, identity string) {
	if roomID == "" || identity == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms.Broadcast(roomID, Event{Name: name, Data: TypingData{RoomID: roomID, Identity: identity}}, c)
}

// MessageRead broadcasts a read receipt to the room, excluding the
// sender and attaching a server-generated timestamp.
func (g *Gateway) MessageRead(c *Client, roomID, messageID, identity string) {
	if roomID == "" || messageID == "" || identity == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms.Broadcast(roomID, Event{Name: EventMessageReadReceipt, Data: ReadReceiptData{
		RoomID:    roomID,
		MessageID: messageID,
		Identity:  identity,
		Timestamp: g.now().UnixMilli(),
	}}, c)
}

// MessagesDelivered broadcasts a delivery receipt to the room, excluding
// the sender and attaching a server-generated timestamp.
func (g *Gateway) MessagesDelivered(c *Client, roomID string, messageIDs []string) {
	if roomID == "" || len(messageIDs) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms.Broadcast(roomID, Event{Name: EventDeliveryReceipt, Data: DeliveryReceiptData{
		RoomID:     roomID,
		MessageIDs: messageIDs,
		Timestamp:  g.now().UnixMilli(),
	}}, c)
}

// InitiateCall relays a ringing call to the callee connection.
func (g *Gateway) InitiateCall(toIdentity, fromIdentity, roomID, callType string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.InitiateCall(toIdentity, fromIdentity, roomID, callType, g.now())
}

// CallOffer relays an SDP offer verbatim.
func (g *Gateway) CallOffer(toIdentity, fromIdentity string, payload json.RawMessage, callID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.ForwardOffer(toIdentity, fromIdentity, payload, callID)
}

// CallAnswer relays an SDP answer verbatim.
func (g *Gateway) CallAnswer(toIdentity, fromIdentity string, payload json.RawMessage, callID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.ForwardAnswer(toIdentity, fromIdentity, payload, callID)
}

// IceCandidate relays or queues an ICE candidate.
func (g *Gateway) IceCandidate(toIdentity, fromIdentity string, candidate json.RawMessage, callID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.RelayICECandidate(toIdentity, fromIdentity, candidate, callID)
}

// MuteState relays the peer's mute toggle.
func (g *Gateway) MuteState(toIdentity string, isMuted bool, callID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.MuteState(toIdentity, isMuted, callID)
}

// EndCall relays a call hang-up.
func (g *Gateway) EndCall(toIdentity, callID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.EndCall(toIdentity, callID)
}

// RejectCall relays a call rejection.
func (g *Gateway) RejectCall(toIdentity, callID, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relay.RejectCall(toIdentity, callID, reason)
}

// BroadcastToRoom emits a named event to every member of the room. This
// is the REST layer's path for newMessage, messageDeleted and the call
// lifecycle events.
func (g *Gateway) BroadcastToRoom(roomID, name string, data any) {
	if roomID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms.Broadcast(roomID, Event{Name: name, Data: data}, nil)
}

// OnlineIdentities returns the current online set.
func (g *Gateway) OnlineIdentities() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.presence.Snapshot()
}

// broadcastStatus emits userStatus to every attached connection,
// identified or not. Presence is global, not room-scoped.
func (g *Gateway) broadcastStatus(identity string, online bool) {
	var lastSeen *int64
	if t := g.presence.LastSeen(identity); t != nil {
		ms := t.UnixMilli()
		lastSeen = &ms
	}
	g.broadcastAll(Event{Name: EventUserStatus, Data: UserStatusData{
		Identity: identity,
		Online:   online,
		LastSeen: lastSeen,
	}})
}

func (g *Gateway) broadcastPresence() {
	g.broadcastAll(Event{Name: EventPresence, Data: PresenceData{Online: g.presence.Snapshot()}})
}

func (g *Gateway) broadcastAll(ev Event) {
	for c := range g.clients {
		c.send(ev)
	}
}
