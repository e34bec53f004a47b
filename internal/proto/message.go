package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types.
const (
	InboundTypeIdentify          = "identify"
	InboundTypeJoinChat          = "joinChat"
	InboundTypeLeaveChat         = "leaveChat"
	InboundTypeTyping            = "typing"
	InboundTypeStopTyping        = "stopTyping"
	InboundTypeMessageRead       = "messageRead"
	InboundTypeMessagesDelivered = "messagesDelivered"
	InboundTypeInitiateCall      = "initiateCall"
	InboundTypeCallOffer         = "callOffer"
	InboundTypeCallAnswer        = "callAnswer"
	InboundTypeIceCandidate      = "iceCandidate"
	InboundTypeMuteState         = "muteState"
	InboundTypeEndCall           = "endCall"
	InboundTypeRejectCall        = "rejectCall"
)

// IdentifyData binds a user identity to the connection.
type IdentifyData struct {
	Identity string `json:"identity"`
}

// RoomData requests joining or leaving a chat room.
type RoomData struct {
	RoomID string `json:"roomId"`
}

// TypingData reports a typing state change in a room.
type TypingData struct {
	RoomID   string `json:"roomId"`
	Identity string `json:"identity"`
}

// MessageReadData reports a single message read by the sender's peer.
type MessageReadData struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Identity  string `json:"identity"`
}

// MessagesDeliveredData reports a batch of messages delivered to a device.
type MessagesDeliveredData struct {
	RoomID     string   `json:"roomId"`
	MessageIDs []string `json:"messageIds"`
}

// InitiateCallData starts ringing a peer.
type InitiateCallData struct {
	ToIdentity   string `json:"toIdentity"`
	FromIdentity string `json:"fromIdentity"`
	RoomID       string `json:"roomId"`
	CallType     string `json:"callType,omitempty"`
}

// SignalData carries an SDP offer or answer to a peer. Payload is opaque
// to the server.
type SignalData struct {
	ToIdentity   string          `json:"toIdentity"`
	FromIdentity string          `json:"fromIdentity"`
	Payload      json.RawMessage `json:"payload"`
	CallID       string          `json:"callId"`
}

// IceCandidateData carries one ICE candidate to a peer.
type IceCandidateData struct {
	ToIdentity   string          `json:"toIdentity"`
	FromIdentity string          `json:"fromIdentity"`
	Candidate    json.RawMessage `json:"candidate"`
	CallID       string          `json:"callId"`
}

// MuteStateData toggles the sender's mute state for the peer.
type MuteStateData struct {
	ToIdentity string `json:"toIdentity"`
	IsMuted    bool   `json:"isMuted"`
	CallID     string `json:"callId"`
}

// EndCallData hangs up or rejects a call.
type EndCallData struct {
	ToIdentity string `json:"toIdentity"`
	CallID     string `json:"callId"`
	Reason     string `json:"reason,omitempty"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}
