package core

import "encoding/json"

// Outbound event names, as seen by clients on the wire.
const (
	EventUserStatus         = "userStatus"
	EventPresence           = "presence"
	EventTyping             = "typing"
	EventStopTyping         = "stopTyping"
	EventNewMessage         = "newMessage"
	EventMessageDeleted     = "messageDeleted"
	EventMessageReadReceipt = "messageReadReceipt"
	EventDeliveryReceipt    = "deliveryReceipt"
	EventIncomingCall       = "incomingCall"
	EventCallOffer          = "callOffer"
	EventCallAnswer         = "callAnswer"
	EventIceCandidate       = "iceCandidate"
	EventMuteState          = "muteState"
	EventCallAccepted       = "callAccepted"
	EventCallEnded          = "callEnded"
	EventCallRejected       = "callRejected"
)

// Event is a named notification delivered to a client connection.
type Event struct {
	Name string
	Data any
}

// UserStatusData announces an identity going online or offline.
// LastSeen is unix milliseconds and stays null until the first disconnect.
type UserStatusData struct {
	Identity string `json:"identity"`
	Online   bool   `json:"online"`
	LastSeen *int64 `json:"lastSeen"`
}

// PresenceData carries the full set of online identities.
type PresenceData struct {
	Online []string `json:"online"`
}

// TypingData identifies who is typing in which room.
type TypingData struct {
	RoomID   string `json:"roomId"`
	Identity string `json:"identity"`
}

// ReadReceiptData reports a message read by an identity, stamped server-side.
type ReadReceiptData struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Identity  string `json:"identity"`
	Timestamp int64  `json:"timestamp"`
}

// DeliveryReceiptData reports messages delivered, stamped server-side.
type DeliveryReceiptData struct {
	RoomID     string   `json:"roomId"`
	MessageIDs []string `json:"messageIds"`
	Timestamp  int64    `json:"timestamp"`
}

// IncomingCallData notifies the callee of a ringing call.
type IncomingCallData struct {
	FromIdentity string `json:"fromIdentity"`
	RoomID       string `json:"roomId"`
	CallType     string `json:"callType"`
	Timestamp    int64  `json:"timestamp"`
}

// SignalData carries an SDP offer or answer between two peers.
// Payload is relayed verbatim, never interpreted.
type SignalData struct {
	FromIdentity string          `json:"fromIdentity"`
	Payload      json.RawMessage `json:"payload"`
	CallID       string          `json:"callId"`
}

// IceCandidateData carries a single ICE candidate between two peers.
type IceCandidateData struct {
	Candidate    json.RawMessage `json:"candidate"`
	CallID       string          `json:"callId"`
	FromIdentity string          `json:"fromIdentity"`
}

// MuteStateData reports the peer's mute toggle.
type MuteStateData struct {
	IsMuted bool   `json:"isMuted"`
	CallID  string `json:"callId"`
}

// CallClosedData terminates or rejects a call.
type CallClosedData struct {
	CallID string `json:"callId"`
	Reason string `json:"reason,omitempty"`
}
