package core

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRejectReason is sent when rejectCall carries no reason.
const DefaultRejectReason = "user-declined"

// pendingWarnThreshold is the per-identity queue depth past which the
// relay starts warning. The queue itself stays unbounded.
const pendingWarnThreshold = 256

type pendingCandidate struct {
	Candidate    json.RawMessage
	CallID       string
	FromIdentity string
}

// Relay routes call-lifecycle and WebRTC negotiation messages between two
// identified users. It keeps no call state: offers and answers are dropped
// when the destination is offline, while ICE candidates are queued per
// destination identity until that identity next identifies. The queue
// closes the race where candidates arrive while the callee's client is
// still reconnecting after the incomingCall push.
//
// Not safe for concurrent use; the Gateway serializes all access.
type Relay struct {
	registry *Registry
	pending  map[string][]pendingCandidate
	log      *zerolog.Logger
}

// NewRelay constructs a relay resolving destinations through registry.
func NewRelay(registry *Registry, logger *zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		pending:  make(map[string][]pendingCandidate),
		log:      logger,
	}
}

// InitiateCall pushes incomingCall to the callee. If the callee is not
// connected the call is silently dropped; only ICE candidates are queued.
func (r *Relay) InitiateCall(toIdentity, fromIdentity, roomID, callType string, now time.Time) {
	if toIdentity == "" || fromIdentity == "" {
		return
	}
	if callType == "" {
		callType = "audio"
	}
	dest := r.registry.Resolve(toIdentity)
	if dest == nil {
		r.log.Debug().Str("to", toIdentity).Msg("call initiation dropped, destination offline")
		return
	}
	dest.send(Event{Name: EventIncomingCall, Data: IncomingCallData{
		FromIdentity: fromIdentity,
		RoomID:       roomID,
		CallType:     callType,
		Timestamp:    now.UnixMilli(),
	}})
}

// ForwardOffer relays an SDP offer. No-op when toIdentity or payload is missing.
func (r *Relay) ForwardOffer(toIdentity, fromIdentity string, payload json.RawMessage, callID string) {
	r.forwardSignal(EventCallOffer, toIdentity, fromIdentity, payload, callID)
}

// ForwardAnswer relays an SDP answer. No-op when toIdentity or payload is missing.
func (r *Relay) ForwardAnswer(toIdentity, fromIdentity string, payload json.RawMessage, callID string) {
	r.forwardSignal(EventCallAnswer, toIdentity, fromIdentity, payload, callID)
}

func (r *Relay) forwardSignal(name, toIdentity, fromIdentity string, payload json.RawMessage, callID string) {
	if toIdentity == "" || len(payload) == 0 {
		return
	}
	dest := r.registry.Resolve(toIdentity)
	if dest == nil {
		return
	}
	dest.send(Event{Name: name, Data: SignalData{
		FromIdentity: fromIdentity,
		Payload:      payload,
		CallID:       callID,
	}})
}

// RelayICECandidate emits the candidate immediately when the destination
// is connected, otherwise enqueues it for delivery on the destination's
// next identify.
func (r *Relay) RelayICECandidate(toIdentity, fromIdentity string, candidate json.RawMessage, callID string) {
	if toIdentity == "" || len(candidate) == 0 {
		return
	}
	dest := r.registry.Resolve(toIdentity)
	if dest == nil {
		queue := append(r.pending[toIdentity], pendingCandidate{
			Candidate:    candidate,
			CallID:       callID,
			FromIdentity: fromIdentity,
		})
		r.pending[toIdentity] = queue
		if len(queue) > pendingWarnThreshold {
			r.log.Warn().Str("to", toIdentity).Int("queued", len(queue)).Msg("pending ice candidate queue growing")
		}
		return
	}
	dest.send(Event{Name: EventIceCandidate, Data: IceCandidateData{
		Candidate:    candidate,
		CallID:       callID,
		FromIdentity: fromIdentity,
	}})
}

// EndCall notifies the peer the call has ended. No-op when unresolvable.
func (r *Relay) EndCall(toIdentity, callID string) {
	r.closeCall(EventCallEnded, toIdentity, callID, "")
}

// RejectCall notifies the caller the call was declined. Reason defaults
// to DefaultRejectReason. No-op when unresolvable.
func (r *Relay) RejectCall(toIdentity, callID, reason string) {
	if reason == "" {
		reason = DefaultRejectReason
	}
	r.closeCall(EventCallRejected, toIdentity, callID, reason)
}

func (r *Relay) closeCall(name, toIdentity, callID, reason string) {
	if toIdentity == "" {
		return
	}
	dest := r.registry.Resolve(toIdentity)
	if dest == nil {
		return
	}
	dest.send(Event{Name: name, Data: CallClosedData{CallID: callID, Reason: reason}})
}

// MuteState relays the peer's mute toggle, best effort.
func (r *Relay) MuteState(toIdentity string, isMuted bool, callID string) {
	if toIdentity == "" {
		return
	}
	dest := r.registry.Resolve(toIdentity)
	if dest == nil {
		return
	}
	dest.send(Event{Name: EventMuteState, Data: MuteStateData{IsMuted: isMuted, CallID: callID}})
}

// DrainPending emits every candidate queued for identity in enqueue
// order, then clears the queue.
func (r *Relay) DrainPending(identity string, c *Client) {
	queue := r.pending[identity]
	if len(queue) == 0 {
		return
	}
	for _, pc := range queue {
		c.send(Event{Name: EventIceCandidate, Data: IceCandidateData{
			Candidate:    pc.Candidate,
			CallID:       pc.CallID,
			FromIdentity: pc.FromIdentity,
		}})
	}
	delete(r.pending, identity)
	r.log.Debug().Str("identity", identity).Int("drained", len(queue)).Msg("drained pending ice candidates")
}

// PendingCount returns the number of candidates queued for identity.
func (r *Relay) PendingCount(identity string) int {
	return len(r.pending[identity])
}
