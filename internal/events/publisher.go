package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects for domain events.
const (
	SubjectMessageCreated      = "chat.message.created"
	SubjectCallEnded           = "chat.call.ended"
	SubjectNotificationCreated = "chat.notification.created"
)

// MessageCreatedEvent announces a persisted message.
type MessageCreatedEvent struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
	SenderID  string `json:"sender_id"`
}

// CallEndedEvent announces a finished call with its duration in seconds.
type CallEndedEvent struct {
	CallID   string `json:"call_id"`
	ChatID   string `json:"chat_id"`
	Duration int64  `json:"duration"`
}

// NotificationCreatedEvent announces a stored notification.
type NotificationCreatedEvent struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
}

// Publisher emits domain events over NATS. All publishes are
// fire-and-forget: failures are logged and never surfaced to the
// request path. A nil Publisher is valid and does nothing, so callers
// need no feature checks when NATS is not configured.
type Publisher struct {
	nc  *nats.Conn
	log *zerolog.Logger
}

// Connect dials NATS and returns a publisher.
func Connect(url string, logger *zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{nc: nc, log: logger}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}

// MessageCreated publishes a message.created event.
func (p *Publisher) MessageCreated(chatID, messageID, senderID string) {
	p.publish(SubjectMessageCreated, MessageCreatedEvent{
		ChatID:    chatID,
		MessageID: messageID,
		SenderID:  senderID,
	})
}

// CallEnded publishes a call.ended event.
func (p *Publisher) CallEnded(callID, chatID string, duration int64) {
	p.publish(SubjectCallEnded, CallEndedEvent{
		CallID:   callID,
		ChatID:   chatID,
		Duration: duration,
	})
}

// NotificationCreated publishes a notification.created event.
func (p *Publisher) NotificationCreated(userID, notificationID string) {
	p.publish(SubjectNotificationCreated, NotificationCreatedEvent{
		UserID:         userID,
		NotificationID: notificationID,
	})
}

func (p *Publisher) publish(subject string, v any) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Error().Err(err).Str("subject", subject).Msg("marshal event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}
