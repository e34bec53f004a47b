package sms

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers SMS messages. The server treats delivery as an opaque
// collaborator; swapping in a real provider is a matter of implementing
// this interface.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// DevSender logs messages instead of sending them. Used whenever no SMS
// provider is configured, so local development never needs credentials.
type DevSender struct {
	log *zerolog.Logger
}

// NewDevSender builds a log-only sender.
func NewDevSender(logger *zerolog.Logger) *DevSender {
	return &DevSender{log: logger}
}

// Send logs the message and reports success.
func (s *DevSender) Send(_ context.Context, to, body string) error {
	s.log.Info().Str("to", to).Str("body", body).Msg("dev sms")
	return nil
}
