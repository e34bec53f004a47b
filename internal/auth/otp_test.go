package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type memCodeStore struct {
	codes map[string]string
}

func (m *memCodeStore) SaveCode(_ context.Context, key, code string, _ time.Duration) error {
	m.codes[key] = code
	return nil
}

func (m *memCodeStore) GetCode(_ context.Context, key string) (string, error) {
	return m.codes[key], nil
}

func (m *memCodeStore) DeleteCode(_ context.Context, key string) error {
	delete(m.codes, key)
	return nil
}

type captureSender struct {
	to, body string
}

func (s *captureSender) Send(_ context.Context, to, body string) error {
	s.to, s.body = to, body
	return nil
}

func TestOTPRequestAndVerify(t *testing.T) {
	ctx := context.Background()
	codes := &memCodeStore{codes: make(map[string]string)}
	sender := &captureSender{}
	svc := NewOTPService(codes, sender, 5*time.Minute, nopLogger())

	if err := svc.Request(ctx, "+15550100"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if sender.to != "+15550100" {
		t.Fatalf("sms sent to wrong destination: %q", sender.to)
	}

	code := codes.codes["+15550100"]
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	if err := svc.Verify(ctx, "+15550100", code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Codes are single use.
	if err := svc.Verify(ctx, "+15550100", code); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch on reuse, got %v", err)
	}
}

func TestOTPVerifyWrongCode(t *testing.T) {
	ctx := context.Background()
	codes := &memCodeStore{codes: make(map[string]string)}
	svc := NewOTPService(codes, &captureSender{}, 5*time.Minute, nopLogger())

	if err := svc.Request(ctx, "+15550100"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := svc.Verify(ctx, "+15550100", "000000x"); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
}
