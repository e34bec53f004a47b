package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/sms"
)

var (
	// ErrOTPMismatch is returned when the submitted code is wrong or expired.
	ErrOTPMismatch = errors.New("invalid or expired code")
)

// CodeStore persists one-time codes with a TTL.
type CodeStore interface {
	SaveCode(ctx context.Context, key, code string, ttl time.Duration) error
	// GetCode returns the stored code, or "" when absent or expired.
	GetCode(ctx context.Context, key string) (string, error)
	DeleteCode(ctx context.Context, key string) error
}

// RedisCodeStore keeps codes in Redis, letting expiry do the cleanup.
type RedisCodeStore struct {
	client *redis.Client
}

// NewRedisCodeStore builds a code store on the given client.
func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) SaveCode(ctx context.Context, key, code string, ttl time.Duration) error {
	return s.client.Set(ctx, "otp:"+key, code, ttl).Err()
}

func (s *RedisCodeStore) GetCode(ctx context.Context, key string) (string, error) {
	code, err := s.client.Get(ctx, "otp:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (s *RedisCodeStore) DeleteCode(ctx context.Context, key string) error {
	return s.client.Del(ctx, "otp:"+key).Err()
}

// OTPService issues and verifies one-time codes delivered over SMS.
type OTPService struct {
	codes  CodeStore
	sender sms.Sender
	ttl    time.Duration
	log    *zerolog.Logger
}

// NewOTPService builds an OTP service; codes expire after ttl.
func NewOTPService(codes CodeStore, sender sms.Sender, ttl time.Duration, logger *zerolog.Logger) *OTPService {
	return &OTPService{codes: codes, sender: sender, ttl: ttl, log: logger}
}

// Request generates a fresh code for the destination and sends it.
// A new request overwrites any outstanding code for the same destination.
func (s *OTPService) Request(ctx context.Context, to string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.codes.SaveCode(ctx, to, code, s.ttl); err != nil {
		return fmt.Errorf("save code: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.sender.Send(ctx, to, body); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	s.log.Debug().Str("to", to).Msg("otp issued")
	return nil
}

// Verify checks the submitted code and consumes it on success.
func (s *OTPService) Verify(ctx context.Context, to, code string) error {
	stored, err := s.codes.GetCode(ctx, to)
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if stored == "" || stored != code {
		return ErrOTPMismatch
	}
	if err := s.codes.DeleteCode(ctx, to); err != nil {
		s.log.Warn().Err(err).Str("to", to).Msg("failed to delete consumed otp")
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
