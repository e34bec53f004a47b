package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/auth"
	"github.com/Steve1314/ChatBackend/internal/config"
	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/events"
	"github.com/Steve1314/ChatBackend/internal/sms"
	"github.com/Steve1314/ChatBackend/internal/store"
	"github.com/Steve1314/ChatBackend/internal/store/mongodb"
	transporthttp "github.com/Steve1314/ChatBackend/internal/transport/http"
)

// otpTTL is how long a one-time code stays valid.
const otpTTL = 5 * time.Minute

// App wires together storage, coordinator and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	redisClient     *redis.Client
	publisher       *events.Publisher
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("mongodb connected")

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	// Redis is optional; without it there is no rate limiting or OTP.
	var (
		redisClient *redis.Client
		otpService  *auth.OTPService
		rateLimiter *transporthttp.RateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup")
		}
		otpService = auth.NewOTPService(auth.NewRedisCodeStore(redisClient), sms.NewDevSender(logger), otpTTL, logger)
		rateLimiter = transporthttp.NewRateLimiter(redisClient, "ratelimit:auth", cfg.AuthRateLimit, cfg.AuthRateWindow, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("redis configured")
	}

	// NATS is optional; a nil publisher is a no-op.
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL, logger)
		if err != nil {
			return nil, fmt.Errorf("init events: %w", err)
		}
		logger.Info().Str("url", cfg.NatsURL).Msg("nats connected")
	}

	gateway := core.NewGateway(logger)
	server := transporthttp.NewServer(transporthttp.ServerDeps{
		Store:       st,
		Gateway:     gateway,
		AuthService: authService,
		OTPService:  otpService,
		Publisher:   publisher,
		RateLimiter: rateLimiter,
	}, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		redisClient:     redisClient,
		publisher:       publisher,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	a.publisher.Close()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		}
	}

	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		if err := a.store.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
