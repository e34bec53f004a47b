package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogPretty         bool          `mapstructure:"log_pretty" yaml:"log_pretty"`

	MongoURI      string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	UploadDir string `mapstructure:"upload_dir" yaml:"upload_dir"`

	// RedisAddr enables the auth rate limiter and OTP storage when set.
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	AuthRateLimit int           `mapstructure:"auth_rate_limit" yaml:"auth_rate_limit"`
	AuthRateWindow time.Duration `mapstructure:"auth_rate_window" yaml:"auth_rate_window"`

	// NatsURL enables the domain event publisher when set.
	NatsURL string `mapstructure:"nats_url" yaml:"nats_url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogPretty:         true,
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "chatbackend",
		JWTIssuer:         "chatbackend",
		JWTAudience:       "chatbackend-clients",
		JWTTTL:            7 * 24 * time.Hour,
		UploadDir:         "uploads",
		AuthRateLimit:     30,
		AuthRateWindow:    time.Minute,
	}
}
