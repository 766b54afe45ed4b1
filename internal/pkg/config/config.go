package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend      BackendConfig
	Session      SessionConfig
	Registration RegistrationConfig
	RateLimit    RateLimitConfig
	Mongo        MongoConfig
	Redis        RedisConfig

	StatusPollInterval time.Duration `env:"STATUS_POLL_INTERVAL, default=60s"`
	AuditWorkers       int           `env:"AUDIT_WORKERS,        default=4"`
}

type BackendConfig struct {
	// The variable name is shared with the website's client bundle.
	BaseURL string `env:"NEXT_PUBLIC_BACKEND_API_URL, default=http://localhost:5000"`
	// Zero means outbound calls are bounded only by the request context.
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=0s"`
}

type SessionConfig struct {
	CookieName   string        `env:"SESSION_COOKIE,        default=sid"`
	TTL          time.Duration `env:"SESSION_TTL,           default=24h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

type RegistrationConfig struct {
	ParseTimeout time.Duration `env:"FORM_PARSE_TIMEOUT, default=10s"`
	MaxMemory    int64         `env:"FORM_MAX_MEMORY,    default=33554432"`
}

type RateLimitConfig struct {
	Enabled   bool `env:"RATE_LIMIT_ENABLED,    default=true"`
	PerMinute int  `env:"RATE_LIMIT_PER_MINUTE, default=120"`
	Burst     int  `env:"RATE_LIMIT_BURST,      default=30"`
}

type MongoConfig struct {
	// Empty disables the audit store; incomplete profiles are then only logged.
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=playindia_web"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether the process runs with developer conveniences
// such as pretty logs.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and checks the values that would
// otherwise fail much later at request time.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Backend.BaseURL == "":
		return fmt.Errorf("NEXT_PUBLIC_BACKEND_API_URL must not be empty")
	case c.Session.TTL <= 0:
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	case c.Registration.ParseTimeout <= 0:
		return fmt.Errorf("FORM_PARSE_TIMEOUT must be positive, got %s", c.Registration.ParseTimeout)
	case c.StatusPollInterval <= 0:
		return fmt.Errorf("STATUS_POLL_INTERVAL must be positive, got %s", c.StatusPollInterval)
	case c.RateLimit.Enabled && (c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0):
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}
