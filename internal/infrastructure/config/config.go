package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/bookly/booking-platform/internal/infrastructure/token"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Activity ActivityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// AuthConfig holds the signing secrets and token lifetimes. Both secrets are
// base64 encoded and must be distinct.
type AuthConfig struct {
	AccessSecret    string        `env:"ACCESS_TOKEN_SECRET,  required"`
	RefreshSecret   string        `env:"REFRESH_TOKEN_SECRET, required"`
	AccessTTL       time.Duration `env:"ACCESS_TOKEN_TTL,     default=24h"`
	RefreshTTL      time.Duration `env:"REFRESH_TOKEN_TTL,    default=336h"`
	CookieName      string        `env:"ACCESS_COOKIE_NAME,   default=accessToken"`
	CookieSecure    bool          `env:"COOKIE_SECURE,        default=false"`
	RefreshTracking bool          `env:"REFRESH_TRACKING,     default=true"`
}

type ActivityConfig struct {
	Workers       int   `env:"ACTIVITY_WORKERS, default=4"`
	SnowflakeNode int64 `env:"SNOWFLAKE_NODE,   default=1"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=booking_platform"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth.AccessTTL <= 0 || cfg.Auth.RefreshTTL <= 0 {
		return nil, fmt.Errorf("load config: token ttls must be positive")
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Keys decodes both signing secrets. Any error here must stop startup.
func (a AuthConfig) Keys() (token.AccessKey, token.RefreshKey, error) {
	access, err := token.ParseAccessKey(a.AccessSecret)
	if err != nil {
		return token.AccessKey{}, token.RefreshKey{}, err
	}
	refresh, err := token.ParseRefreshKey(a.RefreshSecret)
	if err != nil {
		return token.AccessKey{}, token.RefreshKey{}, err
	}
	return access, refresh, nil
}
