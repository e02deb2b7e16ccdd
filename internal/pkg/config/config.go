package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
	Bootstrap BootstrapConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	Issuer     string        `env:"JWT_ISSUER,   default=CarSalesAPI"`
	Audience   string        `env:"JWT_AUDIENCE, default=CarSalesAPI"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,    default=24h"`
	BcryptCost int           `env:"BCRYPT_COST,  default=10"`
}

// StoreConfig selects the persistence adapter: sqlite, mysql, postgres or mongo.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite"`
	DSN    string `env:"SQL_DSN,      default=carsales.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=carsales"`
}

// RedisConfig is optional; an empty Addr disables the shared rate limiter.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type HTTPConfig struct {
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE, default=20"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS,       default=http://localhost:4200"`
}

type BootstrapConfig struct {
	AdminEmail         string `env:"ADMIN_EMAIL,          default=admin@carsales.com"`
	AdminPassword      string `env:"ADMIN_PASSWORD"`
	SeedSampleListings bool   `env:"SEED_SAMPLE_LISTINGS, default=true"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "mysql", "postgres", "mongo":
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of sqlite, mysql, postgres, mongo", c.Store.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// IsDevelopment reports whether human-readable logs should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// UsesMongo reports whether the document store adapter is selected.
func (c *Config) UsesMongo() bool {
	return strings.EqualFold(c.Store.Driver, "mongo")
}
