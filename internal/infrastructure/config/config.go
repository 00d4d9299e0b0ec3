package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Store StoreConfig
	MySQL MySQLConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,      default=30m"`
	HashAlgorithm string        `env:"HASH_ALGORITHM, default=bcrypt"`
	BcryptCost    int           `env:"BCRYPT_COST,    default=12"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mysql"`
}

type MySQLConfig struct {
	DSN string `env:"MYSQL_DSN, default=root:password@tcp(127.0.0.1:3306)/marketplace_agro?parseTime=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace_agro"`
}

// RedisConfig enables the registration guard when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Development reports whether ENV selects local development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMySQL, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q must be one of mysql, mongo, memory", c.Store.Driver)
	}
	switch c.Auth.HashAlgorithm {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("HASH_ALGORITHM %q must be bcrypt or argon2id", c.Auth.HashAlgorithm)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
