package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Development())
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "bcrypt", cfg.Auth.HashAlgorithm)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, DriverMySQL, cfg.Store.Driver)
	assert.Equal(t, "marketplace_agro", cfg.Mongo.Database)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"ENV":            "production",
		"TOKEN_TTL":      "5m",
		"HASH_ALGORITHM": "argon2id",
		"STORE_DRIVER":   "memory",
		"REDIS_ADDR":     "localhost:6379",
		"REDIS_PASSWORD": "pw",
		"REDIS_DB":       "2",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Development())
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "argon2id", cfg.Auth.HashAlgorithm)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "pw", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":    {"JWT_SECRET": "x", "STORE_DRIVER": "postgres"},
		"algorithm": {"JWT_SECRET": "x", "HASH_ALGORITHM": "md5"},
		"ttl":       {"JWT_SECRET": "x", "TOKEN_TTL": "0s"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
