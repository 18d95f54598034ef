package config

import (
	"testing"
	"time"

	"erauchess-api/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", secret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
	assert.Empty(t, cfg.Server.Origins())
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "./data/club.db", cfg.Store.Path)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "../frontend/", cfg.App.StaticDir)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Zero(t, cfg.Digest.Workers)
	assert.True(t, cfg.App.IsDevelopment())
	assert.True(t, cfg.App.Metrics)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", secret)
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PASS", "pw")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "postgres://postgres:pw@db:5432/erauchess?sslmode=disable", cfg.Postgres.DSN())
	assert.Equal(t, "localhost:6380", cfg.Cache.RedisAddress())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.Origins())
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "root:@tcp(localhost:3306)/erauchess?parseTime=true", cfg.Database.DSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "SESSION_SECRET"},
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "at least 32 bytes"},
		{"secret one byte short", map[string]string{"SESSION_SECRET": secret[:session.MinSecretLen-1]}, "SESSION_SECRET"},
		{"wildcard origin", map[string]string{"SESSION_SECRET": secret, "CORS_ALLOWED_ORIGINS": "*"}, "CORS_ALLOWED_ORIGINS"},
		{"wildcard subdomain", map[string]string{"SESSION_SECRET": secret, "CORS_ALLOWED_ORIGINS": "https://club.example,https://*.example"}, "wildcards"},
		{"unknown store", map[string]string{"SESSION_SECRET": secret, "STORE_TYPE": "mongodb"}, "STORE_TYPE"},
		{"unknown cache", map[string]string{"SESSION_SECRET": secret, "CACHE_TYPE": "memcached"}, "CACHE_TYPE"},
		{"unknown log format", map[string]string{"SESSION_SECRET": secret, "LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"negative workers", map[string]string{"SESSION_SECRET": secret, "DIGEST_WORKERS": "-1"}, "DIGEST_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_SecretMatchesCodec(t *testing.T) {
	t.Setenv("SESSION_SECRET", secret[:session.MinSecretLen])

	cfg, err := Load()
	require.NoError(t, err)

	_, err = session.NewCodec([]byte(cfg.Session.Secret), cfg.Session.CookieSecure)
	assert.NoError(t, err)
}

func TestServerConfig_Origins(t *testing.T) {
	s := ServerConfig{AllowedOrigins: []string{" https://club.example ", "", "  "}}
	assert.Equal(t, []string{"https://club.example"}, s.Origins())
}

func TestMustLoad_Panics(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	assert.Panics(t, func() { MustLoad() })
}
