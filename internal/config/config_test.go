package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":3020", cfg.HTTP.Addr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30, cfg.Resolver.CacheTTL)
	assert.Equal(t, 50, cfg.Retention.MaxVersions)
	assert.Equal(t, "kits:events", cfg.Events.StreamName)
	assert.True(t, cfg.Events.StreamEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("RESOLVE_CACHE_TTL", "5")
	t.Setenv("VERSION_RETENTION", "10")
	t.Setenv("EVENTS_STREAM_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 5, cfg.Resolver.CacheTTL)
	assert.Equal(t, 10, cfg.Retention.MaxVersions)
	assert.False(t, cfg.Events.StreamEnabled)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5432, User: "kits", Password: "secret",
		Database: "ifn_kits", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=kits password=secret dbname=ifn_kits sslmode=disable",
		c.GetDSN())
}
