package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDatabaseConfigDefaults(t *testing.T) {
	cfg, err := LoadDatabaseConfig("ARTCORE_")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "artcore_db", cfg.DBName)
	assert.Equal(t, 25, cfg.MaxOpenConns)
}

func TestLoadDatabaseConfigFromEnv(t *testing.T) {
	t.Setenv("ARTCORE_DB_HOST", "db.internal")
	t.Setenv("ARTCORE_DB_PORT", "5433")
	t.Setenv("ARTCORE_DB_MAX_LIFETIME", "1m")

	cfg, err := LoadDatabaseConfig("ARTCORE_")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, time.Minute, cfg.MaxLifetime)
}

func TestLoadDatabaseConfigRejectsBadPort(t *testing.T) {
	t.Setenv("ARTCORE_DB_PORT", "not-a-port")

	_, err := LoadDatabaseConfig("ARTCORE_")
	assert.Error(t, err)
}

func TestLoadServerConfigExpiries(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRY", "30m")

	cfg := LoadServerConfig()
	assert.Equal(t, 30*time.Minute, cfg.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshExpiry)
}

func TestLoadStorageConfigDefaults(t *testing.T) {
	cfg := LoadStorageConfig()
	assert.Equal(t, "./data/blobs", cfg.Root)
	assert.Equal(t, "http://localhost:8080/blobs", cfg.BaseURL)
}
