package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
database:
  host: db.internal
  timeout: 3s
  conn_max_lifetime: 10m
jwt:
  secret: test-secret
  expiration: 2h
auth:
  invite_required: true
rate_limit:
  comments_per_minute: 6
  burst: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3*time.Second, cfg.Database.Timeout.Std())
	assert.Equal(t, 10*time.Minute, cfg.Database.ConnMaxLifetime.Std())
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration.Std())
	assert.True(t, cfg.Auth.InviteRequired)
	assert.Equal(t, 6, cfg.RateLimit.CommentsPerMinute)

	// Defaults fill in what the file omits
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "Diario de un Instante", cfg.Site.Name)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 8080
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DIARIO_JWT_SECRET", "env-secret")
	t.Setenv("DIARIO_DB_PASSWORD", "env-password")
	t.Setenv("DIARIO_BASE_URL", "https://diario.example")

	path := writeTempConfig(t, `
database:
  password: file-password
jwt:
  secret: file-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-password", cfg.Database.Password)
	assert.Equal(t, "https://diario.example", cfg.Site.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeTempConfig(t, `
database:
  timeout: pronto
jwt:
  secret: s
`)

	_, err := Load(path)
	assert.Error(t, err)
}
