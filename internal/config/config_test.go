package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "listen: 127.0.0.1:4000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:4000", cfg.Listen)
	assert.Equal(t, 604800, cfg.SessionMaxAge)
	assert.Equal(t, "./data/mealtrack.db", cfg.Database.Path)
	assert.Equal(t, CacheTypeMemory, cfg.Cache.Type)
	assert.Len(t, cfg.SessionKey, 64, "a random session key should be generated")
	assert.Equal(t, time.Local, cfg.Location())
	assert.False(t, cfg.IsOIDCEnabled())
	assert.False(t, cfg.RemindersEnabled())
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL())
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "listen: 127.0.0.1:4000\n")
	t.Setenv("MEALTRACK_LISTEN", "0.0.0.0:9999")
	t.Setenv("MEALTRACK_TIMEZONE", "Europe/Zurich")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Listen)
	assert.Equal(t, "Europe/Zurich", cfg.Location().String())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "short session key",
			content: "session_key: short\n",
			wantErr: "session_key must be at least 32 characters long",
		},
		{
			name:    "invalid timezone",
			content: "timezone: Mars/Olympus\n",
			wantErr: "invalid timezone",
		},
		{
			name:    "redis without url",
			content: "cache:\n  type: redis\n",
			wantErr: "redis URL is required",
		},
		{
			name:    "unknown cache type",
			content: "cache:\n  type: memcached\n",
			wantErr: "unknown cache type",
		},
		{
			name:    "oidc without issuer",
			content: "auth:\n  oidc:\n    enabled: true\n",
			wantErr: "OIDC issuer is required",
		},
		{
			name:    "email without host",
			content: "email:\n  enabled: true\n",
			wantErr: "SMTP host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RemindersEnabled(t *testing.T) {
	path := writeConfig(t, `
reminders:
  enabled: true
  concurrency: 0
email:
  enabled: true
  smtp_host: smtp.example.com
  from_email: noreply@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.RemindersEnabled())
	assert.Equal(t, 1, cfg.Reminders.Concurrency)
	assert.Equal(t, "*/15 * * * *", cfg.Reminders.Schedule)
}
