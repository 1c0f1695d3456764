package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
dbname = "reservations"
user = "svc"

[app]
timezone = "Europe/Moscow"

[notifications]
queue = "redis"

[redis]
address = "redis:6379"
`)
	t.Setenv(EnvDBPassword, "secret")
	t.Setenv(EnvSendGridAPIKey, "SG.key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "SG.key", cfg.SendGrid.APIKey)
	assert.Equal(t, QueueRedis, cfg.Notifications.Queue)
	assert.Equal(t, "reservations:notifications", cfg.Redis.QueueKey)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())
	assert.Contains(t, cfg.Database.DSN(), "dbname=reservations")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{
			name:   "unknown timezone",
			mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" },
			want:   "app.timezone",
		},
		{
			name:   "unknown queue",
			mutate: func(c *Config) { c.Notifications.Queue = "kafka" },
			want:   "notifications.queue",
		},
		{
			name:   "bad cron",
			mutate: func(c *Config) { c.Jobs.CompletionSchedule = "every day" },
			want:   "jobs.completion_schedule",
		},
		{
			name:   "stale window shorter than send",
			mutate: func(c *Config) { c.Notifications.StaleAfter = 5 },
			want:   "notifications.stale_after",
		},
		{
			name:   "bad port",
			mutate: func(c *Config) { c.Server.HTTPPort = 0 },
			want:   "server.http_port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database.DBName = "reservations"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Default()
	cfg.Database.DBName = "reservations"
	require.NoError(t, cfg.Validate())
}
