package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[backend]
url = "https://api.example.com"

[realtime]
url = "wss://api.example.com/socket"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 10, cfg.Backend.Timeout)
	assert.Equal(t, 30, cfg.Realtime.HeartbeatInterval)
	assert.Equal(t, 100, cfg.Notifications.Capacity)
	assert.Equal(t, 256, cfg.Journal.BufferSize)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9000

[logs]
file = "sync.log"
level = "debug"

[metrics]
enabled = true
service_name = "sync-test"

[database]
host = "localhost"
port = 5432
user = "sync"
password = "secret"
dbname = "requests"

[backend]
url = "https://api.example.com"
timeout = 3

[realtime]
url = "wss://api.example.com/socket"
reconnect_rate = 2.0

[notifications]
capacity = 5

[journal]
enabled = true
buffer_size = 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 3, cfg.Backend.Timeout)
	assert.Equal(t, 2.0, cfg.Realtime.ReconnectRate)
	assert.Equal(t, 5, cfg.Notifications.Capacity)
	assert.Equal(t, 16, cfg.Journal.BufferSize)
	assert.Equal(t, "host=localhost port=5432 user=sync password=secret dbname=requests sslmode=disable", cfg.Database.DSN())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing backend url",
			content: "[realtime]\nurl = \"wss://x\"\n",
		},
		{
			name:    "missing realtime url",
			content: "[backend]\nurl = \"https://x\"\n",
		},
		{
			name:    "journal without database",
			content: "[backend]\nurl = \"https://x\"\n[realtime]\nurl = \"wss://x\"\n[journal]\nenabled = true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
