package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Autosave.Interval.Std())
	assert.Equal(t, 256, cfg.Relay.SendQueueSize)
	assert.Equal(t, 64, cfg.Relay.SaveQueueSize)
	assert.Equal(t, 0, cfg.Relay.MaxClientsPerRoom)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9000"
store:
  backend: sqlite
  db_path: /tmp/test.db
autosave:
  interval: 10s
relay:
  send_queue_size: 128
  max_clients_per_room: 50
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/test.db", cfg.Store.DBPath)
	assert.Equal(t, 10*time.Second, cfg.Autosave.Interval.Std())
	assert.Equal(t, 128, cfg.Relay.SendQueueSize)
	assert.Equal(t, 50, cfg.Relay.MaxClientsPerRoom)
	// Unset fields keep their defaults
	assert.Equal(t, 64, cfg.Relay.SaveQueueSize)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\n"), 0644))

	t.Setenv("PORT", "9999")
	t.Setenv("FLOWSYNC_STORE_BACKEND", "sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad backend", "store:\n  backend: redis\n"},
		{"zero interval", "autosave:\n  interval: 0s\n"},
		{"zero send queue", "relay:\n  send_queue_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
