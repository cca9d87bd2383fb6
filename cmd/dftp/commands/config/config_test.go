package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittoftp/pkg/config"
)

func TestConfigWarnings(t *testing.T) {
	t.Run("defaults are quiet apart from the session limit", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.Server.MaxConnections = 10
		cfg.Server.BindAddress = "127.0.0.1"
		assert.Empty(t, configWarnings(cfg))
	})

	t.Run("public bye and open admin", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.Server.MaxConnections = 10
		cfg.Server.BindAddress = "0.0.0.0"
		cfg.Server.ByeScope = "server"
		cfg.Admin.BindAddress = "0.0.0.0"
		cfg.Admin.Token = ""

		warnings := configWarnings(cfg)
		require.Len(t, warnings, 2)
		assert.Contains(t, warnings[0], "bye_scope")
		assert.Contains(t, warnings[1], "admin.token")
	})

	t.Run("token silences admin warning", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.Server.MaxConnections = 10
		cfg.Server.BindAddress = "127.0.0.1"
		cfg.Admin.BindAddress = "0.0.0.0"
		cfg.Admin.Token = "secret"
		assert.Empty(t, configWarnings(cfg))
	})
}

func TestConfigSummary(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 2121
	disabled := false
	cfg.Admin.Enabled = &disabled

	values := map[string]string{}
	for _, kv := range configSummary(cfg) {
		values[kv.Key] = kv.Value
	}
	assert.Equal(t, "127.0.0.1:2121", values["  Listen"])
	assert.Equal(t, "disabled", values["  Admin API"])
}

func TestGenerateSchema(t *testing.T) {
	data, err := generateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "dittoftp Configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "server")
	assert.Contains(t, props, "shutdown_timeout")
}

func TestEditor(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	assert.Equal(t, "vi", editor())

	t.Setenv("VISUAL", "code -w")
	assert.Equal(t, "code -w", editor())

	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", editor())
}
