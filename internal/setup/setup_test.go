package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_PreservesOtherEntries(t *testing.T) {
	dir := t.TempDir()
	clientConfig := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(clientConfig, []byte(`{
		"theme": "dark",
		"mcpServers": {"other": {"command": "/bin/other"}}
	}`), 0o644))

	binary := filepath.Join(dir, "mcp-server")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	path, err := Register(Options{
		ClientConfigPath: clientConfig,
		BinaryPath:       binary,
		ConfigFile:       filepath.Join(dir, "config.yaml"),
		Env:              map[string]string{"RA_RISK_LOGGING_LEVEL": "debug"},
	})
	require.NoError(t, err)
	assert.Equal(t, clientConfig, path)

	data, err := os.ReadFile(clientConfig)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "dark", raw["theme"])

	cfg, err := LoadClientConfig(clientConfig)
	require.NoError(t, err)
	require.Contains(t, cfg.MCPServers, "other")
	entry := cfg.MCPServers[ServerKey]
	assert.Equal(t, binary, entry.Command)
	assert.Equal(t, []string{"--config", filepath.Join(dir, "config.yaml")}, entry.Args)
	assert.Equal(t, "debug", entry.Env["RA_RISK_LOGGING_LEVEL"])

	status, err := GetStatus(clientConfig)
	require.NoError(t, err)
	assert.True(t, status.Registered)
	assert.Empty(t, status.Issues)
}

func TestGetStatus(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing_file", func(t *testing.T) {
		status, err := GetStatus(filepath.Join(dir, "absent.json"))
		require.NoError(t, err)
		assert.False(t, status.Registered)
		assert.Len(t, status.Issues, 1)
	})

	t.Run("binary_gone", func(t *testing.T) {
		path := filepath.Join(dir, "client.json")
		require.NoError(t, SaveClientConfig(path, &ClientConfig{
			MCPServers: map[string]MCPServerConfig{ServerKey: {Command: filepath.Join(dir, "nope")}},
		}))

		status, err := GetStatus(path)
		require.NoError(t, err)
		assert.True(t, status.Registered)
		require.Len(t, status.Issues, 1)
		assert.Contains(t, status.Issues[0], "not found")
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := GetStatus(path)
		assert.Error(t, err)
	})
}
