package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarhue/agentic/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
provider: anthropic
model: claude-sonnet-4-20250514
api_key_env: ANTHROPIC_API_KEY
max_iterations: 5
temperature: 0.2
log_level: debug
mcp_servers:
  - name: files
    command: mcp-files
    args: ["--root", "."]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.APIKeyEnv)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.MCPServers, 1)
	assert.Equal(t, "files", cfg.MCPServers[0].Name)
	assert.Equal(t, "mcp-files", cfg.MCPServers[0].Command)
	assert.Equal(t, []string{"--root", "."}, cfg.MCPServers[0].Args)
}

func TestLoadKeepsDefaultsForAbsentFields(t *testing.T) {
	path := writeConfig(t, "model: gpt-4o\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.APIKeyEnv)
	assert.Equal(t, 20, cfg.MaxIterations)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Nil(t, cfg)
	assert.Equal(t, core.CodeInput, core.CodeOf(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed\n")

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	assert.Equal(t, core.CodeInput, core.CodeOf(err))
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "cohere" }},
		{"zero iterations", func(c *Config) { c.MaxIterations = 0 }},
		{"negative temperature", func(c *Config) { c.Temperature = -0.5 }},
		{"temperature too high", func(c *Config) { c.Temperature = 3 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }},
		{"mcp server without name", func(c *Config) {
			c.MCPServers = []MCPServer{{Command: "mcp-files"}}
		}},
		{"mcp server without command", func(c *Config) {
			c.MCPServers = []MCPServer{{Name: "files"}}
		}},
		{"duplicate mcp server", func(c *Config) {
			c.MCPServers = []MCPServer{
				{Name: "files", Command: "mcp-files"},
				{Name: "files", Command: "mcp-files"},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Equal(t, core.CodeInput, core.CodeOf(err))
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	cfg.APIKeyEnv = "AGENTIC_TEST_KEY"

	_, err := cfg.APIKey()
	assert.Equal(t, core.CodeInput, core.CodeOf(err))

	t.Setenv("AGENTIC_TEST_KEY", "sk-test")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}
