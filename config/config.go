// Package config loads the agentic.yaml runtime configuration the examples
// and CLI-style callers build their model, logger and MCP connections from.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lunarhue/agentic/agent"
	"github.com/lunarhue/agentic/core"
)

// MCPServer describes one MCP server to launch and mount tools from.
type MCPServer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Config is the file-backed runtime configuration.
type Config struct {
	// Provider selects the model backend: "openai" or "anthropic".
	Provider string `yaml:"provider"`

	// Model is the provider model identifier. Empty selects the
	// provider's default.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// MaxIterations bounds the model/tool loop.
	MaxIterations int `yaml:"max_iterations"`

	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// MCPServers are external tool servers to connect at startup.
	MCPServers []MCPServer `yaml:"mcp_servers"`
}

// Default returns the baseline configuration: OpenAI with the standard
// iteration bound and info-level logging.
func Default() *Config {
	return &Config{
		Provider:      "openai",
		APIKeyEnv:     "OPENAI_API_KEY",
		MaxIterations: agent.DefaultMaxIterations,
		Temperature:   0.7,
		LogLevel:      "info",
	}
}

// Load reads and validates a YAML configuration file. Fields absent from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewInputError("failed to read config file '%s'", path).Wrap(err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.NewInputError("failed to parse config file '%s'", path).Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can act on.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return core.NewInputError("unsupported provider %q", c.Provider)
	}

	if c.MaxIterations < 1 {
		return core.NewInputError("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return core.NewInputError("temperature must be between 0 and 2, got %v", c.Temperature)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return core.NewInputError("unknown log_level %q", c.LogLevel)
	}

	seen := make(map[string]bool, len(c.MCPServers))
	for _, srv := range c.MCPServers {
		if srv.Name == "" {
			return core.NewInputError("mcp server entries require a name")
		}
		if srv.Command == "" {
			return core.NewInputError("mcp server '%s' requires a command", srv.Name)
		}
		if seen[srv.Name] {
			return core.NewInputError("duplicate mcp server '%s'", srv.Name)
		}
		seen[srv.Name] = true
	}
	return nil
}

// APIKey resolves the configured API key environment variable.
func (c *Config) APIKey() (string, error) {
	if c.APIKeyEnv == "" {
		return "", core.NewInputError("api_key_env is not configured")
	}
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", core.NewInputError("environment variable %s is not set", c.APIKeyEnv)
	}
	return key, nil
}
