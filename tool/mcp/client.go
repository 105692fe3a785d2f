// Package mcp bridges Model Context Protocol servers into the tool
// subsystem. A Client connects to one MCP server, discovers its tools and
// exposes each as a native *tool.Tool whose handler proxies calls over the
// session.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/logging"
	"github.com/lunarhue/agentic/tool"
)

// Client manages the connection to a single MCP server and the tools
// discovered on it.
type Client struct {
	name    string
	cmd     *exec.Cmd
	session *mcpsdk.ClientSession
	tools   map[string]*tool.Tool
	order   []string
	logger  logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used during discovery and tool calls.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Connect starts the MCP server subprocess, performs the protocol handshake
// and discovers the server's tools. The caller owns the returned Client and
// must Close it to terminate the subprocess.
func Connect(ctx context.Context, serverName, command string, args []string, opts ...Option) (*Client, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "agentic", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return nil, core.NewConnectionError("failed to connect to MCP server '%s'", serverName).Wrap(err)
	}

	c := &Client{
		name:    serverName,
		cmd:     cmd,
		session: session,
		tools:   make(map[string]*tool.Tool),
		logger:  logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.discover(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.logger.Info("mcp server connected", "server", serverName, "tools", len(c.tools))
	return c, nil
}

// discover pages through the server's tool list and wraps every entry.
func (c *Client) discover(ctx context.Context) error {
	params := &mcpsdk.ListToolsParams{}
	for {
		list, err := c.session.ListTools(ctx, params)
		if err != nil {
			return core.NewConnectionError("failed to list tools from MCP server '%s'", c.name).Wrap(err)
		}
		for _, descriptor := range list.Tools {
			proxied, err := c.wrap(descriptor)
			if err != nil {
				return err
			}
			c.tools[proxied.Name()] = proxied
			c.order = append(c.order, proxied.Name())
		}
		if list.NextCursor == "" {
			return nil
		}
		params.Cursor = list.NextCursor
	}
}

// wrap turns one discovered descriptor into a native tool whose handler
// forwards the call over the session.
func (c *Client) wrap(descriptor *mcpsdk.Tool) (*tool.Tool, error) {
	schema := schemaToMap(descriptor.InputSchema)
	if schema == nil {
		c.logger.Warn("mcp tool schema not usable, accepting any object",
			"server", c.name, "tool", descriptor.Name)
		schema = permissiveSchema()
	}

	name := descriptor.Name
	call := func(ctx context.Context, args map[string]any) (string, error) {
		result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{
			Name:      name,
			Arguments: args,
		})
		if err != nil {
			return "", fmt.Errorf("MCP call to '%s' failed: %w", name, err)
		}
		text := flattenContent(result.Content)
		if result.IsError {
			return "", fmt.Errorf("MCP tool '%s' reported an error: %s", name, text)
		}
		return text, nil
	}
	return newProxyTool(name, descriptor.Description, schema, call)
}

// newProxyTool builds the native tool around a transport-level call
// function. Split out from wrap so the proxy behavior is testable without a
// live session.
func newProxyTool(name, description string, schema map[string]any, call func(context.Context, map[string]any) (string, error)) (*tool.Tool, error) {
	proxied, err := tool.New(name, description,
		func(ctx context.Context, _ tool.Runtime, args map[string]any) (any, error) {
			return call(ctx, args)
		},
		tool.WithInputSchema(schema))
	if err != nil {
		// Server schemas can use constructs the local validator rejects;
		// fall back to accepting any object and let the server validate.
		return tool.New(name, description,
			func(ctx context.Context, _ tool.Runtime, args map[string]any) (any, error) {
				return call(ctx, args)
			},
			tool.WithInputSchema(permissiveSchema()))
	}
	return proxied, nil
}

// Name returns the configured server name.
func (c *Client) Name() string { return c.name }

// Tools returns the discovered tools in listing order.
func (c *Client) Tools() []*tool.Tool {
	out := make([]*tool.Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Tool returns one discovered tool by name.
func (c *Client) Tool(name string) (*tool.Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Close terminates the session and the server subprocess.
func (c *Client) Close() error {
	if c.session != nil {
		_ = c.session.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		return c.cmd.Process.Kill()
	}
	return nil
}

// schemaToMap converts the SDK's schema representation into the raw map
// form the tool subsystem works with. Returns nil when the schema is absent
// or does not survive the round trip.
func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func permissiveSchema() map[string]any {
	return map[string]any{"type": "object"}
}

// flattenContent concatenates the text parts of a tool result. Non-text
// content is noted in place rather than dropped silently.
func flattenContent(content []mcpsdk.Content) string {
	var sb strings.Builder
	for _, part := range content {
		switch p := part.(type) {
		case *mcpsdk.TextContent:
			sb.WriteString(p.Text)
		default:
			fmt.Fprintf(&sb, "[unsupported content type %T]", part)
		}
	}
	return sb.String()
}
