// Package mcpclient connects to an MCP tool server, over stdio to a spawned
// command or over streamable HTTP, and exposes the subset of the protocol
// the assistant needs.
package mcpclient

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ragserver/internal/llm"
)

// Client is a connected MCP session.
type Client struct {
	session *mcp.ClientSession
}

// ConnectCommand spawns command (split on whitespace) and speaks MCP to it
// over stdio.
func ConnectCommand(ctx context.Context, command string) (*Client, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty MCP server command")
	}
	transport := &mcp.CommandTransport{
		Command: exec.Command(parts[0], parts[1:]...),
	}
	return connect(ctx, transport)
}

// ConnectHTTP connects to an MCP server at a streamable HTTP endpoint.
func ConnectHTTP(ctx context.Context, endpoint string) (*Client, error) {
	return connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint})
}

func connect(ctx context.Context, transport mcp.Transport) (*Client, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "ragserver-assistant",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server: %w", err)
	}
	return &Client{session: session}, nil
}

// ListTools returns the tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]llm.ToolInfo, error) {
	result, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	tools := make([]llm.ToolInfo, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, llm.ToolInfo{
			Name:        tool.Name,
			Description: tool.Description,
		})
	}
	return tools, nil
}

// CallTool invokes a tool and returns its text output. A tool-level error
// result comes back as an error carrying the tool's message.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("call tool %q: %w", name, err)
	}

	text := textContent(result)
	if result.IsError {
		if text == "" {
			text = "tool execution failed"
		}
		return "", fmt.Errorf("tool %q: %s", name, text)
	}
	return text, nil
}

// Close tears down the session.
func (c *Client) Close() error {
	return c.session.Close()
}

func textContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
