package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/stravamcp/pkg/log"
)

const defaultCallTimeout = 5 * time.Minute

// Client calls tools on a connected MCP server.
type Client struct {
	*client.Client
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

func Connect(ctx context.Context, cfg ServerConfig) (*Client, error) {
	tType, err := cfg.GetTransport()
	if err != nil {
		return nil, err
	}

	transport, err := NewTransport(tType)
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Str("transport", string(tType)).
		Str("url", cfg.URL).
		Str("command", cfg.Command).
		Msg("connecting to mcp server")

	cli, err := transport(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("transport creation failed: %w", err)
	}

	return &Client{Client: cli, timeout: defaultCallTimeout}, nil
}

// OnMessage registers fn for notifications/message log messages sent by the
// server while a call is in flight.
func (c *Client) OnMessage(fn func(level mcpproto.LoggingLevel, message string)) {
	c.OnNotification(messageHandler(fn))
}

func messageHandler(fn func(level mcpproto.LoggingLevel, message string)) func(mcpproto.JSONRPCNotification) {
	return func(n mcpproto.JSONRPCNotification) {
		if n.Method != "notifications/message" {
			return
		}
		level, _ := n.Params.AdditionalFields["level"].(string)
		fn(mcpproto.LoggingLevel(level), fmt.Sprint(n.Params.AdditionalFields["data"]))
	}
}

// CallTool runs the named tool and returns its text content. A tool error
// is returned as an error carrying the tool's message.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return "", fmt.Errorf("client is closed")
	}

	log.FromCtx(ctx).Debug().Str("tool", name).Any("args", args).Msg("calling tool")

	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	tCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.Client.CallTool(tCtx, req)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(mcpproto.TextContent); ok {
			output.WriteString(text.Text)
		} else if textPtr, ok := content.(*mcpproto.TextContent); ok {
			output.WriteString(textPtr.Text)
		}
	}

	if res.IsError {
		return "", fmt.Errorf("tool %s failed: %s", name, output.String())
	}

	return output.String(), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
