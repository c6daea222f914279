package mcp

import (
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/stravamcp/internal/core"
)

const instructions = "Read-only access to the authenticated athlete's Strava activities. " +
	"Use get_recent_activities with num_activities for the latest records or all_activities for the full history."

// NewServer builds the MCP server with the activity tools registered.
func NewServer(tools *ActivityTools) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		core.AppName,
		core.AppVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithLogging(),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(instructions),
	)

	for _, def := range tools.GetDefinitions() {
		s.AddTool(def.Tool, def.Handler)
	}

	return s
}
