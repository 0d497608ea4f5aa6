// Package mcp exposes the scan/diff/pack pipeline as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

const (
	// ServerName is the MCP server name.
	ServerName = "repolens"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies. Stores open
// lazily per repository root since every tool call names its own root.
type Server struct {
	mcp *server.MCPServer
}

// NewServer creates a new MCP server instance with all tools registered.
func NewServer() *Server {
	s := &Server{
		mcp: server.NewMCPServer(ServerName, ServerVersion),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(scanRepoTool(), s.handleScanRepo)
	s.mcp.AddTool(diffSnapshotsTool(), s.handleDiffSnapshots)
	s.mcp.AddTool(packSnapshotTool(), s.handlePackSnapshot)
	s.mcp.AddTool(getHistoryTool(), s.handleGetHistory)
}
