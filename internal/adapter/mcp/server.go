// Package mcp exposes the current Gantt snapshot to AI agents over the
// Model Context Protocol (streamable HTTP transport).
package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/service"
)

// ServerConfig holds MCP server identity.
type ServerConfig struct {
	Name    string
	Version string
}

// SnapshotReader is the read side of the dashboard.
type SnapshotReader interface {
	View(ctx context.Context, sel timeline.Selection) (service.View, error)
	Facets() timeline.Facets
	Status() service.Status
}

// ServerDeps holds the dependencies the tools read from.
type ServerDeps struct {
	Snapshots SnapshotReader
}

// Server wraps the mcp-go server with ganttboard tools and resources.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
}

// NewServer creates an MCP server with all tools and resources registered.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(
			cfg.Name,
			cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
			mcpserver.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the streamable HTTP transport, ready to mount at /mcp.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer, mcpserver.WithStateLess(true))
}
