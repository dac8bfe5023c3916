package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const (
	resourceStatus = "gantt://snapshot/status"
	resourceFacets = "gantt://snapshot/facets"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			resourceStatus,
			"Snapshot Status",
			mcplib.WithResourceDescription("Load time, source, fallback flag and ingestion report of the current snapshot"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleStatusResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			resourceFacets,
			"Snapshot Facets",
			mcplib.WithResourceDescription("Months, statuses and assignees of the current snapshot"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleFacetsResource,
	)
}

func (s *Server) handleStatusResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Snapshots == nil {
		return unconfigured(req.Params.URI), nil
	}
	return jsonResource(req.Params.URI, s.deps.Snapshots.Status())
}

func (s *Server) handleFacetsResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Snapshots == nil {
		return unconfigured(req.Params.URI), nil
	}
	return jsonResource(req.Params.URI, s.deps.Snapshots.Facets())
}

func unconfigured(uri string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     `{"error":"snapshot reader not configured"}`,
		},
	}
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
