package mcp

import (
	"context"
	"encoding/json"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.listRowsTool(),
		s.getFacetsTool(),
		s.getSnapshotStatusTool(),
	)
}

func (s *Server) listRowsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_rows",
		mcplib.WithDescription("List the Gantt rows of the current snapshot, ordered for display and filtered by month, status and assignee"),
		mcplib.WithString("month",
			mcplib.Description(`End month as YYYY-MM, or "all"`),
		),
		mcplib.WithArray("status",
			mcplib.Description(`Statuses to keep; empty or ["all"] keeps every status`),
			mcplib.WithStringItems(),
		),
		mcplib.WithArray("assignee",
			mcplib.Description(`Assignees to keep; use "unassigned" for rows without one`),
			mcplib.WithStringItems(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleListRows,
	}
}

func (s *Server) getFacetsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_facets",
		mcplib.WithDescription("Get the selectable months, statuses and assignees of the current snapshot"),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGetFacets,
	}
}

func (s *Server) getSnapshotStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_snapshot_status",
		mcplib.WithDescription("Get when the current snapshot was loaded, from which source, whether it is a fallback and the ingestion report"),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGetSnapshotStatus,
	}
}

func (s *Server) handleListRows(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Snapshots == nil {
		return mcplib.NewToolResultError("snapshot reader not configured"), nil
	}
	args := req.GetArguments()
	month, _ := args["month"].(string)
	sel := timeline.Selection{
		Month:     month,
		Statuses:  stringList(args["status"]),
		Assignees: stringList(args["assignee"]),
	}
	view, err := s.deps.Snapshots.View(ctx, sel)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list rows", err), nil
	}
	return marshalResult(view, "rows")
}

func (s *Server) handleGetFacets(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Snapshots == nil {
		return mcplib.NewToolResultError("snapshot reader not configured"), nil
	}
	return marshalResult(s.deps.Snapshots.Facets(), "facets")
}

func (s *Server) handleGetSnapshotStatus(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Snapshots == nil {
		return mcplib.NewToolResultError("snapshot reader not configured"), nil
	}
	return marshalResult(s.deps.Snapshots.Status(), "snapshot status")
}

func marshalResult(v any, what string) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal "+what, err), nil
	}
	return toolResultJSON(string(data)), nil
}

// stringList accepts a JSON array of strings or a single string.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t = strings.TrimSpace(t); t != "" {
			return []string{t}
		}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toolResultJSON(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}
