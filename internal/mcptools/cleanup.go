package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mindweave-dev/mindweave/pkg/observability"
)

// CleanupSessionsTool runs a retention sweep on demand.
type CleanupSessionsTool struct {
	deps *Deps
}

// NewCleanupSessionsTool creates the cleanup_sessions tool.
func NewCleanupSessionsTool(deps *Deps) *CleanupSessionsTool {
	return &CleanupSessionsTool{deps: deps}
}

// Definition returns the tool schema.
func (t *CleanupSessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("cleanup_sessions",
		mcp.WithDescription("Delete sessions whose records have not been modified "+
			"within the retention window. Age is judged per session record, not "+
			"per thought."),
		mcp.WithNumber("max_age_days",
			mcp.Description("Retention window in days; defaults to 90"),
			mcp.Min(1),
		),
	)
}

// Handle executes the cleanup_sessions tool.
func (t *CleanupSessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maxAgeDays := req.GetInt("max_age_days", 0)

	result, err := t.deps.Workspace.CleanupSessions(ctx, maxAgeDays)
	if err != nil {
		return errorResult(err), nil
	}
	observability.RecordSweep(result.Duration, result.Deleted, result.Failed)
	return jsonResult(result)
}
