package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mindweave-dev/mindweave/internal/guard"
	"github.com/mindweave-dev/mindweave/pkg/observability"
)

// ListSessionsTool enumerates every persisted session.
type ListSessionsTool struct {
	deps *Deps
}

// NewListSessionsTool creates the list_sessions tool.
func NewListSessionsTool(deps *Deps) *ListSessionsTool {
	return &ListSessionsTool{deps: deps}
}

// Definition returns the tool schema.
func (t *ListSessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_sessions",
		mcp.WithDescription("List all persisted thinking sessions with summary "+
			"metadata, newest first, and the current default session if any."),
	)
}

// Handle executes the list_sessions tool.
func (t *ListSessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.deps.Workspace.ListSessions(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	observability.SetActiveSessions(result.Count)
	return jsonResult(result)
}

// ViewSessionTool returns the full thought log of one session.
type ViewSessionTool struct {
	deps *Deps
}

// NewViewSessionTool creates the view_session tool.
func NewViewSessionTool(deps *Deps) *ViewSessionTool {
	return &ViewSessionTool{deps: deps}
}

// Definition returns the tool schema.
func (t *ViewSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("view_session",
		mcp.WithDescription("View the complete ordered thought log of a session. "+
			"Without session_id the default session is shown."),
		mcp.WithString("session_id",
			mcp.Description("Session to view; omit to view the default session"),
		),
	)
}

// Handle executes the view_session tool.
func (t *ViewSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if err := guard.ValidateID(sessionID); err != nil {
		return mcp.NewToolResultError("validation error: " + err.Error()), nil
	}
	result, err := t.deps.Workspace.ViewSession(ctx, sessionID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

// DeleteSessionTool removes one session record.
type DeleteSessionTool struct {
	deps *Deps
}

// NewDeleteSessionTool creates the delete_session tool.
func NewDeleteSessionTool(deps *Deps) *DeleteSessionTool {
	return &DeleteSessionTool{deps: deps}
}

// Definition returns the tool schema.
func (t *DeleteSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a thinking session and all of its thoughts. "+
			"Deleting the default session also clears the default pointer."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session to delete"),
		),
	)
}

// Handle executes the delete_session tool.
func (t *DeleteSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := guard.ValidateID(sessionID); err != nil {
		return mcp.NewToolResultError("validation error: " + err.Error()), nil
	}
	result, err := t.deps.Workspace.DeleteSession(ctx, sessionID)
	if err != nil {
		return errorResult(err), nil
	}
	observability.RecordSessionDeleted("explicit")
	return jsonResult(result)
}

// SetDefaultSessionTool manages the durable default-session pointer.
type SetDefaultSessionTool struct {
	deps *Deps
}

// NewSetDefaultSessionTool creates the set_default_session tool.
func NewSetDefaultSessionTool(deps *Deps) *SetDefaultSessionTool {
	return &SetDefaultSessionTool{deps: deps}
}

// Definition returns the tool schema.
func (t *SetDefaultSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("set_default_session",
		mcp.WithDescription("Point the durable default at an existing session, or "+
			"clear the pointer. The default survives restarts."),
		mcp.WithString("session_id",
			mcp.Description("Session to make the default; must exist. Omit to clear the pointer"),
		),
		mcp.WithBoolean("clear",
			mcp.Description("Clear the default pointer instead of setting it"),
		),
	)
}

// Handle executes the set_default_session tool. An absent session_id
// clears the pointer; the clear flag forces the same even when one is
// given.
func (t *SetDefaultSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" || req.GetBool("clear", false) {
		result, err := t.deps.Workspace.ClearDefaultSession(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(result)
	}

	if err := guard.ValidateID(sessionID); err != nil {
		return mcp.NewToolResultError("validation error: " + err.Error()), nil
	}
	result, err := t.deps.Workspace.SetDefaultSession(ctx, sessionID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}
