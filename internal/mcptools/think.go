package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mindweave-dev/mindweave/internal/guard"
	"github.com/mindweave-dev/mindweave/pkg/observability"
	"github.com/mindweave-dev/mindweave/pkg/thought"
	"github.com/mindweave-dev/mindweave/pkg/workspace"
)

// ThinkTool appends one thought to a session.
type ThinkTool struct {
	deps *Deps
}

// NewThinkTool creates the think tool.
func NewThinkTool(deps *Deps) *ThinkTool {
	return &ThinkTool{deps: deps}
}

// Definition returns the tool schema.
func (t *ThinkTool) Definition() mcp.Tool {
	return mcp.NewTool("think",
		mcp.WithDescription("Record a thought in a persistent thinking session. "+
			"Thoughts are append-only and may declare a relationship to an earlier "+
			"thought in the same session."),
		mcp.WithString("reasoning",
			mcp.Required(),
			mcp.Description("The reasoning content to record, stored verbatim"),
		),
		mcp.WithString("session_id",
			mcp.Description("Explicit session to append to; appending to an unknown id creates it"),
		),
		mcp.WithBoolean("use_default_session",
			mcp.Description("Append to the default session; falls back to a fresh session when none is set"),
		),
		mcp.WithBoolean("set_as_default",
			mcp.Description("Make the resolved session the default afterwards"),
		),
		mcp.WithBoolean("new_chat",
			mcp.Description("Force a fresh session, overriding session_id and use_default_session"),
		),
		mcp.WithString("mode",
			mcp.Description("Reasoning mode"),
			mcp.Enum("linear", "creative", "critical", "strategic", "empathetic"),
		),
		mcp.WithArray("tags",
			mcp.Description("Free-text labels stored with the thought"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("relates_to",
			mcp.Description("Id of an earlier thought in the same session this thought relates to"),
		),
		mcp.WithString("relationship_type",
			mcp.Description("How this thought relates to relates_to; required with relates_to"),
			mcp.Enum("builds_on", "supports", "contradicts", "refines", "synthesizes"),
		),
	)
}

// Handle executes the think tool.
func (t *ThinkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reasoning, err := req.RequireString("reasoning")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID := req.GetString("session_id", "")
	relatesTo := req.GetString("relates_to", "")
	tags := req.GetStringSlice("tags", nil)

	if err := guard.ValidateContent(reasoning, t.deps.Limits); err != nil {
		return mcp.NewToolResultError("validation error: " + err.Error()), nil
	}
	if err := guard.ValidateTags(tags, t.deps.Limits); err != nil {
		return mcp.NewToolResultError("validation error: " + err.Error()), nil
	}
	for _, id := range []string{sessionID, relatesTo} {
		if err := guard.ValidateID(id); err != nil {
			return mcp.NewToolResultError("validation error: " + err.Error()), nil
		}
	}

	args := workspace.ThinkArgs{
		Reasoning:         reasoning,
		SessionID:         sessionID,
		UseDefaultSession: req.GetBool("use_default_session", false),
		SetAsDefault:      req.GetBool("set_as_default", false),
		NewChat:           req.GetBool("new_chat", false),
		Mode:              thought.Mode(req.GetString("mode", "")),
		Tags:              tags,
		RelatesTo:         relatesTo,
		RelationshipType:  thought.RelationshipType(req.GetString("relationship_type", "")),
	}

	result, err := t.deps.Workspace.Think(ctx, args)
	if err != nil {
		return errorResult(err), nil
	}
	observability.RecordThoughtAppended(string(result.Mode))
	return jsonResult(result)
}
