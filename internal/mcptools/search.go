package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mindweave-dev/mindweave/internal/guard"
	"github.com/mindweave-dev/mindweave/pkg/thought"
	"github.com/mindweave-dev/mindweave/pkg/workspace"
)

// SearchTool ranks the thoughts of one session against a lexical query.
type SearchTool struct {
	deps *Deps
}

// NewSearchTool creates the find_thought_relationships tool.
func NewSearchTool(deps *Deps) *SearchTool {
	return &SearchTool{deps: deps}
}

// Definition returns the tool schema.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("find_thought_relationships",
		mcp.WithDescription("Search the thoughts of a session for lexical matches "+
			"against a query, ranked by relevance. Without session_id the default "+
			"session is searched."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for in thought content, tags, and modes"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to search; omit to search the default session"),
		),
		mcp.WithArray("relationship_types",
			mcp.Description("Only return thoughts declaring one of these relationship types"),
			mcp.Items(map[string]any{
				"type": "string",
				"enum": []string{"builds_on", "supports", "contradicts", "refines", "synthesizes"},
			}),
		),
		mcp.WithString("exclude_thought_id",
			mcp.Description("Thought id to exclude from results"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (1-20, default 10)"),
			mcp.Min(1),
			mcp.Max(20),
		),
	)
}

// Handle executes the find_thought_relationships tool.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID := req.GetString("session_id", "")
	excludeID := req.GetString("exclude_thought_id", "")

	if err := guard.ValidateQuery(query, t.deps.Limits); err != nil {
		return mcp.NewToolResultError("validation error: " + err.Error()), nil
	}
	for _, id := range []string{sessionID, excludeID} {
		if err := guard.ValidateID(id); err != nil {
			return mcp.NewToolResultError("validation error: " + err.Error()), nil
		}
	}

	var relTypes []thought.RelationshipType
	for _, raw := range req.GetStringSlice("relationship_types", nil) {
		relTypes = append(relTypes, thought.RelationshipType(raw))
	}

	result, err := t.deps.Workspace.FindThoughtRelationships(ctx, workspace.SearchArgs{
		Query:             query,
		SessionID:         sessionID,
		RelationshipTypes: relTypes,
		ExcludeThoughtID:  excludeID,
		Limit:             req.GetInt("limit", 0),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}
