package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates the MCP server with every workspace tool registered.
// Handlers are wrapped with rate limiting, logging, and call metrics.
func NewServer(name, version string, deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	think := NewThinkTool(deps)
	s.AddTool(think.Definition(), server.ToolHandlerFunc(deps.instrument("think", think.Handle)))

	list := NewListSessionsTool(deps)
	s.AddTool(list.Definition(), server.ToolHandlerFunc(deps.instrument("list_sessions", list.Handle)))

	view := NewViewSessionTool(deps)
	s.AddTool(view.Definition(), server.ToolHandlerFunc(deps.instrument("view_session", view.Handle)))

	del := NewDeleteSessionTool(deps)
	s.AddTool(del.Definition(), server.ToolHandlerFunc(deps.instrument("delete_session", del.Handle)))

	setDefault := NewSetDefaultSessionTool(deps)
	s.AddTool(setDefault.Definition(), server.ToolHandlerFunc(deps.instrument("set_default_session", setDefault.Handle)))

	cleanup := NewCleanupSessionsTool(deps)
	s.AddTool(cleanup.Definition(), server.ToolHandlerFunc(deps.instrument("cleanup_sessions", cleanup.Handle)))

	search := NewSearchTool(deps)
	s.AddTool(search.Definition(), server.ToolHandlerFunc(deps.instrument("find_thought_relationships", search.Handle)))

	return s
}
