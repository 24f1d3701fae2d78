// Package mcptools exposes the workspace operations as MCP tools over
// the stdio transport. Each tool is a small struct pairing its schema
// with its handler; no domain logic lives here, only argument mapping,
// guard checks, and response encoding.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mindweave-dev/mindweave/internal/guard"
	"github.com/mindweave-dev/mindweave/pkg/observability"
	"github.com/mindweave-dev/mindweave/pkg/workspace"
)

// Deps carries everything the tool handlers need.
type Deps struct {
	Workspace *workspace.Workspace
	Limits    guard.Limits
	Limiter   *guard.RateLimiter
}

// handlerFunc is the raw per-tool handler before instrumentation.
type handlerFunc func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// instrument wraps a handler with rate limiting, invocation logging,
// and call metrics. Logs go to stderr; stdout carries protocol frames.
func (d *Deps) instrument(tool string, h handlerFunc) handlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if d.Limiter != nil && !d.Limiter.Allow(tool) {
			observability.RecordToolCall(tool, "throttled", 0)
			return mcp.NewToolResultError("rate limit exceeded, retry shortly"), nil
		}

		invocation := uuid.NewString()
		start := time.Now()
		result, err := h(ctx, req)
		elapsed := time.Since(start)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}
		observability.RecordToolCall(tool, status, elapsed)
		log.Printf("tool=%s invocation=%s status=%s duration=%s", tool, invocation, status, elapsed)
		return result, err
	}
}

// jsonResult encodes v as the tool's text payload.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult maps a workspace error to a tool error message prefixed
// with its class, so callers can distinguish bad input from bad state.
func errorResult(err error) *mcp.CallToolResult {
	var prefix string
	switch workspace.Classify(err) {
	case workspace.KindValidation:
		prefix = "validation error"
	case workspace.KindNotFound:
		prefix = "not found"
	default:
		prefix = "storage error"
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}
