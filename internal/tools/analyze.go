package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/graph"
	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyzeTool handles the intent_analyze MCP tool.
type AnalyzeTool struct {
	src       intents.Source
	workspace string
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(src intents.Source, workspace string) *AnalyzeTool {
	return &AnalyzeTool{src: src, workspace: workspace}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeTool) Definition() mcp.Tool {
	kinds := make([]string, len(graph.Kinds))
	for i, k := range graph.Kinds {
		kinds[i] = string(k)
	}
	return mcp.NewTool("intent_analyze",
		mcp.WithDescription(
			"Analyze the dependency graph of a workspace. "+
				"`full` returns a summary, the critical path, cycles, bottlenecks and the orphan count; "+
				"`critical-path` the longest dependency chain in build order; "+
				"`risks` circular dependencies and bottlenecks with a severity; "+
				"`status` the status distribution. Output is JSON.",
		),
		mcp.WithString("kind",
			mcp.Description("Analysis to run (default: full)"),
			mcp.Enum(kinds...),
		),
		workspaceParam(),
	)
}

// Handle processes the intent_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := graph.ParseKind(strings.TrimSpace(req.GetString("kind", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ws, errResult := resolveWorkspace(req, t.workspace)
	if errResult != nil {
		return errResult, nil
	}

	res, err := graph.Run(ctx, t.src, ws, kind)
	switch {
	case errors.Is(err, graph.ErrNoIntents):
		return noIntents(ws), nil
	case errors.Is(err, graph.ErrDuplicateID):
		return mcp.NewToolResultError(fmt.Sprintf("Workspace %q is inconsistent: %v", ws, err)), nil
	case err != nil:
		return sourceError("analyzing intents", err), nil
	}
	return jsonResult(res)
}
