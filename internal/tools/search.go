package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/index"
	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

// SearchTool handles the intent_search MCP tool.
// The workspace is indexed fresh on every call, so results always match
// the source.
type SearchTool struct {
	src       intents.Source
	workspace string
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(src intents.Source, workspace string) *SearchTool {
	return &SearchTool{src: src, workspace: workspace}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("intent_search",
		mcp.WithDescription(
			"Full-text search over the intents of a workspace: user goals, objectives, "+
				"expected outcomes and constraints. Results are ranked by relevance.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keywords to search for"),
		),
		workspaceParam(),
		statusParam(),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max results (default: %d, max: %d)", index.DefaultLimit, index.MaxLimit)),
		),
	)
}

// Handle processes the intent_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	ws, errResult := resolveWorkspace(req, t.workspace)
	if errResult != nil {
		return errResult, nil
	}
	status, errResult := parseStatusArg(req)
	if errResult != nil {
		return errResult, nil
	}

	list, err := t.src.ListIntents(ctx, ws)
	if err != nil {
		return sourceError("listing intents", err), nil
	}
	if len(list) == 0 {
		return noIntents(ws), nil
	}

	results, err := index.Search(ctx, list, query, index.Options{
		Status: status,
		Limit:  intArg(req, "limit", index.DefaultLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("searching intents: %w", err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No intents in workspace %q match %q.", ws, query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d intents:\n\n", len(results))
	for i, r := range results {
		goal := r.UserGoal
		if strings.TrimSpace(goal) == "" {
			goal = "Untitled"
		}
		fmt.Fprintf(&b, "%d. **%s** `%s` (%s)\n", i+1, goal, r.ID, r.Status)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
