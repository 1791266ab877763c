package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListTool handles the intent_list MCP tool.
type ListTool struct {
	src       intents.Source
	workspace string
}

// NewListTool creates a ListTool. workspace is used when a call names none.
func NewListTool(src intents.Source, workspace string) *ListTool {
	return &ListTool{src: src, workspace: workspace}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("intent_list",
		mcp.WithDescription(
			"List the intents of a workspace: ID, status, user goal and what each one depends on. "+
				"Optionally filter by status.",
		),
		workspaceParam(),
		statusParam(),
	)
}

// Handle processes the intent_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	filtered := intents.FilterByStatus(list, status)
	if len(filtered) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No %s intents in workspace %q (%d intents total).", status, ws, len(list))), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Intents in `%s`\n\n", ws)
	if status != "" {
		fmt.Fprintf(&sb, "Showing %d of %d intents with status **%s**.\n\n", len(filtered), len(list), status)
	}
	sb.WriteString("| ID | Status | Goal | Depends on |\n")
	sb.WriteString("|----|--------|------|------------|\n")
	for _, in := range filtered {
		deps := "—"
		if ids := in.DependsOnIDs(); len(ids) > 0 {
			deps = "`" + strings.Join(ids, "`, `") + "`"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", in.ID, in.Status, cell(in.DisplayGoal()), deps)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
