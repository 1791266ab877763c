package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListWorkspacesTool handles the intent_list_workspaces MCP tool.
type ListWorkspacesTool struct {
	src intents.Source
}

// NewListWorkspacesTool creates a ListWorkspacesTool.
func NewListWorkspacesTool(src intents.Source) *ListWorkspacesTool {
	return &ListWorkspacesTool{src: src}
}

// Definition returns the MCP tool definition for registration.
func (t *ListWorkspacesTool) Definition() mcp.Tool {
	return mcp.NewTool("intent_list_workspaces",
		mcp.WithDescription(
			"List the workspaces that hold intents, with the number of intents in each. "+
				"Use the returned ID as the `workspace` argument of the other intent tools.",
		),
	)
}

// Handle processes the intent_list_workspaces tool call.
func (t *ListWorkspacesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaces, err := t.src.ListWorkspaces(ctx)
	if err != nil {
		return sourceError("listing workspaces", err), nil
	}
	if len(workspaces) == 0 {
		return mcp.NewToolResultText("No workspaces found."), nil
	}

	var sb strings.Builder
	sb.WriteString("# Workspaces\n\n")
	sb.WriteString("| ID | Name | Intents | Description |\n")
	sb.WriteString("|----|------|---------|-------------|\n")
	for _, ws := range workspaces {
		fmt.Fprintf(&sb, "| `%s` | %s | %d | %s |\n",
			ws.ID, cell(ws.Name), ws.IntentCount, cell(ws.Description))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
