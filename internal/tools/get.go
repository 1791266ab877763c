package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetTool handles the intent_get MCP tool.
// It renders one intent in full, relations included.
type GetTool struct {
	src       intents.Source
	workspace string
}

// NewGetTool creates a GetTool.
func NewGetTool(src intents.Source, workspace string) *GetTool {
	return &GetTool{src: src, workspace: workspace}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("intent_get",
		mcp.WithDescription(
			"Get one intent in full: user goal, objectives, expected outcomes, constraints and relations.",
		),
		mcp.WithString("intent_id",
			mcp.Required(),
			mcp.Description("The intent ID."),
		),
		workspaceParam(),
	)
}

// Handle processes the intent_get tool call.
func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("intent_id")
	if err != nil || strings.TrimSpace(id) == "" {
		return mcp.NewToolResultError("`intent_id` is required."), nil
	}
	ws, errResult := resolveWorkspace(req, t.workspace)
	if errResult != nil {
		return errResult, nil
	}

	in, err := t.src.GetIntent(ctx, ws, id)
	if err != nil {
		if errors.Is(err, intents.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Intent %q not found in workspace %q. Use `intent_list` to see available IDs.", id, ws)), nil
		}
		return sourceError("getting intent", err), nil
	}

	return mcp.NewToolResultText(renderIntent(in)), nil
}

func renderIntent(in *intents.Intent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", in.DisplayGoal())
	fmt.Fprintf(&sb, "**ID:** `%s`\n", in.ID)
	fmt.Fprintf(&sb, "**Status:** %s\n", in.Status)
	if in.WorkspaceID != "" {
		fmt.Fprintf(&sb, "**Workspace:** `%s`\n", in.WorkspaceID)
	}
	if in.CreatedAt != "" {
		fmt.Fprintf(&sb, "**Created:** %s\n", in.CreatedAt)
	}
	if in.UpdatedAt != "" {
		fmt.Fprintf(&sb, "**Updated:** %s\n", in.UpdatedAt)
	}
	if in.Source != "" {
		fmt.Fprintf(&sb, "**Source:** %s\n", in.Source)
	}

	writeList(&sb, "Objectives", in.Objectives)
	writeList(&sb, "Expected Outcomes", in.Outcomes)
	writeList(&sb, "Constraints", in.Constraints)

	rels := make([]string, 0, len(in.Relations))
	for _, r := range in.Relations {
		rels = append(rels, fmt.Sprintf("%s `%s`", r.Type, r.TargetID))
	}
	writeList(&sb, "Relations", rels)

	return sb.String()
}
