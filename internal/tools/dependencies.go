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

// DependenciesTool handles the intent_dependencies MCP tool.
// It shows one intent's neighbourhood in the dependency graph.
type DependenciesTool struct {
	src       intents.Source
	workspace string
}

// NewDependenciesTool creates a DependenciesTool.
func NewDependenciesTool(src intents.Source, workspace string) *DependenciesTool {
	return &DependenciesTool{src: src, workspace: workspace}
}

// Definition returns the MCP tool definition for registration.
func (t *DependenciesTool) Definition() mcp.Tool {
	return mcp.NewTool("intent_dependencies",
		mcp.WithDescription(
			"Show what an intent depends on, what depends on it, and which of its "+
				"dependencies are not started yet. Use before picking up work to see what blocks it.",
		),
		mcp.WithString("intent_id",
			mcp.Required(),
			mcp.Description("The intent ID."),
		),
		workspaceParam(),
	)
}

// Handle processes the intent_dependencies tool call.
func (t *DependenciesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("intent_id", ""))
	if id == "" {
		return mcp.NewToolResultError("`intent_id` is required."), nil
	}
	ws, errResult := resolveWorkspace(req, t.workspace)
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

	g, err := graph.Build(list)
	if err != nil {
		if errors.Is(err, graph.ErrDuplicateID) {
			return mcp.NewToolResultError(fmt.Sprintf("Workspace %q is inconsistent: %v", ws, err)), nil
		}
		return nil, fmt.Errorf("building graph: %w", err)
	}

	in, ok := g.Intent(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Intent %q not found in workspace %q. Use `intent_list` to see available IDs.", id, ws)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Dependencies of `%s`\n\n", in.ID)
	fmt.Fprintf(&sb, "**Goal:** %s\n**Status:** %s\n", in.DisplayGoal(), in.Status)

	deps := g.Dependencies(id)
	var blocking []string
	for _, dep := range deps {
		if d, _ := g.Intent(dep); d.Status.Unstarted() {
			blocking = append(blocking, dep)
		}
	}

	writeList(&sb, "Depends on", describe(g, deps))
	writeList(&sb, "Depended on by", describe(g, g.Dependents(id)))
	writeList(&sb, "Not started yet", describe(g, blocking))
	writeList(&sb, "Missing targets", missingTargets(g, in))

	var other []string
	for _, r := range in.Relations {
		if r.Type != intents.DependsOn && r.WellFormed() {
			other = append(other, fmt.Sprintf("%s `%s`", r.Type, r.TargetID))
		}
	}
	writeList(&sb, "Other relations", other)

	if len(deps) == 0 && len(g.Dependents(id)) == 0 {
		sb.WriteString("\nThis intent has no dependencies in either direction.\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// describe renders ids as "`id` goal (status)" lines.
func describe(g *graph.Graph, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		in, _ := g.Intent(id)
		out = append(out, fmt.Sprintf("`%s` %s (%s)", id, in.DisplayGoal(), in.Status))
	}
	return out
}

// missingTargets lists depends_on targets that are not in the workspace.
func missingTargets(g *graph.Graph, in *intents.Intent) []string {
	var out []string
	for _, target := range in.DependsOnIDs() {
		if _, ok := g.Intent(target); !ok {
			out = append(out, "`"+target+"`")
		}
	}
	return out
}
