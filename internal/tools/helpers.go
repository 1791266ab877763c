// Package tools implements the MCP tool handlers.
//
// Each file holds one tool: a struct carrying its dependencies, a
// constructor, Definition for registration and Handle for calls. Tools
// only read through intents.Source, so they behave the same in local and
// cloud mode.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

// workspaceParam is the optional workspace argument shared by most tools.
func workspaceParam() mcp.ToolOption {
	return mcp.WithString("workspace",
		mcp.Description("Workspace ID. Defaults to the server's configured workspace. "+
			"Use intent_list_workspaces to see what is available."),
	)
}

// statusParam is the optional status filter shared by list and search.
func statusParam() mcp.ToolOption {
	names := make([]string, len(intents.Statuses))
	for i, s := range intents.Statuses {
		names[i] = string(s)
	}
	return mcp.WithString("status",
		mcp.Description("Only return intents with this status."),
		mcp.Enum(names...),
	)
}

// resolveWorkspace returns the requested workspace or the default. A nil
// result means the caller may proceed.
func resolveWorkspace(req mcp.CallToolRequest, def string) (string, *mcp.CallToolResult) {
	ws := strings.TrimSpace(req.GetString("workspace", ""))
	if ws == "" {
		ws = def
	}
	if ws == "" {
		return "", mcp.NewToolResultError(
			"No workspace given and no default is configured. " +
				"Call `intent_list_workspaces` and pass one as `workspace`.")
	}
	return ws, nil
}

// parseStatusArg reads the optional status argument.
func parseStatusArg(req mcp.CallToolRequest) (intents.Status, *mcp.CallToolResult) {
	raw := strings.TrimSpace(req.GetString("status", ""))
	if raw == "" {
		return "", nil
	}
	s, err := intents.ParseStatus(raw)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return s, nil
}

// sourceError turns a failed source call into a tool error the agent can
// act on. Source failures never abort the server.
func sourceError(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, intents.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Failed %s: %v", action, err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed %s: %v. Check the server configuration or try again later.", action, err))
}

// noIntents is the text returned for an empty workspace.
func noIntents(workspace string) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("No intents found in workspace %q.", workspace))
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// writeList writes a "## title" section with one bullet per item, or
// nothing when items is empty.
func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}

// intArg extracts a numeric argument from a tool request.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
