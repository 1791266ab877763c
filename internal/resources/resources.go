// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can attach as context.
// They use URI-based addressing (intents://...).
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/graph"
	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// WorkspacesURI lists the workspaces.
	WorkspacesURI = "intents://workspaces"
	// AnalysisURI is the full analysis of the default workspace.
	AnalysisURI = "intents://analysis"
	// AnalysisTemplate addresses the full analysis of any workspace.
	AnalysisTemplate = "intents://workspaces/{workspace}/analysis"

	workspacePrefix = "intents://workspaces/"
	analysisSuffix  = "/analysis"
	mimeJSON        = "application/json"
)

// Handler manages intent resource endpoints.
type Handler struct {
	src       intents.Source
	workspace string
}

// NewHandler creates a resource Handler. workspace backs AnalysisURI.
func NewHandler(src intents.Source, workspace string) *Handler {
	return &Handler{src: src, workspace: workspace}
}

// WorkspacesResource returns the MCP resource definition for the workspace list.
func (h *Handler) WorkspacesResource() mcp.Resource {
	return mcp.NewResource(
		WorkspacesURI,
		"Intent workspaces",
		mcp.WithResourceDescription("Workspaces that hold intents, with intent counts"),
		mcp.WithMIMEType(mimeJSON),
	)
}

// HandleWorkspaces returns the workspace list as JSON.
func (h *Handler) HandleWorkspaces(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workspaces, err := h.src.ListWorkspaces(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, map[string]any{"workspaces": workspaces})
}

// AnalysisResource returns the MCP resource definition for the default
// workspace's analysis.
func (h *Handler) AnalysisResource() mcp.Resource {
	return mcp.NewResource(
		AnalysisURI,
		"Intent graph analysis",
		mcp.WithResourceDescription("Full dependency analysis of the default workspace"),
		mcp.WithMIMEType(mimeJSON),
	)
}

// HandleAnalysis analyses the default workspace.
func (h *Handler) HandleAnalysis(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.workspace == "" {
		return errorResource(req.Params.URI, "no default workspace configured; read "+
			workspacePrefix+"<id>"+analysisSuffix+" instead"), nil
	}
	return h.analysis(ctx, req.Params.URI, h.workspace)
}

// AnalysisResourceTemplate returns the MCP template for per-workspace analysis.
func (h *Handler) AnalysisResourceTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		AnalysisTemplate,
		"Workspace graph analysis",
		mcp.WithTemplateDescription("Full dependency analysis of one workspace: critical path, cycles, bottlenecks, orphans"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
}

// HandleWorkspaceAnalysis analyses the workspace named in the URI.
func (h *Handler) HandleWorkspaceAnalysis(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ws, ok := workspaceFromURI(req.Params.URI)
	if !ok {
		return nil, fmt.Errorf("unexpected resource URI %q", req.Params.URI)
	}
	return h.analysis(ctx, req.Params.URI, ws)
}

func (h *Handler) analysis(ctx context.Context, uri, ws string) ([]mcp.ResourceContents, error) {
	res, err := graph.Run(ctx, h.src, ws, graph.KindFull)
	if errors.Is(err, graph.ErrNoIntents) {
		return errorResource(uri, fmt.Sprintf("no intents found in workspace %q", ws)), nil
	}
	if err != nil {
		return errorResource(uri, err.Error()), nil
	}
	return jsonResource(uri, res)
}

// workspaceFromURI extracts {workspace} from an AnalysisTemplate URI.
func workspaceFromURI(uri string) (string, bool) {
	if !strings.HasPrefix(uri, workspacePrefix) || !strings.HasSuffix(uri, analysisSuffix) {
		return "", false
	}
	ws := strings.TrimSuffix(strings.TrimPrefix(uri, workspacePrefix), analysisSuffix)
	if ws == "" || strings.Contains(ws, "/") {
		return "", false
	}
	return ws, true
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
