// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it picks the intent source for the
// configured mode and injects it into the tools, prompts and resources.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/HendryAvila/intent-mcp/internal/cloud"
	"github.com/HendryAvila/intent-mcp/internal/config"
	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/HendryAvila/intent-mcp/internal/prompts"
	"github.com/HendryAvila/intent-mcp/internal/resources"
	"github.com/HendryAvila/intent-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewSource returns the intent source for cfg.Mode. The cleanup function
// is always non-nil.
func NewSource(cfg config.Config, log *zap.Logger) (intents.Source, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Mode {
	case config.ModeLocal:
		if _, err := os.Stat(cfg.Dir); errors.Is(err, os.ErrNotExist) {
			log.Warn("intents directory does not exist yet; workspaces will be empty",
				zap.String("dir", cfg.Dir))
		}
		return intents.NewFileStore(cfg.Dir), noop, nil

	case config.ModeCloud:
		client, err := cloud.New(cloud.Config{
			BaseURL:   cfg.API.URL,
			APIKey:    cfg.API.Key,
			Timeout:   cfg.API.Timeout,
			UserAgent: "intent-mcp/" + Version,
			Breaker: cloud.BreakerConfig{
				MaxRequests:      cfg.Breaker.MaxRequests,
				Interval:         cfg.Breaker.Interval,
				Timeout:          cfg.Breaker.Timeout,
				FailureThreshold: cfg.Breaker.FailureThreshold,
				MinRequests:      cfg.Breaker.MinRequests,
			},
		}, log)
		if err != nil {
			return nil, noop, fmt.Errorf("creating intents API client: %w", err)
		}
		if cfg.API.Key == "" {
			log.Warn("no API key configured; requests are sent unauthenticated")
		}
		return client, closer(client), nil

	default:
		return nil, noop, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function releases the source and must be called on
// shutdown. It is always non-nil.
func New(cfg config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}

	src, cleanup, err := NewSource(cfg, log)
	if err != nil {
		return nil, noop, err
	}
	ws := cfg.DefaultWorkspace()

	s := server.NewMCPServer(
		"intent-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(logToolCalls(log.Named("tools"))),
		server.WithInstructions(serverInstructions(cfg.Mode, ws)),
	)

	// --- Register tools ---

	listWorkspaces := tools.NewListWorkspacesTool(src)
	s.AddTool(listWorkspaces.Definition(), listWorkspaces.Handle)

	listTool := tools.NewListTool(src, ws)
	s.AddTool(listTool.Definition(), listTool.Handle)

	getTool := tools.NewGetTool(src, ws)
	s.AddTool(getTool.Definition(), getTool.Handle)

	searchTool := tools.NewSearchTool(src, ws)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	depsTool := tools.NewDependenciesTool(src, ws)
	s.AddTool(depsTool.Definition(), depsTool.Handle)

	analyzeTool := tools.NewAnalyzeTool(src, ws)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	// --- Register prompts ---

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	planPrompt := prompts.NewPlanPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(src, ws)
	s.AddResource(resourceHandler.WorkspacesResource(), resourceHandler.HandleWorkspaces)
	s.AddResource(resourceHandler.AnalysisResource(), resourceHandler.HandleAnalysis)
	s.AddResourceTemplate(resourceHandler.AnalysisResourceTemplate(), resourceHandler.HandleWorkspaceAnalysis)

	log.Info("server ready",
		zap.String("mode", cfg.Mode),
		zap.String("default_workspace", ws),
		zap.String("version", Version),
	)
	return s, cleanup, nil
}

// logToolCalls logs every tool call with its duration and outcome.
func logToolCalls(log *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, req)

			fields := []zap.Field{
				zap.String("tool", req.Params.Name),
				zap.Duration("elapsed", time.Since(start)),
			}
			switch {
			case err != nil:
				log.Error("tool call failed", append(fields, zap.Error(err))...)
			case result != nil && result.IsError:
				log.Info("tool call returned an error result", fields...)
			default:
				log.Debug("tool call completed", fields...)
			}
			return result, err
		}
	}
}

// noop is the cleanup for sources that hold nothing.
func noop() {}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// serverInstructions returns the system instructions that tell the AI
// how to use the intent tools.
func serverInstructions(mode, workspace string) string {
	defaultWS := "No default workspace is configured: always pass `workspace`."
	if workspace != "" {
		defaultWS = fmt.Sprintf("Calls without `workspace` use %q.", workspace)
	}

	return fmt.Sprintf(`You have access to intent-mcp, a read-only view of the project's intents.

An intent is a structured specification: a user goal, objectives, expected
outcomes and constraints, plus typed relations to other intents. Intents move
through the statuses draft, validated, approved, shipped and verified.
"depends_on" relations form the dependency graph.

Source: %s mode. %s

## Tools
- intent_list_workspaces: find workspace IDs
- intent_list: overview of a workspace, optionally filtered by status
- intent_get: one intent in full
- intent_search: keyword search over goals, objectives, outcomes, constraints
- intent_dependencies: what one intent depends on and what depends on it
- intent_analyze: graph analysis as JSON (full, critical-path, risks, status)

## How to use them
- Before starting work on an intent, call intent_dependencies and make sure
  nothing it depends on is still draft or validated.
- When asked "what next?", use intent_analyze kind=critical-path. The path
  is listed in build order: dependencies first.
- An empty critical path with intents present means the graph has a cycle.
  Run intent_analyze kind=risks and report the cycle before planning.
- A bottleneck is an intent at least three others depend on. Bottlenecks still
  in draft or validated are critical: raise them with the user.

These tools never modify intents.`, mode, defaultWS)
}
