// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a sequence of intent tools. Unlike tools, which
// the AI calls, prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// workspaceArg reads the optional workspace argument.
func workspaceArg(req mcp.GetPromptRequest) string {
	if args := req.Params.Arguments; args != nil {
		return args["workspace"]
	}
	return ""
}

// workspaceClause renders the workspace argument for tool instructions.
func workspaceClause(ws string) string {
	if ws == "" {
		return ""
	}
	return fmt.Sprintf(" with workspace='%s'", ws)
}

// ReviewPrompt handles the intent-review MCP prompt.
// It asks the AI to run a risk review of the dependency graph.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("intent-review",
		mcp.WithPromptDescription(
			"Review the health of a workspace's intent graph: circular dependencies, "+
				"bottlenecks still in draft, and intents nobody links to.",
		),
		mcp.WithArgument("workspace",
			mcp.ArgumentDescription("Workspace to review. Defaults to the server's configured workspace."),
		),
	)
}

// Handle processes the intent-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	ws := workspaceArg(req)
	where := clauseOrDefault(ws)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review intent graph of %s", where),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please review the intent dependency graph of %s.\n\n"+
						"1. Run `intent_analyze` with kind='risks'%s\n"+
						"2. For every circular dependency, explain which relation should be removed to break it\n"+
						"3. For every bottleneck, run `intent_dependencies` on it and say what unblocks the most work\n"+
						"4. Run `intent_analyze` with kind='full'%s and list any orphaned intents\n"+
						"5. Finish with a short, prioritised list of fixes",
					where, workspaceClause(ws), workspaceClause(ws),
				)),
			},
		},
	}, nil
}

func clauseOrDefault(ws string) string {
	if ws == "" {
		return "the default workspace"
	}
	return fmt.Sprintf("workspace '%s'", ws)
}
