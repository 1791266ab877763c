package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanPrompt handles the intent-plan MCP prompt.
// It asks the AI to turn the critical path into a work order.
type PlanPrompt struct{}

// NewPlanPrompt creates a PlanPrompt.
func NewPlanPrompt() *PlanPrompt {
	return &PlanPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("intent-plan",
		mcp.WithPromptDescription(
			"Plan what to build next: order unfinished intents along the critical path "+
				"so nothing is started before what it depends on.",
		),
		mcp.WithArgument("workspace",
			mcp.ArgumentDescription("Workspace to plan. Defaults to the server's configured workspace."),
		),
	)
}

// Handle processes the intent-plan prompt request.
func (p *PlanPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	ws := workspaceArg(req)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Plan work for %s", clauseOrDefault(ws)),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me plan the next work in %s.\n\n"+
						"1. Run `intent_analyze` with kind='critical-path'%s\n"+
						"2. If the path is empty, run `intent_analyze` with kind='risks'%s: a cycle is blocking planning, explain it first\n"+
						"3. Otherwise walk the path from the start and pick the first intents that are still draft or validated\n"+
						"4. Run `intent_get` on each pick and summarise its objectives and constraints\n"+
						"5. Propose an order of work, noting anything off the critical path that can run in parallel",
					clauseOrDefault(ws), workspaceClause(ws), workspaceClause(ws),
				)),
			},
		},
	}, nil
}
