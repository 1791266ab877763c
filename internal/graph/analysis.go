package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/intents"
)

var (
	// ErrUnknownKind is returned for an analysis kind ParseKind does not know.
	ErrUnknownKind = errors.New("unknown analysis kind")
	// ErrNoIntents is returned by Run when the workspace has no intents.
	ErrNoIntents = errors.New("no intents found")
)

// --- Analysis kinds ---

// Kind selects which view of the analysis is produced.
type Kind string

const (
	KindFull         Kind = "full"
	KindCriticalPath Kind = "critical-path"
	KindRisks        Kind = "risks"
	KindStatus       Kind = "status"
)

// Kinds lists every analysis kind.
var Kinds = []Kind{KindFull, KindCriticalPath, KindRisks, KindStatus}

// ParseKind converts a raw string into a Kind. Empty means full.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindFull, nil
	}
	for _, k := range Kinds {
		if Kind(s) == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of: full, critical-path, risks, status", ErrUnknownKind, s)
}

// --- Severity ---

// Severity grades a risk.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Risk types reported by the risks view.
const (
	RiskCircularDependency = "circular_dependency"
	RiskBottleneck         = "bottleneck"
)

// --- Result shapes ---
//
// Field names and nesting are consumed by agents and scripts; keep them
// stable.

// Result is one of FullResult, CriticalPathResult, RisksResult or StatusResult.
type Result interface {
	Kind() Kind
}

// NodeRef identifies an intent inside a cycle.
type NodeRef struct {
	ID       string `json:"id"`
	UserGoal string `json:"userGoal"`
}

// PathNode is one step of the critical path.
type PathNode struct {
	ID       string         `json:"id"`
	UserGoal string         `json:"userGoal"`
	Status   intents.Status `json:"status"`
}

// BottleneckNode describes a bottleneck intent.
type BottleneckNode struct {
	ID             string         `json:"id"`
	UserGoal       string         `json:"userGoal"`
	DependentCount int            `json:"dependentCount"`
	Status         intents.Status `json:"status"`
}

// Summary holds totals for the full view.
type Summary struct {
	Total              int                    `json:"total"`
	StatusDistribution map[intents.Status]int `json:"statusDistribution"`
}

// FullResult is the union of every computed fact.
type FullResult struct {
	Summary      Summary          `json:"summary"`
	CriticalPath []PathNode       `json:"criticalPath"`
	Cycles       [][]NodeRef      `json:"cycles"`
	Bottlenecks  []BottleneckNode `json:"bottlenecks"`
	OrphanCount  int              `json:"orphanCount"`
}

// CriticalPathResult is the critical-path view.
type CriticalPathResult struct {
	CriticalPath []PathNode `json:"criticalPath"`
	Length       int        `json:"length"`
}

// Risk is a single entry of the risks view.
type Risk struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// RisksResult is the risks view.
type RisksResult struct {
	Risks []Risk `json:"risks"`
}

// StatusResult is the status view.
type StatusResult struct {
	StatusDistribution map[intents.Status]int `json:"statusDistribution"`
	Total              int                    `json:"total"`
}

func (FullResult) Kind() Kind         { return KindFull }
func (CriticalPathResult) Kind() Kind { return KindCriticalPath }
func (RisksResult) Kind() Kind        { return KindRisks }
func (StatusResult) Kind() Kind       { return KindStatus }

// --- Analysis ---

// Analyze builds the graph of list and produces the requested view.
// An empty list is analysed like any other; callers that want to treat it
// as "nothing to analyze" use Run.
func Analyze(list []intents.Intent, kind Kind) (Result, error) {
	g, err := Build(list)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindFull:
		return g.full(), nil
	case KindCriticalPath:
		path := g.pathNodes(g.CriticalPath())
		return CriticalPathResult{CriticalPath: path, Length: len(path)}, nil
	case KindRisks:
		return RisksResult{Risks: g.Risks()}, nil
	case KindStatus:
		return StatusResult{StatusDistribution: g.StatusDistribution(), Total: g.Len()}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// Run fetches a workspace's intents from src and analyses them. A fetch
// failure is returned before any analysis happens; an empty workspace
// returns ErrNoIntents.
func Run(ctx context.Context, src intents.Source, workspaceID string, kind Kind) (Result, error) {
	list, err := src.ListIntents(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("fetching intents: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrNoIntents
	}
	return Analyze(list, kind)
}

// Risks combines cycles and bottlenecks into a flat list: one critical
// entry per cycle, then one entry per bottleneck graded by its status.
func (g *Graph) Risks() []Risk {
	risks := []Risk{}
	for _, cycle := range g.Cycles() {
		risks = append(risks, Risk{
			Type:     RiskCircularDependency,
			Severity: SeverityCritical,
			Message:  "Circular dependency detected: " + strings.Join(cycle, " → "),
		})
	}
	for _, b := range g.Bottlenecks() {
		in := g.nodes[b.ID]
		msg := fmt.Sprintf("%q (%s) is depended on by %d intents", in.DisplayGoal(), b.ID, b.DependentCount)
		if b.Severity == SeverityCritical {
			msg += fmt.Sprintf(" and is still %s", in.Status)
		}
		risks = append(risks, Risk{Type: RiskBottleneck, Severity: b.Severity, Message: msg})
	}
	return risks
}

func (g *Graph) full() FullResult {
	cycles := g.Cycles()
	refs := make([][]NodeRef, 0, len(cycles))
	for _, cycle := range cycles {
		row := make([]NodeRef, 0, len(cycle))
		for _, id := range cycle {
			row = append(row, NodeRef{ID: id, UserGoal: g.nodes[id].DisplayGoal()})
		}
		refs = append(refs, row)
	}

	bottlenecks := g.Bottlenecks()
	views := make([]BottleneckNode, 0, len(bottlenecks))
	for _, b := range bottlenecks {
		in := g.nodes[b.ID]
		views = append(views, BottleneckNode{
			ID:             b.ID,
			UserGoal:       in.DisplayGoal(),
			DependentCount: b.DependentCount,
			Status:         in.Status,
		})
	}

	return FullResult{
		Summary: Summary{
			Total:              g.Len(),
			StatusDistribution: g.StatusDistribution(),
		},
		CriticalPath: g.pathNodes(g.CriticalPath()),
		Cycles:       refs,
		Bottlenecks:  views,
		OrphanCount:  len(g.Orphans()),
	}
}

func (g *Graph) pathNodes(ids []string) []PathNode {
	out := make([]PathNode, 0, len(ids))
	for _, id := range ids {
		in := g.nodes[id]
		out = append(out, PathNode{ID: id, UserGoal: in.DisplayGoal(), Status: in.Status})
	}
	return out
}
