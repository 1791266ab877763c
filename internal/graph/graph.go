// Package graph analyses the dependency graph formed by intents.
//
// The graph is derived, never stored: Build constructs it from an intent
// set on every call and nothing is cached between analyses. Only
// depends_on relations become edges, and relations pointing outside the
// set are dropped, as are relations without a target or a type. An edge a → b means "a depends on b".
//
// Node iteration always follows the order of the input slice, which makes
// every result (including critical-path tie-breaks) reproducible for a
// given input.
package graph

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/intent-mcp/internal/intents"
)

// ErrDuplicateID is returned by Build when two intents share an id.
var ErrDuplicateID = errors.New("duplicate intent id")

// BottleneckThreshold is the number of direct dependents at which an
// intent counts as a bottleneck.
const BottleneckThreshold = 3

// Graph holds the forward and reverse dependency adjacency of an intent set.
type Graph struct {
	order   []string
	nodes   map[string]*intents.Intent
	forward map[string][]string // intent → intents it depends on
	reverse map[string][]string // intent → intents depending on it

	// incoming and outgoing count well-formed relations of any type, used
	// for orphans.
	incoming map[string]int
	outgoing map[string]int
}

// Build derives the dependency graph of list. The input is not modified.
func Build(list []intents.Intent) (*Graph, error) {
	g := &Graph{
		order:    make([]string, 0, len(list)),
		nodes:    make(map[string]*intents.Intent, len(list)),
		forward:  make(map[string][]string, len(list)),
		reverse:  make(map[string][]string, len(list)),
		incoming: make(map[string]int, len(list)),
		outgoing: make(map[string]int, len(list)),
	}

	for i := range list {
		id := list[i].ID
		if _, dup := g.nodes[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		g.nodes[id] = &list[i]
		g.order = append(g.order, id)
	}

	seen := make(map[[2]string]bool)
	for _, id := range g.order {
		for _, rel := range g.nodes[id].Relations {
			if !rel.WellFormed() {
				continue
			}
			g.outgoing[id]++
			if _, ok := g.nodes[rel.TargetID]; !ok {
				continue
			}
			if rel.TargetID != id {
				g.incoming[rel.TargetID]++
			}
			if rel.Type != intents.DependsOn {
				continue
			}
			edge := [2]string{id, rel.TargetID}
			if seen[edge] {
				continue
			}
			seen[edge] = true
			g.forward[id] = append(g.forward[id], rel.TargetID)
			g.reverse[rel.TargetID] = append(g.reverse[rel.TargetID], id)
		}
	}

	return g, nil
}

// Len returns the number of intents in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns the intent ids in input order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Intent returns the intent with the given id.
func (g *Graph) Intent(id string) (*intents.Intent, bool) {
	in, ok := g.nodes[id]
	return in, ok
}

// Dependencies returns the ids id depends on directly.
func (g *Graph) Dependencies(id string) []string {
	return append([]string{}, g.forward[id]...)
}

// Dependents returns the ids that depend on id directly.
func (g *Graph) Dependents(id string) []string {
	return append([]string{}, g.reverse[id]...)
}

// Bottleneck is an intent that at least BottleneckThreshold other intents
// depend on directly.
type Bottleneck struct {
	ID             string
	DependentCount int
	Severity       Severity
}

// Bottlenecks returns every bottleneck in input order.
func (g *Graph) Bottlenecks() []Bottleneck {
	result := []Bottleneck{}
	for _, id := range g.order {
		n := len(g.reverse[id])
		if n < BottleneckThreshold {
			continue
		}
		sev := SeverityWarning
		if g.nodes[id].Status.Unstarted() {
			sev = SeverityCritical
		}
		result = append(result, Bottleneck{ID: id, DependentCount: n, Severity: sev})
	}
	return result
}

// Orphans returns the intents with no relations of any type, in either
// direction. Unlike the dependency edges this looks at every relation type:
// an intent that is only "relates_to"-linked is not an orphan.
func (g *Graph) Orphans() []string {
	result := []string{}
	for _, id := range g.order {
		if g.outgoing[id] == 0 && g.incoming[id] == 0 {
			result = append(result, id)
		}
	}
	return result
}

// StatusDistribution counts intents per status. Every known status is
// present, zero-filled.
func (g *Graph) StatusDistribution() map[intents.Status]int {
	dist := make(map[intents.Status]int, len(intents.Statuses))
	for _, s := range intents.Statuses {
		dist[s] = 0
	}
	for _, id := range g.order {
		dist[g.nodes[id].Status]++
	}
	return dist
}
