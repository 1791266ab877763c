package graph

import (
	"fmt"
	"testing"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node builds an intent that depends on deps.
func node(id string, status intents.Status, deps ...string) intents.Intent {
	in := intents.Intent{ID: id, Status: status, UserGoal: "Goal " + id}
	for _, d := range deps {
		in.Relations = append(in.Relations, intents.Relation{TargetID: d, Type: intents.DependsOn})
	}
	return in
}

func mustBuild(t *testing.T, list []intents.Intent) *Graph {
	t.Helper()
	g, err := Build(list)
	require.NoError(t, err)
	return g
}

func TestBuild_AdjacencyIsSymmetric(t *testing.T) {
	list := []intents.Intent{
		node("a", intents.StatusDraft, "b", "c"),
		node("b", intents.StatusDraft, "c"),
		node("c", intents.StatusDraft),
	}
	g := mustBuild(t, list)

	for _, id := range g.IDs() {
		for _, dep := range g.Dependencies(id) {
			assert.Contains(t, g.Dependents(dep), id, "edge %s→%s missing from reverse", id, dep)
		}
	}
	assert.Equal(t, []string{"b", "c"}, g.Dependencies("a"))
	assert.Equal(t, []string{"a", "b"}, g.Dependents("c"))
}

func TestBuild_DropsDanglingAndNonDependencyRelations(t *testing.T) {
	a := node("a", intents.StatusDraft, "ghost", "b")
	a.Relations = append(a.Relations, intents.Relation{TargetID: "b", Type: intents.RelatesTo})
	g := mustBuild(t, []intents.Intent{a, node("b", intents.StatusDraft)})

	assert.Equal(t, []string{"b"}, g.Dependencies("a"))
	assert.Empty(t, g.Dependencies("b"))
}

func TestBuild_DropsMalformedRelations(t *testing.T) {
	a := intents.Intent{ID: "a", Status: intents.StatusDraft, Relations: []intents.Relation{
		{TargetID: "b"},
		{Type: intents.DependsOn},
	}}
	g := mustBuild(t, []intents.Intent{a, node("b", intents.StatusDraft)})

	assert.Empty(t, g.Dependencies("a"))
	assert.Empty(t, g.Dependents("b"))
	assert.Equal(t, []string{"a", "b"}, g.Orphans())

	res, err := Analyze([]intents.Intent{a, node("b", intents.StatusDraft)}, KindFull)
	require.NoError(t, err)
	full, ok := res.(FullResult)
	require.True(t, ok)
	assert.Equal(t, 2, full.OrphanCount)
	assert.Empty(t, full.Cycles)
}

func TestBuild_CollapsesDuplicateEdges(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft, "b", "b"),
		node("b", intents.StatusDraft),
	})
	assert.Equal(t, []string{"b"}, g.Dependencies("a"))
	assert.Equal(t, []string{"a"}, g.Dependents("b"))
}

func TestBuild_DuplicateIDFailsFast(t *testing.T) {
	_, err := Build([]intents.Intent{
		node("a", intents.StatusDraft),
		node("a", intents.StatusShipped),
	})
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Contains(t, err.Error(), `"a"`)

	_, err = Analyze([]intents.Intent{node("x", intents.StatusDraft), node("x", intents.StatusDraft)}, KindStatus)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	list := []intents.Intent{
		node("a", intents.StatusDraft, "b", "ghost"),
		node("b", intents.StatusDraft, "a"),
	}
	before := fmt.Sprintf("%+v", list)

	_, err := Analyze(list, KindFull)
	require.NoError(t, err)

	assert.Equal(t, before, fmt.Sprintf("%+v", list))
}

// --- Cycles ---

func TestCycles_NoEdges(t *testing.T) {
	g := mustBuild(t, []intents.Intent{node("a", intents.StatusDraft), node("b", intents.StatusDraft)})
	assert.Empty(t, g.Cycles())
	assert.False(t, g.HasCycle())
}

func TestCycles_ThreeCycle(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft, "b"),
		node("b", intents.StatusDraft, "c"),
		node("c", intents.StatusDraft, "a"),
	})

	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycles[0])
}

func TestCycles_SelfLoop(t *testing.T) {
	g := mustBuild(t, []intents.Intent{node("a", intents.StatusDraft, "a")})
	assert.Equal(t, [][]string{{"a", "a"}}, g.Cycles())
	assert.Empty(t, g.CriticalPath())
}

func TestCycles_OneRecordPerBackEdge(t *testing.T) {
	// a → b → a and a → b → c → a share the edge a → b; the DFS sees two
	// back edges into a and reports both.
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft, "b"),
		node("b", intents.StatusDraft, "a", "c"),
		node("c", intents.StatusDraft, "a"),
	})

	assert.Equal(t, [][]string{
		{"a", "b", "a"},
		{"a", "b", "c", "a"},
	}, g.Cycles())
}

func TestCycles_DisjointCycles(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft, "b"),
		node("b", intents.StatusDraft, "a"),
		node("x", intents.StatusDraft, "y"),
		node("y", intents.StatusDraft, "x"),
		node("free", intents.StatusDraft),
	})
	assert.Equal(t, [][]string{{"a", "b", "a"}, {"x", "y", "x"}}, g.Cycles())
}

func TestCycles_DiamondIsNotACycle(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("top", intents.StatusDraft, "left", "right"),
		node("left", intents.StatusDraft, "bottom"),
		node("right", intents.StatusDraft, "bottom"),
		node("bottom", intents.StatusDraft),
	})
	assert.Empty(t, g.Cycles())
}

func TestCycles_DeepChainDoesNotRecurse(t *testing.T) {
	const n = 100000
	list := make([]intents.Intent, n)
	for i := 0; i < n; i++ {
		if i+1 < n {
			list[i] = node(fmt.Sprintf("n%d", i), intents.StatusDraft, fmt.Sprintf("n%d", i+1))
		} else {
			list[i] = node(fmt.Sprintf("n%d", i), intents.StatusDraft, "n0")
		}
	}
	g := mustBuild(t, list)

	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], n+1)
	assert.Equal(t, "n0", cycles[0][0])
	assert.Equal(t, "n0", cycles[0][n])
}

// --- Critical path ---

func TestCriticalPath_LinearChain(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft, "b"),
		node("b", intents.StatusDraft, "c"),
		node("c", intents.StatusDraft),
	})
	assert.Equal(t, []string{"c", "b", "a"}, g.CriticalPath())
}

func TestCriticalPath_CyclicGraphIsEmpty(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft, "b"),
		node("b", intents.StatusDraft, "c"),
		node("c", intents.StatusDraft, "a"),
		node("d", intents.StatusDraft, "e"),
		node("e", intents.StatusDraft),
	})
	path := g.CriticalPath()
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func TestCriticalPath_NoEdgesIsSingleNode(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft),
		node("b", intents.StatusDraft),
		node("c", intents.StatusDraft),
	})
	assert.Equal(t, []string{"a"}, g.CriticalPath())
}

func TestCriticalPath_Empty(t *testing.T) {
	g := mustBuild(t, nil)
	assert.Empty(t, g.CriticalPath())
}

func TestCriticalPath_PicksLongestBranch(t *testing.T) {
	// app depends on api (depth 2 via db) and on ui (depth 1).
	g := mustBuild(t, []intents.Intent{
		node("app", intents.StatusDraft, "ui", "api"),
		node("ui", intents.StatusDraft),
		node("api", intents.StatusDraft, "db"),
		node("db", intents.StatusDraft),
	})
	assert.Equal(t, []string{"db", "api", "app"}, g.CriticalPath())
}

func TestCriticalPath_TieGoesToFirstInInputOrder(t *testing.T) {
	list := []intents.Intent{
		node("x1", intents.StatusDraft, "x0"),
		node("y1", intents.StatusDraft, "y0"),
		node("x0", intents.StatusDraft),
		node("y0", intents.StatusDraft),
	}
	g := mustBuild(t, list)
	assert.Equal(t, []string{"x0", "x1"}, g.CriticalPath())

	reordered := []intents.Intent{list[3], list[1], list[2], list[0]}
	assert.Equal(t, []string{"y0", "y1"}, mustBuild(t, reordered).CriticalPath())
}

// --- Bottlenecks ---

func TestBottlenecks(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("core", intents.StatusDraft),
		node("lib", intents.StatusShipped),
		node("a", intents.StatusDraft, "core", "lib"),
		node("b", intents.StatusDraft, "core", "lib"),
		node("c", intents.StatusDraft, "core", "lib"),
		node("d", intents.StatusDraft, "core"),
		node("small", intents.StatusDraft),
		node("e", intents.StatusDraft, "small"),
		node("f", intents.StatusDraft, "small"),
	})

	assert.Equal(t, []Bottleneck{
		{ID: "core", DependentCount: 4, Severity: SeverityCritical},
		{ID: "lib", DependentCount: 3, Severity: SeverityWarning},
	}, g.Bottlenecks())
}

func TestBottlenecks_SeverityByStatus(t *testing.T) {
	tests := []struct {
		status intents.Status
		want   Severity
	}{
		{intents.StatusDraft, SeverityCritical},
		{intents.StatusValidated, SeverityCritical},
		{intents.StatusApproved, SeverityWarning},
		{intents.StatusShipped, SeverityWarning},
		{intents.StatusVerified, SeverityWarning},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			g := mustBuild(t, []intents.Intent{
				node("hub", tt.status),
				node("a", intents.StatusDraft, "hub"),
				node("b", intents.StatusDraft, "hub"),
				node("c", intents.StatusDraft, "hub"),
			})
			bs := g.Bottlenecks()
			require.Len(t, bs, 1)
			assert.Equal(t, tt.want, bs[0].Severity)
		})
	}
}

// --- Orphans ---

func TestOrphans(t *testing.T) {
	related := intents.Intent{ID: "linker", Status: intents.StatusDraft, Relations: []intents.Relation{
		{TargetID: "target", Type: intents.RelatesTo},
	}}
	dangling := intents.Intent{ID: "dangling", Status: intents.StatusDraft, Relations: []intents.Relation{
		{TargetID: "missing", Type: intents.DependsOn},
	}}

	g := mustBuild(t, []intents.Intent{
		node("lonely", intents.StatusDraft),
		related,
		node("target", intents.StatusDraft),
		dangling,
		node("dep", intents.StatusDraft, "base"),
		node("base", intents.StatusDraft),
	})

	// target has no outgoing relations but is referenced via relates_to.
	assert.Equal(t, []string{"lonely"}, g.Orphans())
}

func TestOrphans_EveryRelationTypeCounts(t *testing.T) {
	for _, typ := range []intents.RelationType{
		intents.RelatesTo, intents.Blocks, intents.Implements, intents.Supersedes,
	} {
		t.Run(string(typ), func(t *testing.T) {
			src := intents.Intent{ID: "src", Status: intents.StatusDraft, Relations: []intents.Relation{
				{TargetID: "dst", Type: typ},
			}}
			g := mustBuild(t, []intents.Intent{src, node("dst", intents.StatusDraft), node("alone", intents.StatusDraft)})

			assert.Equal(t, []string{"alone"}, g.Orphans())
			assert.Empty(t, g.Dependencies("src"), "only depends_on forms edges")
		})
	}
}

// --- Status distribution ---

func TestStatusDistribution_ZeroFilled(t *testing.T) {
	g := mustBuild(t, []intents.Intent{
		node("a", intents.StatusDraft),
		node("b", intents.StatusDraft),
		node("c", intents.StatusShipped),
	})
	dist := g.StatusDistribution()

	require.Len(t, dist, len(intents.Statuses))
	sum := 0
	for _, s := range intents.Statuses {
		count, ok := dist[s]
		assert.True(t, ok, "status %s missing", s)
		sum += count
	}
	assert.Equal(t, 2, dist[intents.StatusDraft])
	assert.Equal(t, 1, dist[intents.StatusShipped])
	assert.Equal(t, 0, dist[intents.StatusVerified])
	assert.Equal(t, g.Len(), sum)
}
