package planner

import (
	"reflect"
	"testing"

	"github.com/ashpool/techplan/internal/graph"
)

func explodeFixture(t *testing.T) (*graph.Data, map[string]int) {
	t.Helper()
	// Diamond: top depends on left and right, both depend on base.
	nodes := map[string]graph.Node{
		"base":  costedNode("base", "Base", "X", 1),
		"left":  costedNode("left", "Left", "X", 1, "base"),
		"right": costedNode("right", "Right", "X", 1, "base"),
		"top":   costedNode("top", "Top", "X", 1, "left", "right"),
		"solo":  costedNode("solo", "Solo", "X", 1),
	}
	g := graph.Build(nodes)
	return g, g.IDToIndex
}

func assertDependencySafe(t *testing.T, g *graph.Data, order []int, completed map[int]bool) {
	t.Helper()
	position := make(map[int]int, len(order))
	for pos, idx := range order {
		position[idx] = pos
	}
	for _, idx := range order {
		for _, prereq := range g.Prereqs[idx] {
			if completed[prereq] {
				continue
			}
			prereqPos, ok := position[prereq]
			if !ok {
				t.Errorf("node %s appears without prereq %s", g.NodeIDs[idx], g.NodeIDs[prereq])
				continue
			}
			if prereqPos >= position[idx] {
				t.Errorf("prereq %s at %d not before %s at %d",
					g.NodeIDs[prereq], prereqPos, g.NodeIDs[idx], position[idx])
			}
		}
	}
}

func TestExplodePullsPrereqs(t *testing.T) {
	t.Parallel()

	g, idx := explodeFixture(t)
	order := Explode(g, []int{idx["top"]}, nil)

	if len(order) != 4 {
		t.Fatalf("exploded %d nodes, want 4: %v", len(order), order)
	}
	assertDependencySafe(t, g, order, nil)
	if order[len(order)-1] != idx["top"] {
		t.Errorf("top not last: %v", order)
	}
}

func TestExplodeDiamondOnce(t *testing.T) {
	t.Parallel()

	g, idx := explodeFixture(t)
	order := Explode(g, []int{idx["left"], idx["right"], idx["top"]}, nil)

	seen := make(map[int]int)
	for _, i := range order {
		seen[i]++
	}
	if seen[idx["base"]] != 1 {
		t.Fatalf("base appears %d times in %v", seen[idx["base"]], order)
	}
	assertDependencySafe(t, g, order, nil)
}

func TestExplodeSkipsCompleted(t *testing.T) {
	t.Parallel()

	g, idx := explodeFixture(t)
	completed := map[int]bool{idx["base"]: true, idx["left"]: true}
	order := Explode(g, []int{idx["top"]}, completed)

	want := []int{idx["right"], idx["top"]}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestExplodeCompletedRootEmitsNothing(t *testing.T) {
	t.Parallel()

	g, idx := explodeFixture(t)
	order := Explode(g, []int{idx["solo"]}, map[int]bool{idx["solo"]: true})
	if len(order) != 0 {
		t.Fatalf("order = %v, want empty", order)
	}
}

func TestExplodeSkipsOutOfRange(t *testing.T) {
	t.Parallel()

	g, idx := explodeFixture(t)
	order := Explode(g, []int{-1, g.Size(), idx["solo"]}, nil)
	if !reflect.DeepEqual(order, []int{idx["solo"]}) {
		t.Fatalf("order = %v, want [%d]", order, idx["solo"])
	}
}

func TestExplodeTerminatesOnCycle(t *testing.T) {
	t.Parallel()

	nodes := map[string]graph.Node{
		"a": costedNode("a", "A", "X", 1, "b"),
		"b": costedNode("b", "B", "X", 1, "a"),
	}
	g := graph.Build(nodes)

	order := Explode(g, []int{g.IDToIndex["a"]}, nil)
	if len(order) != 2 {
		t.Fatalf("order = %v, want both cycle members once", order)
	}
}
