package explorer

import (
	"testing"

	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
)

// chainFixture builds base -> mid -> top plus an unrelated island node.
func chainFixture(t *testing.T) (*Explorer, *graph.Data) {
	t.Helper()
	nodes := map[string]graph.Node{
		"base": {ID: "base", FriendlyName: "Base", Type: graph.NodeTypeTech, Category: "Energy"},
		"mid": {ID: "mid", FriendlyName: "Mid", Type: graph.NodeTypeTech, Category: "Energy",
			Prereqs: []string{"base"}},
		"top": {ID: "top", FriendlyName: "Top", Type: graph.NodeTypeProject, Category: "Materials",
			Prereqs: []string{"mid"}},
		"island": {ID: "island", FriendlyName: "Island", Type: graph.NodeTypeTech},
	}
	g := graph.Build(nodes)
	return New(g), g
}

func nodeByID(t *testing.T, view *View, g *graph.Data, id string) NodeView {
	t.Helper()
	return view.Nodes[g.IDToIndex[id]]
}

func TestBuildViewClosures(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	view := e.BuildView(g.IDToIndex["mid"], nil, nil, DefaultFilters())

	base := nodeByID(t, view, g, "base")
	top := nodeByID(t, view, g, "top")
	mid := nodeByID(t, view, g, "mid")
	island := nodeByID(t, view, g, "island")

	if !mid.Selected {
		t.Error("mid not marked selected")
	}
	if !base.Prerequisite || base.Dependent {
		t.Errorf("base closure flags = (prereq %t, dep %t)", base.Prerequisite, base.Dependent)
	}
	if !top.Dependent || top.Prerequisite {
		t.Errorf("top closure flags = (prereq %t, dep %t)", top.Prerequisite, top.Dependent)
	}
	if island.Prerequisite || island.Dependent || island.Selected {
		t.Error("island carries closure flags")
	}
}

func TestBuildViewNoSelection(t *testing.T) {
	t.Parallel()

	e, _ := chainFixture(t)
	view := e.BuildView(NoSelection, nil, nil, DefaultFilters())
	if view.Selected != NoSelection {
		t.Fatalf("Selected = %d, want NoSelection", view.Selected)
	}
	for _, node := range view.Nodes {
		if node.Selected || node.Prerequisite || node.Dependent {
			t.Errorf("node %s carries selection flags without a selection", node.ID)
		}
	}
	for _, edge := range view.Edges {
		if edge.Highlighted {
			t.Errorf("edge %d->%d highlighted without a selection", edge.Source, edge.Target)
		}
	}
}

func TestBuildViewOutOfRangeSelectionTreatedAsNone(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	view := e.BuildView(g.Size()+5, nil, nil, DefaultFilters())
	if view.Selected != NoSelection {
		t.Fatalf("Selected = %d, want NoSelection", view.Selected)
	}
}

func TestBuildViewEdgeHighlighting(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	// Selecting top should highlight the whole ancestor chain, including
	// the base->mid edge that does not touch the selection.
	view := e.BuildView(g.IDToIndex["top"], nil, nil, DefaultFilters())

	edgeSet := make(map[[2]int]bool)
	for _, edge := range view.Edges {
		edgeSet[[2]int{edge.Source, edge.Target}] = edge.Highlighted
	}

	baseMid := [2]int{g.IDToIndex["base"], g.IDToIndex["mid"]}
	midTop := [2]int{g.IDToIndex["mid"], g.IDToIndex["top"]}
	if !edgeSet[baseMid] {
		t.Error("base->mid not highlighted inside ancestor subgraph")
	}
	if !edgeSet[midTop] {
		t.Error("mid->top not highlighted")
	}
}

func TestBuildViewDimVersusHide(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	completed := map[int]bool{g.IDToIndex["base"]: true}

	filters := DefaultFilters()
	filters.IncludeCompleted = false
	view := e.BuildView(NoSelection, completed, nil, filters)
	base := nodeByID(t, view, g, "base")
	if !base.Dimmed || base.Hidden {
		t.Errorf("dim mode: base = (dimmed %t, hidden %t), want dimmed", base.Dimmed, base.Hidden)
	}

	filters.HideFiltered = true
	view = e.BuildView(NoSelection, completed, nil, filters)
	base = nodeByID(t, view, g, "base")
	if base.Dimmed || !base.Hidden {
		t.Errorf("hide mode: base = (dimmed %t, hidden %t), want hidden", base.Dimmed, base.Hidden)
	}

	// An edge touching a hidden endpoint is hidden too.
	for _, edge := range view.Edges {
		if edge.Source == g.IDToIndex["base"] && !edge.Hidden {
			t.Error("edge from hidden base not hidden")
		}
	}
}

func TestBuildViewBacklogOnly(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	backlog := []int{g.IDToIndex["mid"]}

	filters := DefaultFilters()
	filters.BacklogOnly = true
	view := e.BuildView(NoSelection, nil, backlog, filters)

	mid := nodeByID(t, view, g, "mid")
	island := nodeByID(t, view, g, "island")
	if mid.Dimmed || !mid.InBacklog {
		t.Errorf("backlog member mid = (dimmed %t, inBacklog %t)", mid.Dimmed, mid.InBacklog)
	}
	if !island.Dimmed {
		t.Error("non-member island not dimmed under BacklogOnly")
	}
}

func TestBuildViewUncategorizedBucket(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	filters := DefaultFilters()
	filters.Categories = map[string]bool{planner.UncategorizedBucket: true}
	view := e.BuildView(NoSelection, nil, nil, filters)

	island := nodeByID(t, view, g, "island")
	base := nodeByID(t, view, g, "base")
	if island.Dimmed {
		t.Error("uncategorized island dimmed despite allow-set match")
	}
	if !base.Dimmed {
		t.Error("categorized base not dimmed outside allow-set")
	}
}

func TestBuildViewCacheNilVersusEmptyCategories(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)

	filters := DefaultFilters()
	all := e.BuildView(NoSelection, nil, nil, filters)
	if nodeByID(t, all, g, "base").Dimmed {
		t.Fatal("nil allow-set dimmed a node")
	}

	// An explicit empty allow-set excludes every category and must not be
	// served the cached all-categories view.
	filters.Categories = map[string]bool{}
	none := e.BuildView(NoSelection, nil, nil, filters)
	if none == all {
		t.Fatal("empty allow-set hit the nil allow-set cache entry")
	}
	for _, node := range none.Nodes {
		if !node.Dimmed {
			t.Errorf("node %s not dimmed under empty allow-set", node.ID)
		}
	}

	// An all-false set is equivalent to an empty one.
	filters.Categories = map[string]bool{"Energy": false}
	allFalse := e.BuildView(NoSelection, nil, nil, filters)
	if allFalse != none {
		t.Error("all-false allow-set missed the empty allow-set cache entry")
	}
}

func TestBuildViewCacheReturnsSameView(t *testing.T) {
	t.Parallel()

	e, g := chainFixture(t)
	completed := map[int]bool{g.IDToIndex["base"]: true}
	backlog := []int{g.IDToIndex["top"]}

	first := e.BuildView(g.IDToIndex["mid"], completed, backlog, DefaultFilters())
	second := e.BuildView(g.IDToIndex["mid"], completed, backlog, DefaultFilters())
	if first != second {
		t.Error("identical inputs did not hit the cache")
	}

	// Backlog order is part of the key even when membership matches.
	reordered := e.BuildView(g.IDToIndex["mid"], completed, []int{g.IDToIndex["top"]}, DefaultFilters())
	if reordered != first {
		t.Error("same ordered backlog missed the cache")
	}

	other := e.BuildView(g.IDToIndex["top"], completed, backlog, DefaultFilters())
	if other == first {
		t.Error("different selection hit the same cache entry")
	}
}
