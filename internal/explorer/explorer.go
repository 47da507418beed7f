// Package explorer builds highlighted, filterable views of the research
// graph around a selected node: the full prerequisite closure (ancestors)
// and dependent closure (descendants), with filtered-out nodes either
// dimmed or hidden.
package explorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
)

// NoSelection marks a view built without a selected node.
const NoSelection = -1

// Filters narrows which nodes a graph view shows. Visibility semantics
// match the list view: category allow-set over bucket labels, completion
// inclusion, backlog-only. HideFiltered removes excluded nodes from the
// drawing; otherwise they are dimmed in place.
type Filters struct {
	Categories        map[string]bool // nil = all categories
	IncludeCompleted  bool
	IncludeIncomplete bool
	BacklogOnly       bool
	HideFiltered      bool
}

// DefaultFilters returns filters that show every node.
func DefaultFilters() Filters {
	return Filters{IncludeCompleted: true, IncludeIncomplete: true}
}

// NodeView is the render state of one node.
type NodeView struct {
	Index    int
	ID       string
	Label    string
	Type     graph.NodeType
	Category string // bucket label

	Completed    bool
	InBacklog    bool
	Selected     bool
	Prerequisite bool // member of the selected node's prerequisite closure
	Dependent    bool // member of the selected node's dependent closure
	Dimmed       bool
	Hidden       bool
}

// EdgeView is the render state of one prerequisite edge (Source → Target).
type EdgeView struct {
	Source      int
	Target      int
	Highlighted bool
	Dimmed      bool
	Hidden      bool
}

// View is a complete explorer snapshot for rendering.
type View struct {
	Nodes    []NodeView
	Edges    []EdgeView
	Selected int // NoSelection when nothing is selected
}

// Explorer builds graph views over one dataset. Views are cached per
// (selected, completed-set, backlog-sequence, filters) tuple; the cache
// treats completed as an unordered set and backlog as an ordered sequence.
// A reload invalidates the Explorer along with its graph.
type Explorer struct {
	graph *graph.Data
	cache map[string]*View
}

// New creates an Explorer over a graph index.
func New(g *graph.Data) *Explorer {
	return &Explorer{graph: g, cache: make(map[string]*View)}
}

// BuildView assembles the explorer view for a selected index (or
// NoSelection), the completed set, the backlog order, and filters.
func (e *Explorer) BuildView(selected int, completed map[int]bool, backlog []int, filters Filters) *View {
	if selected < 0 || selected >= e.graph.Size() {
		selected = NoSelection
	}

	key := cacheKey(selected, completed, backlog, filters)
	if view, ok := e.cache[key]; ok {
		return view
	}

	var prereqClosure, dependentClosure map[int]bool
	if selected != NoSelection {
		prereqClosure = walk(selected, e.graph.Prereqs)
		dependentClosure = walk(selected, e.graph.Dependents)
	}

	backlogMembers := make(map[int]bool, len(backlog))
	for _, idx := range backlog {
		backlogMembers[idx] = true
	}

	view := &View{Selected: selected}
	visible := make([]bool, e.graph.Size())

	for idx := range e.graph.NodeIDs {
		category := e.graph.Categories[idx]
		if category == "" {
			category = planner.UncategorizedBucket
		}
		isCompleted := completed[idx]

		passesCategory := filters.Categories == nil || filters.Categories[category]
		passesCompletion := (isCompleted && filters.IncludeCompleted) ||
			(!isCompleted && filters.IncludeIncomplete)
		passesBacklog := !filters.BacklogOnly || backlogMembers[idx]
		isVisible := passesCategory && passesCompletion && passesBacklog
		visible[idx] = isVisible

		view.Nodes = append(view.Nodes, NodeView{
			Index:        idx,
			ID:           e.graph.NodeIDs[idx],
			Label:        e.graph.Names[idx],
			Type:         e.graph.Types[idx],
			Category:     category,
			Completed:    isCompleted,
			InBacklog:    backlogMembers[idx],
			Selected:     idx == selected,
			Prerequisite: prereqClosure[idx],
			Dependent:    dependentClosure[idx],
			Dimmed:       !filters.HideFiltered && !isVisible,
			Hidden:       filters.HideFiltered && !isVisible,
		})
	}

	view.Edges = buildEdges(e.graph, visible, selected, prereqClosure, dependentClosure, filters)

	e.cache[key] = view
	return view
}

// buildEdges emits one edge per prerequisite relation. An edge is
// highlighted when it lies inside the selected node's ancestor subgraph or
// descendant subgraph, not only when it touches the selection directly.
func buildEdges(
	g *graph.Data,
	visible []bool,
	selected int,
	prereqClosure, dependentClosure map[int]bool,
	filters Filters,
) []EdgeView {
	var edges []EdgeView
	for target := range g.NodeIDs {
		for _, prereq := range g.Prereqs[target] {
			excluded := !visible[target] || !visible[prereq]

			highlighted := false
			if selected != NoSelection {
				switch {
				case target == selected && prereqClosure[prereq]:
					highlighted = true
				case prereq == selected && dependentClosure[target]:
					highlighted = true
				case prereqClosure[target] && prereqClosure[prereq]:
					highlighted = true
				case dependentClosure[target] && dependentClosure[prereq]:
					highlighted = true
				}
			}

			edges = append(edges, EdgeView{
				Source:      prereq,
				Target:      target,
				Highlighted: highlighted,
				Dimmed:      !filters.HideFiltered && excluded,
				Hidden:      filters.HideFiltered && excluded,
			})
		}
	}
	return edges
}

// walk collects every node transitively reachable from start through adj,
// visiting each node once. The start node itself is excluded unless
// reachable through a cycle.
func walk(start int, adj [][]int) map[int]bool {
	visited := make(map[int]bool)
	stack := append([]int(nil), adj[start]...)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[idx] {
			continue
		}
		visited[idx] = true
		stack = append(stack, adj[idx]...)
	}
	return visited
}

func cacheKey(selected int, completed map[int]bool, backlog []int, filters Filters) string {
	completedIDs := make([]int, 0, len(completed))
	for idx, done := range completed {
		if done {
			completedIDs = append(completedIDs, idx)
		}
	}
	sort.Ints(completedIDs)

	// A nil allow-set means "all categories" while an empty (or all-false)
	// one means "none"; the key must keep them apart.
	categories := "nil"
	if filters.Categories != nil {
		allowed := make([]string, 0, len(filters.Categories))
		for category, ok := range filters.Categories {
			if ok {
				allowed = append(allowed, category)
			}
		}
		sort.Strings(allowed)
		categories = fmt.Sprintf("%v", allowed)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "s=%d|c=%v|b=%v|cat=%s|%t|%t|%t|%t",
		selected, completedIDs, backlog, categories,
		filters.IncludeCompleted, filters.IncludeIncomplete,
		filters.BacklogOnly, filters.HideFiltered)
	return b.String()
}
