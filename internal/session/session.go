// Package session holds the caller-owned planning state threaded through
// every core call: the current dataset snapshot and its derived caches,
// keyed by a reload token, plus the user's backlog, completed set, and
// filters. The core packages never reach into this state themselves; it is
// single-writer, request-response style by design, so it carries no locks.
package session

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ashpool/techplan/internal/explorer"
	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
)

// Session is the explicit state struct replacing any ambient global state.
// Derived structures (graph index, flat list, explorer) are rebuilt whenever
// Install is called with a new reload token; user state survives reloads by
// re-mapping through node identifiers, since indices are dataset-bound.
type Session struct {
	ID string

	token     uint64
	installed bool

	nodes    map[string]graph.Node
	graph    *graph.Data
	flat     *planner.FlatList
	explorer *explorer.Explorer

	Backlog   planner.Backlog
	Completed map[int]bool
	Filters   planner.ListFilters
	SortMode  planner.SortMode
	Selected  int // explorer.NoSelection when nothing is selected
}

// New creates an empty session.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Completed: make(map[int]bool),
		Filters:   planner.DefaultListFilters(),
		Selected:  explorer.NoSelection,
	}
}

// Token returns the reload token of the installed dataset.
func (s *Session) Token() uint64 {
	return s.token
}

// Graph returns the current graph index, or nil before the first Install.
func (s *Session) Graph() *graph.Data {
	return s.graph
}

// FlatList returns the current flat projection, or nil before the first
// Install.
func (s *Session) FlatList() *planner.FlatList {
	return s.flat
}

// Explorer returns the view builder bound to the current dataset.
func (s *Session) Explorer() *explorer.Explorer {
	return s.explorer
}

// Nodes returns the raw node mapping of the installed dataset.
func (s *Session) Nodes() map[string]graph.Node {
	return s.nodes
}

// Install swaps in a freshly loaded dataset under the given reload token and
// rebuilds every derived cache. Backlog, completed set, and selection are
// carried across the reload boundary by identifier; ids that no longer
// exist are dropped. Installing the same token twice is a no-op.
func (s *Session) Install(token uint64, nodes map[string]graph.Node) {
	if s.installed && token == s.token {
		return
	}

	var backlogIDs, completedIDs []string
	selectedID := ""
	if s.graph != nil {
		for _, idx := range s.Backlog.Order() {
			backlogIDs = append(backlogIDs, s.graph.NodeIDs[idx])
		}
		for idx, done := range s.Completed {
			if done {
				completedIDs = append(completedIDs, s.graph.NodeIDs[idx])
			}
		}
		if s.Selected != explorer.NoSelection {
			selectedID = s.graph.NodeIDs[s.Selected]
		}
	}

	s.token = token
	s.installed = true
	s.nodes = nodes
	s.graph = graph.Build(nodes)
	s.flat = planner.BuildFlatList(s.graph, nodes)
	s.explorer = explorer.New(s.graph)

	s.Backlog = planner.NewBacklog(planner.IndicesForIDs(backlogIDs, s.graph))
	s.Completed = make(map[int]bool)
	for _, idx := range planner.IndicesForIDs(completedIDs, s.graph) {
		s.Completed[idx] = true
	}
	s.Selected = explorer.NoSelection
	if selectedID != "" {
		if idx, ok := s.graph.IDToIndex[selectedID]; ok {
			s.Selected = idx
		}
	}
}

// CompletedIDs returns the completed set as stable identifiers.
func (s *Session) CompletedIDs() []string {
	if s.graph == nil {
		return nil
	}
	var ids []string
	for _, idx := range sortedKeys(s.Completed) {
		ids = append(ids, s.graph.NodeIDs[idx])
	}
	return ids
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for idx, ok := range set {
		if ok {
			keys = append(keys, idx)
		}
	}
	sort.Ints(keys)
	return keys
}
