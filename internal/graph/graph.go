// Package graph provides the flat, index-based representation of a research
// tree. It converts raw node records into stable integer indices with
// prerequisite/dependent adjacency, and validates the raw records for
// structural problems (missing references, cycles, type-dependency rules).
package graph

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// NodeType discriminates the two kinds of research nodes.
type NodeType string

const (
	NodeTypeTech    NodeType = "tech"
	NodeTypeProject NodeType = "project"
)

// Node is a raw research entry as supplied by the dataset loader. The core
// treats it as read-only.
type Node struct {
	ID           string
	FriendlyName string
	Type         NodeType
	Category     string // empty when the node has no category
	Prereqs      []string
	Metadata     map[string]any
}

// Cost reads the node's researchCost metadata. Missing, non-numeric, or
// negative values report ok=false ("unknown", never zero).
func (n Node) Cost() (int, bool) {
	return ParseCost(n.Metadata)
}

// ParseCost extracts an integer research cost from a metadata bag.
// Accepted representations: integer, float (truncated), or a decimal string.
func ParseCost(metadata map[string]any) (int, bool) {
	raw, ok := metadata["researchCost"]
	if !ok || raw == nil {
		return 0, false
	}
	var cost int
	switch v := raw.(type) {
	case int:
		cost = v
	case int64:
		cost = int(v)
	case float64:
		cost = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		cost = parsed
	default:
		return 0, false
	}
	if cost < 0 {
		return 0, false
	}
	return cost, true
}

// Data is the immutable flat index over one loaded dataset. Indices are
// stable for the lifetime of the dataset; a reload rebuilds the whole
// structure and invalidates every previously held index.
type Data struct {
	// NodeIDs lists all identifiers in canonical order: case-insensitive,
	// then lexical. Position in this slice is the node's index.
	NodeIDs []string
	// IDToIndex is the inverse of NodeIDs.
	IDToIndex map[string]int

	Types      []NodeType
	Categories []string
	Names      []string

	// Prereqs[i] holds the indices node i depends on. Prerequisite ids not
	// present in the dataset are dropped here; reporting them is the
	// validator's job.
	Prereqs [][]int
	// Dependents[i] is the reverse adjacency of Prereqs.
	Dependents [][]int
}

// Size returns the number of nodes in the dataset.
func (d *Data) Size() int {
	return len(d.NodeIDs)
}

// Build constructs the flat index from a raw node mapping. The result is
// deterministic: the same set of records yields the same index assignment
// regardless of map iteration order.
func Build(nodes map[string]Node) *Data {
	// Full Unicode case folding, not simple lowercasing; ids that fold
	// identically fall back to byte order.
	fold := cases.Fold()
	ids := make([]string, 0, len(nodes))
	folded := make(map[string]string, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
		folded[id] = fold.String(id)
	}
	sort.Slice(ids, func(i, j int) bool {
		fi, fj := folded[ids[i]], folded[ids[j]]
		if fi != fj {
			return fi < fj
		}
		return ids[i] < ids[j]
	})

	d := &Data{
		NodeIDs:    ids,
		IDToIndex:  make(map[string]int, len(ids)),
		Types:      make([]NodeType, len(ids)),
		Categories: make([]string, len(ids)),
		Names:      make([]string, len(ids)),
		Prereqs:    make([][]int, len(ids)),
		Dependents: make([][]int, len(ids)),
	}
	for idx, id := range ids {
		d.IDToIndex[id] = idx
	}

	for idx, id := range ids {
		node := nodes[id]
		d.Types[idx] = node.Type
		d.Categories[idx] = node.Category
		d.Names[idx] = node.FriendlyName

		var prereqs []int
		for _, prereqID := range node.Prereqs {
			p, ok := d.IDToIndex[prereqID]
			if !ok {
				continue
			}
			prereqs = append(prereqs, p)
			d.Dependents[p] = append(d.Dependents[p], idx)
		}
		d.Prereqs[idx] = prereqs
	}

	return d
}
