// Package planner provides the user-facing planning model over a graph
// index: the denormalized sortable node list, filtered list views, the
// immutable backlog order, backlog explosion into a dependency-safe
// sequence, and the versioned persistence payload for backlog state.
package planner

import (
	"sort"
	"strings"

	"github.com/ashpool/techplan/internal/graph"
)

// UncategorizedBucket is the category label assigned to nodes that carry no
// category of their own.
const UncategorizedBucket = "Uncategorized"

// Row is one denormalized list entry per graph index.
type Row struct {
	Index    int
	NodeID   string
	Name     string
	NameFold string // lowercased name, precomputed for sort and search
	Type     graph.NodeType
	Category string // bucket label; never empty
	Cost     int
	HasCost  bool // false when cost is missing, negative, or non-numeric
}

// FlatList is the precomputed, sortable projection of a graph index.
// Both per-category orderings are computed up front so runtime filtering
// never re-sorts.
type FlatList struct {
	Rows []Row
	// Categories in canonical order: deduplicated, sorted case-insensitively.
	Categories []string
	// ByName maps category to indices sorted by name ascending.
	ByName map[string][]int
	// ByCostDesc maps category to indices sorted by cost descending;
	// missing-cost rows sort last, ties break by name ascending.
	ByCostDesc map[string][]int
}

// BuildFlatList derives the flat projection from a graph index and the raw
// nodes it was built from.
func BuildFlatList(g *graph.Data, nodes map[string]graph.Node) *FlatList {
	rows := make([]Row, g.Size())
	buckets := make(map[string][]int)

	for idx, id := range g.NodeIDs {
		node := nodes[id]
		cost, hasCost := node.Cost()
		category := node.Category
		if category == "" {
			category = UncategorizedBucket
		}
		rows[idx] = Row{
			Index:    idx,
			NodeID:   id,
			Name:     node.FriendlyName,
			NameFold: strings.ToLower(node.FriendlyName),
			Type:     node.Type,
			Category: category,
			Cost:     cost,
			HasCost:  hasCost,
		}
		buckets[category] = append(buckets[category], idx)
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i]) < strings.ToLower(categories[j])
	})

	byName := make(map[string][]int, len(buckets))
	byCostDesc := make(map[string][]int, len(buckets))
	for category, indices := range buckets {
		byName[category] = sortByName(rows, indices)
		byCostDesc[category] = sortByCostDesc(rows, indices)
	}

	return &FlatList{
		Rows:       rows,
		Categories: categories,
		ByName:     byName,
		ByCostDesc: byCostDesc,
	}
}

func sortByName(rows []Row, indices []int) []int {
	out := append([]int(nil), indices...)
	sort.SliceStable(out, func(i, j int) bool {
		return rows[out[i]].NameFold < rows[out[j]].NameFold
	})
	return out
}

// sortByCostDesc orders priced rows before unpriced ones, higher cost first,
// with name ascending as the tiebreaker.
func sortByCostDesc(rows []Row, indices []int) []int {
	out := append([]int(nil), indices...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := rows[out[i]], rows[out[j]]
		if a.HasCost != b.HasCost {
			return a.HasCost
		}
		if a.HasCost && a.Cost != b.Cost {
			return a.Cost > b.Cost
		}
		return a.NameFold < b.NameFold
	})
	return out
}
