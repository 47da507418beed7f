package planner

import "github.com/ashpool/techplan/internal/graph"

// Explode expands a backlog order into a full sequence including every
// uncompleted transitive prerequisite, in dependency-safe order: each node
// appears strictly after all of its transitive prerequisites, so the result
// is direct simulator input. Already-completed nodes are visited (their
// dependents are unblocked by the completed set) but contribute no entry.
// Nodes reachable through multiple backlog entries appear once; out-of-range
// entries are skipped. The traversal is an explicit-stack post-order walk,
// safe on cyclic data.
func Explode(g *graph.Data, backlogOrder []int, completed map[int]bool) []int {
	seen := make(map[int]bool, len(backlogOrder))
	var ordered []int

	type frame struct {
		index int
		next  int // position in the node's prereq list
	}

	for _, root := range backlogOrder {
		if root < 0 || root >= g.Size() {
			continue
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		if completed[root] {
			continue
		}

		stack := []frame{{index: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			prereqs := g.Prereqs[top.index]

			pushed := false
			for top.next < len(prereqs) {
				prereq := prereqs[top.next]
				top.next++
				if seen[prereq] {
					continue
				}
				seen[prereq] = true
				if completed[prereq] {
					continue
				}
				stack = append(stack, frame{index: prereq})
				pushed = true
				break
			}
			if pushed {
				continue
			}
			ordered = append(ordered, top.index)
			stack = stack[:len(stack)-1]
		}
	}

	return ordered
}
