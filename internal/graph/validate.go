package graph

import (
	"fmt"
	"sort"
)

// Issue is a single validation finding: a message plus the node ids it
// implicates.
type Issue struct {
	Message string
	Nodes   []string
}

// Result collects validation findings. Errors block simulation and
// exploration; warnings never do.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// HasErrors reports whether any blocking issue was found.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a one-line count of findings.
func (r Result) Summary() string {
	return fmt.Sprintf("%d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
}

// Validate checks the raw node mapping for missing prerequisite references,
// dependency cycles, and project nodes that lack a tech prerequisite.
// It never errors on malformed input; every finding is a value in the result.
func Validate(nodes map[string]Node) Result {
	var result Result

	ids := sortedIDs(nodes)
	checkMissingReferences(nodes, ids, &result)
	checkCycles(nodes, ids, &result)
	checkProjectPrereqs(nodes, ids, &result)

	return result
}

func sortedIDs(nodes map[string]Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// checkMissingReferences emits one error per missing prerequisite id,
// listing every dependent that referenced it.
func checkMissingReferences(nodes map[string]Node, ids []string, result *Result) {
	missing := make(map[string][]string)
	for _, id := range ids {
		for _, prereq := range nodes[id].Prereqs {
			if _, ok := nodes[prereq]; !ok {
				missing[prereq] = append(missing[prereq], id)
			}
		}
	}

	missingIDs := make([]string, 0, len(missing))
	for id := range missing {
		missingIDs = append(missingIDs, id)
	}
	sort.Strings(missingIDs)

	for _, id := range missingIDs {
		result.Errors = append(result.Errors, Issue{
			Message: fmt.Sprintf("Missing reference: %s", id),
			Nodes:   missing[id],
		})
	}
}

// checkCycles runs an iterative depth-first traversal with an explicit
// recursion stack. Revisiting a node currently on the stack reports a cycle
// naming that node; enumerating full cycle membership is not attempted.
// Only prerequisite edges that resolve to existing nodes are followed.
func checkCycles(nodes map[string]Node, ids []string, result *Result) {
	visited := make(map[string]bool, len(nodes))
	onStack := make(map[string]bool)

	type frame struct {
		id   string
		next int // position in the node's prereq list
	}

	for _, root := range ids {
		if visited[root] {
			continue
		}
		stack := []frame{{id: root}}
		visited[root] = true
		onStack[root] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			prereqs := nodes[top.id].Prereqs

			advanced := false
			for top.next < len(prereqs) {
				prereq := prereqs[top.next]
				top.next++
				if _, ok := nodes[prereq]; !ok {
					continue // dangling edge, reported separately
				}
				if onStack[prereq] {
					result.Errors = append(result.Errors, Issue{
						Message: fmt.Sprintf("Cycle detected involving %s", prereq),
						Nodes:   []string{prereq},
					})
					continue
				}
				if visited[prereq] {
					continue
				}
				visited[prereq] = true
				onStack[prereq] = true
				stack = append(stack, frame{id: prereq})
				advanced = true
				break
			}
			if advanced {
				continue
			}
			onStack[top.id] = false
			stack = stack[:len(stack)-1]
		}
	}
}

// checkProjectPrereqs enforces the domain rule that a project node must
// depend on at least one tech-typed node. Only prerequisites that resolve
// count; unresolved ones are already reported as missing references.
func checkProjectPrereqs(nodes map[string]Node, ids []string, result *Result) {
	for _, id := range ids {
		node := nodes[id]
		if node.Type != NodeTypeProject {
			continue
		}
		hasTech := false
		for _, prereq := range node.Prereqs {
			dep, ok := nodes[prereq]
			if ok && dep.Type == NodeTypeTech {
				hasTech = true
				break
			}
		}
		if !hasTech {
			result.Errors = append(result.Errors, Issue{
				Message: fmt.Sprintf("Project %s must depend on at least one tech", id),
				Nodes:   []string{id},
			})
		}
	}
}
