package ui

import (
	"fmt"
	"strings"

	"github.com/ashpool/techplan/internal/explorer"
	"github.com/ashpool/techplan/internal/graph"
)

// ExplorerView renders a graph explorer snapshot as grouped sections:
// the selected node, its prerequisite closure, its dependent closure, and
// the remaining visible nodes. Hidden nodes are omitted; dimmed nodes are
// rendered muted.
func (r Renderer) ExplorerView(view *explorer.View) string {
	var b strings.Builder

	var selected, prereqs, dependents, others []explorer.NodeView
	for _, node := range view.Nodes {
		if node.Hidden {
			continue
		}
		switch {
		case node.Selected:
			selected = append(selected, node)
		case node.Prerequisite:
			prereqs = append(prereqs, node)
		case node.Dependent:
			dependents = append(dependents, node)
		default:
			others = append(others, node)
		}
	}

	if len(selected) > 0 {
		b.WriteString(r.render(styleHeader, "Selected") + "\n")
		r.writeNodes(&b, selected)
	}
	if len(prereqs) > 0 {
		b.WriteString(r.render(styleHeader, "Prerequisites") + "\n")
		r.writeNodes(&b, prereqs)
	}
	if len(dependents) > 0 {
		b.WriteString(r.render(styleHeader, "Unlocks") + "\n")
		r.writeNodes(&b, dependents)
	}
	if len(others) > 0 {
		b.WriteString(r.render(styleHeader, "Other nodes") + "\n")
		r.writeNodes(&b, others)
	}

	highlighted := 0
	for _, edge := range view.Edges {
		if edge.Highlighted {
			highlighted++
		}
	}
	fmt.Fprintf(&b, "%d edges, %d highlighted\n", len(view.Edges), highlighted)

	return b.String()
}

func (r Renderer) writeNodes(b *strings.Builder, nodes []explorer.NodeView) {
	for _, node := range nodes {
		kind := "tech"
		if node.Type == graph.NodeTypeProject {
			kind = "proj"
		}

		marks := ""
		if node.Completed {
			marks += r.render(styleDone, " ✓")
		}
		if node.InBacklog {
			marks += r.render(styleBacklog, " ⧗")
		}

		line := fmt.Sprintf("  %s  %s (%s)%s", kind, node.Label, node.Category, marks)
		switch {
		case node.Selected:
			line = r.render(styleSelected, line)
		case node.Dimmed:
			line = r.render(styleDimmed, line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}
