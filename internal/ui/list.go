package ui

import (
	"fmt"
	"strings"

	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
)

// ListView renders a filtered list view grouped by category. Completed
// rows are marked with a check, backlog members with their queue position.
func (r Renderer) ListView(
	flat *planner.FlatList,
	view planner.ListView,
	completed map[int]bool,
	backlog planner.Backlog,
) string {
	if len(view.Categories) == 0 {
		return "No nodes match the current filters.\n"
	}

	position := make(map[int]int, backlog.Len())
	for pos, idx := range backlog.Order() {
		position[idx] = pos + 1
	}

	var b strings.Builder
	for _, category := range view.Categories {
		fmt.Fprintf(&b, "%s\n", r.render(styleCategory, category))
		for _, idx := range view.Visible[category] {
			row := flat.Rows[idx]

			marker := " "
			if completed[idx] {
				marker = r.render(styleDone, "✓")
			}

			queue := "    "
			if pos, ok := position[idx]; ok {
				queue = r.render(styleBacklog, fmt.Sprintf("#%-3d", pos))
			}

			cost := "     ?"
			if row.HasCost {
				cost = fmt.Sprintf("%6d", row.Cost)
			}

			kind := "tech"
			if row.Type == graph.NodeTypeProject {
				kind = "proj"
			}

			fmt.Fprintf(&b, "  %s %s %s  %s  %s\n", marker, queue, cost, kind, row.Name)
		}
		b.WriteString("\n")
	}
	return b.String()
}
