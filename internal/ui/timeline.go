package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ashpool/techplan/internal/sim"
)

// Timeline renders a simulation result: one line per slot per turn, the
// completion events, and a final cumulative category-mix table.
func (r Renderer) Timeline(result sim.Result) string {
	if len(result.Turns) == 0 {
		return "Nothing to research: backlog is empty or already completed.\n"
	}

	var b strings.Builder
	for _, snapshot := range result.Turns {
		fmt.Fprintf(&b, "%s\n", r.render(styleHeader, fmt.Sprintf("Turn %d", snapshot.Turn)))
		for _, slot := range snapshot.Slots {
			name := r.render(styleSlotName, fmt.Sprintf("%-10s", slot.Slot))
			if slot.NodeIndex == sim.Idle {
				fmt.Fprintf(&b, "  %s %s\n", name, r.render(styleDimmed, "idle"))
				continue
			}
			fmt.Fprintf(&b, "  %s %s (%.1f left)\n", name, slot.Name, slot.Remaining)
		}
		for _, event := range snapshot.Completed {
			fmt.Fprintf(&b, "  %s\n",
				r.render(styleDone, fmt.Sprintf("✓ %s finished in %s", event.NodeID, event.Slot)))
		}
	}

	b.WriteString("\n" + r.render(styleHeader, "Research focus (cumulative turns)") + "\n")
	b.WriteString(r.mixTable(result.CumulativeMix))
	return b.String()
}

// mixTable renders the final cumulative mix, largest share first.
func (r Renderer) mixTable(cumulative []map[string]float64) string {
	if len(cumulative) == 0 {
		return "  (no active research)\n"
	}
	final := cumulative[len(cumulative)-1]
	if len(final) == 0 {
		return "  (no active research)\n"
	}

	categories := make([]string, 0, len(final))
	for category := range final {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if final[categories[i]] != final[categories[j]] {
			return final[categories[i]] > final[categories[j]]
		}
		return categories[i] < categories[j]
	})

	var b strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&b, "  %-16s %6.2f\n", category, final[category])
	}
	return b.String()
}
