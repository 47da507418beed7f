package planner

import "strings"

// SortMode selects which precomputed ordering a list view uses.
type SortMode int

const (
	// SortByName orders rows by friendly name ascending.
	SortByName SortMode = iota
	// SortByCostDesc orders rows by research cost descending, unknown
	// costs last.
	SortByCostDesc
)

// ListFilters narrows which rows a list view shows. The zero value hides
// everything; use DefaultListFilters for the "show all" baseline.
type ListFilters struct {
	// Categories is an allow-set of bucket labels. nil means all categories.
	Categories        map[string]bool
	IncludeCompleted  bool
	IncludeIncomplete bool
	// BacklogOnly keeps only current backlog members.
	BacklogOnly bool
	// Search is a case-insensitive substring match against the friendly
	// name only; surrounding whitespace is ignored.
	Search string
}

// DefaultListFilters returns filters that show every row.
func DefaultListFilters() ListFilters {
	return ListFilters{IncludeCompleted: true, IncludeIncomplete: true}
}

// ListView is the visible subset of a FlatList after filtering. Categories
// with no visible rows are omitted entirely.
type ListView struct {
	// Categories with at least one visible row, in canonical order.
	Categories []string
	// Visible maps category to visible indices in the selected sort order.
	Visible map[string][]int
}

// VisibleIndices flattens the view in category order.
func (v ListView) VisibleIndices() []int {
	var out []int
	for _, category := range v.Categories {
		out = append(out, v.Visible[category]...)
	}
	return out
}

// BuildListView applies filters to the precomputed orderings of a FlatList.
func BuildListView(
	flat *FlatList,
	filters ListFilters,
	completed map[int]bool,
	backlogMembers map[int]bool,
	mode SortMode,
) ListView {
	ordered := flat.ByName
	if mode == SortByCostDesc {
		ordered = flat.ByCostDesc
	}

	search := strings.ToLower(strings.TrimSpace(filters.Search))

	view := ListView{Visible: make(map[string][]int)}
	for _, category := range flat.Categories {
		if filters.Categories != nil && !filters.Categories[category] {
			continue
		}

		var visible []int
		for _, idx := range ordered[category] {
			isCompleted := completed[idx]
			passesCompletion := (isCompleted && filters.IncludeCompleted) ||
				(!isCompleted && filters.IncludeIncomplete)
			if !passesCompletion {
				continue
			}
			if filters.BacklogOnly && !backlogMembers[idx] {
				continue
			}
			if search != "" && !strings.Contains(flat.Rows[idx].NameFold, search) {
				continue
			}
			visible = append(visible, idx)
		}

		if len(visible) > 0 {
			view.Categories = append(view.Categories, category)
			view.Visible[category] = visible
		}
	}
	return view
}
