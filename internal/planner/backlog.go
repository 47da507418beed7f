package planner

// Backlog is an immutable ordered set of node indices in priority order.
// The zero value is an empty backlog. Every mutation returns a new value;
// membership always equals the set of the order and the order never holds
// duplicates. Index validity against the current graph size is the
// caller's responsibility.
type Backlog struct {
	order   []int
	members map[int]bool
}

// NewBacklog builds a backlog from an order, deduplicating while keeping
// first occurrences.
func NewBacklog(order []int) Backlog {
	b := Backlog{}
	for _, idx := range order {
		b = b.Add(idx)
	}
	return b
}

// Order returns a copy of the priority order.
func (b Backlog) Order() []int {
	return append([]int(nil), b.order...)
}

// Members returns a copy of the membership set.
func (b Backlog) Members() map[int]bool {
	members := make(map[int]bool, len(b.order))
	for _, idx := range b.order {
		members[idx] = true
	}
	return members
}

// Contains reports membership.
func (b Backlog) Contains(index int) bool {
	return b.members[index]
}

// Len returns the number of members.
func (b Backlog) Len() int {
	return len(b.order)
}

// Add appends index to the end of the order. Adding an existing member is
// a no-op returning the same value.
func (b Backlog) Add(index int) Backlog {
	if b.members[index] {
		return b
	}
	order := make([]int, len(b.order)+1)
	copy(order, b.order)
	order[len(b.order)] = index
	members := make(map[int]bool, len(order))
	for _, idx := range order {
		members[idx] = true
	}
	return Backlog{order: order, members: members}
}

// Remove drops index from the order. Removing a non-member is a no-op
// returning the same value.
func (b Backlog) Remove(index int) Backlog {
	if !b.members[index] {
		return b
	}
	order := make([]int, 0, len(b.order)-1)
	members := make(map[int]bool, len(b.order)-1)
	for _, idx := range b.order {
		if idx == index {
			continue
		}
		order = append(order, idx)
		members[idx] = true
	}
	return Backlog{order: order, members: members}
}

// Reorder permutes the backlog to follow newOrder. Entries that are not
// current members are ignored, duplicates keep their first occurrence, and
// members missing from newOrder are appended in their prior relative order.
// Reordering can only permute, never drop, members.
func (b Backlog) Reorder(newOrder []int) Backlog {
	seen := make(map[int]bool, len(b.order))
	cleaned := make([]int, 0, len(b.order))

	for _, idx := range newOrder {
		if b.members[idx] && !seen[idx] {
			cleaned = append(cleaned, idx)
			seen[idx] = true
		}
	}
	for _, idx := range b.order {
		if !seen[idx] {
			cleaned = append(cleaned, idx)
			seen[idx] = true
		}
	}

	return Backlog{order: cleaned, members: seen}
}
