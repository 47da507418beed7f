// Package sim runs the deterministic, turn-based research simulation:
// backlog entries are assigned to parallel slots by node type and
// prerequisite readiness, partial progress advances by the smallest
// time-to-completion across active slots, and completions plus category-mix
// statistics are recorded per turn.
package sim

import (
	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
)

// Idle marks a slot with no assignment.
const Idle = -1

// turnCapSlack bounds runaway simulations: the loop stops after
// graph size + turnCapSlack turns regardless of remaining work.
const turnCapSlack = 50

// SlotConfig describes one parallel research channel.
type SlotConfig struct {
	Name string
	Type graph.NodeType
	// Pips is the abstract progress rate per turn, typically 0–3.
	Pips int
}

// Config is one simulation request. BacklogOrder must already be exploded
// with prerequisites (see planner.Explode).
type Config struct {
	BacklogOrder []int
	Completed    map[int]bool
	TechSlots    []SlotConfig
	ProjectSlots []SlotConfig
}

// SlotState is the post-advance state of a slot within one turn snapshot.
// NodeIndex is Idle when the slot held no assignment.
type SlotState struct {
	Slot      string
	NodeIndex int
	NodeID    string
	Name      string
	Category  string // raw category; empty when the node has none or the slot is idle
	Type      graph.NodeType
	Pips      int
	// Remaining is the cost left after this turn; zero on the turn the
	// node completes. Meaningless when NodeIndex is Idle.
	Remaining float64
}

// CompletionEvent records a node finishing research.
type CompletionEvent struct {
	NodeIndex int
	NodeID    string
	Turn      int
	Slot      string
}

// TurnSnapshot captures all slots after one turn advanced. Turn numbering
// starts at 1.
type TurnSnapshot struct {
	Turn      int
	Slots     []SlotState
	Completed []CompletionEvent
}

// Result is the full simulation outcome.
type Result struct {
	Turns []TurnSnapshot
	// CategoryMix holds, per turn, each category's share of active pips;
	// shares sum to 1, or the map is empty when no slot carries weight.
	CategoryMix []map[string]float64
	// CumulativeMix is the running sum of CategoryMix. It is deliberately
	// not re-normalized: totals reflect accumulated research-turns, not a
	// probability distribution.
	CumulativeMix []map[string]float64
}

// Simulate runs the scheduler to completion. It is a pure function of its
// inputs. When occupied slots exist but none has positive pips, one stalled
// snapshot is recorded and the whole simulation stops; this is a terminal
// stuck condition, not an error, and it is not limited to the stalled
// slots. A hard cap of graph size + 50 turns truncates silently.
func Simulate(g *graph.Data, flat *planner.FlatList, cfg Config) Result {
	backlog := make([]int, 0, len(cfg.BacklogOrder))
	for _, idx := range cfg.BacklogOrder {
		if idx >= 0 && idx < g.Size() {
			backlog = append(backlog, idx)
		}
	}
	completed := make(map[int]bool, len(cfg.Completed))
	for idx, done := range cfg.Completed {
		if done && idx >= 0 && idx < g.Size() {
			completed[idx] = true
		}
	}

	slots := append(append([]SlotConfig(nil), cfg.TechSlots...), cfg.ProjectSlots...)
	assignment := make([]int, len(slots))
	remaining := make([]float64, len(slots))
	for i := range assignment {
		assignment[i] = Idle
	}

	findCandidate := func(slotType graph.NodeType, inProgress map[int]bool) int {
		for _, idx := range backlog {
			if completed[idx] || inProgress[idx] {
				continue
			}
			if g.Types[idx] != slotType {
				continue
			}
			ready := true
			for _, prereq := range g.Prereqs[idx] {
				if !completed[prereq] {
					ready = false
					break
				}
			}
			if ready {
				return idx
			}
		}
		return Idle
	}

	var turns []TurnSnapshot
	turn := 1

	for {
		inProgress := make(map[int]bool, len(slots))
		for _, idx := range assignment {
			if idx != Idle {
				inProgress[idx] = true
			}
		}

		// Assignment phase: fill idle slots from the backlog in order.
		for slotIdx, slot := range slots {
			if assignment[slotIdx] != Idle {
				continue
			}
			candidate := findCandidate(slot.Type, inProgress)
			if candidate == Idle {
				continue
			}
			assignment[slotIdx] = candidate
			remaining[slotIdx] = costFor(flat, candidate)
			inProgress[candidate] = true
		}

		// Tick size: time for the first active slot to finish at its rate.
		tick := 0.0
		haveTick := false
		occupied := false
		for slotIdx, slot := range slots {
			if assignment[slotIdx] == Idle {
				continue
			}
			occupied = true
			if slot.Pips <= 0 {
				continue
			}
			candidate := remaining[slotIdx] / float64(slot.Pips)
			if !haveTick || candidate < tick {
				tick = candidate
				haveTick = true
			}
		}

		if !haveTick {
			if !occupied {
				break
			}
			// Occupied slots with no positive pips anywhere: stalled.
			turns = append(turns, stalledSnapshot(g, flat, slots, assignment, remaining, turn))
			break
		}

		// Advance phase.
		snapshot := TurnSnapshot{Turn: turn}
		for slotIdx, slot := range slots {
			state := SlotState{Slot: slot.Name, NodeIndex: Idle, Pips: slot.Pips}
			if idx := assignment[slotIdx]; idx != Idle {
				state.NodeIndex = idx
				state.NodeID = g.NodeIDs[idx]
				state.Name = flat.Rows[idx].Name
				state.Category = g.Categories[idx]
				state.Type = g.Types[idx]

				after := remaining[slotIdx] - float64(slot.Pips)*tick
				if after <= 0 {
					completed[idx] = true
					snapshot.Completed = append(snapshot.Completed, CompletionEvent{
						NodeIndex: idx,
						NodeID:    g.NodeIDs[idx],
						Turn:      turn,
						Slot:      slot.Name,
					})
					assignment[slotIdx] = Idle
					remaining[slotIdx] = 0
					after = 0
				} else {
					remaining[slotIdx] = after
				}
				state.Remaining = after
			}
			snapshot.Slots = append(snapshot.Slots, state)
		}
		turns = append(turns, snapshot)

		// Termination: everything idle and nothing left to assign.
		allIdle := true
		for _, idx := range assignment {
			if idx != Idle {
				allIdle = false
				break
			}
		}
		if allIdle {
			none := make(map[int]bool)
			if findCandidate(graph.NodeTypeTech, none) == Idle &&
				findCandidate(graph.NodeTypeProject, none) == Idle {
				break
			}
		}

		turn++
		if turn > g.Size()+turnCapSlack {
			break
		}
	}

	categoryMix := buildCategoryMix(turns)
	return Result{
		Turns:         turns,
		CategoryMix:   categoryMix,
		CumulativeMix: buildCumulativeMix(categoryMix),
	}
}

// costFor seeds a slot's remaining progress. Unknown costs count as 1.0,
// and every cost is floored at 1.0.
func costFor(flat *planner.FlatList, index int) float64 {
	row := flat.Rows[index]
	if !row.HasCost {
		return 1.0
	}
	cost := float64(row.Cost)
	if cost < 1.0 {
		return 1.0
	}
	return cost
}

func stalledSnapshot(
	g *graph.Data,
	flat *planner.FlatList,
	slots []SlotConfig,
	assignment []int,
	remaining []float64,
	turn int,
) TurnSnapshot {
	snapshot := TurnSnapshot{Turn: turn}
	for slotIdx, slot := range slots {
		state := SlotState{Slot: slot.Name, NodeIndex: Idle, Pips: slot.Pips}
		if idx := assignment[slotIdx]; idx != Idle {
			state.NodeIndex = idx
			state.NodeID = g.NodeIDs[idx]
			state.Name = flat.Rows[idx].Name
			state.Category = g.Categories[idx]
			state.Type = g.Types[idx]
			state.Remaining = remaining[slotIdx]
		}
		snapshot.Slots = append(snapshot.Slots, state)
	}
	return snapshot
}
