package sim

import (
	"math"
	"testing"

	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
)

func simNode(id, name string, nodeType graph.NodeType, category string, cost any, prereqs ...string) graph.Node {
	metadata := map[string]any{}
	if cost != nil {
		metadata["researchCost"] = cost
	}
	return graph.Node{
		ID:           id,
		FriendlyName: name,
		Type:         nodeType,
		Category:     category,
		Prereqs:      prereqs,
		Metadata:     metadata,
	}
}

func simFixture(t *testing.T, nodes map[string]graph.Node) (*graph.Data, *planner.FlatList) {
	t.Helper()
	g := graph.Build(nodes)
	return g, planner.BuildFlatList(g, nodes)
}

func completionOrder(result Result) []string {
	var ids []string
	for _, snapshot := range result.Turns {
		for _, event := range snapshot.Completed {
			ids = append(ids, event.NodeID)
		}
	}
	return ids
}

func techSlot(name string, pips int) SlotConfig {
	return SlotConfig{Name: name, Type: graph.NodeTypeTech, Pips: pips}
}

func TestSimulatePrereqGating(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"alpha": simNode("alpha", "Alpha", graph.NodeTypeTech, "Energy", 3),
		"beta":  simNode("beta", "Beta", graph.NodeTypeTech, "Energy", 4, "alpha"),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["alpha"], g.IDToIndex["beta"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 3), techSlot("Tech 2", 3)},
	})

	order := completionOrder(result)
	if len(order) != 2 || order[0] != "alpha" || order[1] != "beta" {
		t.Fatalf("completion order = %v, want [alpha beta]", order)
	}
	if len(result.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(result.Turns))
	}
	// Beta must not start while alpha is unfinished.
	for _, slot := range result.Turns[0].Slots {
		if slot.NodeID == "beta" {
			t.Error("beta assigned before its prerequisite completed")
		}
	}
}

func TestSimulatePartialProgressCarriesOver(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"quick": simNode("quick", "Quick", graph.NodeTypeTech, "Energy", 2),
		"slow":  simNode("slow", "Slow", graph.NodeTypeTech, "Energy", 6),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["quick"], g.IDToIndex["slow"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 1), techSlot("Tech 2", 1)},
	})

	if len(result.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(result.Turns))
	}

	// Turn 1 advances by quick's completion time; slow keeps the remainder.
	var slowState SlotState
	for _, slot := range result.Turns[0].Slots {
		if slot.NodeID == "slow" {
			slowState = slot
		}
	}
	if math.Abs(slowState.Remaining-4.0) > 1e-9 {
		t.Errorf("slow remaining after turn 1 = %v, want 4", slowState.Remaining)
	}
	if got := completionOrder(result); len(got) != 2 || got[0] != "quick" {
		t.Errorf("completion order = %v, want quick first", got)
	}
}

func TestSimulateTypeGating(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"tech": simNode("tech", "Tech", graph.NodeTypeTech, "Energy", 2),
		"proj": simNode("proj", "Proj", graph.NodeTypeProject, "Energy", 2, "tech"),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["tech"], g.IDToIndex["proj"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 1)},
		ProjectSlots: []SlotConfig{{Name: "Project 1", Type: graph.NodeTypeProject, Pips: 1}},
	})

	for _, snapshot := range result.Turns {
		for _, slot := range snapshot.Slots {
			if slot.NodeIndex == Idle {
				continue
			}
			if slot.Slot == "Tech 1" && slot.Type != graph.NodeTypeTech {
				t.Errorf("turn %d: tech slot running %s", snapshot.Turn, slot.Type)
			}
			if slot.Slot == "Project 1" && slot.Type != graph.NodeTypeProject {
				t.Errorf("turn %d: project slot running %s", snapshot.Turn, slot.Type)
			}
		}
	}
	if got := completionOrder(result); len(got) != 2 {
		t.Fatalf("completions = %v, want both nodes", got)
	}
}

func TestSimulateSkipsCompletedAndOutOfRange(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"done": simNode("done", "Done", graph.NodeTypeTech, "Energy", 5),
		"next": simNode("next", "Next", graph.NodeTypeTech, "Energy", 5, "done"),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{-3, g.IDToIndex["done"], g.IDToIndex["next"], 99},
		Completed:    map[int]bool{g.IDToIndex["done"]: true},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 1)},
	})

	if got := completionOrder(result); len(got) != 1 || got[0] != "next" {
		t.Fatalf("completions = %v, want [next]", got)
	}
}

func TestSimulateStallStopsEverything(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"a": simNode("a", "A", graph.NodeTypeTech, "Energy", 5),
		"b": simNode("b", "B", graph.NodeTypeTech, "Energy", 5),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["a"], g.IDToIndex["b"]},
		TechSlots:    []SlotConfig{techSlot("Dead 1", 0), techSlot("Dead 2", 0)},
	})

	if len(result.Turns) != 1 {
		t.Fatalf("turns = %d, want exactly one stalled snapshot", len(result.Turns))
	}
	snapshot := result.Turns[0]
	if len(snapshot.Completed) != 0 {
		t.Errorf("stalled turn completed %v", snapshot.Completed)
	}
	for _, slot := range snapshot.Slots {
		if slot.NodeIndex == Idle {
			t.Errorf("slot %s idle in stalled snapshot", slot.Slot)
		}
		if slot.Remaining != 5.0 {
			t.Errorf("slot %s remaining = %v, want untouched 5", slot.Slot, slot.Remaining)
		}
	}
}

func TestSimulateBlockedBacklogTerminates(t *testing.T) {
	t.Parallel()

	// orphan's prerequisite is neither completed nor in the backlog, so it
	// can never become ready.
	g, flat := simFixture(t, map[string]graph.Node{
		"gate":   simNode("gate", "Gate", graph.NodeTypeTech, "Energy", 5),
		"orphan": simNode("orphan", "Orphan", graph.NodeTypeTech, "Energy", 5, "gate"),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["orphan"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 3)},
	})

	if len(result.Turns) != 0 {
		t.Fatalf("turns = %d, want 0 for a permanently blocked backlog", len(result.Turns))
	}
}

func TestSimulateCostFloor(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"free":    simNode("free", "Free", graph.NodeTypeTech, "Energy", 0),
		"unknown": simNode("unknown", "Unknown", graph.NodeTypeTech, "Energy", nil),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["free"], g.IDToIndex["unknown"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 1)},
	})

	// Both cost exactly one unit of work; each finishes in its own turn.
	if got := completionOrder(result); len(got) != 2 {
		t.Fatalf("completions = %v, want 2", got)
	}
	if len(result.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(result.Turns))
	}
}

func TestSimulateCategoryMix(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"energy":   simNode("energy", "Energy Tech", graph.NodeTypeTech, "Energy", 100),
		"material": simNode("material", "Material Tech", graph.NodeTypeTech, "Materials", 100),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["energy"], g.IDToIndex["material"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 3), techSlot("Tech 2", 1)},
	})

	if len(result.CategoryMix) != len(result.Turns) {
		t.Fatalf("mix samples = %d, turns = %d", len(result.CategoryMix), len(result.Turns))
	}

	first := result.CategoryMix[0]
	if math.Abs(first["Energy"]-0.75) > 1e-9 || math.Abs(first["Materials"]-0.25) > 1e-9 {
		t.Fatalf("turn 1 mix = %v, want Energy 0.75 / Materials 0.25", first)
	}

	for turn, sample := range result.CategoryMix {
		if len(sample) == 0 {
			continue
		}
		total := 0.0
		for _, share := range sample {
			total += share
		}
		if math.Abs(total-1.0) > 1e-9 {
			t.Errorf("turn %d mix sums to %v", turn+1, total)
		}
	}
}

func TestSimulateCumulativeMixAccumulates(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"a": simNode("a", "A", graph.NodeTypeTech, "Energy", 10),
		"b": simNode("b", "B", graph.NodeTypeTech, "Energy", 10, "a"),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["a"], g.IDToIndex["b"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 1)},
	})

	if len(result.CumulativeMix) != 2 {
		t.Fatalf("cumulative samples = %d, want 2", len(result.CumulativeMix))
	}
	if math.Abs(result.CumulativeMix[0]["Energy"]-1.0) > 1e-9 {
		t.Errorf("cumulative after turn 1 = %v", result.CumulativeMix[0])
	}
	if math.Abs(result.CumulativeMix[1]["Energy"]-2.0) > 1e-9 {
		t.Errorf("cumulative after turn 2 = %v, want un-normalized 2.0", result.CumulativeMix[1])
	}
}

func TestSimulateUncategorizedCarriesNoMixWeight(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"plain": simNode("plain", "Plain", graph.NodeTypeTech, "", 5),
	})

	result := Simulate(g, flat, Config{
		BacklogOrder: []int{g.IDToIndex["plain"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 1)},
	})

	if len(result.CategoryMix) != 1 {
		t.Fatalf("mix samples = %d, want 1", len(result.CategoryMix))
	}
	if len(result.CategoryMix[0]) != 0 {
		t.Errorf("mix = %v, want empty for uncategorized-only turn", result.CategoryMix[0])
	}
}

func TestSimulateDeterministic(t *testing.T) {
	t.Parallel()

	g, flat := simFixture(t, map[string]graph.Node{
		"a": simNode("a", "A", graph.NodeTypeTech, "Energy", 7),
		"b": simNode("b", "B", graph.NodeTypeTech, "Materials", 11, "a"),
		"c": simNode("c", "C", graph.NodeTypeTech, "Energy", 13),
	})
	cfg := Config{
		BacklogOrder: []int{g.IDToIndex["a"], g.IDToIndex["b"], g.IDToIndex["c"]},
		TechSlots:    []SlotConfig{techSlot("Tech 1", 3), techSlot("Tech 2", 2)},
	}

	first := Simulate(g, flat, cfg)
	for i := 0; i < 5; i++ {
		again := Simulate(g, flat, cfg)
		if len(again.Turns) != len(first.Turns) {
			t.Fatalf("run %d: turns = %d, want %d", i, len(again.Turns), len(first.Turns))
		}
		firstOrder := completionOrder(first)
		againOrder := completionOrder(again)
		for j := range firstOrder {
			if firstOrder[j] != againOrder[j] {
				t.Fatalf("run %d: completion order differs: %v vs %v", i, againOrder, firstOrder)
			}
		}
	}
}
