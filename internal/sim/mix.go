package sim

// buildCategoryMix computes, per turn, each category's share of active
// pips. Idle slots, zero-pip slots, and nodes without a category carry no
// weight. Shares are normalized to sum to 1; a turn with no weight yields
// an empty map.
func buildCategoryMix(turns []TurnSnapshot) []map[string]float64 {
	mix := make([]map[string]float64, 0, len(turns))
	for _, snapshot := range turns {
		weights := make(map[string]int)
		total := 0
		for _, slot := range snapshot.Slots {
			if slot.NodeIndex == Idle || slot.Category == "" {
				continue
			}
			if slot.Pips <= 0 {
				continue
			}
			weights[slot.Category] += slot.Pips
			total += slot.Pips
		}
		if total == 0 {
			mix = append(mix, map[string]float64{})
			continue
		}
		shares := make(map[string]float64, len(weights))
		for category, weight := range weights {
			shares[category] = float64(weight) / float64(total)
		}
		mix = append(mix, shares)
	}
	return mix
}

// buildCumulativeMix accumulates per-turn shares into running totals.
// Totals are not re-normalized.
func buildCumulativeMix(mix []map[string]float64) []map[string]float64 {
	running := make(map[string]float64)
	out := make([]map[string]float64, 0, len(mix))
	for _, sample := range mix {
		for category, share := range sample {
			running[category] += share
		}
		snapshot := make(map[string]float64, len(running))
		for category, total := range running {
			snapshot[category] = total
		}
		out = append(out, snapshot)
	}
	return out
}
