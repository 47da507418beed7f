package planner

import (
	"encoding/json"

	"github.com/ashpool/techplan/internal/graph"
)

// PayloadVersion is the current persisted-backlog schema version.
const PayloadVersion = 1

// Payload is the versioned cross-session representation of a backlog.
// It carries stable node identifiers, never indices: indices are bound to
// one loaded dataset and do not survive a reload.
type Payload struct {
	Version int      `json:"version"`
	Order   []string `json:"order"`
}

// DecodedBacklog is the result of decoding a payload against a graph index.
type DecodedBacklog struct {
	Backlog Backlog
	// Dropped lists identifiers from the payload that do not exist in the
	// current dataset. They are removed individually; the rest of the
	// payload still applies.
	Dropped []string
}

// EncodeBacklog translates backlog indices into a versioned payload.
// Out-of-range indices are skipped.
func EncodeBacklog(g *graph.Data, backlog Backlog) Payload {
	order := make([]string, 0, backlog.Len())
	for _, idx := range backlog.Order() {
		if idx < 0 || idx >= g.Size() {
			continue
		}
		order = append(order, g.NodeIDs[idx])
	}
	return Payload{Version: PayloadVersion, Order: order}
}

// DecodeBacklog rebuilds backlog state from raw payload bytes. A payload
// with an unknown version or a malformed shape reports ok=false and must be
// treated as absent. Unknown identifiers inside an otherwise valid payload
// are dropped individually and reported, not rejected wholesale.
func DecodeBacklog(data []byte, g *graph.Data) (DecodedBacklog, bool) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return DecodedBacklog{}, false
	}
	if payload.Version != PayloadVersion || payload.Order == nil {
		return DecodedBacklog{}, false
	}

	seen := make(map[int]bool, len(payload.Order))
	indices := make([]int, 0, len(payload.Order))
	var dropped []string

	for _, id := range payload.Order {
		idx, ok := g.IDToIndex[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}

	return DecodedBacklog{Backlog: NewBacklog(indices), Dropped: dropped}, true
}

// IndicesForIDs maps node identifiers to indices, dropping unknown values.
func IndicesForIDs(ids []string, g *graph.Data) []int {
	indices := make([]int, 0, len(ids))
	for _, id := range ids {
		if idx, ok := g.IDToIndex[id]; ok {
			indices = append(indices, idx)
		}
	}
	return indices
}
