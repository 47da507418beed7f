package config

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Slot count and pips bounds enforced on preset files.
const (
	maxSlotsPerType = 3
	maxPips         = 3
)

// SlotDef is one research slot preset.
type SlotDef struct {
	Name string `toml:"name"`
	Pips int    `toml:"pips"`
}

// Slots is the slot preset file shape (slots.toml).
type Slots struct {
	Tech    []SlotDef `toml:"tech"`
	Project []SlotDef `toml:"project"`
}

// DefaultSlots mirrors the in-game baseline: three tech slots at three pips
// and one project slot at one pip.
func DefaultSlots() Slots {
	return Slots{
		Tech: []SlotDef{
			{Name: "Tech 1", Pips: 3},
			{Name: "Tech 2", Pips: 3},
			{Name: "Tech 3", Pips: 3},
		},
		Project: []SlotDef{
			{Name: "Project 1", Pips: 1},
		},
	}
}

// LoadSlots reads the slot preset file. A missing file yields the defaults;
// a malformed file is an error. Loaded presets are clamped to at most three
// slots per type with pips in [0, 3].
func LoadSlots(path string) (Slots, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSlots(), nil
	}
	if err != nil {
		return Slots{}, fmt.Errorf("config: read slots file %s: %w", path, err)
	}

	var slots Slots
	if err := toml.Unmarshal(data, &slots); err != nil {
		return Slots{}, fmt.Errorf("config: parse slots file %s: %w", path, err)
	}
	return clampSlots(slots), nil
}

// SaveSlots writes the slot presets as TOML.
func SaveSlots(path string, slots Slots) error {
	data, err := toml.Marshal(clampSlots(slots))
	if err != nil {
		return fmt.Errorf("config: encode slots: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write slots file %s: %w", path, err)
	}
	return nil
}

func clampSlots(slots Slots) Slots {
	slots.Tech = clampSlotList(slots.Tech, "Tech")
	slots.Project = clampSlotList(slots.Project, "Project")
	return slots
}

func clampSlotList(defs []SlotDef, fallbackPrefix string) []SlotDef {
	if len(defs) > maxSlotsPerType {
		defs = defs[:maxSlotsPerType]
	}
	out := make([]SlotDef, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			def.Name = fmt.Sprintf("%s %d", fallbackPrefix, i+1)
		}
		if def.Pips < 0 {
			def.Pips = 0
		}
		if def.Pips > maxPips {
			def.Pips = maxPips
		}
		out[i] = def
	}
	return out
}
