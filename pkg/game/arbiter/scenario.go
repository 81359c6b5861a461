package arbiter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
)

// Entity is a hazard placed in a scenario
type Entity struct {
	X   int    `yaml:"x"`
	Y   int    `yaml:"y"`
	Tag string `yaml:"tag"`
}

// Relocation moves the target once the mover has made AfterMoves moves
type Relocation struct {
	AfterMoves int        `yaml:"after_moves"`
	To         world.Cell `yaml:"to"`
}

// Scenario is a complete, fully known board for the simulated arbiter
type Scenario struct {
	Name        string       `yaml:"name"`
	Variant     int          `yaml:"variant"`
	Target      world.Cell   `yaml:"target"`
	Marker      *world.Cell  `yaml:"marker,omitempty"`
	Hazards     []Entity     `yaml:"hazards"`
	Relocations []Relocation `yaml:"relocations,omitempty"`
	Strict      bool         `yaml:"strict"`
}

// ParseScenario decodes a YAML scenario and validates it
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// LoadScenario reads a YAML scenario from disk
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("load scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks that every coordinate is on the grid and every tag is a hazard
func (sc Scenario) Validate() error {
	if sc.Variant < 1 || sc.Variant > 2 {
		return fmt.Errorf("variant %d: must be 1 or 2", sc.Variant)
	}
	if !sc.Target.InBounds() {
		return fmt.Errorf("target %v is off the grid", sc.Target)
	}
	if sc.Marker != nil && !sc.Marker.InBounds() {
		return fmt.Errorf("marker %v is off the grid", *sc.Marker)
	}
	for _, h := range sc.Hazards {
		c := world.At(h.X, h.Y)
		if !c.InBounds() {
			return fmt.Errorf("hazard %v is off the grid", c)
		}
		if len(h.Tag) != 1 {
			return fmt.Errorf("hazard %v: tag %q", c, h.Tag)
		}
		if kind, ok := perception.KindOf(h.Tag[0]); !ok || kind != perception.Hazard {
			return fmt.Errorf("hazard %v: tag %q is not a hazard", c, h.Tag)
		}
	}
	for _, r := range sc.Relocations {
		if !r.To.InBounds() {
			return fmt.Errorf("relocation target %v is off the grid", r.To)
		}
		if r.AfterMoves < 0 {
			return fmt.Errorf("relocation after %d moves", r.AfterMoves)
		}
	}
	return nil
}

// Radius is the perception radius implied by the variant
func (sc Scenario) Radius() int {
	if sc.Variant == 2 {
		return 2
	}
	return 1
}

// Grid returns the fully revealed board with the initial target
func (sc Scenario) Grid() *world.Grid {
	g := world.NewGrid(sc.Target)
	for _, h := range sc.Hazards {
		g.MarkHazard(world.At(h.X, h.Y))
	}
	if sc.Marker != nil {
		g.RecordMarker(*sc.Marker)
	}
	return g
}

// Optimal returns the true shortest length on the fully revealed board for
// the initial target, or -1 if it is unreachable
func (sc Scenario) Optimal() int {
	d, ok := world.Distance(sc.Grid(), world.Start, sc.Target)
	if !ok {
		return -1
	}
	return d
}
