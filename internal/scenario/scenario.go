package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a mission arc with ordered phases and an overall
// description. Phases carry no behavior of their own; they label mission
// progress for operators and dashboards.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase describes a stage of the mission with triggers for transitions.
type Phase struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Triggers    []Trigger `yaml:"triggers,omitempty"`
}

// Trigger moves the scenario to another phase once a mission measure
// reaches a threshold.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event is a mission measure sampled at a tick: "tick", "victims_found",
// "victims_rescued", "coverage_percent" or "drones_lost".
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// NextPhase returns the name of the next phase given the current phase and
// event. If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}
