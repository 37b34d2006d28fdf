package scenario

import (
	"log/slog"
	"sync"

	"rescuesim/internal/telemetry"
)

// Tracker follows mission progress through a scenario's phases. It observes
// the per-tick aggregate series and advances whenever a trigger threshold is
// reached. Phase changes are informational; they never feed back into the
// simulation.
type Tracker struct {
	scenario *Scenario
	current  string
	baseline int
	hasBase  bool
	log      *slog.Logger
	mu       sync.Mutex
}

// NewTracker creates a Tracker starting at the scenario's first phase.
func NewTracker(s *Scenario, log *slog.Logger) *Tracker {
	t := &Tracker{scenario: s, log: log}
	if len(s.Phases) > 0 {
		t.current = s.Phases[0].Name
	}
	return t
}

// Phase returns the current phase name.
func (t *Tracker) Phase() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// ObserveStats derives scenario events from one aggregate record and
// advances phases until no trigger matches.
func (t *Tracker) ObserveStats(row telemetry.StatsRow) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasBase {
		t.baseline = row.ActiveDrones
		t.hasBase = true
	}
	events := []Event{
		{Type: "tick", Value: row.Tick},
		{Type: "victims_found", Value: row.Found},
		{Type: "victims_rescued", Value: row.Rescued},
		{Type: "coverage_percent", Value: int(row.Coverage * 100)},
		{Type: "drones_lost", Value: t.baseline - row.ActiveDrones},
	}
	for advanced := true; advanced; {
		advanced = false
		for _, ev := range events {
			if next, ok := t.scenario.NextPhase(t.current, ev); ok {
				t.log.Info("scenario phase change",
					"scenario", t.scenario.Name, "from", t.current, "to", next,
					"event", ev.Type, "value", ev.Value)
				t.current = next
				advanced = true
				break
			}
		}
	}
}
