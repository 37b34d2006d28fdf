package sim

import (
	"testing"
	"time"

	"rescuesim/internal/config"
	"rescuesim/internal/telemetry"
)

// MockWriter collects drone rows for validation.
type MockWriter struct {
	Rows []telemetry.DroneRow
}

func (w *MockWriter) Write(row telemetry.DroneRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

type MockStatsWriter struct {
	Rows []telemetry.StatsRow
}

func (w *MockStatsWriter) WriteStats(row telemetry.StatsRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

type MockEventWriter struct {
	Events []telemetry.EventRow
}

func (w *MockEventWriter) WriteEvent(e telemetry.EventRow) error {
	w.Events = append(w.Events, e)
	return nil
}

func testConfig() *config.SimulationConfig {
	return &config.SimulationConfig{
		Grid:         config.GridConfig{Width: 20, Height: 20},
		Drones:       6,
		Victims:      8,
		Hubs:         2,
		Obstacles:    20,
		MaxBattery:   80,
		SensorProb:   0.9,
		CommRadius:   2,
		RandomSeed:   "42",
		VictimHealth: 100,
		DecayRate:    0.5,
		LowBattery:   0.25,
		RechargeRate: 20,
	}
}

func TestNewSimulator_Placement(t *testing.T) {
	cfg := testConfig()
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	if len(s.drones) != 6 || len(s.victims) != 8 || len(s.hubs) != 2 || len(s.obstacles) != 20 {
		t.Fatalf("placement counts: drones=%d victims=%d hubs=%d obstacles=%d",
			len(s.drones), len(s.victims), len(s.hubs), len(s.obstacles))
	}

	for _, d := range s.drones {
		if d.Pos != s.hubs[0].Pos {
			t.Errorf("drone %d starts at %v, want hub 0 at %v", d.ID, d.Pos, s.hubs[0].Pos)
		}
		if d.Battery != cfg.MaxBattery || d.State != StateSearch {
			t.Errorf("drone %d initial state: battery=%d state=%s", d.ID, d.Battery, d.State)
		}
	}
	for _, v := range s.victims {
		if s.grid.IsObstacle(v.Pos) {
			t.Errorf("victim %d placed on obstacle at %v", v.ID, v.Pos)
		}
		for _, h := range s.hubs {
			if v.Pos == h.Pos {
				t.Errorf("victim %d placed on hub at %v", v.ID, v.Pos)
			}
		}
	}
	for _, h := range s.hubs {
		if s.grid.IsObstacle(h.Pos) {
			t.Errorf("hub %d cell blocked at %v", h.ID, h.Pos)
		}
	}
	if s.Seed() != 42 {
		t.Errorf("seed = %d, want 42", s.Seed())
	}
}

func TestNewSimulator_PlacementExhaustion(t *testing.T) {
	cfg := testConfig()
	cfg.Grid = config.GridConfig{Width: 5, Height: 5}
	cfg.Obstacles = 24
	cfg.Victims = 10

	if _, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second); err == nil {
		t.Fatal("expected placement error on an overfull grid")
	}
}

func TestSimulator_StepGeneratesTelemetry(t *testing.T) {
	cfg := testConfig()
	writer := &MockWriter{}
	stats := &MockStatsWriter{}
	s, err := NewSimulator("mission-test", cfg, writer, stats, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	s.Step()

	if len(writer.Rows) != cfg.Drones {
		t.Fatalf("expected telemetry for %d drones, got %d", cfg.Drones, len(writer.Rows))
	}
	for _, row := range writer.Rows {
		if row.DroneID == "" || row.MissionID != "mission-test" || row.Tick != 1 {
			t.Errorf("bad telemetry row: %+v", row)
		}
	}
	if len(stats.Rows) != 1 {
		t.Fatalf("expected one stats row, got %d", len(stats.Rows))
	}
	if got := stats.Rows[0].ActiveDrones; got != cfg.Drones {
		t.Errorf("active drones = %d, want %d", got, cfg.Drones)
	}
}

func TestSimulator_SeriesInvariants(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTicks = 120
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	prevCoverage := 0.0
	for i := 0; i < cfg.MaxTicks; i++ {
		s.Step()
	}

	series := s.Series()
	if len(series) != cfg.MaxTicks {
		t.Fatalf("series length = %d, want %d", len(series), cfg.MaxTicks)
	}
	for _, row := range series {
		if row.Coverage < prevCoverage || row.Coverage > 1 {
			t.Fatalf("coverage must be monotonic in [0,1]: %+v", row)
		}
		prevCoverage = row.Coverage
		if row.Rescued > row.Found {
			t.Fatalf("rescued may never exceed found: %+v", row)
		}
		if row.ActiveDrones < 0 || row.ActiveDrones > cfg.Drones {
			t.Fatalf("active drones out of range: %+v", row)
		}
	}

	// Every victim is in exactly one terminal or live category.
	rescued, lost, live := 0, 0, 0
	for _, v := range s.victims {
		switch {
		case v.Rescued:
			rescued++
		case v.Lost():
			lost++
		default:
			live++
		}
	}
	if rescued+lost+live != len(s.victims) {
		t.Errorf("victim conservation violated: %d+%d+%d != %d", rescued, lost, live, len(s.victims))
	}
	if rescued != s.rescuedCount || lost != s.lostCount {
		t.Errorf("counters drifted: rescued %d/%d lost %d/%d", rescued, s.rescuedCount, lost, s.lostCount)
	}
}

func TestSimulator_BatteryBounds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTicks = 200
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	for i := 0; i < cfg.MaxTicks; i++ {
		prev := make(map[int]int, len(s.drones))
		states := make(map[int]DroneState, len(s.drones))
		for _, d := range s.drones {
			prev[d.ID] = d.Battery
			states[d.ID] = d.State
		}
		s.Step()
		for _, d := range s.drones {
			if d.Battery < 0 || d.Battery > d.MaxBattery {
				t.Fatalf("tick %d: drone %d battery out of range: %d", s.tick, d.ID, d.Battery)
			}
			if d.Battery > prev[d.ID] && states[d.ID] != StateRecharge && d.State != StateRecharge {
				t.Fatalf("tick %d: drone %d battery rose outside recharge (%d -> %d, %s)",
					s.tick, d.ID, prev[d.ID], d.Battery, d.State)
			}
		}
	}
}

func TestSimulator_VictimLossStopsMission(t *testing.T) {
	cfg := testConfig()
	cfg.VictimHealth = 1
	cfg.DecayRate = 2
	cfg.SensorProb = 0.1
	cfg.StopRescued = true
	events := &MockEventWriter{}
	s, err := NewSimulator("mission-test", cfg, nil, nil, events, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	s.Step()

	if s.lostCount != cfg.Victims {
		t.Fatalf("lostCount = %d, want %d", s.lostCount, cfg.Victims)
	}
	if !s.Finished() {
		t.Error("mission with no rescuable victims left must finish")
	}
	lostEvents := 0
	for _, e := range events.Events {
		if e.EventType == "lost" {
			lostEvents++
		}
	}
	if lostEvents != cfg.Victims {
		t.Errorf("lost events = %d, want %d", lostEvents, cfg.Victims)
	}
}

func TestSimulator_Finished(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTicks = 3
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	for i := 0; i < 3; i++ {
		if s.Finished() {
			t.Fatalf("finished too early at tick %d", s.Tick())
		}
		s.Step()
	}
	if !s.Finished() {
		t.Error("must finish at the tick budget")
	}
}

func TestSimulator_ZeroVictims(t *testing.T) {
	cfg := testConfig()
	cfg.Victims = 0
	cfg.MaxTicks = 30
	cfg.StopRescued = true
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	for i := 0; i < 10; i++ {
		s.Step()
	}
	last := s.Series()[len(s.Series())-1]
	if last.Found != 0 || last.Rescued != 0 {
		t.Errorf("no victims means no found/rescued: %+v", last)
	}
	if s.Finished() {
		t.Error("stop_when_all_rescued must not trigger with zero victims before max_ticks")
	}
}

func TestSimulator_SnapshotConsistent(t *testing.T) {
	cfg := testConfig()
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.Step()

	snap := s.Snapshot()
	if snap.MissionID != "mission-test" || snap.Tick != 1 {
		t.Errorf("snapshot header: %+v", snap)
	}
	if snap.Width != cfg.Grid.Width || snap.Height != cfg.Grid.Height {
		t.Errorf("snapshot dimensions %dx%d", snap.Width, snap.Height)
	}
	if len(snap.Drones) != cfg.Drones || len(snap.Victims) != cfg.Victims ||
		len(snap.Hubs) != cfg.Hubs || len(snap.Obstacles) != cfg.Obstacles {
		t.Errorf("snapshot entity counts: %d/%d/%d/%d",
			len(snap.Drones), len(snap.Victims), len(snap.Hubs), len(snap.Obstacles))
	}
}

func TestSimulator_SingleDroneEventuallyRescues(t *testing.T) {
	cfg := testConfig()
	cfg.Drones = 1
	cfg.Victims = 1
	cfg.Hubs = 1
	cfg.Obstacles = 0
	cfg.Grid = config.GridConfig{Width: 8, Height: 8}
	cfg.SensorProb = 1.0
	cfg.MaxBattery = 300
	cfg.DecayRate = 0 // isolate pathfinding from the decay clock
	cfg.MaxTicks = 400
	cfg.StopRescued = true
	s, err := NewSimulator("mission-test", cfg, nil, nil, nil, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}

	for i := 0; i < cfg.MaxTicks && !s.Finished(); i++ {
		s.Step()
	}
	if s.rescuedCount != 1 {
		t.Fatalf("single drone on an open grid must rescue the victim, rescued=%d tick=%d",
			s.rescuedCount, s.Tick())
	}
}
