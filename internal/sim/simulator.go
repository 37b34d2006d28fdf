// Simulator orchestrating the discrete-tick search-and-rescue model
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"rescuesim/internal/config"
	"rescuesim/internal/telemetry"
	"rescuesim/internal/world"
)

// placementAttempts bounds rejection sampling per entity before the
// initialization is declared failed.
const placementAttempts = 200

// Simulator owns the world, all agents, the seeded random source, and the
// aggregate series. All mutation happens inside Step under the mutex; the
// admin server and TUI read snapshots concurrently.
type Simulator struct {
	missionID string
	cfg       *config.SimulationConfig
	grid      *world.Grid

	drones    []*Drone
	victims   []*world.Victim
	hubs      []*world.Hub
	obstacles []*world.Obstacle

	droneByName  map[string]*Drone
	victimByName map[string]*world.Victim

	rng  *rand.Rand
	seed int64

	tick                int
	foundCount          int
	rescuedCount        int
	lostCount           int
	lowBatteryThreshold int
	covered             map[world.Coord]struct{}

	series  []telemetry.StatsRow
	events  []telemetry.EventRow
	pending []telemetry.EventRow

	writer         TelemetryWriter
	statsWriter    StatsWriter
	eventWriter    EventWriter
	snapshotWriter SnapshotWriter
	observers      []StatsObserver

	tickInterval time.Duration
	now          func() time.Time
	log          *slog.Logger
	mu           sync.Mutex
}

// NewSimulator builds the world from config: hubs at deterministic anchors,
// obstacles and victims by seeded rejection sampling, all drones starting at
// hub 0. Placement exhaustion is an initialization error, never a silent
// reduction of counts.
func NewSimulator(missionID string, cfg *config.SimulationConfig, writer TelemetryWriter, statsWriter StatsWriter, eventWriter EventWriter, tickInterval time.Duration) (*Simulator, error) {
	seed, err := cfg.SeedValue()
	if err != nil {
		return nil, err
	}
	if !cfg.Seeded() {
		seed = time.Now().UnixNano()
	}

	s := &Simulator{
		missionID:           missionID,
		cfg:                 cfg,
		grid:                world.NewGrid(cfg.Grid.Width, cfg.Grid.Height),
		droneByName:         make(map[string]*Drone),
		victimByName:        make(map[string]*world.Victim),
		rng:                 rand.New(rand.NewSource(seed)),
		seed:                seed,
		lowBatteryThreshold: int(cfg.LowBattery * float64(cfg.MaxBattery)),
		covered:             make(map[world.Coord]struct{}),
		writer:              writer,
		statsWriter:         statsWriter,
		eventWriter:         eventWriter,
		tickInterval:        tickInterval,
		now:                 time.Now,
		log:                 slog.Default(),
	}

	if err := s.place(); err != nil {
		return nil, err
	}
	return s, nil
}

// place lays out hubs, obstacles, victims and drones.
func (s *Simulator) place() error {
	anchors := hubAnchors(s.cfg.Grid.Width, s.cfg.Grid.Height)
	for i, pos := range anchors[:s.cfg.Hubs] {
		h := &world.Hub{ID: i, Pos: pos}
		s.hubs = append(s.hubs, h)
		s.grid.Place(h.Name(), pos)
	}

	for i := 0; i < s.cfg.Obstacles; i++ {
		pos, ok := s.samplePos(func(c world.Coord) bool {
			return !s.grid.IsObstacle(c) && !s.isHubCell(c)
		})
		if !ok {
			return fmt.Errorf("placement failed: no free cell for obstacle %d of %d", i+1, s.cfg.Obstacles)
		}
		o := &world.Obstacle{ID: i, Pos: pos}
		s.obstacles = append(s.obstacles, o)
		s.grid.AddObstacle(pos)
		s.grid.Place(o.Name(), pos)
	}

	for i := 0; i < s.cfg.Victims; i++ {
		pos, ok := s.samplePos(func(c world.Coord) bool {
			return !s.grid.IsObstacle(c) && !s.isHubCell(c)
		})
		if !ok {
			return fmt.Errorf("placement failed: no free cell for victim %d of %d", i+1, s.cfg.Victims)
		}
		v := world.NewVictim(i, pos, s.cfg.VictimHealth)
		s.victims = append(s.victims, v)
		s.victimByName[v.Name()] = v
		s.grid.Place(v.Name(), pos)
	}

	start := s.hubs[0].Pos
	for i := 0; i < s.cfg.Drones; i++ {
		d := &Drone{
			ID:         i,
			Pos:        start,
			Battery:    s.cfg.MaxBattery,
			MaxBattery: s.cfg.MaxBattery,
			State:      StateSearch,
			Carrying:   NoVictim,
			TargetHub:  NoHub,
			Visited:    map[world.Coord]struct{}{start: {}},
			Sightings:  make(map[int]world.Coord),
			SensorProb: s.cfg.SensorProb,
			CommRadius: s.cfg.CommRadius,
		}
		s.drones = append(s.drones, d)
		s.droneByName[d.Name()] = d
		s.grid.Place(d.Name(), start)
	}
	s.covered[start] = struct{}{}
	return nil
}

// hubAnchors spreads hubs over the quadrant corners in id order; the
// reference model pins the first hub near the origin corner and the second
// at the opposite corner.
func hubAnchors(w, h int) [4]world.Coord {
	return [4]world.Coord{
		{X: 1, Y: 1},
		{X: w - 2, Y: h - 2},
		{X: w - 2, Y: 1},
		{X: 1, Y: h - 2},
	}
}

func (s *Simulator) isHubCell(c world.Coord) bool {
	for _, h := range s.hubs {
		if h.Pos == c {
			return true
		}
	}
	return false
}

// samplePos draws random cells until accept passes or attempts run out.
func (s *Simulator) samplePos(accept func(world.Coord) bool) (world.Coord, bool) {
	for i := 0; i < placementAttempts; i++ {
		c := world.Coord{X: s.rng.Intn(s.grid.Width), Y: s.rng.Intn(s.grid.Height)}
		if accept(c) {
			return c, true
		}
	}
	return world.Coord{}, false
}

// Step advances the simulation one tick: activate all live drones in a
// seeded-random order, decay victims, then collect statistics. Mutations by
// earlier-activated drones are visible to later ones in the same tick; that
// ordering, drawn from the seeded RNG, is what resolves pickup races
// reproducibly.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++

	order := make([]*Drone, 0, len(s.drones))
	for _, d := range s.drones {
		if d.State != StateFailed {
			order = append(order, d)
		}
	}
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	for _, d := range order {
		s.stepDrone(d)
	}

	s.decayVictims()
	s.collect()
	s.flush()
}

// decayVictims applies per-tick health decay. A victim hitting zero health
// is lost: it leaves the rescuable pool, and a drone carrying it releases it.
func (s *Simulator) decayVictims() {
	for _, v := range s.victims {
		if !v.Decay(s.cfg.DecayRate) {
			continue
		}
		s.lostCount++
		if v.Carried() {
			d := s.drones[v.CarrierID]
			v.CarrierID = world.NoCarrier
			d.Carrying = NoVictim
			if d.State == StateCarry {
				d.State = StateSearch
				d.TargetHub = NoHub
			}
		}
		s.recordEvent(telemetry.EventLost, nil, v)
	}
}

// collect appends one aggregate record for this tick and notifies observers.
func (s *Simulator) collect() {
	row := telemetry.StatsRow{
		MissionID:    s.missionID,
		Tick:         s.tick,
		Coverage:     float64(len(s.covered)) / float64(s.grid.FreeCells()),
		Found:        s.foundCount,
		Rescued:      s.rescuedCount,
		ActiveDrones: s.activeDrones(),
		Timestamp:    s.now().UTC(),
	}
	s.series = append(s.series, row)
	for _, o := range s.observers {
		o.ObserveStats(row)
	}
}

func (s *Simulator) activeDrones() int {
	n := 0
	for _, d := range s.drones {
		if d.State != StateFailed {
			n++
		}
	}
	return n
}

func (s *Simulator) recordEvent(eventType string, d *Drone, v *world.Victim) {
	e := telemetry.EventRow{
		MissionID: s.missionID,
		EventType: eventType,
		Tick:      s.tick,
		Timestamp: s.now().UTC(),
	}
	if d != nil {
		e.DroneID = d.Name()
	}
	if v != nil {
		e.VictimID = v.Name()
	}
	s.events = append(s.events, e)
	s.pending = append(s.pending, e)
}

// Finished reports whether a configured stop condition has been reached:
// the tick budget, or no rescuable victims remaining.
func (s *Simulator) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxTicks > 0 && s.tick >= s.cfg.MaxTicks {
		return true
	}
	if s.cfg.StopRescued && len(s.victims) > 0 && s.rescuedCount+s.lostCount == len(s.victims) {
		return true
	}
	return false
}

// Tick returns the current tick counter.
func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Seed returns the seed actually used, for logging and replayable runs.
func (s *Simulator) Seed() int64 {
	return s.seed
}

// Config returns the simulation configuration.
func (s *Simulator) Config() *config.SimulationConfig {
	return s.cfg
}

// Series returns a copy of the per-tick aggregate series.
func (s *Simulator) Series() []telemetry.StatsRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.StatsRow, len(s.series))
	copy(out, s.series)
	return out
}

// Events returns a copy of all recorded mission events.
func (s *Simulator) Events() []telemetry.EventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.EventRow, len(s.events))
	copy(out, s.events)
	return out
}

// AddObserver registers a per-tick stats observer (e.g. prometheus).
func (s *Simulator) AddObserver(o StatsObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// SetSnapshotWriter attaches a writer receiving a full snapshot per tick.
func (s *Simulator) SetSnapshotWriter(w SnapshotWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotWriter = w
}
