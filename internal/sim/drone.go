// Drone state machine: sensing, communication, movement, battery
package sim

import (
	"fmt"
	"sort"

	"rescuesim/internal/telemetry"
	"rescuesim/internal/world"
)

// DroneState is one of the four drone lifecycle states.
type DroneState string

const (
	StateSearch   DroneState = "search"
	StateCarry    DroneState = "carry"
	StateRecharge DroneState = "recharge"
	StateFailed   DroneState = "failed"
)

const (
	// NoVictim / NoHub mark cleared identifier relations.
	NoVictim = -1
	NoHub    = -1

	// sensorRadius is the fixed Chebyshev detection range around a drone.
	sensorRadius = 1
)

// Drone is the active agent. Carried victims and recharge targets are held
// as ids and resolved through the simulator's registry, never as pointers.
type Drone struct {
	ID         int
	Pos        world.Coord
	Battery    int
	MaxBattery int
	State      DroneState
	Carrying   int
	TargetHub  int

	Visited   map[world.Coord]struct{}
	Sightings map[int]world.Coord

	SensorProb float64
	CommRadius int
}

// Name returns the drone's registry id.
func (d *Drone) Name() string {
	return fmt.Sprintf("drone-%d", d.ID)
}

// BatteryFraction returns remaining charge scaled to [0,1].
func (d *Drone) BatteryFraction() float64 {
	if d.MaxBattery <= 0 {
		return 0
	}
	return float64(d.Battery) / float64(d.MaxBattery)
}

// stepDrone runs one activation: battery check, sensing, communication,
// then the state-dependent decision.
func (s *Simulator) stepDrone(d *Drone) {
	if d.State == StateFailed {
		return
	}
	if d.Battery <= 0 {
		s.failDrone(d)
		return
	}

	s.sense(d)
	s.communicate(d)

	switch d.State {
	case StateSearch:
		s.stepSearch(d)
	case StateCarry:
		s.stepCarry(d)
	case StateRecharge:
		s.stepRecharge(d)
	}
}

// failDrone is the terminal transition. A carried victim is released in
// place; its cell never changed while carried, so it stays rescuable.
func (s *Simulator) failDrone(d *Drone) {
	d.State = StateFailed
	if d.Carrying != NoVictim {
		v := s.victims[d.Carrying]
		v.CarrierID = world.NoCarrier
		d.Carrying = NoVictim
	}
	s.recordEvent(telemetry.EventFailed, d, nil)
}

// sense rolls the sensor once per candidate victim within sensorRadius.
// A success records a sighting; the first detection of a victim anywhere in
// the swarm increments the global found counter.
func (s *Simulator) sense(d *Drone) {
	cells := append(s.grid.Neighbors(d.Pos, sensorRadius), d.Pos)
	for _, c := range cells {
		for _, id := range s.grid.Occupants(c) {
			v, ok := s.victimByName[id]
			if !ok || !v.Rescuable() || v.Carried() {
				continue
			}
			if s.rng.Float64() >= d.SensorProb {
				continue
			}
			d.Sightings[v.ID] = v.Pos
			if !v.Found {
				v.Found = true
				s.foundCount++
				s.recordEvent(telemetry.EventFound, d, v)
			}
		}
	}
}

// communicate pushes this drone's sightings to every active drone within
// the communication radius. Propagation is one hop: peers re-share on their
// own activation, so information spreads across the swarm over ticks.
func (s *Simulator) communicate(d *Drone) {
	if d.CommRadius <= 0 {
		return
	}
	cells := append(s.grid.Neighbors(d.Pos, d.CommRadius), d.Pos)
	for _, c := range cells {
		for _, id := range s.grid.Occupants(c) {
			peer, ok := s.droneByName[id]
			if !ok || peer == d || peer.State == StateFailed {
				continue
			}
			for vid, pos := range d.Sightings {
				peer.Sightings[vid] = pos
			}
		}
	}
}

func (s *Simulator) stepSearch(d *Drone) {
	if d.Battery <= s.lowBatteryThreshold {
		d.State = StateRecharge
		d.TargetHub = s.nearestHub(d.Pos)
		s.stepRecharge(d)
		return
	}

	s.pruneSightings(d)
	ids := sortedSightings(d)

	// Pick up a known victim on this cell. First drone activated wins; the
	// pruning above keeps losers from chasing a carried victim next tick.
	for _, id := range ids {
		v := s.victims[id]
		if v.Pos == d.Pos {
			s.pickUp(d, v)
			return
		}
	}

	// Head for the nearest known victim, ties by lowest victim id.
	if len(ids) > 0 {
		target := d.Sightings[ids[0]]
		best := d.Pos.Chebyshev(target)
		for _, id := range ids[1:] {
			pos := d.Sightings[id]
			if dist := d.Pos.Chebyshev(pos); dist < best {
				best = dist
				target = pos
			}
		}
		if step, ok := s.greedyStep(d.Pos, target); ok {
			s.moveDrone(d, step)
		}
		return
	}

	// No known victim: advance toward the nearest frontier cell.
	if step, ok := s.frontierStep(d); ok {
		s.moveDrone(d, step)
		return
	}

	// Everything reachable is visited; wander to keep patrolling.
	var cands []world.Coord
	for _, n := range s.grid.Neighbors(d.Pos, 1) {
		if s.grid.Walkable(n) {
			cands = append(cands, n)
		}
	}
	if len(cands) > 0 {
		s.moveDrone(d, cands[s.rng.Intn(len(cands))])
	}
}

func (s *Simulator) stepCarry(d *Drone) {
	hub := s.hubs[d.TargetHub]
	if d.Pos != hub.Pos {
		if step, ok := s.greedyStep(d.Pos, hub.Pos); ok {
			s.moveDrone(d, step)
		}
	}
	if d.Pos == hub.Pos {
		s.deliver(d, hub)
	}
}

func (s *Simulator) stepRecharge(d *Drone) {
	hub := s.hubs[d.TargetHub]
	if d.Pos == hub.Pos {
		d.Battery = hub.Recharge(d.Battery, s.cfg.RechargeRate, d.MaxBattery)
		if d.Battery >= d.MaxBattery {
			d.State = StateSearch
			d.TargetHub = NoHub
		}
		return
	}
	if step, ok := s.greedyStep(d.Pos, hub.Pos); ok {
		s.moveDrone(d, step)
	}
}

// pickUp attaches a victim to the drone. Exclusive ownership: the victim
// must not already be carried.
func (s *Simulator) pickUp(d *Drone, v *world.Victim) {
	if v.Carried() {
		panic(fmt.Sprintf("victim %d picked up while carried by drone %d", v.ID, v.CarrierID))
	}
	v.CarrierID = d.ID
	d.Carrying = v.ID
	d.State = StateCarry
	d.TargetHub = s.nearestHub(d.Pos)
}

// deliver drops the carried victim at the hub and returns to SEARCH.
// Delivery never refills the battery; only RECHARGE at a hub does.
func (s *Simulator) deliver(d *Drone, hub *world.Hub) {
	v := s.victims[d.Carrying]
	wasFound := v.Found
	if hub.Deliver(v) {
		if !wasFound {
			s.foundCount++
		}
		s.rescuedCount++
		s.recordEvent(telemetry.EventRescued, d, v)
	}
	delete(d.Sightings, v.ID)
	d.Carrying = NoVictim
	d.State = StateSearch
	d.TargetHub = NoHub
}

// moveDrone applies a single-cell move: 1 battery unit, visited bookkeeping,
// occupancy update. Callers guarantee the destination is walkable.
func (s *Simulator) moveDrone(d *Drone, to world.Coord) {
	if to == d.Pos {
		return
	}
	if !s.grid.Walkable(to) {
		panic(fmt.Sprintf("drone %d moving into blocked cell (%d,%d)", d.ID, to.X, to.Y))
	}
	s.grid.Move(d.Name(), d.Pos, to)
	d.Pos = to
	d.Battery--
	d.Visited[to] = struct{}{}
	s.covered[to] = struct{}{}
}

// greedyStep proposes one obstacle-avoiding step from a cell toward a
// target: the diagonal step first, then the axis-aligned fallbacks. A false
// return means the drone is blocked (or already there) and stays put, which
// costs no battery.
func (s *Simulator) greedyStep(from, target world.Coord) (world.Coord, bool) {
	if from == target {
		return from, false
	}
	sx := sign(target.X - from.X)
	sy := sign(target.Y - from.Y)
	cands := []world.Coord{
		{X: from.X + sx, Y: from.Y + sy},
		{X: from.X + sx, Y: from.Y},
		{X: from.X, Y: from.Y + sy},
	}
	for _, c := range cands {
		if c != from && s.grid.Walkable(c) {
			return c, true
		}
	}
	return from, false
}

// frontierStep finds the nearest unvisited walkable cells by BFS over the
// obstacle layout and returns the first step toward one of them, breaking
// ties between equally close frontier cells with the seeded RNG.
func (s *Simulator) frontierStep(d *Drone) (world.Coord, bool) {
	type node struct {
		cell  world.Coord
		first world.Coord
		depth int
	}
	seen := map[world.Coord]bool{d.Pos: true}
	var queue []node
	for _, n := range s.grid.Neighbors(d.Pos, 1) {
		if s.grid.Walkable(n) {
			seen[n] = true
			queue = append(queue, node{cell: n, first: n, depth: 1})
		}
	}

	var frontier []node
	frontierDepth := -1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if frontierDepth >= 0 && cur.depth > frontierDepth {
			break
		}
		if _, visited := d.Visited[cur.cell]; !visited {
			frontierDepth = cur.depth
			frontier = append(frontier, cur)
			continue
		}
		if frontierDepth >= 0 {
			continue
		}
		for _, n := range s.grid.Neighbors(cur.cell, 1) {
			if s.grid.Walkable(n) && !seen[n] {
				seen[n] = true
				queue = append(queue, node{cell: n, first: cur.first, depth: cur.depth + 1})
			}
		}
	}
	if len(frontier) == 0 {
		return world.Coord{}, false
	}
	return frontier[s.rng.Intn(len(frontier))].first, true
}

// pruneSightings drops records for victims no longer worth pursuing:
// rescued, lost, or currently carried by another drone.
func (s *Simulator) pruneSightings(d *Drone) {
	for id := range d.Sightings {
		v := s.victims[id]
		if !v.Rescuable() || v.Carried() {
			delete(d.Sightings, id)
		}
	}
}

// nearestHub returns the index of the closest hub by Chebyshev distance,
// ties broken by lowest hub id.
func (s *Simulator) nearestHub(pos world.Coord) int {
	best := 0
	bestDist := pos.Chebyshev(s.hubs[0].Pos)
	for i, h := range s.hubs[1:] {
		if dist := pos.Chebyshev(h.Pos); dist < bestDist {
			bestDist = dist
			best = i + 1
		}
	}
	return best
}

func sortedSightings(d *Drone) []int {
	ids := make([]int, 0, len(d.Sightings))
	for id := range d.Sightings {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
