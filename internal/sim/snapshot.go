package sim

import "rescuesim/internal/telemetry"

// snapshotEventTail bounds how many recent events a snapshot carries.
const snapshotEventTail = 20

// DroneView is the read-only per-drone state exposed to display layers.
type DroneView struct {
	ID              string  `json:"id"`
	X               int     `json:"x"`
	Y               int     `json:"y"`
	State           string  `json:"state"`
	Battery         int     `json:"battery"`
	BatteryFraction float64 `json:"battery_fraction"`
	Failed          bool    `json:"failed"`
	Carrying        string  `json:"carrying,omitempty"`
}

// VictimView is the read-only per-victim state exposed to display layers.
type VictimView struct {
	ID             string  `json:"id"`
	X              int     `json:"x"`
	Y              int     `json:"y"`
	Health         float64 `json:"health"`
	HealthFraction float64 `json:"health_fraction"`
	Rescued        bool    `json:"rescued"`
	Lost           bool    `json:"lost"`
	Carried        bool    `json:"carried"`
}

// HubView is a hub position for display layers.
type HubView struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// ObstacleView is an obstacle position for display layers.
type ObstacleView struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snapshot is the full per-tick state the visualization layer polls. It is
// a value copy; holding one never aliases live simulation state.
type Snapshot struct {
	MissionID string               `json:"mission_id"`
	Tick      int                  `json:"tick"`
	Width     int                  `json:"width"`
	Height    int                  `json:"height"`
	Drones    []DroneView          `json:"drones"`
	Victims   []VictimView         `json:"victims"`
	Hubs      []HubView            `json:"hubs"`
	Obstacles []ObstacleView       `json:"obstacles"`
	Stats     telemetry.StatsRow   `json:"stats"`
	Events    []telemetry.EventRow `json:"events,omitempty"`
}

// Snapshot returns the current read-only state for display layers.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() Snapshot {
	snap := Snapshot{
		MissionID: s.missionID,
		Tick:      s.tick,
		Width:     s.grid.Width,
		Height:    s.grid.Height,
	}
	for _, d := range s.drones {
		dv := DroneView{
			ID:              d.Name(),
			X:               d.Pos.X,
			Y:               d.Pos.Y,
			State:           string(d.State),
			Battery:         d.Battery,
			BatteryFraction: d.BatteryFraction(),
			Failed:          d.State == StateFailed,
		}
		if d.Carrying != NoVictim {
			dv.Carrying = s.victims[d.Carrying].Name()
		}
		snap.Drones = append(snap.Drones, dv)
	}
	for _, v := range s.victims {
		snap.Victims = append(snap.Victims, VictimView{
			ID:             v.Name(),
			X:              v.Pos.X,
			Y:              v.Pos.Y,
			Health:         v.Health,
			HealthFraction: v.HealthFraction(),
			Rescued:        v.Rescued,
			Lost:           v.Lost(),
			Carried:        v.Carried(),
		})
	}
	for _, h := range s.hubs {
		snap.Hubs = append(snap.Hubs, HubView{ID: h.Name(), X: h.Pos.X, Y: h.Pos.Y})
	}
	for _, o := range s.obstacles {
		snap.Obstacles = append(snap.Obstacles, ObstacleView{X: o.Pos.X, Y: o.Pos.Y})
	}
	if len(s.series) > 0 {
		snap.Stats = s.series[len(s.series)-1]
	}
	tail := len(s.events) - snapshotEventTail
	if tail < 0 {
		tail = 0
	}
	snap.Events = append(snap.Events, s.events[tail:]...)
	return snap
}
