// Telemetry structs with greptime tags
package telemetry

import (
	"os"
	"time"
)

// DroneRow represents one per-tick drone record for GreptimeDB.
type DroneRow struct {
	MissionID       string    `json:"mission_id"` // TAG
	DroneID         string    `json:"drone_id"`   // TAG
	Tick            int       `json:"tick"`       // FIELD
	X               int       `json:"x"`          // FIELD
	Y               int       `json:"y"`          // FIELD
	Battery         int       `json:"battery"`    // FIELD
	BatteryFraction float64   `json:"battery_fraction"`
	State           string    `json:"state"`
	Carrying        string    `json:"carrying,omitempty"`
	Timestamp       time.Time `json:"ts"` // TIME INDEX
}

// StatsRow is the aggregate series record appended once per tick.
type StatsRow struct {
	MissionID    string    `json:"mission_id"` // TAG
	Tick         int       `json:"tick"`       // FIELD
	Coverage     float64   `json:"coverage"`
	Found        int       `json:"found"`
	Rescued      int       `json:"rescued"`
	ActiveDrones int       `json:"active_drones"`
	Timestamp    time.Time `json:"ts"` // TIME INDEX
}

// Mission event types.
const (
	EventFound   = "found"
	EventRescued = "rescued"
	EventFailed  = "failed"
	EventLost    = "lost"
)

// EventRow records a discrete mission event (victim found, victim rescued,
// drone failed, victim lost to health decay).
type EventRow struct {
	MissionID string    `json:"mission_id"` // TAG
	EventType string    `json:"event_type"` // TAG
	Tick      int       `json:"tick"`       // FIELD
	DroneID   string    `json:"drone_id,omitempty"`
	VictimID  string    `json:"victim_id,omitempty"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// Table names used when writing to GreptimeDB. Each defaults to a fixed name
// and can be overridden via environment variables.
var (
	DroneTableName = tableName("GREPTIMEDB_TABLE", "drone_telemetry")
	StatsTableName = tableName("STATS_TABLE", "mission_stats")
	EventTableName = tableName("EVENT_TABLE", "mission_events")
)

func tableName(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func (DroneRow) TableName() string { return DroneTableName }
func (StatsRow) TableName() string { return StatsTableName }
func (EventRow) TableName() string { return EventTableName }
