package sim

import "rescuesim/internal/telemetry"

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.DroneRow) error
}

// StatsWriter handles per-tick aggregate records.
type StatsWriter interface {
	WriteStats(telemetry.StatsRow) error
}

// EventWriter handles discrete mission events.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// SnapshotWriter receives the full read-only world snapshot each tick.
// Display layers (TUI, admin UI feed) implement this.
type SnapshotWriter interface {
	WriteSnapshot(Snapshot) error
}

// StatsObserver is notified of each collected aggregate record.
type StatsObserver interface {
	ObserveStats(telemetry.StatsRow)
}

// Optional: writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.DroneRow) error
}

// Optional: event writers may support batch mode
type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}
