// Writer implementation printing rows to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"rescuesim/internal/telemetry"
)

// StdoutWriter prints drone rows, stats and events as human-readable lines.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout}
}

// Write outputs a single drone row.
func (w *StdoutWriter) Write(row telemetry.DroneRow) error {
	carrying := ""
	if row.Carrying != "" {
		carrying = " carrying=" + row.Carrying
	}
	fmt.Fprintf(w.out, "tick=%d drone=%s pos=(%d,%d) battery=%d state=%s%s\n",
		row.Tick, row.DroneID, row.X, row.Y, row.Battery, row.State, carrying)
	return nil
}

// WriteBatch outputs multiple drone rows.
func (w *StdoutWriter) WriteBatch(rows []telemetry.DroneRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteStats outputs a per-tick aggregate record.
func (w *StdoutWriter) WriteStats(row telemetry.StatsRow) error {
	fmt.Fprintf(w.out, "tick=%d coverage=%.3f found=%d rescued=%d active_drones=%d\n",
		row.Tick, row.Coverage, row.Found, row.Rescued, row.ActiveDrones)
	return nil
}

// WriteEvent outputs a mission event.
func (w *StdoutWriter) WriteEvent(e telemetry.EventRow) error {
	fmt.Fprintf(w.out, "tick=%d event=%s drone=%s victim=%s\n",
		e.Tick, e.EventType, e.DroneID, e.VictimID)
	return nil
}

// JSONStdoutWriter prints rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a drone row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.DroneRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple drone rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.DroneRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteStats outputs an aggregate record in JSON format.
func (w *JSONStdoutWriter) WriteStats(row telemetry.StatsRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvent outputs a mission event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	data, _ := json.Marshal(e)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvents outputs multiple mission events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}
