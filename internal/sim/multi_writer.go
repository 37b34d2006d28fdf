package sim

import "rescuesim/internal/telemetry"

// MultiWriter fans out rows to multiple writers.
type MultiWriter struct {
	telewriters  []TelemetryWriter
	statswriters []StatsWriter
	eventwriters []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(tws []TelemetryWriter, sws []StatsWriter, ews []EventWriter) *MultiWriter {
	return &MultiWriter{telewriters: tws, statswriters: sws, eventwriters: ews}
}

// Write sends a drone row to all writers.
func (mw *MultiWriter) Write(row telemetry.DroneRow) error {
	for _, w := range mw.telewriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple drone rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.DroneRow) error {
	for _, w := range mw.telewriters {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteStats sends an aggregate record to all stats writers.
func (mw *MultiWriter) WriteStats(row telemetry.StatsRow) error {
	for _, w := range mw.statswriters {
		if err := w.WriteStats(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent sends a mission event to all event writers.
func (mw *MultiWriter) WriteEvent(e telemetry.EventRow) error {
	for _, w := range mw.eventwriters {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple mission events to all event writers, using
// batch mode where supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, w := range mw.eventwriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				return err
			}
			continue
		}
		for _, e := range rows {
			if err := w.WriteEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}
