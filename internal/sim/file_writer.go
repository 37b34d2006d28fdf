package sim

import (
	"encoding/json"
	"os"

	"rescuesim/internal/telemetry"
)

// FileWriter writes drone rows, stats and events to JSONL files.
type FileWriter struct {
	teleFile  *os.File
	statsFile *os.File
	eventFile *os.File
	teleEnc   *json.Encoder
	statsEnc  *json.Encoder
	eventEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. statsPath or eventPath may be empty to
// skip those logs.
func NewFileWriter(telemetryPath, statsPath, eventPath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if statsPath != "" {
		sf, err := os.Create(statsPath)
		if err != nil {
			tf.Close()
			return nil, err
		}
		fw.statsFile = sf
		fw.statsEnc = json.NewEncoder(sf)
	}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			if fw.statsFile != nil {
				fw.statsFile.Close()
			}
			tf.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	return fw, nil
}

// Write logs a single drone row.
func (f *FileWriter) Write(row telemetry.DroneRow) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple drone rows.
func (f *FileWriter) WriteBatch(rows []telemetry.DroneRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats logs an aggregate record, if enabled.
func (f *FileWriter) WriteStats(row telemetry.StatsRow) error {
	if f.statsEnc == nil {
		return nil
	}
	return f.statsEnc.Encode(row)
}

// WriteEvent logs a mission event, if enabled.
func (f *FileWriter) WriteEvent(e telemetry.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple mission events.
func (f *FileWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.teleFile != nil {
		if e := f.teleFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.statsFile != nil {
		if e := f.statsFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
