package main

import (
	"os"

	"rescuesim/internal/sim"
	"rescuesim/internal/telemetry"
)

// newWriters sets up telemetry, stats and event writers based on flags and
// env vars. It returns the writers and a cleanup function to close any
// resources. Writers may be nil when no sink applies (e.g. TUI mode without
// a database endpoint).
func newWriters(printOnly, jsonOut, quiet bool, logFile string) (sim.TelemetryWriter, sim.StatsWriter, sim.EventWriter, func(), error) {
	cleanup := func() {}

	writer, statsWriter, eventWriter, err := baseWriters(printOnly, jsonOut, quiet)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if logFile == "" {
		return writer, statsWriter, eventWriter, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".stats", logFile+".events")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cleanup = func() { fw.Close() }

	tws := []sim.TelemetryWriter{fw}
	sws := []sim.StatsWriter{fw}
	ews := []sim.EventWriter{fw}
	if writer != nil {
		tws = append([]sim.TelemetryWriter{writer}, fw)
	}
	if statsWriter != nil {
		sws = append([]sim.StatsWriter{statsWriter}, fw)
	}
	if eventWriter != nil {
		ews = append([]sim.EventWriter{eventWriter}, fw)
	}
	mw := sim.NewMultiWriter(tws, sws, ews)
	return mw, mw, mw, cleanup, nil
}

// baseWriters chooses the underlying writers from the printOnly flag and env
// vars. GREPTIMEDB_ENDPOINT selects the database sink, otherwise STDOUT.
func baseWriters(printOnly, jsonOut, quiet bool) (sim.TelemetryWriter, sim.StatsWriter, sim.EventWriter, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		if quiet {
			return nil, nil, nil, nil
		}
		if jsonOut {
			w := sim.NewJSONStdoutWriter()
			return w, w, w, nil
		}
		w := sim.NewStdoutWriter()
		return w, w, w, nil
	}

	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database,
		telemetry.DroneTableName, telemetry.StatsTableName, telemetry.EventTableName)
	if err != nil {
		return nil, nil, nil, err
	}
	return w, w, w, nil
}

// newTelemetryWriter creates a telemetry-only writer for replay.
func newTelemetryWriter(printOnly, jsonOut bool) (sim.TelemetryWriter, error) {
	w, _, _, _, err := newWriters(printOnly, jsonOut, false, "")
	return w, err
}
