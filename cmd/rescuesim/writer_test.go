package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rescuesim/internal/sim"
	"rescuesim/internal/telemetry"
)

func TestNewWritersPrintOnly(t *testing.T) {
	tw, sw, ew, cleanup, err := newWriters(true, false, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", tw)
	}
	if _, ok := sw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected stats writer *sim.StdoutWriter, got %T", sw)
	}
	if _, ok := ew.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected event writer *sim.StdoutWriter, got %T", ew)
	}
}

func TestNewWritersJSONFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	tw, _, _, cleanup, err := newWriters(false, true, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter without an endpoint, got %T", tw)
	}
}

func TestNewWritersQuiet(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	tw, sw, ew, cleanup, err := newWriters(false, false, true, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if tw != nil || sw != nil || ew != nil {
		t.Fatalf("quiet mode without sinks must yield nil writers: %T %T %T", tw, sw, ew)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telemetry.log")
	tw, sw, _, cleanup, err := newWriters(true, false, false, path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := tw.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", tw)
	}

	row := telemetry.DroneRow{MissionID: "mission-1", DroneID: "drone-0", Timestamp: time.Now()}
	if err := tw.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sw.WriteStats(telemetry.StatsRow{MissionID: "mission-1", Tick: 1}); err != nil {
		t.Fatalf("write stats failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected log file to be non-empty")
	}
	statsInfo, err := os.Stat(path + ".stats")
	if err != nil {
		t.Fatalf("stat stats failed: %v", err)
	}
	if statsInfo.Size() == 0 {
		t.Fatal("expected stats file to be non-empty")
	}
}
