package sim

import (
	"context"
	"log"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"rescuesim/internal/telemetry"
)

// GreptimeDBWriter writes mission telemetry to GreptimeDB via the ingester
// client: one table each for drone rows, aggregate stats, and events.
type GreptimeDBWriter struct {
	client     *greptime.Client
	db         string
	droneTable string
	statsTable string
	eventTable string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. Tables are
// auto-created by GreptimeDB on first write, with a 30d TTL applied via
// ingester hints. Empty table names fall back to the telemetry defaults.
func NewGreptimeDBWriter(endpoint, database, droneTable, statsTable, eventTable string) (*GreptimeDBWriter, error) {
	var cfg *greptime.Config
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		cfg = greptime.NewConfig(host)
		if port, perr := strconv.Atoi(portStr); perr == nil {
			cfg = cfg.WithPort(port)
		}
	} else {
		cfg = greptime.NewConfig(endpoint)
	}
	cfg = cfg.WithDatabase(database)

	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if droneTable == "" {
		droneTable = telemetry.DroneTableName
	}
	if statsTable == "" {
		statsTable = telemetry.StatsTableName
	}
	if eventTable == "" {
		eventTable = telemetry.EventTableName
	}

	return &GreptimeDBWriter{
		client:     client,
		db:         database,
		droneTable: droneTable,
		statsTable: statsTable,
		eventTable: eventTable,
	}, nil
}

// writeContext carries the table options GreptimeDB applies when it
// auto-creates the target tables on first write.
func writeContext() context.Context {
	return ingesterContext.New(context.Background(),
		ingesterContext.WithHints("ttl=30d"))
}

// Write inserts a single drone row.
func (w *GreptimeDBWriter) Write(row telemetry.DroneRow) error {
	return w.WriteBatch([]telemetry.DroneRow{row})
}

// WriteBatch inserts multiple drone rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.DroneRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := writeContext()

	tbl, err := table.New(w.droneTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("mission_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("tick", types.INT64)
	tbl.AddFieldColumn("x", types.INT64)
	tbl.AddFieldColumn("y", types.INT64)
	tbl.AddFieldColumn("battery", types.INT64)
	tbl.AddFieldColumn("battery_fraction", types.FLOAT64)
	tbl.AddFieldColumn("state", types.STRING)
	tbl.AddFieldColumn("carrying", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.MissionID, r.DroneID,
			int64(r.Tick), int64(r.X), int64(r.Y), int64(r.Battery),
			r.BatteryFraction, r.State, r.Carrying, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeDBWriter] drone write failed: %v", err)
		return err
	}
	return nil
}

// WriteStats inserts an aggregate record.
func (w *GreptimeDBWriter) WriteStats(row telemetry.StatsRow) error {
	ctx := writeContext()

	tbl, err := table.New(w.statsTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("mission_id", types.STRING)
	tbl.AddFieldColumn("tick", types.INT64)
	tbl.AddFieldColumn("coverage", types.FLOAT64)
	tbl.AddFieldColumn("found", types.INT64)
	tbl.AddFieldColumn("rescued", types.INT64)
	tbl.AddFieldColumn("active_drones", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(row.MissionID, int64(row.Tick), row.Coverage,
		int64(row.Found), int64(row.Rescued), int64(row.ActiveDrones),
		row.Timestamp); err != nil {
		return err
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeDBWriter] stats write failed: %v", err)
		return err
	}
	return nil
}

// WriteEvent inserts a single mission event.
func (w *GreptimeDBWriter) WriteEvent(e telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{e})
}

// WriteEvents inserts multiple mission events.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := writeContext()

	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("mission_id", types.STRING)
	tbl.AddTagColumn("event_type", types.STRING)
	tbl.AddFieldColumn("tick", types.INT64)
	tbl.AddFieldColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("victim_id", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, e := range rows {
		if err := tbl.AddRow(e.MissionID, e.EventType, int64(e.Tick),
			e.DroneID, e.VictimID, e.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeDBWriter] event write failed: %v", err)
		return err
	}
	return nil
}
