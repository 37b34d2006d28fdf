package sim

import (
	"context"
	"time"

	"rescuesim/internal/logging"
	"rescuesim/internal/telemetry"
)

// Run drives the tick loop and stops when the context is done or a
// configured stop condition is reached.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	s.mu.Lock()
	s.log = log
	s.mu.Unlock()
	log.Info("starting simulator", "tick_interval", s.tickInterval, "seed", s.seed,
		"drones", len(s.drones), "victims", len(s.victims), "hubs", len(s.hubs))
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Step()
			if s.Finished() {
				log.Info("simulation finished", "tick", s.Tick())
				return
			}
		case <-ctx.Done():
			log.Info("stopping simulator", "tick", s.Tick())
			return
		}
	}
}

// flush pushes this tick's drone rows, events, stats record and snapshot to
// the attached writers. Called with the mutex held at the end of Step.
func (s *Simulator) flush() {
	ts := s.now().UTC()

	if s.writer != nil {
		batch := make([]telemetry.DroneRow, 0, len(s.drones))
		for _, d := range s.drones {
			row := telemetry.DroneRow{
				MissionID:       s.missionID,
				DroneID:         d.Name(),
				Tick:            s.tick,
				X:               d.Pos.X,
				Y:               d.Pos.Y,
				Battery:         d.Battery,
				BatteryFraction: d.BatteryFraction(),
				State:           string(d.State),
				Timestamp:       ts,
			}
			if d.Carrying != NoVictim {
				row.Carrying = s.victims[d.Carrying].Name()
			}
			batch = append(batch, row)
		}
		// Batch support if the writer implements WriteBatch
		if bw, ok := s.writer.(batchWriter); ok {
			if err := bw.WriteBatch(batch); err != nil {
				s.log.Error("batch write failed", "err", err)
			}
		} else {
			for _, row := range batch {
				if err := s.writer.Write(row); err != nil {
					s.log.Error("write failed", "drone_id", row.DroneID, "err", err)
				}
			}
		}
	}

	if s.eventWriter != nil && len(s.pending) > 0 {
		if bw, ok := s.eventWriter.(batchEventWriter); ok {
			if err := bw.WriteEvents(s.pending); err != nil {
				s.log.Error("event batch write failed", "err", err)
			}
		} else {
			for _, e := range s.pending {
				if err := s.eventWriter.WriteEvent(e); err != nil {
					s.log.Error("event write failed", "err", err)
				}
			}
		}
	}
	s.pending = s.pending[:0]

	if s.statsWriter != nil && len(s.series) > 0 {
		if err := s.statsWriter.WriteStats(s.series[len(s.series)-1]); err != nil {
			s.log.Error("stats write failed", "err", err)
		}
	}

	if s.snapshotWriter != nil {
		s.snapshotWriter.WriteSnapshot(s.snapshotLocked())
	}
}
