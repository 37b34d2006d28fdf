package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rescuesim/internal/admin"
	"rescuesim/internal/config"
	"rescuesim/internal/logging"
	"rescuesim/internal/metrics"
	"rescuesim/internal/scenario"
	"rescuesim/internal/sim"
)

var (
	runConfigPath string
	runSchemaPath string
	runTick       time.Duration
	runPrintOnly  bool
	runJSON       bool
	runLogFile    string
	runTUI        bool
	runAddr       string
	runSeed       string
	runMaxTicks   int
	runScenario   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the search-and-rescue simulation",
	Long:  "run starts a mission on a fresh grid and emits drone telemetry, mission statistics and rescue events until the mission ends or the process is stopped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		if runSeed != "" {
			cfg.RandomSeed = runSeed
			if _, err := cfg.SeedValue(); err != nil {
				return err
			}
		}
		if runMaxTicks > 0 {
			cfg.MaxTicks = runMaxTicks
		}

		// The TUI owns the terminal, so plain stdout writers are suppressed.
		writer, statsWriter, eventWriter, cleanup, err := newWriters(runPrintOnly, runJSON, runTUI, runLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		missionID := os.Getenv("MISSION_ID")
		if missionID == "" {
			missionID = "mission-" + uuid.NewString()[:8]
		}

		tickInterval := runTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		var tui *sim.TUIWriter
		if runTUI {
			tui = sim.NewTUIWriter()
			if eventWriter == nil {
				eventWriter = tui
			} else {
				eventWriter = sim.NewMultiWriter(nil, nil, []sim.EventWriter{eventWriter, tui})
			}
		}

		simulator, err := sim.NewSimulator(missionID, cfg, writer, statsWriter, eventWriter, tickInterval)
		if err != nil {
			return err
		}
		if tui != nil {
			simulator.SetSnapshotWriter(tui)
		}

		collector := metrics.NewCollector(missionID)
		simulator.AddObserver(collector)

		log := logging.New()

		if runScenario != "" {
			arc, err := loadScenario(runScenario)
			if err != nil {
				return err
			}
			simulator.AddObserver(scenario.NewTracker(arc, log))
		}
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		if runAddr != "" {
			srv := admin.NewServer(simulator, collector)
			go func() {
				log.Info("admin UI listening", "addr", runAddr)
				if err := srv.Start(ctx, runAddr); err != nil && err != http.ErrServerClosed {
					log.Error("admin server failed", "err", err)
					os.Exit(1)
				}
			}()
		}

		done := make(chan struct{})
		go func() {
			simulator.Run(ctx)
			close(done)
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigs:
			log.Info("signal received, shutting down")
		case <-done:
		case <-tuiDone(tui):
			log.Info("display closed, shutting down")
		}
		cancel()
		<-done

		logSummary(log, simulator)
		return nil
	},
}

// loadScenario resolves a built-in arc name or a path to a YAML definition.
func loadScenario(ref string) (*scenario.Scenario, error) {
	if arc, ok := scenario.BuiltIn()[ref]; ok {
		return &arc, nil
	}
	return scenario.Load(ref)
}

// tuiDone adapts the optional TUI quit channel to select.
func tuiDone(tui *sim.TUIWriter) <-chan struct{} {
	if tui == nil {
		return nil
	}
	return tui.Done()
}

func logSummary(log *slog.Logger, simulator *sim.Simulator) {
	series := simulator.Series()
	if len(series) == 0 {
		return
	}
	last := series[len(series)-1]
	log.Info("mission summary",
		"tick", last.Tick,
		"coverage", last.Coverage,
		"found", last.Found,
		"rescued", last.Rescued,
		"active_drones", last.ActiveDrones,
		"seed", simulator.Seed())
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	runCmd.Flags().DurationVar(&runTick, "tick", time.Second, "Tick interval (e.g. 200ms, 1s)")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Emit STDOUT telemetry as JSON lines")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export telemetry/stats/event logs (JSONL)")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Render the mission in a terminal UI")
	runCmd.Flags().StringVar(&runAddr, "addr", "", "Listen address for the admin UI (e.g. :8080), empty disables it")
	runCmd.Flags().StringVar(&runSeed, "seed", "", "Override random_seed from the config (integer or \"random\")")
	runCmd.Flags().IntVar(&runMaxTicks, "max-ticks", 0, "Override max_ticks from the config")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "Mission arc to track: a built-in name or a YAML file path")
}
