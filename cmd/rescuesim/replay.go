package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rescuesim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayJSON      bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded telemetry log",
	Long:  "replay feeds telemetry rows from a log file back into GreptimeDB or STDOUT at a configurable speed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, err := newTelemetryWriter(replayPrintOnly, replayJSON)
		if err != nil {
			return err
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry log file (JSONL)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Emit STDOUT telemetry as JSON lines")
	replayCmd.MarkFlagRequired("input")
}
