package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/encsim/internal/log"
	"github.com/san-kum/encsim/internal/storage"
)

var (
	dataDir  string
	logLevel string
	logDir   string
	verbose  bool

	configFile string
	overrides  []string
	duration   float64
	mode       string
	noSave     bool

	outFile  string
	channel  string
	braille  bool
	workers  int
	params   []string
	metric   string
	maximize bool
	repeats  int

	lg *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "encsim",
		Short:         "two-aircraft encounter simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			dir := logDir
			if dir == "" {
				dir = filepath.Join(dataDir, "logs")
			}
			lg = log.New(logLevel, dir, verbose)
			lg.Debug("command", "name", cmd.Name(), "args", args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".encsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "log directory (default <data>/logs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also log to stderr")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run an encounter from a preset or config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEncounter,
	}
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "encounter config file (yaml)")
	runCmd.Flags().StringArrayVar(&overrides, "set", nil, "override a parameter, e.g. aircraft.2.init.heading_deg=170")
	runCmd.Flags().Float64Var(&duration, "time", 0, "override duration (s)")
	runCmd.Flags().StringVar(&mode, "mode", "", "override termination mode (none, cylinder, nmac)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a channel of a stored run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&channel, "channel", "separation", "separation, vertical, altitude, speed, bank or heading")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export both tracks to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id]",
		Short: "export a run to an Excel workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportXLSX,
	}
	exportXLSXCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.xlsx)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render the plan view of a run to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg)")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal braille canvas instead of vector tracks")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayRun,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [campaign.yaml]",
		Short: "run a campaign of encounters",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid sweep over encounter parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVarP(&configFile, "config", "c", "", "base encounter config file (yaml)")
	sweepCmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter range, e.g. aircraft.2.init.east_ft=-1000:1000:250")
	sweepCmd.Flags().StringVar(&metric, "metric", "hmd", "metric to optimise")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default NumCPU)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in encounters",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark the simulator",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchEncounter,
	}
	benchCmd.Flags().IntVarP(&repeats, "count", "n", 20, "runs per measurement")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		exportXLSXCmd, svgCmd, replayCmd, batchCmd, sweepCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		lg.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func store() *storage.Store {
	return storage.New(filepath.Join(dataDir, "runs"))
}

// resolveRun maps an optional run argument to a run ID; no argument or
// "latest" picks the most recent run.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) == 0 || args[0] == "latest" {
		return st.Latest()
	}
	return args[0], nil
}
