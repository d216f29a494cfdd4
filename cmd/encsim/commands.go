package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/encsim/internal/automation"
	"github.com/san-kum/encsim/internal/config"
	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/export"
	"github.com/san-kum/encsim/internal/optim"
	"github.com/san-kum/encsim/internal/sim"
	"github.com/san-kum/encsim/internal/storage"
	"github.com/san-kum/encsim/internal/tui"
	"github.com/san-kum/encsim/internal/viz"
)

// loadConfig resolves the encounter from --config or a preset name and
// applies --set overrides.
func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (see 'encsim presets')", args[0])
		}
	default:
		cfg = config.GetPreset("head_on")
	}

	for _, kv := range overrides {
		path, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want path=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", kv, err)
		}
		if err := cfg.Set(strings.TrimSpace(path), v); err != nil {
			return nil, err
		}
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if mode != "" {
		cfg.Encounter.Mode = mode
	}
	return cfg, nil
}

func runEncounter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	enc, err := cfg.ToEncounter()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, err := experiment.SimulateWith(ctx, enc, lg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	lg.Info("encounter finished", "name", enc.Name, "samples", result.Len(), "elapsed", elapsed)

	runID := ""
	if !noSave {
		st := store()
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(enc, result); err != nil {
			return err
		}
	}

	fmt.Println(summary(enc.Name, runID, result, elapsed))
	return nil
}

func summary(name, runID string, result *sim.Result, elapsed time.Duration) string {
	stats := result.Stats
	pairs := [][2]string{
		{"samples", viz.MetricValue.Render(strconv.Itoa(result.Len()))},
		{"stop time", viz.MetricValue.Render(fmt.Sprintf("%.2f s", stats.StopTime))},
		{"early stop", viz.Flag(stats.EarlyStop)},
		{"nmac", viz.Flag(stats.NMAC)},
		{"outside", viz.Flag(stats.OutsideCylinder)},
	}
	for _, k := range []string{"hmd", "vmd", "cpa_time"} {
		if v, ok := result.Metrics[k]; ok {
			pairs = append(pairs, [2]string{k, viz.MetricValue.Render(fmt.Sprintf("%.1f", v))})
		}
	}
	pairs = append(pairs, [2]string{"elapsed", viz.Subtle.Render(elapsed.Round(time.Microsecond).String())})

	header := viz.Title.Render(name)
	if runID != "" {
		header += "  " + viz.Subtle.Render(runID)
	}

	plan := viz.NewPlanView(48, 16, viz.TrackBounds(result.Aircraft))
	plan.Draw(result.Aircraft, result.Len()-1)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		plan.Canvas.Render(viz.PaintTrack),
		"   ",
		viz.KV(pairs...),
	)
	return viz.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tMODE\tSTOP\tNMAC\tHMD")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%t\t%.1f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Stats.StopTime,
			run.Stats.NMAC,
			run.Metrics["hmd"],
		)
	}

	return w.Flush()
}

// channelSeries extracts one plot series per line for a named channel.
func channelSeries(tracks [2][]sim.Sample, name string) ([][]float64, string, error) {
	n := min(len(tracks[0]), len(tracks[1]))
	if n == 0 {
		return nil, "", fmt.Errorf("no data to plot")
	}

	if name == "separation" || name == "vertical" {
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			a, b := tracks[0][i], tracks[1][i]
			if name == "separation" {
				data[i] = math.Hypot(a.N-b.N, a.E-b.E)
			} else {
				data[i] = math.Abs(a.H - b.H)
			}
		}
		return [][]float64{data}, name + " (ft) vs time", nil
	}

	var pick func(s sim.Sample) float64
	var caption string
	switch name {
	case "altitude":
		pick, caption = func(s sim.Sample) float64 { return s.H }, "altitude (ft)"
	case "speed":
		pick, caption = func(s sim.Sample) float64 { return s.V }, "speed (ft/s)"
	case "bank":
		pick, caption = func(s sim.Sample) float64 { return s.Phi * 180 / math.Pi }, "bank (deg)"
	case "heading":
		pick, caption = func(s sim.Sample) float64 { return s.Psi * 180 / math.Pi }, "heading (deg)"
	default:
		return nil, "", fmt.Errorf("unknown channel: %s", name)
	}

	series := make([][]float64, 2)
	for k := range series {
		series[k] = make([]float64, n)
		for i := 0; i < n; i++ {
			series[k][i] = pick(tracks[k][i])
		}
	}
	return series, caption + ", ac1 cyan / ac2 yellow", nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tracks, err := st.LoadTracks(runID)
	if err != nil {
		return err
	}

	series, caption, err := channelSeries(tracks, channel)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("encounter: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", meta.Samples)

	opts := []asciigraph.Option{
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	}
	if len(series) == 2 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow))
	}
	fmt.Println(asciigraph.PlotMany(series, opts...))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// output opens --output or falls back to stdout.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	run, err := st.LoadRun(runID)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(w, run.Result); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "exported %d samples to %s\n", run.Result.Len(), outFile)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	run, err := st.LoadRun(runID)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, run.Encounter, run.Result); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	run, err := st.LoadRun(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".xlsx"
	}
	if err := storage.ExportXLSX(path, run.Encounter, run.Result); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, path)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	run, err := st.LoadRun(runID)
	if err != nil {
		return err
	}

	var svg string
	if braille {
		plan := viz.NewPlanView(80, 40, viz.TrackBounds(run.Result.Aircraft))
		plan.Draw(run.Result.Aircraft, run.Result.Len()-1)
		svg = export.CanvasToSVG(plan.Canvas, 4)
	} else {
		svg = export.TracksToSVG(run.Result, 800, 800)
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	st := store()
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	run, err := st.LoadRun(runID)
	if err != nil {
		return err
	}
	return tui.RunReplay(run.Metadata.Name+" ("+runID+")", run.Result)
}

func runBatch(cmd *cobra.Command, args []string) error {
	camp, err := automation.LoadCampaign(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	st := store()
	if noSave {
		st = nil
	} else if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	outcomes, err := camp.Run(ctx, lg, st)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTRIAL\tSTOP\tNMAC\tHMD\tRUN")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%d\t%d\t%.2fs\t%t\t%.1f\t%s\n",
			o.Step, o.Trial, o.Result.Stats.StopTime, o.Result.Stats.NMAC, o.Result.Metrics["hmd"], o.RunID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := automation.Summarize(outcomes)
	fmt.Println()
	fmt.Println(viz.KV(
		[2]string{"campaign", viz.Title.Render(camp.Name)},
		[2]string{"runs", viz.MetricValue.Render(strconv.Itoa(s.Runs))},
		[2]string{"nmac", viz.MetricValue.Render(strconv.Itoa(s.NMAC))},
		[2]string{"early stop", viz.MetricValue.Render(strconv.Itoa(s.EarlyStop))},
		[2]string{"min hmd", viz.MetricValue.Render(fmt.Sprintf("%.1f ft", s.MinHMD))},
		[2]string{"elapsed", viz.Subtle.Render(time.Since(start).Round(time.Millisecond).String())},
	))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one --param path=range is required")
	}
	base, err := loadConfig(args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(params))
	ranges := make([][]float64, 0, len(params))
	for _, p := range params {
		path, rng, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid --param %q, want path=range", p)
		}
		vals, err := optim.ParseRange(rng)
		if err != nil {
			return fmt.Errorf("--param %s: %w", path, err)
		}
		names = append(names, path)
		ranges = append(ranges, vals)
	}

	gs := optim.NewGridSearch(names, ranges)
	gs.Maximize = maximize

	ctx, cancel := signalContext()
	defer cancel()

	best, points, err := gs.Search(ctx, base, metric, experiment.NewBatch(workers, lg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(append(append([]string{}, names...), strings.ToUpper(metric), "NMAC"), "\t"))
	for _, pt := range points {
		cols := make([]string, 0, len(names)+2)
		for _, n := range names {
			cols = append(cols, strconv.FormatFloat(pt.Params[n], 'g', 6, 64))
		}
		cols = append(cols, fmt.Sprintf("%.2f", pt.Value), strconv.FormatBool(pt.Stats.NMAC))
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Title.Render("best"), viz.MetricValue.Render(fmt.Sprintf("%s = %.2f", metric, best.Value)))
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best.Params[n])
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tDURATION\tRADIUS\tHALF HEIGHT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.0fs\t%.0f\t%.0f\n",
			name, p.Encounter.Mode, p.Duration, p.Encounter.Radius, p.Encounter.HalfHeight)
	}
	return w.Flush()
}

func benchEncounter(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	ctx, cancel := signalContext()
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tRUNS\tSAMPLES\tTIME/RUN\tSTEPS/SEC")

	for _, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s", name)
		}
		enc, err := cfg.ToEncounter()
		if err != nil {
			return err
		}

		var samples int
		start := time.Now()
		for i := 0; i < repeats; i++ {
			res, err := experiment.Simulate(ctx, enc)
			if err != nil {
				return err
			}
			samples = res.Len()
		}
		elapsed := time.Since(start)

		perRun := elapsed / time.Duration(max(repeats, 1))
		rate := float64(samples*2*repeats) / elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n", name, repeats, samples, perRun.Round(time.Microsecond), rate)
	}

	return w.Flush()
}
