package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/gbarello/qwave/internal/config"
	"github.com/gbarello/qwave/internal/metrics"
	"github.com/gbarello/qwave/internal/quantum"
	"github.com/gbarello/qwave/internal/sim"
	"github.com/gbarello/qwave/internal/storage"
	"github.com/gbarello/qwave/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	gridSize  int
	dx        float64
	dt        float64
	timeScale float64
	steps     int
	seed      int64

	potentialType string
	strength      float64

	centerX   float64
	centerY   float64
	width     float64
	momentumX float64
	momentumY float64

	measureStep int
	measureX    int
	measureY    int

	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qwave",
		Short: "2D quantum wavepacket simulation lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qwave", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save the result",
		RunE:  runSimulation,
	}
	addEngineFlags(runCmd)
	runCmd.Flags().IntVar(&measureStep, "measure-step", 0, "schedule a measurement after this step (0 = none)")
	runCmd.Flags().IntVar(&measureX, "measure-x", -1, "measurement cell x (default grid center)")
	runCmd.Flags().IntVar(&measureY, "measure-y", -1, "measurement cell y (default grid center)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view of the wavefunction",
		RunE:  runLive,
	}
	addEngineFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's norm drift and density profile",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, plotCmd, listCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&gridSize, "grid", config.DefaultGridSize, "grid size (power of two)")
	cmd.Flags().Float64Var(&dx, "dx", config.DefaultDx, "spatial step")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	cmd.Flags().Float64Var(&timeScale, "time-scale", 1.0, "time step multiplier")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Int64Var(&seed, "seed", 0, "measurement RNG seed (0 = time-based)")
	cmd.Flags().StringVar(&potentialType, "potential", "none", "potential type (none|single|double|sinusoid)")
	cmd.Flags().Float64Var(&strength, "strength", config.DefaultStrength, "potential strength")
	cmd.Flags().Float64Var(&centerX, "center-x", config.DefaultCenterFrac, "packet center x (fraction of domain)")
	cmd.Flags().Float64Var(&centerY, "center-y", config.DefaultCenterFrac, "packet center y (fraction of domain)")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidthCells, "packet width in grid cells")
	cmd.Flags().Float64Var(&momentumX, "px", 0, "packet momentum x")
	cmd.Flags().Float64Var(&momentumY, "py", 0, "packet momentum y")
}

// buildConfig layers preset, config file, and explicitly set flags, in
// that order of increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("grid") {
		cfg.GridSize = gridSize
	}
	if flags.Changed("dx") {
		cfg.Dx = dx
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time-scale") {
		cfg.TimeScale = timeScale
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("potential") {
		cfg.Potential.Type = potentialType
	}
	if flags.Changed("strength") {
		cfg.Potential.Strength = strength
	}
	if flags.Changed("center-x") {
		cfg.Packet.CenterXFrac = centerX
	}
	if flags.Changed("center-y") {
		cfg.Packet.CenterYFrac = centerY
	}
	if flags.Changed("width") {
		cfg.Packet.WidthCells = width
	}
	if flags.Changed("px") {
		cfg.Packet.MomentumX = momentumX
	}
	if flags.Changed("py") {
		cfg.Packet.MomentumY = momentumY
	}
	return cfg, nil
}

func buildEngine(cfg *config.Config) (*quantum.Simulation, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "qwave"})
	engine, err := quantum.New(cfg.Params(), logger)
	if err != nil {
		return nil, err
	}
	// Re-apply the raw type name so an unknown one is warned about rather
	// than silently becoming "none" in the Params translation.
	engine.SetPotentialType(cfg.Potential.Type)
	engine.Initialize(cfg.WavePacket())
	return engine, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	runner := sim.New(engine)
	runner.AddMetric(metrics.NewNormDrift())
	runner.AddMetric(metrics.NewSpread())
	runner.AddMetric(metrics.NewExpectedX())
	runner.AddMetric(metrics.NewExpectedY())
	runner.AddMetric(metrics.NewPeakDensity())

	runCfg := sim.Config{
		Steps:         cfg.Steps,
		SampleEvery:   cfg.SampleEvery,
		ValidateState: true,
	}
	if measureStep > 0 {
		x, y := measureX, measureY
		if x < 0 {
			x = cfg.GridSize / 2
		}
		if y < 0 {
			y = cfg.GridSize / 2
		}
		runCfg.Measure = []sim.MeasureEvent{{Step: measureStep, X: x, Y: y}}
	}

	result, err := runner.Run(context.Background(), runCfg)
	if err != nil {
		return err
	}
	for _, runErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", runErr)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(engine.Params(), result, engine.ProbabilityDensity())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run:\t%s\n", runID)
	fmt.Fprintf(w, "steps:\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "time:\t%.4f\n", engine.Time())
	for name, value := range result.Metrics {
		fmt.Fprintf(w, "%s:\t%.6g\n", name, value)
	}
	for _, m := range result.Measurements {
		fmt.Fprintf(w, "measure@%d:\tfound=%v p=%.4f\n", m.Step, m.Found, m.Probability)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	return viz.Run(engine, frameRate)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	times, norms, err := st.LoadNorms(runID)
	if err != nil {
		return err
	}
	if len(norms) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	drift := make([]float64, len(norms))
	for i, n := range norms {
		drift[i] = (n - 1.0) * 1e9
	}
	fmt.Println(asciigraph.Plot(drift,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("norm drift ×1e-9 over t=[%.3f, %.3f]", times[0], times[len(times)-1])),
	))
	fmt.Println()

	density, n, err := st.LoadDensity(runID)
	if err == nil {
		// Horizontal profile through the row with the most probability.
		bestRow, bestMass := 0, 0.0
		for iy := 0; iy < n; iy++ {
			mass := 0.0
			for ix := 0; ix < n; ix++ {
				mass += density[iy*n+ix]
			}
			if mass > bestMass {
				bestRow, bestMass = iy, mass
			}
		}
		fmt.Println(asciigraph.Plot(density[bestRow*n:(bestRow+1)*n],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("density profile along row %d", bestRow)),
		))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRID\tPOTENTIAL\tSTEPS\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			run.ID, run.GridSize, run.Potential, run.Steps, run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
