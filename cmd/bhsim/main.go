package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/bhsim/internal/config"
	"github.com/san-kum/bhsim/internal/logging"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// Simulation settings; a flag only wins over preset and config file
	// values when it was set explicitly.
	configFile  string
	preset      string
	scenarioArg string
	numBodies   int
	seed        uint64
	theta       float64
	method      string
	integrator  string
	halfWidth   float64
	window      float64
	mode        string
	softening   float64
	timeScale   float64
	steps       int
	workers     int
	sampleEvery int
	allowEscape bool
	drawOctants bool

	// live
	ticksPerFrame int
	energyEvery   int
	theme         string

	// bench
	thetas     []float64
	driftSteps int

	// export
	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bhsim",
		Short:         "Barnes-Hut gravitational n-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bhsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its samples",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&ticksPerFrame, "ticks-per-frame", 1, "simulation ticks between redraws")
	liveCmd.Flags().IntVar(&energyEvery, "energy-every", 5, "frames between energy samples (0 disables)")
	liveCmd.Flags().StringVar(&theme, "theme", "deepspace", "color theme")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare tree forces against direct summation",
		Args:  cobra.NoArgs,
		RunE:  benchThetas,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().Float64SliceVar(&thetas, "thetas", []float64{0.3, 0.5, 0.7, 1.0, 1.5}, "opening angles to compare")
	benchCmd.Flags().IntVar(&driftSteps, "drift-steps", 0, "also run each theta for this many ticks and report energy drift")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&scenarioArg, "scenario", d.Scenario, "scenario (solar, random)")
	f.IntVar(&numBodies, "bodies", d.Bodies, "number of bodies (random)")
	f.Uint64Var(&seed, "seed", d.Seed, "random seed")
	f.Float64Var(&theta, "theta", d.Theta, "Barnes-Hut opening angle")
	f.StringVar(&method, "method", d.Method, "force method (tree, direct)")
	f.StringVar(&integrator, "integrator", d.Integrator, "time stepping (euler, leapfrog)")
	f.Float64Var(&halfWidth, "universe", d.UniverseHalfWidth, "universe half-width in meters")
	f.Float64Var(&window, "window", d.DisplayWindow, "display window half-width in meters")
	f.StringVar(&mode, "mode", d.Mode, "mode preset (accelerated, realistic)")
	f.Float64Var(&softening, "softening", 0, "override the mode's softening length in meters")
	f.Float64Var(&timeScale, "time-scale", 0, "override the mode's time scale")
	f.IntVar(&steps, "steps", d.Steps, "ticks to simulate")
	f.IntVar(&workers, "workers", d.Workers, "goroutines for the force phase")
	f.IntVar(&sampleEvery, "sample-every", d.SampleEvery, "ticks between stored samples")
	f.BoolVar(&allowEscape, "allow-escape", d.AllowEscape, "keep running when bodies leave the universe")
	f.BoolVar(&drawOctants, "octants", d.DrawOctants, "draw octant boundaries")
}

// resolveConfig layers defaults, the preset, the keys present in the config
// file and finally the flags that were set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("scenario") {
		cfg.Scenario = scenarioArg
	}
	if flags.Changed("bodies") {
		cfg.Bodies = numBodies
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("theta") {
		cfg.Theta = theta
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("universe") {
		cfg.UniverseHalfWidth = halfWidth
	}
	if flags.Changed("window") {
		cfg.DisplayWindow = window
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("softening") {
		cfg.Softening = &softening
	}
	if flags.Changed("time-scale") {
		cfg.TimeScale = &timeScale
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("allow-escape") {
		cfg.AllowEscape = allowEscape
	}
	if flags.Changed("octants") {
		cfg.DrawOctants = drawOctants
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
