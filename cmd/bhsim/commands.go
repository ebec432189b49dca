package main

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bhsim/internal/config"
	"github.com/san-kum/bhsim/internal/metrics"
	"github.com/san-kum/bhsim/internal/sim"
	"github.com/san-kum/bhsim/internal/storage"
	"github.com/san-kum/bhsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	bodies, err := cfg.BuildBodies()
	if err != nil {
		return err
	}

	s, err := sim.New(bodies, simCfg)
	if err != nil {
		return err
	}
	s.SetLogger(logger)
	for _, m := range metrics.Standard(cfg.UniverseHalfWidth) {
		s.AddMetric(m)
	}

	logger.Info("running", "scenario", cfg.Scenario, "bodies", len(bodies), "steps", cfg.Steps,
		"method", simCfg.Method, "theta", simCfg.Theta, "mode", cfg.Mode)

	result, runErr := s.Run(cmd.Context(), cfg.Steps)
	if result == nil {
		return runErr
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg.Scenario, cfg.Seed, simCfg, bodies, result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	fmt.Printf("elapsed: %v\n", result.Elapsed)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("%s: %.6g\n", name, result.Metrics[name])
	}
	if runErr != nil {
		return fmt.Errorf("run stopped early (partial results saved): %w", runErr)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	// Nothing reads samples in the live view.
	simCfg.SampleEvery = 0
	bodies, err := cfg.BuildBodies()
	if err != nil {
		return err
	}
	s, err := sim.New(bodies, simCfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(cmd.Context(), s, viz.Options{
		Title:         fmt.Sprintf("bhsim: %s", cfg.Scenario),
		Window:        cfg.DisplayWindow,
		DrawOctants:   cfg.DrawOctants,
		TicksPerFrame: ticksPerFrame,
		EnergyEvery:   energyEvery,
		Theme:         theme,
	})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func benchThetas(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := cfg.ResolveMode()
	if err != nil {
		return err
	}
	bodies, err := cfg.BuildBodies()
	if err != nil {
		return err
	}

	logger.Info("measuring accuracy", "bodies", len(bodies), "thetas", thetas)
	rows, err := sim.MeasureAccuracy(cmd.Context(), bodies, cfg.UniverseHalfWidth, mode.Softening, thetas, cfg.Workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THETA\tMEAN ERR\tP95\tMAX\tBUILD\tQUERY\tDIRECT\tSPEEDUP\tNODES\tHEIGHT")
	for _, a := range rows {
		fmt.Fprintf(w, "%.2f\t%.2e\t%.2e\t%.2e\t%v\t%v\t%v\t%.1fx\t%d\t%d\n",
			a.Theta, a.MeanError, a.P95Error, a.MaxError, a.Build, a.Query, a.Direct, a.Speedup(), a.Nodes, a.Height)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if driftSteps <= 0 {
		return nil
	}
	return benchDrift(cmd, cfg)
}

// benchDrift runs the scenario once per theta plus once with direct
// summation and compares their energy drift.
func benchDrift(cmd *cobra.Command, cfg *config.Config) error {
	base, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	base.SampleEvery = 0

	members := make([]sim.Member, 0, len(thetas)+1)
	for _, th := range thetas {
		bodies, err := cfg.BuildBodies()
		if err != nil {
			return err
		}
		c := base
		c.Method = sim.MethodTree
		c.Theta = th
		c.Workers = 1
		members = append(members, sim.Member{Name: fmt.Sprintf("theta=%.2f", th), Bodies: bodies, Config: c})
	}
	bodies, err := cfg.BuildBodies()
	if err != nil {
		return err
	}
	c := base
	c.Method = sim.MethodDirect
	c.Workers = 1
	members = append(members, sim.Member{Name: "direct", Bodies: bodies, Config: c})

	logger.Info("measuring energy drift", "members", len(members), "steps", driftSteps)
	results, err := sim.RunEnsemble(cmd.Context(), members, driftSteps, cfg.Workers, func(s *sim.Simulator) {
		s.SetLogger(logger.With("method", s.Config().Method, "theta", s.Config().Theta))
	})
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTICKS\tDRIFT\tELAPSED\tSTATUS")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		if r.Result == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", r.Name, status)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%v\t%s\n", r.Name, r.Result.TicksTaken, r.Result.EnergyDrift, r.Result.Elapsed, status)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tBODIES\tMETHOD\tTHETA\tTICKS\tDRIFT\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t%d\t%.2e\t%s\n",
			r.ID, r.Scenario, r.Bodies, r.Method, r.Theta, r.Ticks, r.EnergyDrift, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := store.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has %d samples, need at least 2 to plot", args[0], len(samples))
	}

	energy := make([]float64, len(samples))
	kinetic := make([]float64, len(samples))
	potential := make([]float64, len(samples))
	nodes := make([]float64, len(samples))
	for i, s := range samples {
		energy[i] = s.Energy
		kinetic[i] = s.Kinetic
		potential[i] = s.Potential
		nodes[i] = float64(s.Nodes)
	}

	fmt.Printf("%s: %d bodies, %s, theta %.2f, %d ticks\n\n", meta.ID, meta.Bodies, meta.Method, meta.Theta, meta.Ticks)
	plot := func(data []float64, caption string) {
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(caption)))
		fmt.Println()
	}
	plot(energy, "total energy (J)")
	plot(kinetic, "kinetic energy (J)")
	plot(potential, "potential energy (J)")
	if slices.Max(nodes) > 0 {
		plot(nodes, "tree nodes")
	}

	first, last := energy[0], energy[len(energy)-1]
	if first != 0 {
		fmt.Printf("sampled drift: %.3e\n", math.Abs(last-first)/math.Abs(first))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	if outFile == "" {
		return store.Export(args[0], os.Stdout)
	}
	if err := store.ExportFile(args[0], outFile); err != nil {
		return err
	}
	logger.Info("exported", "run", args[0], "file", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSCENARIO\tBODIES\tMETHOD\tTHETA\tMODE\tSTEPS")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		bodies := fmt.Sprintf("%d", p.Bodies)
		if p.Scenario == "solar" {
			bodies = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%d\n",
			name, p.Scenario, bodies, p.Method, p.Theta, strings.ToLower(p.Mode), p.Steps)
	}
	return w.Flush()
}
