package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/gui"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/nbody"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	ensembleRuns  int
	benchSizes    string
	stepsPerFrame int
	energyEvery   int
	theme         string
	preferGPU     bool
	presetOut     string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store sampled frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&ensembleRuns, "ensemble", 0, "run n independent disks concurrently instead (not stored)")
	return cmd
}

func runMetrics(p nbody.Params) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(),
		metrics.NewAngularMomentumDrift(),
		metrics.NewMeanRadius(),
		metrics.NewBound(float64(10 * p.Scale)),
	}
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Steps:         cfg.Steps,
		Dt:            float32(cfg.Dt),
		SampleEvery:   cfg.SampleEvery,
		ValidateState: true,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ensembleRuns > 0 {
		return runEnsemble(ctx, cfg)
	}

	backend, err := compute.NewBackend(cfg.Backend)
	if err != nil {
		return err
	}

	p := cfg.Params()
	s, err := nbody.New(cfg.Bodies, p, backend)
	if err != nil {
		backend.Cleanup()
		return err
	}
	defer s.End()

	logger.Info("starting run",
		"bodies", cfg.Bodies,
		"steps", cfg.Steps,
		"dt", cfg.Dt,
		"stride", p.Stride,
		"backend", backend.Name())

	runner := sim.NewRunner(s)
	runner.SetLogger(logger)
	runner.SetEnergy(metrics.Energy)
	for _, m := range runMetrics(p) {
		runner.AddMetric(m)
	}

	result, err := runner.Run(ctx, simConfig(cfg))
	if err != nil {
		if ctx.Err() == nil || result == nil {
			return err
		}
		logger.Warn("run interrupted, storing partial result", "steps", result.StepsTaken)
	}
	defer runner.Recycle(result)

	for _, e := range result.Errors {
		logger.Warn("simulation error", "err", e)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunInfo{
		Name:    runName(),
		Bodies:  cfg.Bodies,
		Dt:      float32(cfg.Dt),
		Steps:   cfg.Steps,
		Params:  p,
		Backend: backend.Name(),
	}, result)
	if err != nil {
		return err
	}

	mean := result.Timing.Mean()
	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d  frames: %d\n", result.StepsTaken, len(result.Frames))
	fmt.Printf("step time: %v (accelerate %v, advance %v)\n", mean.Total(), mean.Accelerate, mean.Advance)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	printMetrics(result.Metrics)
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config) error {
	p := cfg.Params()
	e := &sim.Ensemble{
		Bodies: cfg.Bodies,
		Params: p,
		Runs:   ensembleRuns,
		NewBackend: func() nbody.Backend {
			// members already run in parallel
			return compute.NewCPUBackendWorkers(1)
		},
		NewMetrics: func() []sim.Metric { return runMetrics(p) },
		Energy:     metrics.Energy,
	}

	logger.Info("starting ensemble", "runs", ensembleRuns, "bodies", cfg.Bodies, "steps", cfg.Steps)
	sc := simConfig(cfg)
	sc.SampleEvery = 0
	results, err := e.Run(ctx, sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME TAG\tSTEPS\tENERGY DRIFT\tMEAN RADIUS\tBOUND\tMS/STEP")
	for k, res := range results {
		fmt.Fprintf(w, "%d\t%d\t%.3e\t%.2f\t%.2f\t%.3f\n",
			p.TimeTag+uint32(k),
			res.StepsTaken,
			res.EnergyDrift,
			res.Metrics["mean_radius"],
			res.Metrics["bound"],
			float64(res.Timing.Mean().Total())/float64(time.Millisecond),
		)
	}
	return w.Flush()
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range []string{"energy_drift", "angular_momentum_drift", "mean_radius", "bound"} {
		if v, ok := m[name]; ok {
			fmt.Fprintf(w, "%s\t%.4g\n", name, v)
		}
	}
	w.Flush()
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "time steps across body counts and backends",
		Args:  cobra.NoArgs,
		RunE:  benchSimulation,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&benchSizes, "sizes", "1000,2000,4000", "comma-separated body counts")
	return cmd
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad body count %q", f)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func benchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sizes, err := parseSizes(benchSizes)
	if err != nil {
		return err
	}
	benchSteps := cfg.Steps
	if !cmd.Flags().Changed("steps") {
		benchSteps = 10
	}

	backends := []nbody.Backend{compute.NewCPUBackend()}
	if cuda := compute.NewCUDABackend(); cuda.Available() {
		backends = append(backends, cuda)
	}

	p := cfg.Params()
	fmt.Printf("benchmarking %d steps, stride %d\n\n", benchSteps, p.Stride)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tBODIES\tACCELERATE\tADVANCE\tSTEP\tPAIRS/SEC")

	for _, b := range backends {
		for _, n := range sizes {
			s, err := nbody.New(n, p, b)
			if err != nil {
				return err
			}

			var total sim.Timing
			for range benchSteps {
				timing, err := s.Step(float32(cfg.Dt))
				if err != nil {
					s.End()
					return err
				}
				total.Accelerate += timing.Accelerate
				total.Advance += timing.Advance
				total.Steps++
			}
			s.End()

			mean := total.Mean()
			rate := float64(p.PairEvaluations(n)) / mean.Total().Seconds()
			fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%v\t%.3g\n", b.Name(), n, mean.Accelerate, mean.Advance, mean.Total(), rate)
		}
	}
	return w.Flush()
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "step a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "steps between redraws")
	cmd.Flags().IntVar(&energyEvery, "energy-every", 10, "sample energy every n steps (0 disables)")
	cmd.Flags().StringVar(&theme, "theme", "nebula", fmt.Sprintf("color theme %v", viz.ThemeNames()))
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		chosen, err := viz.PickPreset(config.ListPresets(), config.Describe)
		if err != nil {
			return err
		}
		if chosen == "" {
			return nil
		}
		preset = chosen
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	backend, err := compute.NewBackend(cfg.Backend)
	if err != nil {
		return err
	}
	s, err := nbody.New(cfg.Bodies, cfg.Params(), backend)
	if err != nil {
		backend.Cleanup()
		return err
	}
	defer s.End()

	return viz.RunLive(s, viz.LiveOptions{
		Title:         runName(),
		Dt:            float32(cfg.Dt),
		StepsPerFrame: stepsPerFrame,
		EnergyEvery:   energyEvery,
		Theme:         theme,
	})
}

func newGUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "open a window and render the disk",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "steps between redraws")
	cmd.Flags().IntVar(&energyEvery, "energy-every", 0, "sample energy every n steps (0 disables)")
	cmd.Flags().BoolVar(&preferGPU, "gpu", true, "step on OpenGL compute shaders when available")
	return cmd
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	fallback, err := compute.NewBackend(cfg.Backend)
	if err != nil {
		return err
	}

	return gui.Run(gui.Options{
		Title:         "orbitsim :: " + runName(),
		Bodies:        cfg.Bodies,
		Params:        cfg.Params(),
		Dt:            float32(cfg.Dt),
		StepsPerFrame: stepsPerFrame,
		EnergyEvery:   energyEvery,
		PreferGPU:     preferGPU,
		Fallback:      fallback,
		Logger:        logger,
	})
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	cmd.Flags().StringVarP(&presetOut, "out", "o", "", "write the preset to a config file")
	return cmd
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tBODIES\tSTEPS\tDT\tSTRIDE\tDESCRIPTION")
		for _, name := range config.ListPresets() {
			c := config.Presets[name]
			fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%d\t%s\n", name, c.Bodies, c.Steps, c.Dt, c.Physics.Stride, config.Describe(name))
		}
		return w.Flush()
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset %q (available: %v)", args[0], config.ListPresets())
	}
	if presetOut != "" {
		if err := config.Save(presetOut, cfg); err != nil {
			return err
		}
		logger.Info("preset written", "name", args[0], "path", presetOut)
		return nil
	}
	return yaml.NewEncoder(os.Stdout).Encode(cfg)
}
