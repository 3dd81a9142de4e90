package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	bodies      int
	steps       int
	dt          float64
	stride      int
	timeTag     uint32
	backendName string
	sampleEvery int

	logger = log.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "orbitsim",
		Short:         "brute-force gravitational n-body simulation around a fixed star",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.New(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	rootCmd.AddCommand(
		newRunCmd(),
		newBenchCmd(),
		newLiveCmd(),
		newGUICmd(),
		newListCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportJSONCmd(),
		newSnapshotCmd(),
		newPresetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("orbitsim failed", "err", err)
	}
}

// addSimFlags registers the flags that override config values.
func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&bodies, "bodies", config.DefaultBodies, "number of planets")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&stride, "stride", 1, "sample every n-th partner in the force sum")
	cmd.Flags().Uint32Var(&timeTag, "time-tag", 1, "seed tag for the initial layout")
	cmd.Flags().StringVar(&backendName, "backend", config.DefaultBackend, "compute backend (auto, cpu, cuda)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "store a frame every n steps (0 disables)")
}

// resolveConfig layers defaults, the preset, the config file and finally
// any flags set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("bodies") {
		cfg.Bodies = bodies
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("stride") {
		cfg.Physics.Stride = stride
	}
	if flags.Changed("time-tag") {
		cfg.Physics.TimeTag = timeTag
	}
	if flags.Changed("backend") {
		cfg.Backend = backendName
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runName() string {
	if preset != "" {
		return preset
	}
	return "custom"
}
