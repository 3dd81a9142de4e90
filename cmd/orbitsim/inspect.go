package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	body      int
	outPath   string
	frameIdx  int
	svgKind   string
	svgSize   int
	canvasW   int
	canvasH   int
	plotWidth int
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBODIES\tSTEPS\tSTRIDE\tBACKEND\tDRIFT\tMS/STEP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%d\t%s\t%.2e\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.StepsTaken,
			run.Steps,
			run.Params.Stride,
			run.Backend,
			run.EnergyDrift,
			run.Timing.MeanStepMs,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no stored frames", runID)
	}
	return meta, frames, nil
}

func checkBody(meta *storage.RunMetadata) error {
	if body < 0 || body >= meta.Bodies {
		return fmt.Errorf("body %d out of range (run has %d)", body, meta.Bodies)
	}
	return nil
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one body's radius and path",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().IntVar(&body, "body", 0, "body index")
	cmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := checkBody(meta); err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bodies: %d  frames: %d\n\n", meta.Bodies, len(frames))

	radius := analysis.RadialSeries(frames, body)
	fmt.Println(asciigraph.Plot(radius,
		asciigraph.Height(10),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("body %d distance from star", body)),
	))
	fmt.Println()

	fmt.Print(analysis.TrajectoryToASCII(analysis.Trajectory(frames, body), plotWidth, 24))
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate a body's orbital frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().IntVar(&body, "body", 0, "body index")
	return cmd
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := checkBody(meta); err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("need at least 4 frames, run has %d", len(frames))
	}

	sampleDt := frames[1].Time - frames[0].Time
	radius := analysis.RadialSeries(frames, body)
	freq := analysis.DominantFrequency(radius, sampleDt)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("body: %d  samples: %d  sample dt: %.4g\n", body, len(radius), sampleDt)
	if freq == 0 {
		fmt.Println("no dominant frequency (flat radius)")
		return nil
	}
	fmt.Printf("dominant frequency: %.5g\n", freq)
	fmt.Printf("radial period: %.5g\n\n", 1/freq)

	fmt.Println(asciigraph.Plot(analysis.PowerSpectrum(radius),
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption("radius power spectrum"),
	))
	return nil
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(args[0], outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output path, - for stdout")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render a stored frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	cmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index, negative counts from the end")
	cmd.Flags().StringVar(&svgKind, "kind", "points", "points, braille or trajectory")
	cmd.Flags().IntVar(&svgSize, "size", 800, "image size for points and trajectory")
	cmd.Flags().IntVar(&canvasW, "cols", 60, "braille canvas columns")
	cmd.Flags().IntVar(&canvasH, "rows", 30, "braille canvas rows")
	cmd.Flags().IntVar(&body, "body", 0, "body for the trajectory kind")
	cmd.Flags().StringVarP(&outPath, "out", "o", "snapshot.svg", "output path")
	return cmd
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := checkBody(meta); err != nil {
		return err
	}

	idx := frameIdx
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (run has %d)", frameIdx, len(frames))
	}
	frame := frames[idx]

	var svg string
	switch svgKind {
	case "points":
		svg = export.FrameToSVG(frame.Data, svgSize)
	case "braille":
		canvas := viz.NewCanvas(canvasW, canvasH)
		viz.DrawFrame(canvas, frame.Data, viz.NewCamera())
		svg = export.CanvasToSVG(canvas, 4)
	case "trajectory":
		svg = export.TrajectoryToSVG(analysis.Trajectory(frames[:idx+1], body), svgSize, svgSize, "#c9a0ff")
		if svg == "" {
			return fmt.Errorf("trajectory needs at least 2 frames")
		}
	default:
		return fmt.Errorf("unknown kind %q", svgKind)
	}

	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("snapshot written", "path", outPath, "step", frame.Step)
	return nil
}
