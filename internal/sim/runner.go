package sim

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/orbitsim/internal/nbody"
)

// Runner drives one simulation through a fixed number of steps.
type Runner struct {
	sim       *nbody.Simulation
	metrics   []Metric
	observers []Observer
	energy    EnergyFunc
	pool      *FramePool
	logger    *log.Logger
}

func NewRunner(s *nbody.Simulation) *Runner {
	return &Runner{
		sim:    s,
		pool:   NewFramePool(s.Len() * nbody.VBOStride),
		logger: log.Default(),
	}
}

func (r *Runner) AddMetric(m Metric)            { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)        { r.observers = append(r.observers, o) }
func (r *Runner) SetEnergy(fn EnergyFunc)       { r.energy = fn }
func (r *Runner) SetLogger(logger *log.Logger)  { r.logger = logger }
func (r *Runner) Simulation() *nbody.Simulation { return r.sim }

// Recycle hands the frame buffers of res back to the pool.
func (r *Runner) Recycle(res *Result) {
	for i := range res.Frames {
		r.pool.Put(res.Frames[i].Data)
		res.Frames[i].Data = nil
	}
	res.Frames = nil
}

// Run steps the simulation cfg.Steps times. A cancelled context stops the
// loop between steps and returns the partial result with ctx.Err(). A
// backend failure stops the loop and is returned as is.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frames := 0
	if cfg.SampleEvery > 0 {
		frames = cfg.Steps/cfg.SampleEvery + 2
	}
	result := &Result{
		Frames:  make([]Frame, 0, frames),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	t := 0.0
	initialEnergy := r.computeEnergy()

	if err := r.sample(result, cfg, 0, t); err != nil {
		return result, err
	}
	lastSample := 0

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		timing, err := r.sim.Step(cfg.Dt)
		if err != nil {
			return result, err
		}
		result.Timing.add(timing)
		result.StepsTaken++
		t += float64(cfg.Dt)

		st := r.sim.State()
		for _, obs := range r.observers {
			obs.OnStep(result.StepsTaken, t, st)
		}

		if cfg.ValidateState && !st.IsValid() {
			err := SimError{Time: t, Step: result.StepsTaken, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			r.logger.Warn("simulation diverged", "step", result.StepsTaken)
			break
		}

		if cfg.SampleEvery > 0 && result.StepsTaken%cfg.SampleEvery == 0 {
			if err := r.sample(result, cfg, result.StepsTaken, t); err != nil {
				return result, err
			}
			lastSample = result.StepsTaken
		}
	}

	if lastSample != result.StepsTaken && len(result.Errors) == 0 {
		if err := r.sample(result, cfg, result.StepsTaken, t); err != nil {
			return result, err
		}
	}

	if initialEnergy != 0 {
		finalEnergy := r.computeEnergy()
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	r.logger.Debug("run finished",
		"steps", result.StepsTaken,
		"frames", len(result.Frames),
		"elapsed", result.Timing.Total())

	return result, nil
}

// sample feeds the metrics and, when frames are enabled, reads back the
// planets into a pooled buffer.
func (r *Runner) sample(result *Result, cfg Config, step int, t float64) error {
	st := r.sim.State()
	p := r.sim.Params()
	for _, m := range r.metrics {
		m.Observe(st, p, t)
	}
	if cfg.SampleEvery == 0 {
		return nil
	}

	buf := r.pool.Get()
	if err := r.sim.CopyPlanetsToVBO(buf); err != nil {
		r.pool.Put(buf)
		return err
	}
	result.Frames = append(result.Frames, Frame{Step: step, Time: t, Data: buf})
	return nil
}

func (r *Runner) computeEnergy() float64 {
	if r.energy == nil {
		return 0
	}
	return r.energy(r.sim.State(), r.sim.Params())
}
