package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/orbitsim/internal/nbody"
)

// Metric accumulates a scalar over the sampled states of a run.
type Metric interface {
	Name() string
	Observe(st *nbody.State, p nbody.Params, t float64)
	Value() float64
	Reset()
}

// Observer sees the state after every completed step.
type Observer interface {
	OnStep(step int, t float64, st *nbody.State)
}

// EnergyFunc returns the total energy of a state.
type EnergyFunc func(st *nbody.State, p nbody.Params) float64

type Config struct {
	Steps int
	Dt    float32
	// SampleEvery takes a readback frame every n steps; 0 disables frames.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         500,
		Dt:            0.2,
		SampleEvery:   10,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsInf(float64(c.Dt), 0) || math.IsNaN(float64(c.Dt)) {
		return fmt.Errorf("dt must be positive and finite, got %g", c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.Steps)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample every must not be negative, got %d", c.SampleEvery)
	}
	return nil
}

// Frame is one readback of all planets, nbody.VBOStride floats per body.
type Frame struct {
	Step int
	Time float64
	Data []float32
}

// Timing sums per-phase wall-clock time over a run.
type Timing struct {
	Accelerate time.Duration
	Advance    time.Duration
	Steps      int
}

func (t *Timing) add(st nbody.StepTiming) {
	t.Accelerate += st.Accelerate
	t.Advance += st.Advance
	t.Steps++
}

func (t Timing) Total() time.Duration { return t.Accelerate + t.Advance }

// Mean is the average time per step.
func (t Timing) Mean() nbody.StepTiming {
	if t.Steps == 0 {
		return nbody.StepTiming{}
	}
	n := time.Duration(t.Steps)
	return nbody.StepTiming{Accelerate: t.Accelerate / n, Advance: t.Advance / n}
}

type Result struct {
	Frames      []Frame
	Metrics     map[string]float64
	Timing      Timing
	StepsTaken  int
	EnergyDrift float64
	Errors      []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
