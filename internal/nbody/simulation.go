package nbody

import (
	"errors"
	"fmt"
	"time"
)

// StepTiming is the wall-clock time spent in each phase of one step.
type StepTiming struct {
	Accelerate time.Duration
	Advance    time.Duration
}

func (t StepTiming) Total() time.Duration { return t.Accelerate + t.Advance }

// Simulation owns the body state and the backend that advances it.
// Independent simulations share nothing.
type Simulation struct {
	params  Params
	backend Backend
	state   *State
	steps   int
	ended   bool
}

// New allocates and initializes a simulation of n bodies.
func New(n int, p Params, b Backend) (*Simulation, error) {
	if b == nil {
		return nil, errors.New("nbody: nil backend")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	st, err := NewState(n)
	if err != nil {
		return nil, err
	}
	Initialize(st, p)

	return &Simulation{params: p, backend: b, state: st}, nil
}

// NewFromState wraps an already populated state, for hand-built
// configurations. The simulation takes ownership of st.
func NewFromState(st *State, p Params, b Backend) (*Simulation, error) {
	if b == nil {
		return nil, errors.New("nbody: nil backend")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	st.mustLive()
	return &Simulation{params: p, backend: b, state: st}, nil
}

func (s *Simulation) Params() Params   { return s.params }
func (s *Simulation) Backend() Backend { return s.backend }
func (s *Simulation) Steps() int       { return s.steps }

// State exposes the body arrays for reading and for hand edits between steps.
func (s *Simulation) State() *State {
	s.mustLive()
	return s.state
}

func (s *Simulation) Len() int {
	s.mustLive()
	return s.state.n
}

// UpdateAccelerations runs phase 1 for every body: it reads positions and
// overwrites accelerations.
func (s *Simulation) UpdateAccelerations() error {
	s.mustLive()
	if err := s.backend.Accelerate(s.state.Pos, s.state.Acc, s.params); err != nil {
		return &BackendError{Backend: s.backend.Name(), Op: "accelerate", Step: s.steps, Err: err}
	}
	return nil
}

// UpdateMotion runs phase 2 for every body from the current accelerations.
func (s *Simulation) UpdateMotion(dt float32) error {
	s.mustLive()
	if err := s.backend.Advance(s.state.Pos, s.state.Vel, s.state.Acc, dt); err != nil {
		return &BackendError{Backend: s.backend.Name(), Op: "advance", Step: s.steps, Err: err}
	}
	return nil
}

// Step advances the simulation by dt. Phase 2 starts only after phase 1 has
// finished for all bodies. On error the state is left as the failing phase
// wrote it.
func (s *Simulation) Step(dt float32) (StepTiming, error) {
	var timing StepTiming

	start := time.Now()
	if err := s.UpdateAccelerations(); err != nil {
		return timing, err
	}
	timing.Accelerate = time.Since(start)

	start = time.Now()
	if err := s.UpdateMotion(dt); err != nil {
		return timing, err
	}
	timing.Advance = time.Since(start)

	s.steps++
	return timing, nil
}

// End releases the state and the backend. It must be called exactly once,
// after the last step.
func (s *Simulation) End() {
	s.mustLive()
	s.state.Release()
	s.backend.Cleanup()
	s.ended = true
}

func (s *Simulation) mustLive() {
	if s.ended {
		panic(releasedPanic)
	}
}

func (s *Simulation) String() string {
	if s.ended {
		return "nbody.Simulation(ended)"
	}
	return fmt.Sprintf("nbody.Simulation(n=%d, backend=%s, step=%d)", s.state.n, s.backend.Name(), s.steps)
}
