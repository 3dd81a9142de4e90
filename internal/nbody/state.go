package nbody

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const releasedPanic = "nbody: use of released state"

// State holds one slot per body in three parallel arrays. Index i is the
// same body for the lifetime of the state.
type State struct {
	Pos []mgl32.Vec3
	Vel []mgl32.Vec3
	Acc []mgl32.Vec3

	n        int
	released bool
}

// NewState allocates position, velocity and acceleration arrays for n bodies.
func NewState(n int) (*State, error) {
	st := &State{n: n}
	var err error
	if st.Pos, err = allocVec3("positions", n); err != nil {
		return nil, err
	}
	if st.Vel, err = allocVec3("velocities", n); err != nil {
		return nil, err
	}
	if st.Acc, err = allocVec3("accelerations", n); err != nil {
		return nil, err
	}
	return st, nil
}

func allocVec3(name string, n int) (arr []mgl32.Vec3, err error) {
	if n <= 0 || n > MaxBodies {
		return nil, &AllocError{Array: name, N: n, Err: fmt.Errorf("body count out of range (1..%d)", MaxBodies)}
	}
	defer func() {
		if r := recover(); r != nil {
			arr, err = nil, &AllocError{Array: name, N: n, Err: fmt.Errorf("%v", r)}
		}
	}()
	return make([]mgl32.Vec3, n), nil
}

// Len returns the number of bodies.
func (st *State) Len() int {
	st.mustLive()
	return st.n
}

// Release drops all three arrays. It must be called exactly once.
func (st *State) Release() {
	st.mustLive()
	st.Pos, st.Vel, st.Acc = nil, nil, nil
	st.released = true
}

func (st *State) Released() bool { return st.released }

// Clone returns an independent copy of a live state.
func (st *State) Clone() *State {
	st.mustLive()
	c := &State{
		Pos: make([]mgl32.Vec3, st.n),
		Vel: make([]mgl32.Vec3, st.n),
		Acc: make([]mgl32.Vec3, st.n),
		n:   st.n,
	}
	copy(c.Pos, st.Pos)
	copy(c.Vel, st.Vel)
	copy(c.Acc, st.Acc)
	return c
}

// IsValid reports whether every component of position and velocity is finite.
func (st *State) IsValid() bool {
	st.mustLive()
	for i := 0; i < st.n; i++ {
		if !finite(st.Pos[i]) || !finite(st.Vel[i]) {
			return false
		}
	}
	return true
}

func (st *State) mustLive() {
	if st.released {
		panic(releasedPanic)
	}
}
