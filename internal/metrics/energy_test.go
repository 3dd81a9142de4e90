package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/nbody"
)

func unitParams() nbody.Params {
	p := nbody.DefaultParams()
	p.G = 1
	p.Epsilon = 1e-9
	p.StarMass = 10
	p.PlanetMass = 1
	p.Scale = 1
	return p
}

func newState(t *testing.T, pos, vel []mgl32.Vec3) *nbody.State {
	t.Helper()
	st, err := nbody.NewState(len(pos))
	if err != nil {
		t.Fatal(err)
	}
	copy(st.Pos, pos)
	copy(st.Vel, vel)
	return st
}

func TestKinetic(t *testing.T) {
	p := unitParams()
	p.PlanetMass = 2
	st := newState(t,
		[]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}},
		[]mgl32.Vec3{{3, 4, 0}, {0, 0, 5}})

	if got := Kinetic(st, p); math.Abs(got-50) > 1e-9 {
		t.Errorf("kinetic = %v, want 50", got)
	}
}

func TestPotential(t *testing.T) {
	st := newState(t,
		[]mgl32.Vec3{{3, 4, 0}, {-3, -4, 0}},
		make([]mgl32.Vec3, 2))

	// two star terms of -10/5 plus one pair at distance 10
	want := -4.1
	if got := Potential(st, unitParams()); math.Abs(got-want) > 1e-6 {
		t.Errorf("potential = %v, want %v", got, want)
	}
}

func TestPotential_MasslessPlanets(t *testing.T) {
	p := unitParams()
	p.PlanetMass = 0
	st := newState(t, []mgl32.Vec3{{1, 0, 0}, {1, 0, 0}}, make([]mgl32.Vec3, 2))

	if got := Energy(st, p); got != 0 {
		t.Errorf("energy = %v, want 0", got)
	}
}

func TestEnergy_CircularOrbit(t *testing.T) {
	st := newState(t,
		[]mgl32.Vec3{{2, 0, 0}},
		[]mgl32.Vec3{{0, float32(math.Sqrt(5)), 0}})

	// bound circular orbit: E = -GMm/2r
	if got := Energy(st, unitParams()); math.Abs(got+2.5) > 1e-5 {
		t.Errorf("energy = %v, want -2.5", got)
	}
}

func TestAngularMomentum(t *testing.T) {
	st := newState(t,
		[]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}},
		[]mgl32.Vec3{{0, 2, 0}, {-1, 0, 0}})

	if got := AngularMomentum(st, unitParams()); math.Abs(got-3) > 1e-9 {
		t.Errorf("angular momentum = %v, want 3", got)
	}
}

func TestEnergyDrift(t *testing.T) {
	p := unitParams()
	st := newState(t,
		[]mgl32.Vec3{{2, 0, 0}},
		[]mgl32.Vec3{{0, float32(math.Sqrt(5)), 0}})

	m := NewEnergyDrift()
	m.Observe(st, p, 0)
	if m.Value() != 0 {
		t.Errorf("drift after one sample = %v", m.Value())
	}

	// E goes from -2.5 to -5
	st.Vel[0] = mgl32.Vec3{}
	m.Observe(st, p, 1)
	if math.Abs(m.Value()-1) > 1e-4 {
		t.Errorf("drift = %v, want 1", m.Value())
	}

	st.Vel[0] = mgl32.Vec3{0, float32(math.Sqrt(5)), 0}
	m.Observe(st, p, 2)
	if math.Abs(m.Value()-1) > 1e-4 {
		t.Errorf("drift must keep its maximum, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestAngularMomentumDrift(t *testing.T) {
	p := unitParams()
	st := newState(t, []mgl32.Vec3{{1, 0, 0}}, []mgl32.Vec3{{0, 2, 0}})

	m := NewAngularMomentumDrift()
	m.Observe(st, p, 0)
	st.Vel[0] = mgl32.Vec3{0, 3, 0}
	m.Observe(st, p, 1)

	if math.Abs(m.Value()-0.5) > 1e-9 {
		t.Errorf("drift = %v, want 0.5", m.Value())
	}
}
