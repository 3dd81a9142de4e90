package nbody

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
)

func handBuilt(t *testing.T, p Params, pos, vel []mgl32.Vec3) *Simulation {
	t.Helper()
	st := mustState(len(pos))
	copy(st.Pos, pos)
	copy(st.Vel, vel)
	sim, err := NewFromState(st, p, &serialBackend{})
	if err != nil {
		t.Fatalf("NewFromState: %v", err)
	}
	return sim
}

func TestNew(t *testing.T) {
	g := NewWithT(t)
	b := &serialBackend{}

	sim, err := New(64, DefaultParams(), b)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sim.Len()).To(Equal(64))
	g.Expect(sim.Steps()).To(BeZero())
	g.Expect(sim.State().IsValid()).To(BeTrue())

	sim.End()
	g.Expect(b.cleanups).To(Equal(1))
}

func TestNew_Errors(t *testing.T) {
	bad := DefaultParams()
	bad.Stride = 0

	tests := []struct {
		name   string
		n      int
		params Params
		target error
	}{
		{"zero bodies", 0, DefaultParams(), ErrAllocation},
		{"negative bodies", -3, DefaultParams(), ErrAllocation},
		{"too many bodies", MaxBodies + 1, DefaultParams(), ErrAllocation},
		{"zero stride", 8, bad, ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.n, tt.params, &serialBackend{})
			if !errors.Is(err, tt.target) {
				t.Errorf("got %v, want %v", err, tt.target)
			}
		})
	}

	if _, err := New(8, DefaultParams(), nil); err == nil {
		t.Error("expected error for nil backend")
	}
}

func TestNewState_NamesFailedArray(t *testing.T) {
	_, err := NewState(0)
	var ae *AllocError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AllocError, got %v", err)
	}
	if ae.Array != "positions" {
		t.Errorf("failed array = %q, want positions", ae.Array)
	}
}

func TestStep_SingleBody(t *testing.T) {
	g := NewWithT(t)
	p := unitParams()
	p.StarMass = 25
	start := mgl32.Vec3{3, 4, 0}
	sim := handBuilt(t, p, []mgl32.Vec3{start}, []mgl32.Vec3{{}})
	defer sim.End()

	const dt = 0.1
	timing, err := sim.Step(dt)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(timing.Total()).To(BeNumerically(">=", 0))

	st := sim.State()
	gStar := mgl32.Vec3{-0.6, -0.8, 0}
	g.Expect(approxVec(st.Acc[0], gStar, 1e-6)).To(BeTrue(), "acc=%v", st.Acc[0])
	g.Expect(approxVec(st.Vel[0], gStar.Mul(dt), 1e-6)).To(BeTrue(), "vel=%v", st.Vel[0])
	g.Expect(approxVec(st.Pos[0], start.Add(st.Vel[0].Mul(dt)), 1e-6)).To(BeTrue(), "pos=%v", st.Pos[0])
	g.Expect(sim.Steps()).To(Equal(1))
}

func TestStep_TwoBodyHandComputed(t *testing.T) {
	p := unitParams() // G=1, star 10, planets 1
	sim := handBuilt(t, p,
		[]mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}},
		[]mgl32.Vec3{{0, 1, 0}, {0, -1, 0}},
	)
	defer sim.End()

	if _, err := sim.Step(0.01); err != nil {
		t.Fatalf("step: %v", err)
	}

	// a0 = star 10/1 + partner 1/4 toward -x = -10.25
	// v0 = (0, 1) + (-10.25, 0)*0.01 = (-0.1025, 1)
	// x0 = (1, 0) + v0*0.01 = (0.998975, 0.01)
	want := []mgl32.Vec3{{0.998975, 0.01, 0}, {-0.998975, -0.01, 0}}
	wantVel := []mgl32.Vec3{{-0.1025, 1, 0}, {0.1025, -1, 0}}

	st := sim.State()
	for i := range want {
		for k := 0; k < 3; k++ {
			if !relClose(st.Pos[i][k], want[i][k], 1e-4) {
				t.Errorf("pos[%d][%d] = %v, want %v", i, k, st.Pos[i][k], want[i][k])
			}
			if !relClose(st.Vel[i][k], wantVel[i][k], 1e-4) {
				t.Errorf("vel[%d][%d] = %v, want %v", i, k, st.Vel[i][k], wantVel[i][k])
			}
		}
	}
}

func relClose(got, want float32, rel float64) bool {
	if want == 0 {
		return math.Abs(float64(got)) < 1e-7
	}
	return math.Abs(float64(got-want)) <= rel*math.Abs(float64(want))
}

func TestUpdateAccelerations_LeavesMotionUntouched(t *testing.T) {
	g := NewWithT(t)
	sim, err := New(200, DefaultParams(), &serialBackend{})
	g.Expect(err).NotTo(HaveOccurred())
	defer sim.End()

	before := sim.State().Clone()
	g.Expect(sim.UpdateAccelerations()).To(Succeed())

	st := sim.State()
	g.Expect(st.Pos).To(Equal(before.Pos))
	g.Expect(st.Vel).To(Equal(before.Vel))
	g.Expect(st.Acc).NotTo(Equal(before.Acc))
}

func TestUpdateAccelerations_OverwritesPreviousValue(t *testing.T) {
	sim, err := New(32, DefaultParams(), &serialBackend{})
	if err != nil {
		t.Fatal(err)
	}
	defer sim.End()

	if err := sim.UpdateAccelerations(); err != nil {
		t.Fatal(err)
	}
	first := sim.State().Clone().Acc

	if err := sim.UpdateAccelerations(); err != nil {
		t.Fatal(err)
	}
	for i, a := range sim.State().Acc {
		if a != first[i] {
			t.Fatalf("acc[%d] accumulated across passes: %v vs %v", i, a, first[i])
		}
	}
}

func TestStep_ReadsPositionSnapshot(t *testing.T) {
	// every acceleration in a step must match one computed from the
	// positions as they were before the step
	p := DefaultParams()
	sim, err := New(100, p, &serialBackend{})
	if err != nil {
		t.Fatal(err)
	}
	defer sim.End()

	snapshot := sim.State().Clone()
	if _, err := sim.Step(0.2); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < snapshot.Len(); i++ {
		if want := Accelerate(i, snapshot.Pos, p); sim.State().Acc[i] != want {
			t.Fatalf("acc[%d] = %v, want %v", i, sim.State().Acc[i], want)
		}
	}
}

func TestStep_BackendErrors(t *testing.T) {
	boom := errors.New("device lost")

	tests := []struct {
		name    string
		backend *serialBackend
		op      string
	}{
		{"accelerate", &serialBackend{accelErr: boom}, "accelerate"},
		{"advance", &serialBackend{advanceErr: boom}, "advance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := New(4, DefaultParams(), tt.backend)
			if err != nil {
				t.Fatal(err)
			}
			defer sim.End()

			_, err = sim.Step(0.1)
			var be *BackendError
			if !errors.As(err, &be) {
				t.Fatalf("expected BackendError, got %v", err)
			}
			if be.Op != tt.op {
				t.Errorf("op = %q, want %q", be.Op, tt.op)
			}
			if !errors.Is(err, ErrBackend) || !errors.Is(err, boom) {
				t.Errorf("error chain incomplete: %v", err)
			}
			if sim.Steps() != 0 {
				t.Errorf("failed step counted")
			}
		})
	}
}

func TestEnd_Misuse(t *testing.T) {
	g := NewWithT(t)
	sim, err := New(4, DefaultParams(), &serialBackend{})
	g.Expect(err).NotTo(HaveOccurred())
	sim.End()

	g.Expect(sim.End).To(PanicWith(releasedPanic))
	g.Expect(func() { _, _ = sim.Step(0.1) }).To(Panic())
	g.Expect(func() { _ = sim.CopyPlanetsToVBO(make([]float32, 16)) }).To(Panic())
	g.Expect(sim.String()).To(ContainSubstring("ended"))
}
