package compute_test

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/nbody"
)

func serialStep(st *nbody.State, p nbody.Params, dt float32) {
	snapshot := append([]mgl32.Vec3(nil), st.Pos...)
	for i := range st.Acc {
		st.Acc[i] = nbody.Accelerate(i, snapshot, p)
	}
	for i := range st.Pos {
		nbody.Advance(i, st.Pos, st.Vel, st.Acc, dt)
	}
}

var _ = Describe("Backend selection", func() {
	It("resolves the cpu backend by name", func() {
		b, err := compute.NewBackend("cpu")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Name()).To(HavePrefix("cpu"))
	})

	It("always resolves auto", func() {
		b, err := compute.NewBackend("auto")
		Expect(err).NotTo(HaveOccurred())
		Expect(b).NotTo(BeNil())
	})

	It("rejects unknown names", func() {
		_, err := compute.NewBackend("tpu")
		Expect(err).To(MatchError(ContainSubstring("unknown backend")))
	})

	It("lists the accepted names", func() {
		Expect(compute.Names()).To(ContainElements("auto", "cpu", "cuda"))
	})
})

type trackedBackend struct {
	*compute.CPUBackend
	name     string
	cleanups int
}

func (b *trackedBackend) Name() string { return b.name }
func (b *trackedBackend) Cleanup()     { b.cleanups++ }

var _ = Describe("Prefer", func() {
	var fallback *trackedBackend

	BeforeEach(func() {
		fallback = &trackedBackend{CPUBackend: compute.NewCPUBackend(), name: "fallback"}
	})

	It("releases the fallback when the primary starts", func() {
		primary := &trackedBackend{CPUBackend: compute.NewCPUBackend(), name: "primary"}
		b, err := compute.Prefer(func() (nbody.Backend, error) { return primary, nil }, fallback)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Name()).To(Equal("primary"))
		Expect(fallback.cleanups).To(Equal(1))
		Expect(primary.cleanups).To(Equal(0))
	})

	It("keeps the fallback when the primary fails", func() {
		b, err := compute.Prefer(func() (nbody.Backend, error) { return nil, errors.New("no compute shaders") }, fallback)
		Expect(err).To(MatchError("no compute shaders"))
		Expect(b.Name()).To(Equal("fallback"))
		Expect(fallback.cleanups).To(Equal(0))
	})
})

var _ = Describe("CPUBackend", func() {
	var (
		params  nbody.Params
		backend *compute.CPUBackend
	)

	BeforeEach(func() {
		params = nbody.DefaultParams()
		backend = compute.NewCPUBackendWorkers(4)
	})

	It("clamps the worker count", func() {
		Expect(compute.NewCPUBackendWorkers(0).Workers()).To(Equal(1))
		Expect(backend.Workers()).To(Equal(4))
	})

	DescribeTable("matches a serial reference step",
		func(n, stride int) {
			params.Stride = stride

			sim, err := nbody.New(n, params, backend)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(sim.End)

			ref := sim.State().Clone()
			for k := 0; k < 3; k++ {
				_, err := sim.Step(0.2)
				Expect(err).NotTo(HaveOccurred())
				serialStep(ref, params, 0.2)
			}

			Expect(sim.State().Pos).To(Equal(ref.Pos))
			Expect(sim.State().Vel).To(Equal(ref.Vel))
			Expect(sim.State().Acc).To(Equal(ref.Acc))
		},
		Entry("tiny", 3, 1),
		Entry("one chunk", 16, 1),
		Entry("many chunks", 1000, 1),
		Entry("strided", 1000, 3),
	)

	It("leaves positions alone during the acceleration pass", func() {
		sim, err := nbody.New(500, params, backend)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sim.End)

		before := sim.State().Clone()
		Expect(sim.UpdateAccelerations()).To(Succeed())
		Expect(sim.State().Pos).To(Equal(before.Pos))
		Expect(sim.State().Vel).To(Equal(before.Vel))
	})

	It("stays finite over many steps", func() {
		sim, err := nbody.New(256, params, backend)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sim.End)

		for k := 0; k < 200; k++ {
			_, err := sim.Step(0.2)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(sim.State().IsValid()).To(BeTrue())
		Expect(sim.Steps()).To(Equal(200))
	})

	It("rejects mismatched arrays", func() {
		pos := make([]mgl32.Vec3, 4)
		Expect(backend.Accelerate(pos, make([]mgl32.Vec3, 2), params)).NotTo(Succeed())
		Expect(backend.Advance(pos, make([]mgl32.Vec3, 4), make([]mgl32.Vec3, 3), 0.1)).NotTo(Succeed())
	})
})
