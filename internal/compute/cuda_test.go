//go:build cuda

package compute_test

import (
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/nbody"
)

// closeTo compares component-wise within 1e-3, relative for large values.
func closeTo(got, want []mgl32.Vec3) {
	Expect(got).To(HaveLen(len(want)))
	for i := range want {
		for k := range 3 {
			tol := 1e-3 * max(1, float64(mgl32.Abs(want[i][k])))
			Expect(float64(got[i][k])).To(BeNumerically("~", float64(want[i][k]), tol), "body %d", i)
		}
	}
}

var _ = Describe("CUDABackend", func() {
	BeforeEach(func() {
		if !compute.NewCUDABackend().Available() {
			Skip("no cuda device")
		}
	})

	It("keeps device arrays separate between instances", func() {
		params := nbody.DefaultParams()
		a, b := compute.NewCUDABackend(), compute.NewCUDABackend()

		large, err := nbody.New(1000, params, a)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(large.End)
		small, err := nbody.New(10, params, b)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(small.End)

		largeRef := large.State().Clone()
		smallRef := small.State().Clone()
		for k := 0; k < 3; k++ {
			_, err := large.Step(0.2)
			Expect(err).NotTo(HaveOccurred())
			_, err = small.Step(0.2)
			Expect(err).NotTo(HaveOccurred())
			serialStep(largeRef, params, 0.2)
			serialStep(smallRef, params, 0.2)
		}

		closeTo(large.State().Pos, largeRef.Pos)
		closeTo(small.State().Pos, smallRef.Pos)
	})

	It("reserves again after Cleanup and after the body count changes", func() {
		params := nbody.DefaultParams()
		backend := compute.NewCUDABackend()
		DeferCleanup(backend.Cleanup)

		for _, n := range []int{64, 8, 64} {
			st, err := nbody.NewState(n)
			Expect(err).NotTo(HaveOccurred())
			nbody.Initialize(st, params)
			ref := st.Clone()

			Expect(backend.Accelerate(st.Pos, st.Acc, params)).To(Succeed())
			for i := range ref.Acc {
				ref.Acc[i] = nbody.Accelerate(i, ref.Pos, params)
			}
			closeTo(st.Acc, ref.Acc)
			backend.Cleanup()
		}
	})
})
