package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/nbody"
)

// MeanRadius averages the planets' distance from the star over all samples.
type MeanRadius struct {
	total   float64
	samples int
}

func NewMeanRadius() *MeanRadius { return &MeanRadius{} }

func (m *MeanRadius) Name() string { return "mean_radius" }

func (m *MeanRadius) Observe(st *nbody.State, p nbody.Params, t float64) {
	if st.Len() == 0 {
		return
	}
	var sum float64
	for _, r := range st.Pos {
		sum += math.Sqrt(len2(r))
	}
	m.total += sum / float64(st.Len())
	m.samples++
}

func (m *MeanRadius) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanRadius) Reset() {
	m.total = 0
	m.samples = 0
}

// Bound is the fraction of samples in which every planet stayed within
// limit of the star.
type Bound struct {
	limit      float64
	violations int
	samples    int
}

func NewBound(limit float64) *Bound {
	return &Bound{limit: limit}
}

func (b *Bound) Name() string { return "bound" }

func (b *Bound) Observe(st *nbody.State, p nbody.Params, t float64) {
	b.samples++
	limit2 := b.limit * b.limit
	for _, r := range st.Pos {
		if len2(r) > limit2 {
			b.violations++
			break
		}
	}
}

func (b *Bound) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bound) Reset() {
	b.violations = 0
	b.samples = 0
}
