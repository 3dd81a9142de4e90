package nbody

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VBOStride is the number of floats per body in a readback buffer.
const VBOStride = 4

// CopyPlanetsToVBO writes (x, y, z, 1) for every body into buf, scaled by
// -1/Scale. buf must hold at least 4*N floats. State is not modified.
func (s *Simulation) CopyPlanetsToVBO(buf []float32) error {
	s.state.mustLive()
	return WriteVBO(buf, s.state.Pos, s.params.Scale)
}

// WriteVBO is the readback transform over an arbitrary position slice.
func WriteVBO(buf []float32, pos []mgl32.Vec3, scale float32) error {
	if len(buf) < VBOStride*len(pos) {
		return fmt.Errorf("%w: need %d floats, have %d", ErrBufferTooSmall, VBOStride*len(pos), len(buf))
	}
	c := -1 / scale
	ParallelFor(len(pos), 0, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			o := VBOStride * i
			buf[o] = pos[i].X() * c
			buf[o+1] = pos[i].Y() * c
			buf[o+2] = pos[i].Z() * c
			buf[o+3] = 1
		}
	})
	return nil
}
