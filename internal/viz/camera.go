package viz

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/nbody"
)

// Camera looks down the z axis at readback coordinates, where the disk
// spans roughly [-1, 1].
type Camera struct {
	RotX, RotY, RotZ float32
	Zoom             float32
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

func (c *Camera) RotateX(a float32) { c.RotX += a }
func (c *Camera) RotateY(a float32) { c.RotY += a }
func (c *Camera) RotateZ(a float32) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = min(20, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = max(0.05, c.Zoom/1.25) }
func (c *Camera) Reset()            { *c = Camera{Zoom: 1} }

func (c *Camera) rotation() mgl32.Mat3 {
	return mgl32.Rotate3DZ(c.RotZ).Mul3(mgl32.Rotate3DY(c.RotY)).Mul3(mgl32.Rotate3DX(c.RotX))
}

// Project maps p to dot coordinates on a sw x sh surface with an
// orthographic projection. ok is false when the dot falls off the surface.
func (c *Camera) Project(p mgl32.Vec3, sw, sh int) (x, y int, ok bool) {
	return c.project(c.rotation(), p, sw, sh)
}

func (c *Camera) project(rot mgl32.Mat3, p mgl32.Vec3, sw, sh int) (x, y int, ok bool) {
	r := rot.Mul3x1(p).Mul(c.Zoom)
	half := float32(min(sw, sh)) / 2
	x = int(r[0]*half) + sw/2
	y = int(-r[1]*half) + sh/2
	return x, y, x >= 0 && x < sw && y >= 0 && y < sh
}

// DrawFrame plots every body of a readback buffer and returns how many
// landed on the canvas.
func DrawFrame(c *Canvas, data []float32, cam *Camera) int {
	rot := cam.rotation()
	sw, sh := c.SubWidth(), c.SubHeight()
	visible := 0
	for i := 0; i+2 < len(data); i += nbody.VBOStride {
		x, y, ok := cam.project(rot, mgl32.Vec3{data[i], data[i+1], data[i+2]}, sw, sh)
		if ok {
			c.Set(x, y)
			visible++
		}
	}
	return visible
}
