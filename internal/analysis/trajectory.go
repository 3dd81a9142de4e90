package analysis

import (
	"strings"

	"github.com/san-kum/orbitsim/internal/nbody"
	"github.com/san-kum/orbitsim/internal/sim"
)

type Point struct{ X, Y float64 }

// Trajectory returns the x/y path of body across frames.
func Trajectory(frames []sim.Frame, body int) []Point {
	points := make([]Point, 0, len(frames))
	off := body * nbody.VBOStride
	for _, f := range frames {
		if body < 0 || off+2 > len(f.Data) {
			continue
		}
		points = append(points, Point{X: float64(f.Data[off]), Y: float64(f.Data[off+1])})
	}
	return points
}

// Bounds returns the padded bounding box of points.
func Bounds(points []Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// TrajectoryToASCII plots points on a width x height character grid with
// the star marked at the origin when it is in view.
func TrajectoryToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := Bounds(points)
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 && minY <= 0 && maxY >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		canvas[row][col] = '*'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
