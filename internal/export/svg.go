package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/nbody"
	"github.com/san-kum/orbitsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[2]d" viewBox="0 0 %[1]d %[2]d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// Braille dot bits, row by row.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG turns every lit Braille dot into a circle, scale pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.SubWidth()) * scale)
	height := int(float64(canvas.SubHeight()) * scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height)
	sb.WriteString("<g fill=\"#c9a0ff\">\n")

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := canvas.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := float64(col*2+dx)*scale + scale/2
					cy := float64(row*4+dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FrameToSVG plots a readback buffer top-down on a size x size image, with
// the star at the center. Points outside [-1, 1] are dropped.
func FrameToSVG(data []float32, size int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, size, size)

	half := float64(size) / 2
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"#ffd700\"/>\n", half, half)
	sb.WriteString("<g fill=\"#c9a0ff\">\n")
	for i := 0; i+2 < len(data); i += nbody.VBOStride {
		x, y := float64(data[i]), float64(data[i+1])
		if x < -1 || x > 1 || y < -1 || y > 1 {
			continue
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"0.8\"/>\n", half+x*half, half-y*half)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as a single path.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX, minY, maxY := analysis.Bounds(points)
	rangeX := maxX - minX
	rangeY := maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}
