package viz

import (
	"strings"
	"testing"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != brailleBase+0x1 {
		t.Errorf("cell 0 = %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBase+0x80 {
		t.Errorf("cell 1 = %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 0) {
		t.Error("IsSet disagrees with Set")
	}
}

func TestCanvasOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 8}} {
		c.Set(p[0], p[1])
		if c.IsSet(p[0], p[1]) {
			t.Errorf("out-of-range dot %v reported set", p)
		}
	}
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("out-of-range dots changed the canvas")
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 2)
	c.DrawLine(0, 0, 5, 7)
	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBase {
				t.Fatalf("cell not cleared: %U", r)
			}
		}
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 1, 7, 1)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 1) {
			t.Errorf("dot %d not drawn", x)
		}
	}
	if c.IsSet(0, 0) {
		t.Error("line strayed off its row")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if len([]rune(lines[0])) != 3 {
		t.Errorf("expected 3 cells, got %d", len([]rune(lines[0])))
	}
}
