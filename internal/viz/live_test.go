package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/nbody"
)

var errBroken = errors.New("device lost")

type brokenBackend struct{ *compute.CPUBackend }

func (brokenBackend) Accelerate(pos, acc []mgl32.Vec3, p nbody.Params) error { return errBroken }

func newLive(t *testing.T, b nbody.Backend, opts LiveOptions) *LiveModel {
	t.Helper()
	s, err := nbody.New(64, nbody.DefaultParams(), b)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.End)
	return NewLiveModel(s, opts)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveTickSteps(t *testing.T) {
	m := newLive(t, compute.NewCPUBackendWorkers(1), LiveOptions{StepsPerFrame: 3, EnergyEvery: 2})

	_, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("tick must schedule the next tick")
	}
	if m.Steps() != 3 {
		t.Errorf("steps = %d, want 3", m.Steps())
	}
	// initial sample plus the one at step 2
	if len(m.energy) != 2 {
		t.Errorf("energy samples = %d, want 2", len(m.energy))
	}
	if m.visible == 0 {
		t.Error("nothing drawn")
	}
}

func TestLivePauseAndStep(t *testing.T) {
	m := newLive(t, compute.NewCPUBackendWorkers(1), LiveOptions{})

	m.Update(key(" "))
	if m.running {
		t.Fatal("space should pause")
	}

	m.Update(TickMsg{})
	if m.Steps() != 0 {
		t.Errorf("paused model stepped %d times", m.Steps())
	}

	m.Update(key("s"))
	if m.Steps() != 1 {
		t.Errorf("single step gave %d steps", m.Steps())
	}

	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view does not show paused status")
	}
}

func TestLiveReseed(t *testing.T) {
	m := newLive(t, compute.NewCPUBackendWorkers(1), LiveOptions{})
	before := m.sim.State().Clone()

	m.Update(TickMsg{})
	m.Update(key("r"))

	if m.Steps() != 0 || m.t != 0 {
		t.Errorf("reseed did not reset the clock: step %d, t %v", m.Steps(), m.t)
	}
	if m.sim.State().Pos[0] == before.Pos[0] {
		t.Error("reseed kept the old layout")
	}
}

func TestLiveCameraAndTheme(t *testing.T) {
	m := newLive(t, compute.NewCPUBackendWorkers(1), LiveOptions{Theme: "retro"})

	m.Update(key("z"))
	m.Update(key("+"))
	if m.camera.RotZ == 0 || m.camera.Zoom <= 1 {
		t.Errorf("camera unchanged: %+v", m.camera)
	}
	m.Update(key("c"))
	if *m.camera != *NewCamera() {
		t.Errorf("camera not reset: %+v", m.camera)
	}

	m.Update(key("t"))
	if m.theme.Name != "sunset" {
		t.Errorf("theme = %s, want sunset", m.theme.Name)
	}
}

func TestLiveResize(t *testing.T) {
	m := newLive(t, compute.NewCPUBackendWorkers(1), LiveOptions{})
	m.Update(tea.WindowSizeMsg{Width: 150, Height: 50})
	if m.canvas.Width != 150-statsWidth-6 || m.canvas.Height != 46 {
		t.Errorf("canvas %dx%d", m.canvas.Width, m.canvas.Height)
	}

	m.Update(tea.WindowSizeMsg{Width: 10, Height: 5})
	if m.canvas.Width != minWidth || m.canvas.Height != minHeight {
		t.Errorf("canvas not clamped: %dx%d", m.canvas.Width, m.canvas.Height)
	}
}

func TestLiveBackendFailureQuits(t *testing.T) {
	m := newLive(t, brokenBackend{compute.NewCPUBackendWorkers(1)}, LiveOptions{})

	_, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
	if !errors.Is(m.Err(), nbody.ErrBackend) || !errors.Is(m.Err(), errBroken) {
		t.Errorf("err = %v", m.Err())
	}
}

func TestLiveView(t *testing.T) {
	m := newLive(t, compute.NewCPUBackendWorkers(1), LiveOptions{Title: "galaxy", EnergyEvery: 1, StepsPerFrame: 2})
	m.Update(TickMsg{})

	view := m.View()
	for _, want := range []string{"GALAXY", "RUNNING", "Backend", "cpu (1 workers)", "Energy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.Update(key("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay missing")
	}
}

func TestPicker(t *testing.T) {
	var m tea.Model = newPicker([]string{"binary", "fast", "small"}, func(n string) string { return n + " disk" })

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	if !strings.Contains(m.View(), "small disk") {
		t.Error("descriptions not shown")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit the picker")
	}
	if got := m.(pickerModel).chosen; got != "small" {
		t.Errorf("chosen = %q, want small", got)
	}
}

func TestPickerCancel(t *testing.T) {
	var m tea.Model = newPicker([]string{"small"}, nil)
	m, _ = m.Update(key("q"))
	if m.(pickerModel).chosen != "" {
		t.Error("cancel must not choose")
	}
}
