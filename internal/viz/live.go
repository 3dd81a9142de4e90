package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/nbody"
)

const (
	defaultWidth   = 60
	defaultHeight  = 24
	minWidth       = 20
	minHeight      = 8
	statsWidth     = 44
	energyCapacity = 120
	frameInterval  = time.Second / 30
	rotationStep   = 0.1
)

type TickMsg time.Time

type LiveOptions struct {
	Title string
	Dt    float32
	// StepsPerFrame simulation steps run between redraws.
	StepsPerFrame int
	// EnergyEvery samples the total energy every n steps; 0 disables it.
	EnergyEvery int
	Theme       string
}

// LiveModel steps a simulation on every tick and draws its readback
// buffer top-down.
type LiveModel struct {
	sim      *nbody.Simulation
	opts     LiveOptions
	canvas   *Canvas
	camera   *Camera
	frame    []float32
	theme    Theme
	running  bool
	showHelp bool
	t        float64
	steps    int
	reseeds  uint32
	visible  int
	last     nbody.StepTiming
	energy   []float64
	err      error
}

func NewLiveModel(s *nbody.Simulation, opts LiveOptions) *LiveModel {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.Dt <= 0 {
		opts.Dt = 0.2
	}
	if opts.Title == "" {
		opts.Title = "orbitsim"
	}
	m := &LiveModel{
		sim:     s,
		opts:    opts,
		canvas:  NewCanvas(defaultWidth, defaultHeight),
		camera:  NewCamera(),
		frame:   make([]float32, s.Len()*nbody.VBOStride),
		theme:   GetTheme(opts.Theme),
		running: true,
		energy:  make([]float64, 0, energyCapacity),
	}
	m.sampleEnergy()
	m.draw()
	return m
}

// Err is the backend failure that stopped the program, if any.
func (m *LiveModel) Err() error { return m.err }

func (m *LiveModel) Steps() int { return m.steps }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *LiveModel) Init() tea.Cmd { return tick() }

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				if !m.advance(1) {
					return m, tea.Quit
				}
				m.draw()
			}
		case "r":
			m.reseed()
		case "x":
			m.camera.RotateX(rotationStep)
		case "X":
			m.camera.RotateX(-rotationStep)
		case "y":
			m.camera.RotateY(rotationStep)
		case "Y":
			m.camera.RotateY(-rotationStep)
		case "z":
			m.camera.RotateZ(rotationStep)
		case "Z":
			m.camera.RotateZ(-rotationStep)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "c":
			m.camera.Reset()
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case tea.WindowSizeMsg:
		w := max(minWidth, msg.Width-statsWidth-6)
		h := max(minHeight, msg.Height-4)
		m.canvas = NewCanvas(w, h)
		m.draw()
	case TickMsg:
		if m.running {
			if !m.advance(m.opts.StepsPerFrame) {
				return m, tea.Quit
			}
			m.draw()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs n steps and reports whether the simulation is still usable.
func (m *LiveModel) advance(n int) bool {
	for range n {
		timing, err := m.sim.Step(m.opts.Dt)
		if err != nil {
			m.err = err
			return false
		}
		m.last = timing
		m.steps++
		m.t += float64(m.opts.Dt)
		if m.opts.EnergyEvery > 0 && m.steps%m.opts.EnergyEvery == 0 {
			m.sampleEnergy()
		}
	}
	return true
}

func (m *LiveModel) sampleEnergy() {
	if m.opts.EnergyEvery <= 0 {
		return
	}
	m.energy = append(m.energy, metrics.Energy(m.sim.State(), m.sim.Params()))
	if len(m.energy) > energyCapacity {
		m.energy = m.energy[1:]
	}
}

// reseed regenerates the disk under the next time tag.
func (m *LiveModel) reseed() {
	m.reseeds++
	p := m.sim.Params()
	p.TimeTag += m.reseeds
	nbody.Initialize(m.sim.State(), p)
	m.t = 0
	m.steps = 0
	m.energy = m.energy[:0]
	m.sampleEnergy()
	m.draw()
}

func (m *LiveModel) draw() {
	if err := m.sim.CopyPlanetsToVBO(m.frame); err != nil {
		m.err = err
		return
	}
	m.canvas.Clear()
	m.visible = DrawFrame(m.canvas, m.frame, m.camera)
}

func (m *LiveModel) View() string {
	th := m.theme
	label := lipgloss.NewStyle().Foreground(th.Label).Width(12)
	value := lipgloss.NewStyle().Foreground(th.Value)
	row := func(k, v string) string { return label.Render(k) + value.Render(v) + "\n" }

	canvasView := lipgloss.NewStyle().Foreground(th.Disk).Padding(1, 2).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(th.Header).Bold(true).MarginBottom(1).Render(strings.ToUpper(m.opts.Title)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(lipgloss.NewStyle().Foreground(th.Graph).Padding(1, 0).Render(chart) + "\n\n")
	}

	p := m.sim.Params()
	n := m.sim.Len()
	s.WriteString(row("Step", fmt.Sprintf("%d", m.steps)))
	s.WriteString(row("Time", fmt.Sprintf("%.2f", m.t)))
	s.WriteString(row("Bodies", fmt.Sprintf("%d (%d in view)", n, m.visible)))
	s.WriteString(row("Stride", fmt.Sprintf("%d", p.Stride)))
	s.WriteString(row("Backend", m.sim.Backend().Name()))
	s.WriteString(row("Accelerate", m.last.Accelerate.Round(time.Microsecond).String()))
	s.WriteString(row("Advance", m.last.Advance.Round(time.Microsecond).String()))
	if total := m.last.Total(); total > 0 {
		rate := float64(p.PairEvaluations(n)) / total.Seconds()
		s.WriteString(row("Pairs/s", fmt.Sprintf("%.3g", rate)))
	}
	if len(m.energy) > 0 {
		s.WriteString(row("Energy", fmt.Sprintf("%.4g", m.energy[len(m.energy)-1])))
	}
	s.WriteString(row("Theme", th.Name))

	help := lipgloss.NewStyle().Foreground(th.Muted).MarginTop(2)
	s.WriteString(help.Render("SP:Pause S:Step R:Reseed Q:Quit\nXYZ:Rotate +-:Zoom T:Theme ?:Help"))

	statsView := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(th.Muted).
		Padding(1, 2).
		Width(statsWidth).
		Render(s.String())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Single step when paused  ║
║  R        - Re-seed the disk         ║
║  X/Y/Z    - Rotate view (shift: back)║
║  +/-      - Zoom in/out              ║
║  C        - Reset camera             ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunLive runs the live view until the user quits and returns any backend
// error that ended it.
func RunLive(s *nbody.Simulation, opts LiveOptions) error {
	final, err := tea.NewProgram(NewLiveModel(s, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	return final.(*LiveModel).Err()
}
