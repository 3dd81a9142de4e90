// Package gui shows the disk in a raylib window. Steps run on the OpenGL
// compute backend when the window's context supports compute shaders (build
// with -tags opengl43) and on the fallback backend otherwise.
package gui

import (
	"fmt"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/compute/glcompute"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/nbody"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColStar    = rl.NewColor(255, 215, 0, 255)
	ColPlanet  = rl.NewColor(201, 160, 255, 200)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
)

const (
	windowWidth  = 1280
	windowHeight = 720
	// readback coordinates span about [-1, 1]; the world is drawn larger
	worldScale        = 50
	telemetryCapacity = 200
)

type Options struct {
	Title         string
	Bodies        int
	Params        nbody.Params
	Dt            float32
	StepsPerFrame int
	// EnergyEvery samples the total energy for the telemetry strip every n
	// steps; 0 disables it.
	EnergyEvery int
	PreferGPU   bool
	// Fallback is used when the compute backend is unavailable.
	Fallback nbody.Backend
	Logger   *log.Logger
}

type App struct {
	sim       *nbody.Simulation
	opts      Options
	camera    rl.Camera3D
	buf       []float32
	running   bool
	orbiting  bool
	steps     int
	reseeds   uint32
	last      nbody.StepTiming
	telemetry []float64
	logger    *log.Logger
}

func initWindow(title string) {
	rl.InitWindow(windowWidth, windowHeight, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed. A backend failure
// closes the window and is returned.
func Run(opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.Title == "" {
		opts.Title = "orbitsim"
	}

	initWindow(opts.Title)
	defer rl.CloseWindow()

	backend := selectBackend(opts)
	s, err := nbody.New(opts.Bodies, opts.Params, backend)
	if err != nil {
		backend.Cleanup()
		return err
	}
	defer s.End()

	app := &App{
		sim:  s,
		opts: opts,
		camera: rl.NewCamera3D(
			rl.NewVector3(0, -worldScale*1.5, worldScale*1.5),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 0, 1),
			45.0,
			rl.CameraPerspective,
		),
		buf:       make([]float32, opts.Bodies*nbody.VBOStride),
		running:   true,
		telemetry: make([]float64, 0, telemetryCapacity),
		logger:    opts.Logger,
	}
	return app.RunLoop()
}

func selectBackend(opts Options) nbody.Backend {
	if !opts.PreferGPU {
		return opts.Fallback
	}
	b, err := compute.Prefer(func() (nbody.Backend, error) {
		gl := glcompute.New(opts.Logger)
		if err := gl.Init(); err != nil {
			return nil, err
		}
		return gl, nil
	}, opts.Fallback)
	if err != nil {
		opts.Logger.Warn("compute shaders unavailable, using fallback backend", "err", err, "fallback", b.Name())
	}
	return b
}

func (a *App) RunLoop() error {
	for !rl.WindowShouldClose() {
		if quit, err := a.Update(); err != nil || quit {
			return err
		}
		if err := a.Draw(); err != nil {
			return err
		}
	}
	return nil
}

// Update handles input and advances the simulation.
func (a *App) Update() (quit bool, err error) {
	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return true, nil
	case rl.IsKeyPressed(rl.KeySpace):
		a.running = !a.running
	case rl.IsKeyPressed(rl.KeyR):
		a.reseed()
	case rl.IsKeyPressed(rl.KeyO):
		a.orbiting = !a.orbiting
	}

	if a.orbiting {
		rl.UpdateCamera(&a.camera, rl.CameraOrbital)
	}

	if !a.running {
		return false, nil
	}
	for range a.opts.StepsPerFrame {
		timing, err := a.sim.Step(a.opts.Dt)
		if err != nil {
			return true, err
		}
		a.last = timing
		a.steps++
		if a.opts.EnergyEvery > 0 && a.steps%a.opts.EnergyEvery == 0 {
			a.sampleEnergy()
		}
	}
	return false, nil
}

func (a *App) sampleEnergy() {
	a.telemetry = append(a.telemetry, metrics.Energy(a.sim.State(), a.sim.Params()))
	if len(a.telemetry) > telemetryCapacity {
		a.telemetry = a.telemetry[1:]
	}
}

func (a *App) reseed() {
	a.reseeds++
	p := a.sim.Params()
	p.TimeTag += a.reseeds
	nbody.Initialize(a.sim.State(), p)
	a.steps = 0
	a.telemetry = a.telemetry[:0]
}

func (a *App) Draw() error {
	if err := a.sim.CopyPlanetsToVBO(a.buf); err != nil {
		return err
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.camera)
	rl.DrawSphere(rl.NewVector3(0, 0, 0), 1.0, ColStar)
	for i := 0; i+2 < len(a.buf); i += nbody.VBOStride {
		pos := rl.NewVector3(a.buf[i]*worldScale, a.buf[i+1]*worldScale, a.buf[i+2]*worldScale)
		rl.DrawPoint3D(pos, ColPlanet)
	}
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
	return nil
}

func (a *App) DrawHUD() {
	rl.DrawText(a.opts.Title, 30, 30, 24, ColSelect)
	rl.DrawText(fmt.Sprintf(":: %d bodies  %s", a.sim.Len(), a.sim.Backend().Name()), 30, 60, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.running {
		status, col = "PAUSED", ColTextDim
	}
	rl.DrawText(status, windowWidth-130, 30, 16, col)

	rl.DrawText(fmt.Sprintf("step %d  accel %v  advance %v", a.steps, a.last.Accelerate, a.last.Advance), 30, 90, 14, ColText)

	a.DrawTelemetry()

	rl.DrawText("[SPACE] PAUSE  [R] RESEED  [O] ORBIT  [Q] QUIT", windowWidth-480, windowHeight-40, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, windowHeight-40, 14, ColTextDim)
}

func (a *App) DrawTelemetry() {
	if len(a.telemetry) < 2 {
		return
	}

	rectX, rectY := float32(30), float32(600)
	width, height := float32(400), float32(60)

	minVal, maxVal := a.telemetry[0], a.telemetry[0]
	for _, v := range a.telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.telemetry))
	for i, val := range a.telemetry {
		px := rectX + float32(i)/float32(len(a.telemetry))*width
		norm := float32((val - minVal) / (maxVal - minVal))
		points[i] = rl.NewVector2(px, rectY+height-norm*height)
	}

	rl.DrawLineStrip(points, ColAccent)
	rl.DrawText(fmt.Sprintf("E: %.3e", a.telemetry[len(a.telemetry)-1]), int32(rectX+width+10), int32(rectY+height-10), 14, ColText)
}
