// Package glcompute runs the nbody phases as OpenGL 4.3 compute shaders.
// It needs a current GL context, so it is used by the windowed front end
// rather than selected automatically.
package glcompute

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/nbody"
)

const (
	workGroupSize = 128
	vec4Floats    = 4

	bindingPos = 0
	bindingVel = 1
	bindingAcc = 2
)

var (
	//go:embed shaders/accelerate.comp
	accelerateSource string

	//go:embed shaders/advance.comp
	advanceSource string
)

var _ nbody.Backend = (*Backend)(nil)

// Backend keeps positions, velocities and accelerations in shader storage
// buffers. Host arrays stay authoritative: each phase uploads what it reads
// and downloads what it writes.
type Backend struct {
	accelProg   uint32
	advanceProg uint32
	buffers     [3]uint32
	capacity    int
	staging     []float32
	renderer    string
	initialized bool
	logger      *log.Logger
}

func New(logger *log.Logger) *Backend {
	if logger == nil {
		logger = log.Default()
	}
	return &Backend{logger: logger}
}

// Init loads GL entry points and compiles both programs. A GL 4.3 context
// must be current on the calling goroutine.
func (b *Backend) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to init opengl: %w", err)
	}

	progs, err := buildPrograms(createComputeProgram, gl.DeleteProgram,
		shaderSource{"accelerate", accelerateSource},
		shaderSource{"advance", advanceSource})
	if err != nil {
		return err
	}
	b.accelProg, b.advanceProg = progs[0], progs[1]

	gl.GenBuffers(int32(len(b.buffers)), &b.buffers[0])
	b.renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	b.initialized = true

	var maxWorkGroupCount, maxWorkGroupSize int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &maxWorkGroupCount)
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_SIZE, 0, &maxWorkGroupSize)
	b.logger.Info("opengl compute initialized",
		"renderer", b.renderer,
		"max_work_groups", maxWorkGroupCount,
		"max_work_group_size", maxWorkGroupSize)

	return nil
}

func (b *Backend) Name() string {
	if !b.initialized {
		return "opengl (not initialized)"
	}
	return "opengl (" + b.renderer + ")"
}

func (b *Backend) Available() bool { return b.initialized }

func (b *Backend) Cleanup() {
	if !b.initialized {
		return
	}
	gl.DeleteBuffers(int32(len(b.buffers)), &b.buffers[0])
	gl.DeleteProgram(b.accelProg)
	gl.DeleteProgram(b.advanceProg)
	b.initialized = false
	b.capacity = 0
}

// reserve sizes all three storage buffers for n bodies.
func (b *Backend) reserve(n int) error {
	if !b.initialized {
		return errors.New("opengl backend not initialized")
	}
	if n <= b.capacity {
		return nil
	}

	size := n * vec4Floats * 4
	for _, buf := range b.buffers {
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_COPY)
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%w: storage buffers for %d bodies: gl error 0x%x", nbody.ErrAllocation, n, code)
	}

	b.staging = make([]float32, n*vec4Floats)
	b.capacity = n
	return nil
}

func (b *Backend) Accelerate(pos, acc []mgl32.Vec3, p nbody.Params) error {
	n := len(pos)
	if err := b.reserve(n); err != nil {
		return err
	}

	b.upload(bindingPos, pos)

	gl.UseProgram(b.accelProg)
	setInt(b.accelProg, "numBodies", int32(n))
	setFloat(b.accelProg, "G", p.G)
	setFloat(b.accelProg, "epsilon", p.Epsilon)
	setFloat(b.accelProg, "starMass", p.StarMass)
	setFloat(b.accelProg, "planetMass", p.PlanetMass)
	setInt(b.accelProg, "stride", int32(p.Stride))

	b.dispatch(n)
	b.download(bindingAcc, acc)

	return checkError("accelerate")
}

func (b *Backend) Advance(pos, vel, acc []mgl32.Vec3, dt float32) error {
	n := len(pos)
	if err := b.reserve(n); err != nil {
		return err
	}

	b.upload(bindingPos, pos)
	b.upload(bindingVel, vel)
	b.upload(bindingAcc, acc)

	gl.UseProgram(b.advanceProg)
	setInt(b.advanceProg, "numBodies", int32(n))
	setFloat(b.advanceProg, "dt", dt)

	b.dispatch(n)
	b.download(bindingPos, pos)
	b.download(bindingVel, vel)

	return checkError("advance")
}

// dispatch launches one invocation per body and waits on the storage
// barrier, so every write is visible before the next read.
func (b *Backend) dispatch(n int) {
	for i, buf := range b.buffers {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(i), buf)
	}
	groups := (n + workGroupSize - 1) / workGroupSize
	gl.DispatchCompute(uint32(groups), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)
}

func (b *Backend) upload(binding int, src []mgl32.Vec3) {
	stage := b.staging[:len(src)*vec4Floats]
	for i, v := range src {
		copy(stage[i*vec4Floats:], v[:])
		stage[i*vec4Floats+3] = 0
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.buffers[binding])
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(stage)*4, gl.Ptr(stage))
}

func (b *Backend) download(binding int, dst []mgl32.Vec3) {
	stage := b.staging[:len(dst)*vec4Floats]
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.buffers[binding])
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(stage)*4, gl.Ptr(stage))
	for i := range dst {
		copy(dst[i][:], stage[i*vec4Floats:i*vec4Floats+3])
	}
}

func setInt(program uint32, name string, v int32) {
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str(name+"\x00")), v)
}

func setFloat(program uint32, name string, v float32) {
	gl.Uniform1f(gl.GetUniformLocation(program, gl.Str(name+"\x00")), v)
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		if code == gl.OUT_OF_MEMORY {
			return fmt.Errorf("%w: %s: gl out of memory", nbody.ErrAllocation, op)
		}
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}

type shaderSource struct {
	name string
	src  string
}

// buildPrograms compiles sources in order. On failure every program built
// so far is released.
func buildPrograms(compile func(name, src string) (uint32, error), release func(uint32), sources ...shaderSource) ([]uint32, error) {
	progs := make([]uint32, 0, len(sources))
	for _, s := range sources {
		prog, err := compile(s.name, s.src)
		if err != nil {
			for _, p := range progs {
				release(p)
			}
			return nil, err
		}
		progs = append(progs, prog)
	}
	return progs, nil
}

func createComputeProgram(name, source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile %s shader: %v", name, infoLog)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to link %s program", name)
	}

	gl.DeleteShader(shader)
	return program, nil
}
