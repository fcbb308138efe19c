package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
	"github.com/go-gl/gl/v4.3-core/gl"
)

// glRendererBackend drives the raymarch program through OpenGL 4.3 core. Scene blocks are
// shader storage blocks; buffer handles are GL buffer names.
type glRendererBackend struct {
	win     window.Window
	program uint32

	vao, vbo, ebo uint32
	indexCount    int32

	buffers map[backend.BufferHandle]int
	// locations caches uniform lookups, including misses (-1).
	locations map[string]int32

	width, height int32

	log *slog.Logger
}

var _ RendererBackend = &glRendererBackend{}

// newGLRendererBackend loads GL on the window's current context and links the raymarch
// program from the given GLSL sources.
func newGLRendererBackend(win window.Window, mode PresentMode, vertexSource, fragmentSource string) (*glRendererBackend, error) {
	if win.ClientAPI() != window.ClientAPIOpenGL {
		return nil, errors.New("gl: window was not created with an OpenGL context")
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: failed to initialize: %w", err)
	}

	b := &glRendererBackend{
		win:       win,
		buffers:   make(map[backend.BufferHandle]int),
		locations: make(map[string]int32),
		log:       common.ComponentLogger("renderer").With(slog.String("backend", BackendTypeGL.String())),
	}
	b.log.Info("context ready", slog.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	program, err := linkProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	b.program = program
	b.initQuad()
	b.SetPresentMode(mode)
	return b, nil
}

// compileShader compiles one GLSL stage and returns the info log as the error on failure.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("gl: failed to compile shader: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// linkProgram compiles both stages and links them. The stage objects are deleted either way.
func linkProgram(vertexSource, fragmentSource string) (uint32, error) {
	vs, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("raymarch.vert: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("raymarch.frag: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("gl: failed to link program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

// initQuad uploads the full-screen quad into a vertex array with one vec2 attribute.
func (b *glRendererBackend) initQuad() {
	vertices := common.Float32sToBytes(quadVertices...)
	indices := common.SliceToBytes(quadIndices)

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices), gl.Ptr(indices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
	b.indexCount = int32(len(quadIndices))
}

func (b *glRendererBackend) checkProgram(p backend.ProgramHandle) error {
	if uint32(p) != b.program || b.program == 0 {
		return fmt.Errorf("gl: program %d: %w", p, backend.ErrUnknownProgram)
	}
	return nil
}

func (b *glRendererBackend) Program() backend.ProgramHandle {
	return backend.ProgramHandle(b.program)
}

func (b *glRendererBackend) CreateBuffer(data []byte, usage backend.BufferUsage) (backend.BufferHandle, error) {
	contents := padStorage(data)
	hint := uint32(gl.STATIC_DRAW)
	if usage == backend.BufferUsageDynamic {
		hint = gl.DYNAMIC_DRAW
	}

	// clear stale errors so the check below only sees this allocation
	for i := 0; i < 8 && gl.GetError() != gl.NO_ERROR; i++ {
	}

	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(contents), gl.Ptr(contents), hint)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &buf)
		if code == gl.OUT_OF_MEMORY {
			return 0, fmt.Errorf("gl: %d bytes: %w", len(contents), backend.ErrBufferAllocation)
		}
		return 0, fmt.Errorf("gl: %w: error 0x%04X", backend.ErrBufferAllocation, code)
	}

	h := backend.BufferHandle(buf)
	b.buffers[h] = len(contents)
	b.log.Debug("buffer created", slog.Uint64("handle", uint64(h)), slog.Int("bytes", len(contents)))
	return h, nil
}

func (b *glRendererBackend) ReleaseBuffer(h backend.BufferHandle) {
	if _, ok := b.buffers[h]; !ok {
		return
	}
	delete(b.buffers, h)
	buf := uint32(h)
	gl.DeleteBuffers(1, &buf)
}

func (b *glRendererBackend) BindBufferToSlot(h backend.BufferHandle, slot uint32) error {
	if _, ok := b.buffers[h]; !ok {
		return fmt.Errorf("gl: buffer %d: %w", h, backend.ErrUnknownBuffer)
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, slot, uint32(h))
	return nil
}

func (b *glRendererBackend) ResolveUniformBlock(p backend.ProgramHandle, name string) (uint32, error) {
	if err := b.checkProgram(p); err != nil {
		return 0, err
	}
	index := gl.GetProgramResourceIndex(b.program, gl.SHADER_STORAGE_BLOCK, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		return 0, fmt.Errorf("gl: block %q: %w", name, backend.ErrUniformBlockNotFound)
	}
	return index, nil
}

func (b *glRendererBackend) BindBlock(p backend.ProgramHandle, blockIndex, slot uint32) error {
	if err := b.checkProgram(p); err != nil {
		return err
	}
	var active int32
	gl.GetProgramInterfaceiv(b.program, gl.SHADER_STORAGE_BLOCK, gl.ACTIVE_RESOURCES, &active)
	if int64(blockIndex) >= int64(active) {
		return fmt.Errorf("gl: block index %d: %w", blockIndex, backend.ErrUniformBlockNotFound)
	}
	gl.ShaderStorageBlockBinding(b.program, blockIndex, slot)
	return nil
}

// uniformLocation returns the cached location of name, or ErrUniformNotFound.
func (b *glRendererBackend) uniformLocation(p backend.ProgramHandle, name string) (int32, error) {
	if err := b.checkProgram(p); err != nil {
		return -1, err
	}
	loc, ok := b.locations[name]
	if !ok {
		loc = gl.GetUniformLocation(b.program, gl.Str(name+"\x00"))
		b.locations[name] = loc
	}
	if loc < 0 {
		return -1, fmt.Errorf("gl: uniform %q: %w", name, backend.ErrUniformNotFound)
	}
	gl.UseProgram(b.program)
	return loc, nil
}

func (b *glRendererBackend) SetUniform1f(p backend.ProgramHandle, name string, x float32) error {
	loc, err := b.uniformLocation(p, name)
	if err != nil {
		return err
	}
	gl.Uniform1f(loc, x)
	return nil
}

func (b *glRendererBackend) SetUniform2f(p backend.ProgramHandle, name string, x, y float32) error {
	loc, err := b.uniformLocation(p, name)
	if err != nil {
		return err
	}
	gl.Uniform2f(loc, x, y)
	return nil
}

func (b *glRendererBackend) SetUniform3f(p backend.ProgramHandle, name string, x, y, z float32) error {
	loc, err := b.uniformLocation(p, name)
	if err != nil {
		return err
	}
	gl.Uniform3f(loc, x, y, z)
	return nil
}

func (b *glRendererBackend) ConfigureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gl: invalid surface size %dx%d", width, height)
	}
	b.width, b.height = int32(width), int32(height)
	gl.Viewport(0, 0, b.width, b.height)
	b.log.Debug("viewport set", slog.Int("width", width), slog.Int("height", height))
	return nil
}

func (b *glRendererBackend) SetPresentMode(mode PresentMode) {
	b.win.SetSwapInterval(mode.swapInterval())
}

func (b *glRendererBackend) DrawFrame(clear [4]float64) error {
	gl.ClearColor(float32(clear[0]), float32(clear[1]), float32(clear[2]), float32(clear[3]))
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(b.program)
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl: draw failed with error 0x%04X", code)
	}
	b.win.SwapBuffers()
	return nil
}

func (b *glRendererBackend) Release() {
	for h := range b.buffers {
		buf := uint32(h)
		gl.DeleteBuffers(1, &buf)
		delete(b.buffers, h)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
	if b.program != 0 {
		gl.DeleteProgram(b.program)
		b.program = 0
	}
}
