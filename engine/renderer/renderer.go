package renderer

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
)

//go:embed assets/raymarch.vert.wgsl
var defaultVertexWGSL string

//go:embed assets/raymarch.frag.wgsl
var defaultFragmentWGSL string

//go:embed assets/raymarch.vert.glsl
var defaultVertexGLSL string

//go:embed assets/raymarch.frag.glsl
var defaultFragmentGLSL string

// renderer is the implementation of the Renderer interface.
type renderer struct {
	// RendererBackend carries the backend.Backend methods through to callers.
	RendererBackend

	backendType RendererBackendType

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           [4]float64
	vertexSource         string
	fragmentSource       string
	vertexPath           string
	fragmentPath         string

	// minimized is set while the surface has a zero dimension; frames are skipped.
	minimized bool

	log *slog.Logger
}

// Renderer owns the graphics device, the raymarch program and the full-screen quad, and
// exposes them to the raymarch core as a backend.Backend for Program().
type Renderer interface {
	backend.Backend

	// Program returns the handle of the loaded raymarch program.
	Program() backend.ProgramHandle

	// BackendType returns the graphics API in use.
	BackendType() RendererBackendType

	// Resize configures the surface for a new framebuffer size. A zero dimension
	// suspends drawing until the next non-zero resize.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: error if the surface could not be configured
	Resize(width, height int) error

	// DrawFrame draws and presents one frame with the uniforms and blocks currently set.
	//
	// Returns:
	//   - error: error if the frame could not be drawn
	DrawFrame() error

	// SetPresentMode changes how frames are presented.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Release frees every graphics object, including buffers created through CreateBuffer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer for win. The shading program comes from the embedded
// defaults for the backend unless overridden with WithShaderSources or WithShaderPaths.
//
// Parameters:
//   - backendType: the graphics API to use
//   - win: the window to render into; BackendTypeGL needs a ClientAPIOpenGL window
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer, with its surface configured to the window size
//   - error: error if the device, program or surface could not be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
		presentMode: PresentModeVSync,
		clearColor:  [4]float64{0.1, 0.1, 0.1, 1.0},
		log:         common.ComponentLogger("renderer"),
	}
	for _, opt := range options {
		opt(r)
	}

	vertexSource, fragmentSource, err := r.shaderSources()
	if err != nil {
		return nil, err
	}

	switch backendType {
	case BackendTypeWGPU:
		b, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.presentMode, vertexSource, fragmentSource)
		if err != nil {
			return nil, err
		}
		r.RendererBackend = b
	case BackendTypeGL:
		b, err := newGLRendererBackend(win, r.presentMode, vertexSource, fragmentSource)
		if err != nil {
			return nil, err
		}
		r.RendererBackend = b
	default:
		return nil, fmt.Errorf("renderer: unsupported backend type %s", backendType)
	}

	if err := r.Resize(win.Width(), win.Height()); err != nil {
		r.Release()
		return nil, err
	}
	r.log.Info("renderer ready", slog.String("backend", backendType.String()))
	return r, nil
}

// shaderSources resolves the vertex and fragment sources: explicit sources first, then
// paths, then the embedded defaults for the backend type.
func (r *renderer) shaderSources() (string, string, error) {
	vertexDefault, fragmentDefault := defaultVertexWGSL, defaultFragmentWGSL
	if r.backendType == BackendTypeGL {
		vertexDefault, fragmentDefault = defaultVertexGLSL, defaultFragmentGLSL
	}

	vertex, err := resolveSource(r.vertexSource, r.vertexPath, vertexDefault)
	if err != nil {
		return "", "", err
	}
	fragment, err := resolveSource(r.fragmentSource, r.fragmentPath, fragmentDefault)
	if err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}

func resolveSource(source, path, fallback string) (string, error) {
	if source != "" {
		return source, nil
	}
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("renderer: failed to read shader: %w", err)
	}
	return string(data), nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		r.minimized = true
		return nil
	}
	r.minimized = false
	return r.ConfigureSurface(width, height)
}

func (r *renderer) DrawFrame() error {
	if r.minimized {
		return nil
	}
	return r.RendererBackend.DrawFrame(r.clearColor)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.presentMode = mode
	r.RendererBackend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	if r.RendererBackend != nil {
		r.RendererBackend.Release()
		r.RendererBackend = nil
	}
}
