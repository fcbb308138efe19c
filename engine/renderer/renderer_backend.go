package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeGL selects the OpenGL 4.3 core backend. The window must be created with
	// window.ClientAPIOpenGL.
	BackendTypeGL
)

// String returns the lowercase backend name used in configuration files.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeGL:
		return "gl"
	default:
		return fmt.Sprintf("RendererBackendType(%d)", int(t))
	}
}

// ParseBackendType maps "wgpu" or "gl" to a RendererBackendType.
func ParseBackendType(name string) (RendererBackendType, bool) {
	switch name {
	case "wgpu", "webgpu":
		return BackendTypeWGPU, true
	case "gl", "opengl":
		return BackendTypeGL, true
	default:
		return 0, false
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps "vsync" or "uncapped" to a PresentMode.
func ParsePresentMode(name string) (PresentMode, bool) {
	switch name {
	case "vsync":
		return PresentModeVSync, true
	case "uncapped", "immediate":
		return PresentModeUncapped, true
	default:
		return 0, false
	}
}

// swapInterval is the GL swap interval matching a present mode.
func (m PresentMode) swapInterval() int {
	if m == PresentModeVSync {
		return 1
	}
	return 0
}

// minStorageBufferSize is the size of the storage buffer a backend allocates for an empty
// upload. It covers one element of the widest block the raymarch program declares, so the
// binding's minimum size is met. Zeroed contents read as a degenerate primitive that the
// shader skips.
const minStorageBufferSize = 32

// padStorage returns data unchanged unless it is empty, in which case it returns
// minStorageBufferSize zero bytes. Non-empty uploads keep their exact length.
func padStorage(data []byte) []byte {
	if len(data) > 0 {
		return data
	}
	return make([]byte, minStorageBufferSize)
}

// quadVertices are the corners of a clip-space quad covering the whole viewport.
var quadVertices = []float32{
	-1, -1,
	1, -1,
	1, 1,
	-1, 1,
}

// quadIndices draw quadVertices as two triangles.
var quadIndices = []uint32{
	0, 1, 2,
	0, 2, 3,
}

// RendererBackend is the per-API half of the Renderer. It owns the device objects, the
// raymarch program and the full-screen quad, and implements backend.Backend for that program.
type RendererBackend interface {
	backend.Backend

	// Program returns the handle of the loaded raymarch program.
	Program() backend.ProgramHandle

	// ConfigureSurface resizes the presentation surface.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	//
	// Returns:
	//   - error: error if the surface cannot be configured
	ConfigureSurface(width, height int) error

	// SetPresentMode changes the present mode, taking effect at the next ConfigureSurface
	// for WebGPU and immediately for OpenGL.
	SetPresentMode(mode PresentMode)

	// DrawFrame clears the target and draws the quad with the raymarch program.
	//
	// Parameters:
	//   - clear: the clear color as RGBA in [0, 1]
	//
	// Returns:
	//   - error: error if the frame could not be acquired or submitted
	DrawFrame(clear [4]float64) error

	// Release frees every device object the backend owns, including live buffers.
	Release()
}
