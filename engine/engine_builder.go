package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/raymarcher"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics and the FPS title.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerInterval sets how often the profiler reports.
//
// Parameters:
//   - d: the measurement window (non-positive values keep the 1 second default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(profiler.WithUpdateInterval(d))
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. The engine still closes it when Run returns.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions sets the options used when the engine creates its own window.
//
// Parameters:
//   - options: options passed to window.NewWindow
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOpts = append(e.windowOpts, options...)
	}
}

// WithBackendType selects the graphics API of the renderer the engine creates.
// BackendTypeGL also requests a GL context from the engine-created window.
//
// Parameters:
//   - backendType: the renderer backend (default BackendTypeWGPU)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackendType(backendType renderer.RendererBackendType) EngineBuilderOption {
	return func(e *engine) {
		e.backendType = backendType
	}
}

// WithRenderer sets a pre-built renderer. It must draw into the engine's window.
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions sets the options used when the engine creates its own renderer.
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOpts = append(e.rendererOpts, options...)
	}
}

// WithOrbitOptions configures the orbit controller the engine creates for its raymarcher.
// Ignored when WithRaymarcher is used.
func WithOrbitOptions(options ...camera.OrbitControllerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.orbitOpts = append(e.orbitOpts, options...)
	}
}

// WithRaymarcher sets a pre-built raymarcher. It must use the engine's renderer as its backend.
func WithRaymarcher(r raymarcher.Raymarcher) EngineBuilderOption {
	return func(e *engine) {
		e.raymarcher = r
	}
}

// WithRaymarcherOptions sets the options used when the engine creates its own raymarcher.
func WithRaymarcherOptions(options ...raymarcher.RaymarcherBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.raymarcherOpts = append(e.raymarcherOpts, options...)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithQuitKey sets the key that closes the window while held. Defaults to Escape.
func WithQuitKey(key common.KeyCode) EngineBuilderOption {
	return func(e *engine) {
		e.quitKey = key
	}
}

// WithLogLevel installs a text logger on stderr at the given level as the process logger.
// Without it the engine leaves the current common logger in place.
func WithLogLevel(level slog.Level) EngineBuilderOption {
	return func(e *engine) {
		e.logLevel = &level
	}
}
