package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/config"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/input"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/raymarcher"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
)

// engine implements the Engine interface.
// Everything runs on the thread that calls Run, inside the window's message loop.
type engine struct {
	window     window.Window
	renderer   renderer.Renderer
	raymarcher raymarcher.Raymarcher
	tracker    input.Tracker

	// Pre-creation config collected from builder options
	windowOpts     []window.WindowBuilderOption
	backendType    renderer.RendererBackendType
	rendererOpts   []renderer.RendererBuilderOption
	orbitOpts      []camera.OrbitControllerBuilderOption
	raymarcherOpts []raymarcher.RaymarcherBuilderOption
	logLevel       *slog.Level

	profiler         *profiler.Profiler
	profilingEnabled bool
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	quitKey    common.KeyCode
	title      string
	cursorMode camera.CursorMode

	now       func() time.Time
	sleep     func(time.Duration)
	lastFrame time.Time

	// err is the failure that stopped the loop, returned by Run.
	err      error
	released bool

	log *slog.Logger
}

// Engine drives the viewer: it owns the window, the renderer and the raymarcher and runs
// one raymarcher update and one draw per message-loop iteration.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing into the window.
	Renderer() renderer.Renderer

	// Raymarcher returns the interactive core.
	Raymarcher() raymarcher.Raymarcher

	// EnableProfiler enables frame statistics in the log and the FPS in the window title.
	EnableProfiler()

	// DisableProfiler disables frame statistics and restores the window title.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run processes window messages and frames until the window closes or a frame fails,
	// then releases the raymarcher, the renderer and the window in that order.
	// Run must be called from the thread that created the window and only once.
	//
	// Returns:
	//   - error: the error that stopped the loop, or nil if the window was closed
	Run() error

	// Quit asks the loop to stop after the current frame.
	Quit()
}

// NewEngine creates the window, the renderer and the raymarcher that were not supplied
// through WithWindow, WithRenderer or WithRaymarcher, and wires window input into the
// raymarcher. On error everything created so far is released.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the renderer, orbit controller or raymarcher could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tracker:     input.NewTracker(),
		backendType: renderer.BackendTypeWGPU,
		quitKey:     common.KeyEsc,
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.logLevel != nil {
		common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *e.logLevel})))
	}
	e.log = common.ComponentLogger("engine")
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window == nil {
		if e.backendType == renderer.BackendTypeGL {
			e.windowOpts = append(e.windowOpts, window.WithClientAPI(window.ClientAPIOpenGL))
		}
		e.window = window.NewWindow(e.windowOpts...)
	}
	e.title = e.window.Title()

	if e.renderer == nil {
		r, err := renderer.NewRenderer(e.backendType, e.window, e.rendererOpts...)
		if err != nil {
			e.release()
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		e.renderer = r
	}

	if e.raymarcher == nil {
		orbit, err := camera.NewOrbitController(e.orbitOpts...)
		if err != nil {
			e.release()
			return nil, err
		}
		opts := append([]raymarcher.RaymarcherBuilderOption{raymarcher.WithOrbitController(orbit)}, e.raymarcherOpts...)
		rm, err := raymarcher.NewRaymarcher(e.renderer, e.renderer.Program(), opts...)
		if err != nil {
			e.release()
			return nil, fmt.Errorf("create raymarcher: %w", err)
		}
		e.raymarcher = rm
	}
	e.raymarcher.OnResize(e.window.Width(), e.window.Height())

	e.wireWindow()
	return e, nil
}

// NewEngineFromConfig validates cfg and creates an engine from it.
//
// Parameters:
//   - cfg: the viewer configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if cfg is invalid or NewEngine fails
func NewEngineFromConfig(cfg config.Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewEngine(
		WithLogLevel(cfg.LogLevel()),
		WithWindowOptions(cfg.WindowOptions()...),
		WithBackendType(cfg.BackendType()),
		WithRendererOptions(cfg.RendererOptions()...),
		WithOrbitOptions(cfg.OrbitOptions()...),
		WithRaymarcherOptions(cfg.RaymarcherOptions()...),
		WithProfiling(cfg.Profiler.Enabled),
		WithProfilerInterval(cfg.ProfilerInterval()),
		WithRenderFrameLimit(cfg.Renderer.FrameLimit),
		WithQuitKey(cfg.QuitKey()),
	)
}

func (e *engine) wireWindow() {
	e.window.SetKeyDownCallback(e.tracker.KeyDown)
	e.window.SetKeyUpCallback(e.tracker.KeyUp)
	e.window.SetMouseButtonDownCallback(e.tracker.ButtonDown)
	e.window.SetMouseButtonUpCallback(e.tracker.ButtonUp)
	e.window.SetMouseMoveCallback(e.tracker.PointerMoved)
	e.window.SetResizeCallback(e.resize)
	e.window.SetUpdateCallback(e.frame)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Raymarcher() raymarcher.Raymarcher {
	return e.raymarcher
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	if e.profilingEnabled {
		e.window.SetTitle(e.title)
	}
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) Run() error {
	defer e.release()
	e.lastFrame = e.now()
	e.log.Info("running", slog.String("backend", e.renderer.BackendType().String()))
	e.window.ProcessMessages()
	return e.err
}

func (e *engine) Quit() {
	e.window.RequestClose()
}

func (e *engine) resize(width, height int) {
	if err := e.renderer.Resize(width, height); err != nil {
		e.stop(fmt.Errorf("resize to %dx%d: %w", width, height, err))
		return
	}
	e.raymarcher.OnResize(width, height)
}

// frame runs one iteration: input snapshot, raymarcher update, cursor mode, draw, profiler.
func (e *engine) frame() {
	if e.err != nil {
		return
	}
	start := e.now()
	dt := float32(start.Sub(e.lastFrame).Seconds())
	e.lastFrame = start

	in := e.tracker.Snapshot()
	if in.Held(e.quitKey) {
		e.Quit()
		return
	}

	mode, err := e.raymarcher.PerFrameUpdate(dt, in)
	if err != nil {
		e.stop(fmt.Errorf("frame update: %w", err))
		return
	}
	if mode != e.cursorMode {
		e.window.SetCursorCaptured(mode == camera.CursorModeCaptured)
		e.cursorMode = mode
	}

	if err := e.renderer.DrawFrame(); err != nil {
		e.stop(fmt.Errorf("draw frame: %w", err))
		return
	}

	if e.profilingEnabled {
		if fps, ok := e.profiler.Tick(); ok {
			e.window.SetTitle(fmt.Sprintf("%s | %.0f FPS", e.title, fps))
		}
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

// stop records the first failure and asks the message loop to end.
func (e *engine) stop(err error) {
	if e.err == nil {
		e.err = err
		e.log.Error("stopping", slog.Any("error", err))
	}
	e.window.RequestClose()
}

// release tears down in reverse creation order. Safe to call more than once.
func (e *engine) release() {
	if e.released {
		return
	}
	e.released = true
	if e.raymarcher != nil {
		e.raymarcher.Release()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.log.Warn("window close failed", slog.Any("error", err))
		}
	}
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
