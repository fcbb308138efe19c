package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWindow runs up to maxFrames loop iterations, firing the scripted events for an
// iteration before its update callback.
type scriptedWindow struct {
	window.Window

	title         string
	width, height int
	maxFrames     int
	script        map[int]func(w *scriptedWindow)

	closeRequested bool
	closed         bool
	titles         []string
	captured       []bool

	// rendererReleasedAtClose records whether the renderer was gone when Close ran.
	renderer                *fakeRenderer
	rendererReleasedAtClose bool

	onUpdate     func()
	onResize     func(width, height int)
	onKeyDown    func(key common.KeyCode)
	onKeyUp      func(key common.KeyCode)
	onButtonDown func(button common.MouseButton)
	onButtonUp   func(button common.MouseButton)
	onMouseMove  func(x, y float32)
}

func newScriptedWindow(maxFrames int) *scriptedWindow {
	return &scriptedWindow{
		title:     "viewer",
		width:     1280,
		height:    720,
		maxFrames: maxFrames,
		script:    make(map[int]func(w *scriptedWindow)),
	}
}

func (w *scriptedWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *scriptedWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *scriptedWindow) SetKeyDownCallback(cb func(key common.KeyCode)) { w.onKeyDown = cb }
func (w *scriptedWindow) SetKeyUpCallback(cb func(key common.KeyCode)) { w.onKeyUp = cb }
func (w *scriptedWindow) SetMouseMoveCallback(cb func(x, y float32)) { w.onMouseMove = cb }
func (w *scriptedWindow) SetMouseButtonUpCallback(cb func(common.MouseButton)) { w.onButtonUp = cb }
func (w *scriptedWindow) SetMouseButtonDownCallback(cb func(common.MouseButton)) {
	w.onButtonDown = cb
}

func (w *scriptedWindow) Title() string { return w.title }
func (w *scriptedWindow) Width() int { return w.width }
func (w *scriptedWindow) Height() int { return w.height }

func (w *scriptedWindow) SetTitle(title string) {
	w.title = title
	w.titles = append(w.titles, title)
}

func (w *scriptedWindow) SetCursorCaptured(captured bool) {
	w.captured = append(w.captured, captured)
}

func (w *scriptedWindow) RequestClose() { w.closeRequested = true }

func (w *scriptedWindow) Close() error {
	w.closed = true
	if w.renderer != nil {
		w.rendererReleasedAtClose = w.renderer.released
	}
	return nil
}

func (w *scriptedWindow) ProcessMessages() {
	for i := 0; i < w.maxFrames && !w.closeRequested; i++ {
		if ev, ok := w.script[i]; ok {
			ev(w)
		}
		w.onUpdate()
	}
}

// fakeRenderer is a renderer.Renderer over a recording backend.
type fakeRenderer struct {
	*backendtest.Recorder

	draws    int
	drawErr  error
	resizes  [][2]int
	released bool
	// liveBuffersAtRelease is the number of buffers still alive when Release ran.
	liveBuffersAtRelease int
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{Recorder: backendtest.NewRecorder()}
}

func (r *fakeRenderer) Program() backend.ProgramHandle { return 1 }
func (r *fakeRenderer) BackendType() renderer.RendererBackendType { return renderer.BackendTypeWGPU }
func (r *fakeRenderer) SetPresentMode(renderer.PresentMode) {}

func (r *fakeRenderer) Resize(width, height int) error {
	r.resizes = append(r.resizes, [2]int{width, height})
	return nil
}

func (r *fakeRenderer) DrawFrame() error {
	r.draws++
	return r.drawErr
}

func (r *fakeRenderer) Release() {
	r.released = true
	r.liveBuffersAtRelease = len(r.Buffers)
}

func fixedClock() func() time.Time {
	t := time.Unix(1000, 0)
	return func() time.Time { return t }
}

func newTestEngine(t *testing.T, w *scriptedWindow, r *fakeRenderer, options ...EngineBuilderOption) Engine {
	t.Helper()
	w.renderer = r
	opts := append([]EngineBuilderOption{
		WithWindow(w),
		WithRenderer(r),
		func(e *engine) { e.now = fixedClock() },
	}, options...)
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestRunPlacesOnReleaseAndQuitsOnEscape(t *testing.T) {
	w := newScriptedWindow(10)
	w.script[1] = func(w *scriptedWindow) { w.onKeyDown(common.KeyE) }
	w.script[2] = func(w *scriptedWindow) { w.onKeyUp(common.KeyE) }
	w.script[3] = func(w *scriptedWindow) { w.onKeyDown(common.KeyEsc) }
	r := newFakeRenderer()
	e := newTestEngine(t, w, r)

	require.NoError(t, e.Run())

	assert.Equal(t, 3, r.draws, "the quit frame is not drawn")
	spheres := e.Raymarcher().Scene().Spheres()
	assert.Len(t, spheres, len(scene.DefaultSpheres())+1)
	assert.Equal(t, e.Raymarcher().State().Target, spheres[len(spheres)-1].Center)

	assert.True(t, w.closed)
	assert.True(t, r.released)
	assert.Zero(t, r.liveBuffersAtRelease, "scene buffers are released before the renderer")
	assert.True(t, w.rendererReleasedAtClose, "renderer is released before the window closes")
}

func TestRunQuitsOnlyOnConfiguredKey(t *testing.T) {
	w := newScriptedWindow(10)
	w.script[1] = func(w *scriptedWindow) { w.onKeyDown(common.KeyEsc) }
	w.script[2] = func(w *scriptedWindow) { w.onKeyUp(common.KeyEsc) }
	w.script[5] = func(w *scriptedWindow) { w.onKeyDown(common.KeyX) }
	r := newFakeRenderer()
	e := newTestEngine(t, w, r, WithQuitKey(common.KeyX))

	require.NoError(t, e.Run())
	assert.Equal(t, 5, r.draws, "escape is an ordinary key once quit is rebound")
	assert.True(t, w.closed)
}

func TestRunStopsOnDrawError(t *testing.T) {
	w := newScriptedWindow(10)
	r := newFakeRenderer()
	r.drawErr = errors.New("surface lost")
	e := newTestEngine(t, w, r)

	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, r.drawErr)
	assert.Equal(t, 1, r.draws)
	assert.True(t, w.closed)
	assert.True(t, r.released)
}

func TestRunStopsOnPlacementFailure(t *testing.T) {
	w := newScriptedWindow(10)
	w.script[0] = func(w *scriptedWindow) {
		w.onKeyDown(common.KeyQ)
		w.onKeyUp(common.KeyQ)
	}
	r := newFakeRenderer()
	e := newTestEngine(t, w, r)
	r.FailCreateAfter = 0

	err := e.Run()
	assert.ErrorIs(t, err, backend.ErrBufferAllocation)
	assert.Zero(t, r.draws)
}

func TestResizeReachesRendererAndRaymarcher(t *testing.T) {
	w := newScriptedWindow(2)
	w.script[0] = func(w *scriptedWindow) { w.onResize(640, 480) }
	r := newFakeRenderer()
	e := newTestEngine(t, w, r)
	assert.Equal(t, mgl32.Vec2{1280, 720}, e.Raymarcher().Viewport())

	require.NoError(t, e.Run())

	assert.Equal(t, [][2]int{{640, 480}}, r.resizes)
	assert.Equal(t, mgl32.Vec2{640, 480}, e.Raymarcher().Viewport())
	assert.Equal(t, []float32{640, 480}, r.Uniforms["uViewport"])
}

func TestCursorFollowsRotateButton(t *testing.T) {
	w := newScriptedWindow(4)
	w.script[0] = func(w *scriptedWindow) { w.onButtonDown(common.MouseButtonLeft) }
	w.script[2] = func(w *scriptedWindow) { w.onButtonUp(common.MouseButtonLeft) }
	e := newTestEngine(t, w, newFakeRenderer())

	require.NoError(t, e.Run())
	assert.Equal(t, []bool{true, false}, w.captured)
}

func TestProfilerWritesFPSToTitle(t *testing.T) {
	clock := time.Unix(0, 0)
	tick := func() time.Time {
		clock = clock.Add(100 * time.Millisecond)
		return clock
	}
	w := newScriptedWindow(2)
	e := newTestEngine(t, w, newFakeRenderer(),
		WithProfiling(true),
		func(e *engine) {
			e.profiler = profiler.NewProfiler(profiler.WithClock(tick), profiler.WithUpdateInterval(200*time.Millisecond))
		},
	)

	require.NoError(t, e.Run())
	require.Len(t, w.titles, 1)
	assert.Equal(t, "viewer | 10 FPS", w.titles[0])

	e.DisableProfiler()
	assert.Equal(t, "viewer", w.title)
}

func TestFrameLimitSleepsRemainder(t *testing.T) {
	var slept []time.Duration
	w := newScriptedWindow(2)
	e := newTestEngine(t, w, newFakeRenderer(),
		WithRenderFrameLimit(50),
		func(e *engine) { e.sleep = func(d time.Duration) { slept = append(slept, d) } },
	)

	require.NoError(t, e.Run())
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 20 * time.Millisecond}, slept)
}

func TestNewEngineReleasesOnRaymarcherFailure(t *testing.T) {
	w := newScriptedWindow(1)
	r := newFakeRenderer()
	r.FailCreateAfter = 0

	_, err := NewEngine(WithWindow(w), WithRenderer(r))
	assert.ErrorIs(t, err, backend.ErrBufferAllocation)
	assert.True(t, r.released)
	assert.True(t, w.closed)
}

func TestFrameDuration(t *testing.T) {
	assert.Zero(t, frameDuration(0))
	assert.Zero(t, frameDuration(-30))
	assert.Equal(t, 20*time.Millisecond, frameDuration(50))
}
