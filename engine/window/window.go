package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ClientAPI selects which graphics API the window prepares a context for.
type ClientAPI int

const (
	// ClientAPINone creates a window without a GL context, for WebGPU surfaces.
	ClientAPINone ClientAPI = iota

	// ClientAPIOpenGL creates a window with a current OpenGL 4.3 core context.
	ClientAPIOpenGL
)

// Window defines the interface for a platform window.
// All methods must be called from the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function called once per message-loop iteration.
	//
	// Parameters:
	//   - callback: the per-iteration function
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: receives the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the function called on key press and key repeat.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyDownCallback(callback func(key common.KeyCode))

	// SetKeyUpCallback sets the function called on key release.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyUpCallback(callback func(key common.KeyCode))

	// SetMouseButtonDownCallback sets the function called when a mouse button is pressed.
	//
	// Parameters:
	//   - callback: receives the button
	SetMouseButtonDownCallback(callback func(button common.MouseButton))

	// SetMouseButtonUpCallback sets the function called when a mouse button is released.
	//
	// Parameters:
	//   - callback: receives the button
	SetMouseButtonUpCallback(callback func(button common.MouseButton))

	// SetMouseMoveCallback sets the function called when the cursor moves.
	//
	// Parameters:
	//   - callback: receives the cursor position in screen coordinates
	SetMouseMoveCallback(callback func(x, y float32))

	// SurfaceDescriptor returns the platform surface descriptor used to create a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ClientAPI returns the graphics API the window was created for.
	ClientAPI() ClientAPI

	// SwapBuffers presents the back buffer of a GL window. It is a no-op for ClientAPINone.
	SwapBuffers()

	// SetSwapInterval changes the GL swap interval (1 waits for vertical blank, 0 does not).
	// It is a no-op for ClientAPINone.
	SetSwapInterval(interval int)

	// Title returns the current window title.
	Title() string

	// SetTitle replaces the window title.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SetCursorCaptured hides and locks the cursor when captured is true and restores it otherwise.
	//
	// Parameters:
	//   - captured: whether the cursor should be captured
	SetCursorCaptured(captured bool)

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration. The window
	// and its context stay valid until Close.
	RequestClose()

	// Close destroys the window and terminates the platform layer.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// ProcessMessages runs the message loop until the window closes, calling the update
	// callback after each poll.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int
	width     int
	height    int

	clientAPI    ClientAPI
	swapInterval int

	// internalWindow holds the platform-specific window object.
	internalWindow any

	onUpdate     func()
	onResize     func(width, height int)
	onKeyDown    func(key common.KeyCode)
	onKeyUp      func(key common.KeyCode)
	onButtonDown func(button common.MouseButton)
	onButtonUp   func(button common.MouseButton)
	onMouseMove  func(x, y float32)
}

var _ Window = &engineWindow{}

// NewWindow creates a platform window with the given options applied.
// The window defaults to 1280x720 with a minimum of 400x225.
// Panics if the platform layer cannot create the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:        "oxy raymarch",
		maxWidth:     0,
		maxHeight:    0,
		minWidth:     400,
		minHeight:    225,
		width:        1280,
		height:       720,
		swapInterval: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key common.KeyCode)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key common.KeyCode)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonDownCallback(callback func(button common.MouseButton)) {
	w.onButtonDown = callback
}

func (w *engineWindow) SetMouseButtonUpCallback(callback func(button common.MouseButton)) {
	w.onButtonUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) ClientAPI() ClientAPI {
	return w.clientAPI
}

func (w *engineWindow) SwapBuffers() {
	if w.clientAPI == ClientAPIOpenGL {
		platformSwapBuffers(w)
	}
}

func (w *engineWindow) SetSwapInterval(interval int) {
	w.swapInterval = interval
	if w.clientAPI == ClientAPIOpenGL {
		platformSetSwapInterval(w, interval)
	}
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	platformSetCursorCaptured(w, captured)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
