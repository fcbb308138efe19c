package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow wraps a GLFW window handle.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	switch w.clientAPI {
	case ClientAPIOpenGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %v", err)
	}

	if w.clientAPI == ClientAPIOpenGL {
		win.MakeContextCurrent()
		glfw.SwapInterval(w.swapInterval)
	}

	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press, glfw.Repeat:
			if w.onKeyDown != nil {
				w.onKeyDown(common.KeyCode(key))
			}
		case glfw.Release:
			if w.onKeyUp != nil {
				w.onKeyUp(common.KeyCode(key))
			}
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		b := common.MouseButton(button)
		switch action {
		case glfw.Press:
			if w.onButtonDown != nil {
				w.onButtonDown(b)
			}
		case glfw.Release:
			if w.onButtonUp != nil {
				w.onButtonUp(b)
			}
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(float32(xpos), float32(ypos))
		}
	})

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	return nil
}

// sizeLimit maps an unset (zero) limit to glfw.DontCare.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func platformWindow(w *engineWindow) (*glfwWindow, bool) {
	if w.internalWindow == nil {
		return nil, false
	}
	gw, ok := w.internalWindow.(*glfwWindow)
	return gw, ok
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := platformWindow(w)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformSwapBuffers(w *engineWindow) {
	if gw, ok := platformWindow(w); ok {
		gw.window.SwapBuffers()
	}
}

func platformSetSwapInterval(w *engineWindow, interval int) {
	if _, ok := platformWindow(w); ok {
		glfw.SwapInterval(interval)
	}
}

func platformSetTitle(w *engineWindow, title string) {
	if gw, ok := platformWindow(w); ok {
		gw.window.SetTitle(title)
	}
}

func platformSetCursorCaptured(w *engineWindow, captured bool) {
	gw, ok := platformWindow(w)
	if !ok {
		return
	}
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	if gw.window.GetInputMode(glfw.CursorMode) != mode {
		gw.window.SetInputMode(glfw.CursorMode, mode)
	}
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := platformWindow(w)
	if !ok {
		return false
	}
	return gw.running && !gw.window.ShouldClose()
}

func platformRequestClose(w *engineWindow) {
	if gw, ok := platformWindow(w); ok {
		gw.window.SetShouldClose(true)
	}
}

func platformCloseWindow(w *engineWindow) error {
	gw, ok := platformWindow(w)
	if !ok {
		return fmt.Errorf("window is not initialized")
	}
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
