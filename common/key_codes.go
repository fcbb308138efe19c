package common

import (
	"fmt"
	"strings"
)

// KeyCode is a virtual key code for cross-platform input handling.
// Values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type KeyCode uint32

const (
	KeyW         KeyCode = 87  // W key (ASCII)
	KeyA         KeyCode = 65  // A key (ASCII)
	KeyS         KeyCode = 83  // S key (ASCII)
	KeyD         KeyCode = 68  // D key (ASCII)
	KeyQ         KeyCode = 81  // Q key (ASCII)
	KeyE         KeyCode = 69  // E key (ASCII)
	KeyR         KeyCode = 82  // R key (ASCII)
	KeyF         KeyCode = 70  // F key (ASCII)
	KeyC         KeyCode = 67  // C key (ASCII)
	KeyX         KeyCode = 88  // X key (ASCII)
	KeyZ         KeyCode = 90  // Z key (ASCII)
	KeySpace     KeyCode = 32  // Spacebar (ASCII)
	KeyBackspace KeyCode = 259 // Backspace key (GLFW)
	KeyEsc       KeyCode = 256 // Escape key (GLFW)

	Key0 KeyCode = 48 // 0 key (ASCII)
	Key1 KeyCode = 49 // 1 key (ASCII)
	Key2 KeyCode = 50 // 2 key (ASCII)
	Key3 KeyCode = 51 // 3 key (ASCII)
	Key4 KeyCode = 52 // 4 key (ASCII)
	Key5 KeyCode = 53 // 5 key (ASCII)
	Key6 KeyCode = 54 // 6 key (ASCII)
	Key7 KeyCode = 55 // 7 key (ASCII)
	Key8 KeyCode = 56 // 8 key (ASCII)
	Key9 KeyCode = 57 // 9 key (ASCII)
)

// Additional non-printable keys
const (
	KeyLeftShift    KeyCode = 340 // Left Shift (GLFW)
	KeyLeftControl  KeyCode = 341 // Left Control (GLFW)
	KeyLeftAlt      KeyCode = 342 // Left Alt (GLFW)
	KeyRightShift   KeyCode = 344 // Right Shift (GLFW)
	KeyRightControl KeyCode = 345 // Right Control (GLFW)
	KeyRight        KeyCode = 262 // Right arrow (GLFW)
	KeyLeft         KeyCode = 263 // Left arrow (GLFW)
	KeyDown         KeyCode = 264 // Down arrow (GLFW)
	KeyUp           KeyCode = 265 // Up arrow (GLFW)
)

// MouseButton identifies a pointer button.
// Values match GLFW mouse button indices.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

var keyNames = map[string]KeyCode{
	"w": KeyW, "a": KeyA, "s": KeyS, "d": KeyD,
	"q": KeyQ, "e": KeyE, "r": KeyR, "f": KeyF,
	"c": KeyC, "x": KeyX, "z": KeyZ,
	"0": Key0, "1": Key1, "2": Key2, "3": Key3, "4": Key4,
	"5": Key5, "6": Key6, "7": Key7, "8": Key8, "9": Key9,
	"space":        KeySpace,
	"backspace":    KeyBackspace,
	"escape":       KeyEsc,
	"esc":          KeyEsc,
	"leftshift":    KeyLeftShift,
	"leftcontrol":  KeyLeftControl,
	"leftctrl":     KeyLeftControl,
	"leftalt":      KeyLeftAlt,
	"rightshift":   KeyRightShift,
	"rightcontrol": KeyRightControl,
	"rightctrl":    KeyRightControl,
	"right":        KeyRight,
	"left":         KeyLeft,
	"down":         KeyDown,
	"up":           KeyUp,
}

var mouseButtonNames = map[string]MouseButton{
	"left":   MouseButtonLeft,
	"right":  MouseButtonRight,
	"middle": MouseButtonMiddle,
}

// ParseKey resolves a human-readable key name to its KeyCode.
// Matching ignores case, spaces, dashes and underscores, so "Left Control",
// "left_control" and "LeftControl" all resolve to KeyLeftControl.
//
// Parameters:
//   - name: the key name to resolve
//
// Returns:
//   - KeyCode: the resolved key code
//   - error: an error if the name does not match a known key
func ParseKey(name string) (KeyCode, error) {
	if k, ok := keyNames[normalizeName(name)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// ParseMouseButton resolves a mouse button name ("left", "right", "middle") to its MouseButton.
//
// Parameters:
//   - name: the button name to resolve
//
// Returns:
//   - MouseButton: the resolved button
//   - error: an error if the name does not match a known button
func ParseMouseButton(name string) (MouseButton, error) {
	if b, ok := mouseButtonNames[normalizeName(name)]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("unknown mouse button %q", name)
}

func normalizeName(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}
