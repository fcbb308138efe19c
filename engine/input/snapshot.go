package input

import (
	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is an immutable view of the input state for a single frame.
// It carries the held-key set, the keys released since the previous frame,
// the held mouse buttons and the accumulated pointer delta.
type Snapshot struct {
	held     map[common.KeyCode]struct{}
	released map[common.KeyCode]struct{}
	buttons  map[common.MouseButton]struct{}
	delta    mgl32.Vec2
}

// NewSnapshot creates a Snapshot from the given options. With no options the snapshot
// reports no keys, no buttons and a zero pointer delta.
//
// Parameters:
//   - options: functional options describing the input state
//
// Returns:
//   - Snapshot: the assembled snapshot
func NewSnapshot(options ...SnapshotBuilderOption) Snapshot {
	s := Snapshot{
		held:     make(map[common.KeyCode]struct{}),
		released: make(map[common.KeyCode]struct{}),
		buttons:  make(map[common.MouseButton]struct{}),
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// Held reports whether the key is currently held down.
//
// Parameters:
//   - key: the key to check
//
// Returns:
//   - bool: true if the key is held
func (s Snapshot) Held(key common.KeyCode) bool {
	_, ok := s.held[key]
	return ok
}

// Released reports whether the key went up since the previous snapshot.
// A key that was pressed and released within one frame is reported once.
//
// Parameters:
//   - key: the key to check
//
// Returns:
//   - bool: true if the key was released this frame
func (s Snapshot) Released(key common.KeyCode) bool {
	_, ok := s.released[key]
	return ok
}

// ButtonHeld reports whether the mouse button is currently held down.
//
// Parameters:
//   - button: the mouse button to check
//
// Returns:
//   - bool: true if the button is held
func (s Snapshot) ButtonHeld(button common.MouseButton) bool {
	_, ok := s.buttons[button]
	return ok
}

// PointerDelta returns the pointer movement accumulated since the previous snapshot, in pixels.
//
// Returns:
//   - mgl32.Vec2: the (dx, dy) pointer delta
func (s Snapshot) PointerDelta() mgl32.Vec2 {
	return s.delta
}
