package input

import (
	"maps"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Tracker accumulates raw window input events between frames and turns them into
// per-frame Snapshots. Release edges and pointer movement are consumed by Snapshot,
// held keys and buttons persist until their up event arrives.
type Tracker interface {
	// KeyDown records a key press. Repeated presses of a held key are ignored.
	//
	// Parameters:
	//   - key: the key that went down
	KeyDown(key common.KeyCode)

	// KeyUp records a key release and queues a release edge for the next snapshot.
	// A release of a key that was not held queues nothing.
	//
	// Parameters:
	//   - key: the key that went up
	KeyUp(key common.KeyCode)

	// ButtonDown records a mouse button press.
	//
	// Parameters:
	//   - button: the button that went down
	ButtonDown(button common.MouseButton)

	// ButtonUp records a mouse button release.
	//
	// Parameters:
	//   - button: the button that went up
	ButtonUp(button common.MouseButton)

	// PointerMoved records an absolute pointer position. The first position after
	// construction or Reset only primes the tracker and produces no delta.
	//
	// Parameters:
	//   - x: pointer x position in pixels
	//   - y: pointer y position in pixels
	PointerMoved(x, y float32)

	// Snapshot returns the input state for the current frame and clears the
	// per-frame release edges and pointer delta.
	//
	// Returns:
	//   - Snapshot: the frame's input state
	Snapshot() Snapshot

	// Reset clears all held state, pending edges and the pointer history.
	Reset()
}

type tracker struct {
	held     map[common.KeyCode]struct{}
	released map[common.KeyCode]struct{}
	buttons  map[common.MouseButton]struct{}

	lastPointer mgl32.Vec2
	hasPointer  bool
	delta       mgl32.Vec2
}

var _ Tracker = &tracker{}

// NewTracker creates an empty Tracker.
//
// Returns:
//   - Tracker: the new tracker
func NewTracker() Tracker {
	t := &tracker{}
	t.Reset()
	return t
}

func (t *tracker) KeyDown(key common.KeyCode) {
	t.held[key] = struct{}{}
}

func (t *tracker) KeyUp(key common.KeyCode) {
	if _, ok := t.held[key]; !ok {
		return
	}
	delete(t.held, key)
	t.released[key] = struct{}{}
}

func (t *tracker) ButtonDown(button common.MouseButton) {
	t.buttons[button] = struct{}{}
}

func (t *tracker) ButtonUp(button common.MouseButton) {
	delete(t.buttons, button)
}

func (t *tracker) PointerMoved(x, y float32) {
	p := mgl32.Vec2{x, y}
	if t.hasPointer {
		t.delta = t.delta.Add(p.Sub(t.lastPointer))
	}
	t.lastPointer = p
	t.hasPointer = true
}

func (t *tracker) Snapshot() Snapshot {
	s := Snapshot{
		held:     maps.Clone(t.held),
		released: t.released,
		buttons:  maps.Clone(t.buttons),
		delta:    t.delta,
	}
	t.released = make(map[common.KeyCode]struct{})
	t.delta = mgl32.Vec2{}
	return s
}

func (t *tracker) Reset() {
	t.held = make(map[common.KeyCode]struct{})
	t.released = make(map[common.KeyCode]struct{})
	t.buttons = make(map[common.MouseButton]struct{})
	t.hasPointer = false
	t.delta = mgl32.Vec2{}
}
