package input

import (
	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/go-gl/mathgl/mgl32"
)

// SnapshotBuilderOption is a functional option for assembling a Snapshot.
type SnapshotBuilderOption func(s *Snapshot)

// WithHeldKeys marks the given keys as held.
//
// Parameters:
//   - keys: the keys held down this frame
//
// Returns:
//   - SnapshotBuilderOption: option function to apply
func WithHeldKeys(keys ...common.KeyCode) SnapshotBuilderOption {
	return func(s *Snapshot) {
		for _, k := range keys {
			s.held[k] = struct{}{}
		}
	}
}

// WithReleasedKeys marks the given keys as released this frame.
//
// Parameters:
//   - keys: the keys that went up since the previous frame
//
// Returns:
//   - SnapshotBuilderOption: option function to apply
func WithReleasedKeys(keys ...common.KeyCode) SnapshotBuilderOption {
	return func(s *Snapshot) {
		for _, k := range keys {
			s.released[k] = struct{}{}
		}
	}
}

// WithButtons marks the given mouse buttons as held.
//
// Parameters:
//   - buttons: the mouse buttons held down this frame
//
// Returns:
//   - SnapshotBuilderOption: option function to apply
func WithButtons(buttons ...common.MouseButton) SnapshotBuilderOption {
	return func(s *Snapshot) {
		for _, b := range buttons {
			s.buttons[b] = struct{}{}
		}
	}
}

// WithPointerDelta sets the pointer movement for the frame.
//
// Parameters:
//   - dx: horizontal movement in pixels
//   - dy: vertical movement in pixels
//
// Returns:
//   - SnapshotBuilderOption: option function to apply
func WithPointerDelta(dx, dy float32) SnapshotBuilderOption {
	return func(s *Snapshot) {
		s.delta = mgl32.Vec2{dx, dy}
	}
}
