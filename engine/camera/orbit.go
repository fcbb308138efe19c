package camera

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidOrbit is returned when the orbit distance and vertical offset cannot be satisfied together.
var ErrInvalidOrbit = errors.New("invalid orbit configuration")

// WorldUp is the world-space up axis used for vertical movement and the right vector.
var WorldUp = mgl32.Vec3{0, 1, 0}

// OrbitState is an immutable camera/target pair produced by each controller step.
type OrbitState struct {
	// Camera is the world-space eye position.
	Camera mgl32.Vec3
	// Target is the world-space object anchor the camera orbits.
	Target mgl32.Vec3
}

// CursorMode tells the window how the pointer should behave after a step.
type CursorMode int

const (
	// CursorModeFree leaves the pointer visible and unconstrained.
	CursorModeFree CursorMode = iota

	// CursorModeCaptured hides and locks the pointer so horizontal motion drives the orbit.
	CursorModeCaptured
)

// String returns a readable name for the cursor mode.
func (m CursorMode) String() string {
	switch m {
	case CursorModeCaptured:
		return "captured"
	default:
		return "free"
	}
}

// OrbitBindings maps controller actions to keys and the rotate button.
type OrbitBindings struct {
	Forward common.KeyCode
	Back    common.KeyCode
	Left    common.KeyCode
	Right   common.KeyCode
	Up      common.KeyCode
	Down    common.KeyCode
	Fast    common.KeyCode
	Rotate  common.MouseButton
}

// DefaultOrbitBindings returns WASD planar movement, Space/LeftControl vertical movement,
// LeftShift for the fast speed and the left mouse button for rotation.
//
// Returns:
//   - OrbitBindings: the default bindings
func DefaultOrbitBindings() OrbitBindings {
	return OrbitBindings{
		Forward: common.KeyW,
		Back:    common.KeyS,
		Left:    common.KeyA,
		Right:   common.KeyD,
		Up:      common.KeySpace,
		Down:    common.KeyLeftControl,
		Fast:    common.KeyLeftShift,
		Rotate:  common.MouseButtonLeft,
	}
}
