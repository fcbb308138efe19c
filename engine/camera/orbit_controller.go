package camera

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/input"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerateEpsilon is the length below which a direction is treated as zero.
const degenerateEpsilon = 1e-6

// orbitControllerImpl is the single implementation of OrbitController.
// It holds only configuration; all camera/target state flows through Step.
type orbitControllerImpl struct {
	// distance is the fixed camera-to-target distance D.
	distance float32
	// verticalOffset is the fixed camera height above the target H.
	verticalOffset float32

	speed       float32
	fastSpeed   float32
	sensitivity float32

	// fallback is the unit horizontal direction from target to camera used when
	// the two coincide on the horizontal plane.
	fallback mgl32.Vec3

	bindings OrbitBindings
}

// OrbitController converts per-frame input into a new camera/target pair while keeping
// the camera at a fixed distance and fixed height relative to the target.
type OrbitController interface {
	// Step advances the orbit by one frame. It is a pure function of its arguments:
	// the previous state is never modified.
	//
	// Order of operations:
	//  1. rotate the camera around the target with horizontal pointer motion while the rotate button is held
	//  2. raise or lower the target with the vertical keys
	//  3. move the target forward/back and strafe target and camera left/right, keeping target.y fixed
	//  4. re-anchor the camera at the orbit distance and height
	//
	// Parameters:
	//   - prev: the state produced by the previous step
	//   - dt: the frame delta time in seconds (negative or NaN values propagate unchecked)
	//   - in: the frame's input snapshot
	//
	// Returns:
	//   - OrbitState: the new camera/target pair
	//   - CursorMode: CursorModeCaptured while the rotate button is held, CursorModeFree otherwise
	Step(prev OrbitState, dt float32, in input.Snapshot) (OrbitState, CursorMode)

	// Anchor places the camera on the horizontal ray from the target towards the current camera
	// so that the camera sits exactly Distance away and VerticalOffset above the target.
	// If the camera and target coincide horizontally the configured fallback direction is used.
	//
	// Parameters:
	//   - s: the state to re-anchor
	//
	// Returns:
	//   - OrbitState: the state with the camera re-anchored and the target unchanged
	Anchor(s OrbitState) OrbitState

	// Distance returns the fixed camera-to-target distance.
	//
	// Returns:
	//   - float32: the orbit distance
	Distance() float32

	// VerticalOffset returns the fixed camera height above the target.
	//
	// Returns:
	//   - float32: the vertical offset
	VerticalOffset() float32

	// Bindings returns the key and button bindings used by Step.
	//
	// Returns:
	//   - OrbitBindings: the active bindings
	Bindings() OrbitBindings
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates an OrbitController with defaults of distance 6, vertical offset 2,
// speed 5 (20 with the fast modifier) and a mouse sensitivity of 0.01, then applies the options.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the configured controller
//   - error: ErrInvalidOrbit if the distance, offset, speeds or fallback direction are unusable
func NewOrbitController(options ...OrbitControllerBuilderOption) (OrbitController, error) {
	c := &orbitControllerImpl{
		distance:       6,
		verticalOffset: 2,
		speed:          5,
		fastSpeed:      20,
		sensitivity:    0.01,
		fallback:       mgl32.Vec3{0, 0, -1},
		bindings:       DefaultOrbitBindings(),
	}
	for _, opt := range options {
		opt(c)
	}

	if !(c.distance > 0) || math32.IsInf(c.distance, 0) {
		return nil, fmt.Errorf("%w: distance must be positive and finite, got %v", ErrInvalidOrbit, c.distance)
	}
	if !(math32.Abs(c.verticalOffset) < c.distance) {
		return nil, fmt.Errorf("%w: |vertical offset| %v must be less than distance %v", ErrInvalidOrbit, c.verticalOffset, c.distance)
	}
	if !(c.speed >= 0) || !(c.fastSpeed >= 0) {
		return nil, fmt.Errorf("%w: speeds must be non-negative, got %v and %v", ErrInvalidOrbit, c.speed, c.fastSpeed)
	}
	c.fallback[1] = 0
	l := c.fallback.Len()
	if !(l > degenerateEpsilon) {
		return nil, fmt.Errorf("%w: fallback direction must have a horizontal component", ErrInvalidOrbit)
	}
	c.fallback = c.fallback.Mul(1 / l)

	return c, nil
}

func (c *orbitControllerImpl) Step(prev OrbitState, dt float32, in input.Snapshot) (OrbitState, CursorMode) {
	s := prev
	mode := CursorModeFree

	if in.ButtonHeld(c.bindings.Rotate) {
		mode = CursorModeCaptured
		if dx := in.PointerDelta().X(); dx != 0 {
			_, right := c.axes(s)
			s.Camera = s.Camera.Sub(right.Mul(dx * c.sensitivity))
		}
	}

	speed := c.speed
	if in.Held(c.bindings.Fast) {
		speed = c.fastSpeed
	}
	step := speed * dt

	if in.Held(c.bindings.Up) {
		s.Target[1] += step
	} else if in.Held(c.bindings.Down) {
		s.Target[1] -= step
	}

	startY := s.Target.Y()
	forward, right := c.axes(s)

	if in.Held(c.bindings.Forward) {
		s.Target = s.Target.Sub(forward.Mul(step))
	} else if in.Held(c.bindings.Back) {
		s.Target = s.Target.Add(forward.Mul(step))
	}

	if in.Held(c.bindings.Right) {
		delta := right.Mul(step)
		s.Target = s.Target.Add(delta)
		s.Camera = s.Camera.Add(delta)
	} else if in.Held(c.bindings.Left) {
		delta := right.Mul(step)
		s.Target = s.Target.Sub(delta)
		s.Camera = s.Camera.Sub(delta)
	}

	s.Target[1] = startY

	return c.Anchor(s), mode
}

func (c *orbitControllerImpl) Anchor(s OrbitState) OrbitState {
	horizontal := s.Camera.Sub(s.Target)
	horizontal[1] = 0

	dir := c.fallback
	if l := horizontal.Len(); l > degenerateEpsilon {
		dir = horizontal.Mul(1 / l)
	}

	radius := math32.Sqrt(c.distance*c.distance - c.verticalOffset*c.verticalOffset)
	camera := s.Target.Add(dir.Mul(radius))
	camera[1] = s.Target.Y() + c.verticalOffset

	return OrbitState{Camera: camera, Target: s.Target}
}

func (c *orbitControllerImpl) Distance() float32 {
	return c.distance
}

func (c *orbitControllerImpl) VerticalOffset() float32 {
	return c.verticalOffset
}

func (c *orbitControllerImpl) Bindings() OrbitBindings {
	return c.bindings
}

// axes returns the unit forward vector (target towards camera) and the unit right vector
// cross(forward, WorldUp). Degenerate cases fall back to the configured direction.
func (c *orbitControllerImpl) axes(s OrbitState) (forward, right mgl32.Vec3) {
	forward = s.Camera.Sub(s.Target)
	if l := forward.Len(); l > degenerateEpsilon {
		forward = forward.Mul(1 / l)
	} else {
		forward = c.fallback
	}

	right = forward.Cross(WorldUp)
	if l := right.Len(); l > degenerateEpsilon {
		right = right.Mul(1 / l)
	} else {
		// camera straight above or below the target
		right = c.fallback.Cross(WorldUp)
	}
	return forward, right
}
