package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerBuilderOption is a functional option for configuring an OrbitController.
type OrbitControllerBuilderOption func(c *orbitControllerImpl)

// WithOrbitDistance sets the fixed camera-to-target distance D.
//
// Parameters:
//   - distance: the orbit distance (must be positive)
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithOrbitDistance(distance float32) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.distance = distance
	}
}

// WithVerticalOffset sets the fixed camera height above the target H.
//
// Parameters:
//   - offset: the vertical offset (|offset| must be less than the orbit distance)
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithVerticalOffset(offset float32) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.verticalOffset = offset
	}
}

// WithSpeed sets the movement speed in units per second, and the speed used while the fast modifier is held.
//
// Parameters:
//   - speed: the normal movement speed
//   - fastSpeed: the movement speed while the fast key is held
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithSpeed(speed, fastSpeed float32) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.speed = speed
		c.fastSpeed = fastSpeed
	}
}

// WithMouseSensitivity sets the world units the camera travels per pixel of horizontal pointer motion.
//
// Parameters:
//   - sensitivity: the pointer sensitivity
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithMouseSensitivity(sensitivity float32) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.sensitivity = sensitivity
	}
}

// WithBindings replaces the key and button bindings.
//
// Parameters:
//   - bindings: the bindings to use
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithBindings(bindings OrbitBindings) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.bindings = bindings
	}
}

// WithFallbackDirection sets the horizontal direction from target to camera used when the
// camera and target coincide. The vertical component is ignored.
//
// Parameters:
//   - dir: the fallback direction
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithFallbackDirection(dir mgl32.Vec3) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.fallback = dir
	}
}
