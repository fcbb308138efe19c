package raymarcher

import (
	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
)

// RaymarcherBuilderOption is a functional option for configuring a Raymarcher.
type RaymarcherBuilderOption func(r *raymarcher)

// WithOrbitController sets the controller used to step the camera each frame.
//
// Parameters:
//   - c: the orbit controller
//
// Returns:
//   - RaymarcherBuilderOption: option function to apply
func WithOrbitController(c camera.OrbitController) RaymarcherBuilderOption {
	return func(r *raymarcher) {
		r.orbit = c
	}
}

// WithInitialState sets the starting camera/target pair. The camera is re-anchored to the
// orbit before the first frame.
//
// Parameters:
//   - s: the initial state
//
// Returns:
//   - RaymarcherBuilderOption: option function to apply
func WithInitialState(s camera.OrbitState) RaymarcherBuilderOption {
	return func(r *raymarcher) {
		r.state = s
	}
}

// WithViewport sets the viewport uploaded until the first OnResize.
//
// Parameters:
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//
// Returns:
//   - RaymarcherBuilderOption: option function to apply
func WithViewport(width, height int) RaymarcherBuilderOption {
	return func(r *raymarcher) {
		r.OnResize(width, height)
	}
}

// WithSceneOptions forwards options to the scene created by NewRaymarcher.
//
// Parameters:
//   - options: scene builder options
//
// Returns:
//   - RaymarcherBuilderOption: option function to apply
func WithSceneOptions(options ...scene.SceneBuilderOption) RaymarcherBuilderOption {
	return func(r *raymarcher) {
		r.sceneOpts = append(r.sceneOpts, options...)
	}
}

// WithPlacementKeys sets the keys whose release places a sphere or a cube at the target.
//
// Parameters:
//   - sphere: the sphere placement key
//   - cube: the cube placement key
//
// Returns:
//   - RaymarcherBuilderOption: option function to apply
func WithPlacementKeys(sphere, cube common.KeyCode) RaymarcherBuilderOption {
	return func(r *raymarcher) {
		r.sphereKey = sphere
		r.cubeKey = cube
	}
}
