package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithDefaultRadius sets the radius given to spheres placed with AddSphere.
//
// Parameters:
//   - radius: the sphere radius
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaultRadius(radius float32) SceneBuilderOption {
	return func(s *scene) {
		s.defaultRadius = radius
	}
}

// WithDefaultHalfExtents sets the half extents given to cubes placed with AddCube.
//
// Parameters:
//   - halfExtents: the cube half size along each axis
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaultHalfExtents(halfExtents mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.defaultHalfExtents = halfExtents
	}
}

// WithInitialSpheres replaces the spheres the scene starts with. Passing none starts empty.
//
// Parameters:
//   - spheres: the initial spheres
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInitialSpheres(spheres ...Sphere) SceneBuilderOption {
	return func(s *scene) {
		s.spheres = slices.Clone(spheres)
	}
}

// WithInitialCubes replaces the cubes the scene starts with. Passing none starts empty.
//
// Parameters:
//   - cubes: the initial cubes
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInitialCubes(cubes ...Cube) SceneBuilderOption {
	return func(s *scene) {
		s.cubes = slices.Clone(cubes)
	}
}

// WithSphereBinding sets the storage block name and binding slot for the sphere buffer.
//
// Parameters:
//   - block: the block name declared in the shader
//   - slot: the binding slot
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSphereBinding(block string, slot uint32) SceneBuilderOption {
	return func(s *scene) {
		s.sphereBinding.block = block
		s.sphereBinding.slot = slot
	}
}

// WithCubeBinding sets the storage block name and binding slot for the cube buffer.
//
// Parameters:
//   - block: the block name declared in the shader
//   - slot: the binding slot
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCubeBinding(block string, slot uint32) SceneBuilderOption {
	return func(s *scene) {
		s.cubeBinding.block = block
		s.cubeBinding.slot = slot
	}
}
