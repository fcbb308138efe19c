package scene

import "github.com/go-gl/mathgl/mgl32"

// Sphere is a sphere primitive placed in the scene.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// GPU converts the sphere to its storage-buffer layout.
func (s Sphere) GPU() GPUSphere {
	return GPUSphere{Center: s.Center, Radius: s.Radius}
}

// Cube is an axis-aligned box primitive placed in the scene.
type Cube struct {
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
}

// GPU converts the cube to its storage-buffer layout.
func (c Cube) GPU() GPUCube {
	return GPUCube{Center: c.Center, HalfExtents: c.HalfExtents}
}

// DefaultSpheres returns the spheres a new scene starts with.
func DefaultSpheres() []Sphere {
	return []Sphere{
		{Center: mgl32.Vec3{4, -2, 8}, Radius: 1.5},
		{Center: mgl32.Vec3{10, -2, 5}, Radius: 1},
	}
}

// DefaultCubes returns the cubes a new scene starts with.
func DefaultCubes() []Cube {
	return []Cube{
		{Center: mgl32.Vec3{4, -2, 8}, HalfExtents: mgl32.Vec3{1.5, 1.5, 1.5}},
		{Center: mgl32.Vec3{10, -2, 5}, HalfExtents: mgl32.Vec3{1, 1, 1}},
	}
}

func marshalSpheres(spheres []Sphere) []byte {
	out := make([]byte, 0, len(spheres)*SphereStride)
	for _, s := range spheres {
		g := s.GPU()
		out = append(out, g.Marshal()...)
	}
	return out
}

func marshalCubes(cubes []Cube) []byte {
	out := make([]byte, 0, len(cubes)*CubeStride)
	for _, c := range cubes {
		g := c.GPU()
		out = append(out, g.Marshal()...)
	}
	return out
}
