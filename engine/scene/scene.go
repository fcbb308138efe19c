package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SphereStride is the byte size of one sphere in the sphere buffer.
	SphereStride = 16
	// CubeStride is the byte size of one cube in the cube buffer.
	CubeStride = 32

	// DefaultSphereBlock is the storage block the sphere buffer feeds.
	DefaultSphereBlock = "SpheresBlock"
	// DefaultCubeBlock is the storage block the cube buffer feeds.
	DefaultCubeBlock = "CubesBlock"

	// DefaultSphereSlot is the binding slot of the sphere buffer.
	DefaultSphereSlot uint32 = 0
	// DefaultCubeSlot is the binding slot of the cube buffer.
	DefaultCubeSlot uint32 = 1
)

// Scene owns the placed spheres and cubes and mirrors each sequence into a GPU buffer.
// Sequences only grow. Every append re-serializes the whole affected sequence into a fresh
// buffer, binds it, and releases the buffer it replaced.
// Not safe for concurrent use; all calls belong on the graphics thread.
type Scene interface {
	// Spheres returns a copy of the sphere sequence in insertion order.
	//
	// Returns:
	//   - []Sphere: the placed spheres
	Spheres() []Sphere

	// Cubes returns a copy of the cube sequence in insertion order.
	//
	// Returns:
	//   - []Cube: the placed cubes
	Cubes() []Cube

	// AddSphere appends a sphere with the default radius at center and uploads the sequence.
	// On failure the sequence is left as it was.
	//
	// Parameters:
	//   - center: the sphere's world-space center
	//
	// Returns:
	//   - error: an error wrapping backend.ErrBufferAllocation if the new buffer could not be created
	AddSphere(center mgl32.Vec3) error

	// AddCube appends a cube with the default half extents at center and uploads the sequence.
	// On failure the sequence is left as it was.
	//
	// Parameters:
	//   - center: the cube's world-space center
	//
	// Returns:
	//   - error: an error wrapping backend.ErrBufferAllocation if the new buffer could not be created
	AddCube(center mgl32.Vec3) error

	// SphereBuffer returns the buffer currently holding the sphere sequence, or zero if none was uploaded.
	SphereBuffer() backend.BufferHandle

	// CubeBuffer returns the buffer currently holding the cube sequence, or zero if none was uploaded.
	CubeBuffer() backend.BufferHandle

	// Release frees both buffers. The scene must not be used afterwards.
	Release()
}

// binding describes one primitive sequence's GPU destination.
type binding struct {
	kind   string
	block  string
	slot   uint32
	buffer backend.BufferHandle
}

type scene struct {
	backend backend.Backend
	program backend.ProgramHandle
	logger  *slog.Logger

	defaultRadius      float32
	defaultHalfExtents mgl32.Vec3

	spheres []Sphere
	cubes   []Cube

	sphereBinding binding
	cubeBinding   binding
}

var _ Scene = &scene{}

// NewScene creates a Scene seeded with DefaultSpheres and DefaultCubes, then applies the
// options and uploads both initial sequences through the same path later appends use.
// An empty initial sequence is not uploaded until its first append.
//
// Parameters:
//   - b: the backend buffers are created on
//   - program: the program whose blocks are bound to the buffers
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the scene
//   - error: error if an initial upload failed
func NewScene(b backend.Backend, program backend.ProgramHandle, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		backend:            b,
		program:            program,
		logger:             common.ComponentLogger("scene"),
		defaultRadius:      1,
		defaultHalfExtents: mgl32.Vec3{1, 1, 1},
		spheres:            DefaultSpheres(),
		cubes:              DefaultCubes(),
		sphereBinding:      binding{kind: "sphere", block: DefaultSphereBlock, slot: DefaultSphereSlot},
		cubeBinding:        binding{kind: "cube", block: DefaultCubeBlock, slot: DefaultCubeSlot},
	}
	for _, opt := range options {
		opt(s)
	}

	if len(s.spheres) > 0 {
		if err := s.upload(&s.sphereBinding, marshalSpheres(s.spheres)); err != nil {
			return nil, fmt.Errorf("initial sphere upload: %w", err)
		}
	}
	if len(s.cubes) > 0 {
		if err := s.upload(&s.cubeBinding, marshalCubes(s.cubes)); err != nil {
			s.Release()
			return nil, fmt.Errorf("initial cube upload: %w", err)
		}
	}
	return s, nil
}

func (s *scene) Spheres() []Sphere {
	return slices.Clone(s.spheres)
}

func (s *scene) Cubes() []Cube {
	return slices.Clone(s.cubes)
}

func (s *scene) AddSphere(center mgl32.Vec3) error {
	s.spheres = append(s.spheres, Sphere{Center: center, Radius: s.defaultRadius})
	if err := s.upload(&s.sphereBinding, marshalSpheres(s.spheres)); err != nil {
		s.spheres = s.spheres[:len(s.spheres)-1]
		return err
	}
	s.logger.Debug("sphere placed", "center", center, "count", len(s.spheres))
	return nil
}

func (s *scene) AddCube(center mgl32.Vec3) error {
	s.cubes = append(s.cubes, Cube{Center: center, HalfExtents: s.defaultHalfExtents})
	if err := s.upload(&s.cubeBinding, marshalCubes(s.cubes)); err != nil {
		s.cubes = s.cubes[:len(s.cubes)-1]
		return err
	}
	s.logger.Debug("cube placed", "center", center, "count", len(s.cubes))
	return nil
}

func (s *scene) SphereBuffer() backend.BufferHandle {
	return s.sphereBinding.buffer
}

func (s *scene) CubeBuffer() backend.BufferHandle {
	return s.cubeBinding.buffer
}

func (s *scene) Release() {
	for _, b := range []*binding{&s.sphereBinding, &s.cubeBinding} {
		if b.buffer != 0 {
			s.backend.ReleaseBuffer(b.buffer)
			b.buffer = 0
		}
	}
}

// upload replaces the binding's buffer with a new one holding data. The old buffer is
// released only after the new one is bound, so a failure leaves the previous GPU state intact.
func (s *scene) upload(b *binding, data []byte) error {
	h, err := s.backend.CreateBuffer(data, backend.BufferUsageDynamic)
	if err != nil {
		return fmt.Errorf("create %s buffer (%d bytes): %w", b.kind, len(data), err)
	}
	if err := s.backend.BindBufferToSlot(h, b.slot); err != nil {
		s.backend.ReleaseBuffer(h)
		return fmt.Errorf("bind %s buffer to slot %d: %w", b.kind, b.slot, err)
	}

	idx, err := s.backend.ResolveUniformBlock(s.program, b.block)
	switch {
	case errors.Is(err, backend.ErrUniformBlockNotFound):
		s.logger.Warn("storage block missing from program", "block", b.block, "slot", b.slot)
	case err != nil:
		s.logger.Warn("storage block lookup failed", "block", b.block, "error", err)
	default:
		if err := s.backend.BindBlock(s.program, idx, b.slot); err != nil {
			s.logger.Warn("storage block binding failed", "block", b.block, "slot", b.slot, "error", err)
		}
	}

	if b.buffer != 0 {
		s.backend.ReleaseBuffer(b.buffer)
	}
	b.buffer = h
	return nil
}
