package raymarcher

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/input"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Names of the per-frame uniforms the raymarch program reads.
const (
	UniformViewport = "uViewport"
	UniformTime     = "uTime"
	UniformCamPos   = "uCamPos"
	UniformObjPos   = "uObjPos"
)

// Raymarcher is the interactive core of the viewer. Each frame it steps the orbit
// controller, places primitives on released placement keys, and writes the frame uniforms.
type Raymarcher interface {
	// OnResize records the new viewport size. It is uploaded with the next frame's uniforms.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	OnResize(width, height int)

	// PerFrameUpdate advances one frame.
	//
	// Order of operations:
	//  1. accumulate dt into the elapsed time
	//  2. step the orbit controller with the snapshot
	//  3. place a sphere and/or cube at the target for each placement key released this frame
	//  4. write uViewport, uTime, uCamPos and uObjPos
	//
	// Missing uniforms are logged once per name and otherwise ignored.
	//
	// Parameters:
	//   - dt: the frame delta time in seconds
	//   - in: the frame's input snapshot
	//
	// Returns:
	//   - camera.CursorMode: how the window should treat the pointer
	//   - error: error if a placement could not allocate its buffer
	PerFrameUpdate(dt float32, in input.Snapshot) (camera.CursorMode, error)

	// PlaceSphereAt appends a sphere with the scene's default radius.
	//
	// Parameters:
	//   - p: the sphere center
	//
	// Returns:
	//   - error: an error wrapping backend.ErrBufferAllocation on failure
	PlaceSphereAt(p mgl32.Vec3) error

	// PlaceCubeAt appends a cube with the scene's default half extents.
	//
	// Parameters:
	//   - p: the cube center
	//
	// Returns:
	//   - error: an error wrapping backend.ErrBufferAllocation on failure
	PlaceCubeAt(p mgl32.Vec3) error

	// State returns the current camera/target pair.
	State() camera.OrbitState

	// Viewport returns the size last passed to OnResize.
	Viewport() mgl32.Vec2

	// ElapsedTime returns the sum of every dt passed to PerFrameUpdate.
	ElapsedTime() float32

	// Scene returns the primitive scene.
	Scene() scene.Scene

	// Release frees the scene's GPU buffers.
	Release()
}

type raymarcher struct {
	backend backend.Backend
	program backend.ProgramHandle
	logger  *slog.Logger

	orbit     camera.OrbitController
	state     camera.OrbitState
	scene     scene.Scene
	sceneOpts []scene.SceneBuilderOption

	viewport mgl32.Vec2
	elapsed  float32

	sphereKey common.KeyCode
	cubeKey   common.KeyCode

	warnedUniforms map[string]struct{}
}

var _ Raymarcher = &raymarcher{}

// NewRaymarcher creates a Raymarcher with the camera at (0, 0, -7) looking at a target
// at (1, 1, 1), re-anchored to the orbit. E places a sphere and Q places a cube.
//
// Parameters:
//   - b: the backend uniforms and buffers go through
//   - program: the raymarch program
//   - options: functional options to configure the raymarcher
//
// Returns:
//   - Raymarcher: the raymarcher
//   - error: error if the orbit controller is invalid or the initial scene upload failed
func NewRaymarcher(b backend.Backend, program backend.ProgramHandle, options ...RaymarcherBuilderOption) (Raymarcher, error) {
	r := &raymarcher{
		backend: b,
		program: program,
		logger:  common.ComponentLogger("raymarcher"),
		state: camera.OrbitState{
			Camera: mgl32.Vec3{0, 0, -7},
			Target: mgl32.Vec3{1, 1, 1},
		},
		sphereKey:      common.KeyE,
		cubeKey:        common.KeyQ,
		warnedUniforms: make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(r)
	}

	if r.orbit == nil {
		orbit, err := camera.NewOrbitController()
		if err != nil {
			return nil, err
		}
		r.orbit = orbit
	}
	r.state = r.orbit.Anchor(r.state)

	sc, err := scene.NewScene(b, program, r.sceneOpts...)
	if err != nil {
		return nil, fmt.Errorf("create scene: %w", err)
	}
	r.scene = sc

	return r, nil
}

func (r *raymarcher) OnResize(width, height int) {
	r.viewport = mgl32.Vec2{float32(width), float32(height)}
}

func (r *raymarcher) PerFrameUpdate(dt float32, in input.Snapshot) (camera.CursorMode, error) {
	r.elapsed += dt

	var mode camera.CursorMode
	r.state, mode = r.orbit.Step(r.state, dt, in)

	if in.Released(r.sphereKey) {
		if err := r.PlaceSphereAt(r.state.Target); err != nil {
			return mode, err
		}
	}
	if in.Released(r.cubeKey) {
		if err := r.PlaceCubeAt(r.state.Target); err != nil {
			return mode, err
		}
	}

	return mode, r.uploadUniforms()
}

func (r *raymarcher) PlaceSphereAt(p mgl32.Vec3) error {
	if err := r.scene.AddSphere(p); err != nil {
		return fmt.Errorf("place sphere: %w", err)
	}
	return nil
}

func (r *raymarcher) PlaceCubeAt(p mgl32.Vec3) error {
	if err := r.scene.AddCube(p); err != nil {
		return fmt.Errorf("place cube: %w", err)
	}
	return nil
}

func (r *raymarcher) State() camera.OrbitState {
	return r.state
}

func (r *raymarcher) Viewport() mgl32.Vec2 {
	return r.viewport
}

func (r *raymarcher) ElapsedTime() float32 {
	return r.elapsed
}

func (r *raymarcher) Scene() scene.Scene {
	return r.scene
}

func (r *raymarcher) Release() {
	if r.scene != nil {
		r.scene.Release()
	}
}

func (r *raymarcher) uploadUniforms() error {
	cam, obj := r.state.Camera, r.state.Target
	writes := []struct {
		name string
		err  error
	}{
		{UniformViewport, r.backend.SetUniform2f(r.program, UniformViewport, r.viewport.X(), r.viewport.Y())},
		{UniformTime, r.backend.SetUniform1f(r.program, UniformTime, r.elapsed)},
		{UniformCamPos, r.backend.SetUniform3f(r.program, UniformCamPos, cam.X(), cam.Y(), cam.Z())},
		{UniformObjPos, r.backend.SetUniform3f(r.program, UniformObjPos, obj.X(), obj.Y(), obj.Z())},
	}

	for _, w := range writes {
		switch {
		case w.err == nil:
		case errors.Is(w.err, backend.ErrUniformNotFound):
			if _, seen := r.warnedUniforms[w.name]; !seen {
				r.warnedUniforms[w.name] = struct{}{}
				r.logger.Warn("uniform missing from program", "uniform", w.name)
			}
		default:
			return fmt.Errorf("set %s: %w", w.name, w.err)
		}
	}
	return nil
}
