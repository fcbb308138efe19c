package raymarcher

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/input"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRaymarcher(t *testing.T, rec *backendtest.Recorder, options ...RaymarcherBuilderOption) Raymarcher {
	t.Helper()
	r, err := NewRaymarcher(rec, 1, options...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func TestNewRaymarcherAnchorsInitialState(t *testing.T) {
	orbit, err := camera.NewOrbitController(camera.WithOrbitDistance(6), camera.WithVerticalOffset(2))
	require.NoError(t, err)
	r := newRaymarcher(t, backendtest.NewRecorder(), WithOrbitController(orbit))

	s := r.State()
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, s.Target)
	assert.InDelta(t, 6, s.Camera.Sub(s.Target).Len(), 1e-4)
	assert.InDelta(t, 3, s.Camera.Y(), 1e-5)
}

func TestPerFrameUpdateStrafeScenario(t *testing.T) {
	orbit, err := camera.NewOrbitController(camera.WithOrbitDistance(6), camera.WithVerticalOffset(0))
	require.NoError(t, err)
	rec := backendtest.NewRecorder()
	r := newRaymarcher(t, rec,
		WithOrbitController(orbit),
		WithInitialState(camera.OrbitState{Camera: mgl32.Vec3{1, 1, -5}, Target: mgl32.Vec3{1, 1, 1}}),
	)

	_, err = r.PerFrameUpdate(1, input.NewSnapshot(input.WithHeldKeys(common.KeyD)))
	require.NoError(t, err)

	s := r.State()
	assert.InDelta(t, 6, s.Target.X(), 1e-5)
	assert.InDelta(t, 1, s.Target.Y(), 1e-6)
	assert.InDelta(t, 6, s.Camera.Sub(s.Target).Len(), 1e-4)
	assert.Equal(t, []float32{s.Target.X(), s.Target.Y(), s.Target.Z()}, rec.Uniforms[UniformObjPos])
	assert.Equal(t, []float32{s.Camera.X(), s.Camera.Y(), s.Camera.Z()}, rec.Uniforms[UniformCamPos])
}

func TestPerFrameUpdateWritesAllUniformsEveryFrame(t *testing.T) {
	rec := backendtest.NewRecorder()
	r := newRaymarcher(t, rec, WithViewport(800, 450))

	for range 3 {
		_, err := r.PerFrameUpdate(0.25, input.NewSnapshot())
		require.NoError(t, err)
	}

	assert.Equal(t, 12, rec.Count("SetUniform"))
	assert.Equal(t, []float32{800, 450}, rec.Uniforms[UniformViewport])
	assert.Equal(t, []float32{0.75}, rec.Uniforms[UniformTime])
	assert.InDelta(t, 0.75, r.ElapsedTime(), 1e-6)
}

func TestHoldingPlacementKeyPlacesOnce(t *testing.T) {
	rec := backendtest.NewRecorder()
	tr := input.NewTracker()
	r := newRaymarcher(t, rec)
	k := len(r.Scene().Spheres())

	tr.KeyDown(common.KeyE)
	for range 30 {
		tr.KeyDown(common.KeyE)
		_, err := r.PerFrameUpdate(0.016, tr.Snapshot())
		require.NoError(t, err)
	}
	assert.Len(t, r.Scene().Spheres(), k, "nothing is placed while the key is held")

	tr.KeyUp(common.KeyE)
	_, err := r.PerFrameUpdate(0.016, tr.Snapshot())
	require.NoError(t, err)
	_, err = r.PerFrameUpdate(0.016, tr.Snapshot())
	require.NoError(t, err)

	assert.Len(t, r.Scene().Spheres(), k+1)
}

func TestReleasePlacesSphereAtTarget(t *testing.T) {
	rec := backendtest.NewRecorder()
	target := mgl32.Vec3{2, 0, 3}
	r := newRaymarcher(t, rec,
		WithInitialState(camera.OrbitState{Camera: mgl32.Vec3{2, 0, -3}, Target: target}),
		WithSceneOptions(scene.WithDefaultRadius(0.5)),
	)
	k := len(r.Scene().Spheres())

	_, err := r.PerFrameUpdate(0.016, input.NewSnapshot(input.WithReleasedKeys(common.KeyE)))
	require.NoError(t, err)

	spheres := r.Scene().Spheres()
	require.Len(t, spheres, k+1)
	assert.Equal(t, scene.Sphere{Center: target, Radius: 0.5}, spheres[k])
	assert.Len(t, rec.SlotContents(scene.DefaultSphereSlot), (k+1)*scene.SphereStride)
}

func TestReleasePlacesCubeWithCustomKey(t *testing.T) {
	rec := backendtest.NewRecorder()
	r := newRaymarcher(t, rec, WithPlacementKeys(common.Key1, common.Key2))
	k := len(r.Scene().Cubes())

	_, err := r.PerFrameUpdate(0.016, input.NewSnapshot(input.WithReleasedKeys(common.KeyQ)))
	require.NoError(t, err)
	assert.Len(t, r.Scene().Cubes(), k)

	_, err = r.PerFrameUpdate(0.016, input.NewSnapshot(input.WithReleasedKeys(common.Key2)))
	require.NoError(t, err)
	cubes := r.Scene().Cubes()
	require.Len(t, cubes, k+1)
	assert.Equal(t, r.State().Target, cubes[k].Center)
}

func TestOnResizeIsIdempotent(t *testing.T) {
	rec := backendtest.NewRecorder()
	r := newRaymarcher(t, rec)

	r.OnResize(1280, 720)
	first := r.Viewport()
	r.OnResize(1280, 720)
	assert.Equal(t, first, r.Viewport())

	_, err := r.PerFrameUpdate(0, input.NewSnapshot())
	require.NoError(t, err)
	assert.Equal(t, []float32{1280, 720}, rec.Uniforms[UniformViewport])
}

func TestMissingUniformWarnsOnce(t *testing.T) {
	var logs bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	rec := backendtest.NewRecorder()
	rec.KnownUniforms = []string{UniformViewport, UniformCamPos, UniformObjPos}
	r := newRaymarcher(t, rec)

	for range 5 {
		_, err := r.PerFrameUpdate(0.1, input.NewSnapshot())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, strings.Count(logs.String(), "uniform="+UniformTime))
	assert.Contains(t, rec.Uniforms, UniformCamPos, "remaining uniforms are still written")
}

func TestPlacementAllocationFailureIsReturned(t *testing.T) {
	rec := backendtest.NewRecorder()
	r := newRaymarcher(t, rec)
	k := len(r.Scene().Spheres())

	rec.FailCreateAfter = 0
	_, err := r.PerFrameUpdate(0.016, input.NewSnapshot(input.WithReleasedKeys(common.KeyE)))

	assert.ErrorIs(t, err, backend.ErrBufferAllocation)
	assert.Len(t, r.Scene().Spheres(), k)
}

func TestCursorModeFollowsRotateButton(t *testing.T) {
	r := newRaymarcher(t, backendtest.NewRecorder())

	mode, err := r.PerFrameUpdate(0.016, input.NewSnapshot(input.WithButtons(common.MouseButtonLeft)))
	require.NoError(t, err)
	assert.Equal(t, camera.CursorModeCaptured, mode)

	mode, err = r.PerFrameUpdate(0.016, input.NewSnapshot())
	require.NoError(t, err)
	assert.Equal(t, camera.CursorModeFree, mode)
}
