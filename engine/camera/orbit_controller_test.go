package camera

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/input"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, options ...OrbitControllerBuilderOption) OrbitController {
	t.Helper()
	c, err := NewOrbitController(options...)
	require.NoError(t, err)
	return c
}

func assertVec3InDelta(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], delta, msgAndArgs...)
	}
}

func assertAnchored(t *testing.T, c OrbitController, s OrbitState) {
	t.Helper()
	d := s.Camera.Sub(s.Target).Len()
	assert.InDelta(t, c.Distance(), d, 1e-3*float64(c.Distance()), "camera distance")
	assert.InDelta(t, s.Target.Y()+c.VerticalOffset(), s.Camera.Y(), 1e-4, "camera height")
}

func TestStepStrafeRightScenario(t *testing.T) {
	c := newController(t, WithOrbitDistance(6), WithVerticalOffset(0), WithSpeed(5, 20))
	prev := OrbitState{Camera: mgl32.Vec3{1, 1, -5}, Target: mgl32.Vec3{1, 1, 1}}

	next, mode := c.Step(prev, 1, input.NewSnapshot(input.WithHeldKeys(common.KeyD)))

	assert.Equal(t, CursorModeFree, mode)
	assertVec3InDelta(t, mgl32.Vec3{6, 1, 1}, next.Target, 1e-5)
	assertVec3InDelta(t, mgl32.Vec3{6, 1, -5}, next.Camera, 1e-5)
	assertAnchored(t, c, next)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, prev.Target, "previous state must not be mutated")
}

func TestStepForwardMovesTargetAwayFromCamera(t *testing.T) {
	c := newController(t, WithVerticalOffset(0))
	prev := OrbitState{Camera: mgl32.Vec3{0, 0, -6}, Target: mgl32.Vec3{0, 0, 0}}

	next, _ := c.Step(prev, 0.5, input.NewSnapshot(input.WithHeldKeys(common.KeyW)))
	assertVec3InDelta(t, mgl32.Vec3{0, 0, 2.5}, next.Target, 1e-5)
	assertVec3InDelta(t, mgl32.Vec3{0, 0, -3.5}, next.Camera, 1e-5)

	back, _ := c.Step(prev, 0.5, input.NewSnapshot(input.WithHeldKeys(common.KeyS)))
	assertVec3InDelta(t, mgl32.Vec3{0, 0, -2.5}, back.Target, 1e-5)
}

func TestStepVerticalMove(t *testing.T) {
	c := newController(t)
	prev := c.Anchor(OrbitState{Camera: mgl32.Vec3{0, 0, -6}, Target: mgl32.Vec3{0, 0, 0}})

	up, _ := c.Step(prev, 0.5, input.NewSnapshot(input.WithHeldKeys(common.KeySpace)))
	assert.InDelta(t, 2.5, up.Target.Y(), 1e-6)
	assertAnchored(t, c, up)

	fast, _ := c.Step(prev, 0.5, input.NewSnapshot(input.WithHeldKeys(common.KeySpace, common.KeyLeftShift)))
	assert.InDelta(t, 10, fast.Target.Y(), 1e-6)

	down, _ := c.Step(prev, 0.5, input.NewSnapshot(input.WithHeldKeys(common.KeyLeftControl)))
	assert.InDelta(t, -2.5, down.Target.Y(), 1e-6)
}

func TestStepOpposingKeysFirstCheckedWins(t *testing.T) {
	c := newController(t)
	prev := c.Anchor(OrbitState{Camera: mgl32.Vec3{3, 4, -2}, Target: mgl32.Vec3{1, 1, 1}})

	tests := []struct {
		name     string
		both     []common.KeyCode
		expected common.KeyCode
	}{
		{"forward over back", []common.KeyCode{common.KeyW, common.KeyS}, common.KeyW},
		{"right over left", []common.KeyCode{common.KeyA, common.KeyD}, common.KeyD},
		{"up over down", []common.KeyCode{common.KeySpace, common.KeyLeftControl}, common.KeySpace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			both, _ := c.Step(prev, 0.25, input.NewSnapshot(input.WithHeldKeys(tt.both...)))
			single, _ := c.Step(prev, 0.25, input.NewSnapshot(input.WithHeldKeys(tt.expected)))
			assert.Equal(t, single, both)
			assert.NotEqual(t, prev, both)
		})
	}
}

func TestStepLook(t *testing.T) {
	c := newController(t, WithMouseSensitivity(0.01))
	prev := c.Anchor(OrbitState{Camera: mgl32.Vec3{0, 0, -6}, Target: mgl32.Vec3{0, 0, 0}})

	rotating := input.NewSnapshot(input.WithButtons(common.MouseButtonLeft), input.WithPointerDelta(100, 40))
	next, mode := c.Step(prev, 0.016, rotating)

	assert.Equal(t, CursorModeCaptured, mode)
	assert.Equal(t, prev.Target, next.Target, "looking never moves the target")
	assert.Less(t, next.Camera.X(), float32(0), "positive dx swings the camera towards -right")
	assertAnchored(t, c, next)

	vertical := input.NewSnapshot(input.WithButtons(common.MouseButtonLeft), input.WithPointerDelta(0, 250))
	still, _ := c.Step(prev, 0.016, vertical)
	assertVec3InDelta(t, prev.Camera, still.Camera, 1e-5, "vertical pointer motion is discarded")

	free, mode := c.Step(prev, 0.016, input.NewSnapshot(input.WithPointerDelta(100, 0)))
	assert.Equal(t, CursorModeFree, mode)
	assert.Equal(t, prev.Target, free.Target)
	assertVec3InDelta(t, prev.Camera, free.Camera, 1e-5, "pointer motion without the rotate button does nothing")
}

func TestStepPlanarMovesNeverChangeTargetHeight(t *testing.T) {
	c := newController(t)
	rng := rand.New(rand.NewPCG(1, 2))
	planar := []common.KeyCode{common.KeyW, common.KeyA, common.KeyS, common.KeyD, common.KeyLeftShift}

	s := c.Anchor(OrbitState{Camera: mgl32.Vec3{2, 3, -4}, Target: mgl32.Vec3{1, 1, 1}})
	for i := range 500 {
		var held []common.KeyCode
		for _, k := range planar {
			if rng.IntN(2) == 0 {
				held = append(held, k)
			}
		}
		opts := []input.SnapshotBuilderOption{input.WithHeldKeys(held...)}
		if rng.IntN(3) == 0 {
			opts = append(opts, input.WithButtons(common.MouseButtonLeft), input.WithPointerDelta(rng.Float32()*40-20, rng.Float32()*40-20))
		}

		next, _ := c.Step(s, rng.Float32()*0.1, input.NewSnapshot(opts...))
		require.Equal(t, s.Target.Y(), next.Target.Y(), "step %d changed target height", i)
		assertAnchored(t, c, next)
		s = next
	}
}

func TestStepKeepsOrbitInvariants(t *testing.T) {
	c := newController(t, WithOrbitDistance(9), WithVerticalOffset(-3))
	rng := rand.New(rand.NewPCG(7, 11))
	keys := []common.KeyCode{common.KeyW, common.KeyA, common.KeyS, common.KeyD, common.KeySpace, common.KeyLeftControl, common.KeyLeftShift}

	s := OrbitState{Camera: mgl32.Vec3{5, -2, 7}, Target: mgl32.Vec3{0, 0, 0}}
	for range 300 {
		var held []common.KeyCode
		for _, k := range keys {
			if rng.IntN(3) == 0 {
				held = append(held, k)
			}
		}
		s, _ = c.Step(s, rng.Float32()*0.05, input.NewSnapshot(
			input.WithHeldKeys(held...),
			input.WithButtons(common.MouseButtonLeft),
			input.WithPointerDelta(rng.Float32()*30-15, 0),
		))
		assertAnchored(t, c, s)
	}
}

func TestAnchorCoincidentCameraUsesFallback(t *testing.T) {
	c := newController(t, WithOrbitDistance(5), WithVerticalOffset(3), WithFallbackDirection(mgl32.Vec3{1, 7, 0}))
	p := mgl32.Vec3{2, 2, 2}

	s := c.Anchor(OrbitState{Camera: p, Target: p})
	assertVec3InDelta(t, mgl32.Vec3{6, 5, 2}, s.Camera, 1e-5)
	assertAnchored(t, c, s)

	above := c.Anchor(OrbitState{Camera: mgl32.Vec3{2, 10, 2}, Target: p})
	assertVec3InDelta(t, mgl32.Vec3{6, 5, 2}, above.Camera, 1e-5)

	moved, _ := c.Step(OrbitState{Camera: p, Target: p}, 1, input.NewSnapshot(input.WithHeldKeys(common.KeyD)))
	assertAnchored(t, c, moved)
}

func TestNewOrbitControllerValidation(t *testing.T) {
	tests := []struct {
		name    string
		options []OrbitControllerBuilderOption
	}{
		{"zero distance", []OrbitControllerBuilderOption{WithOrbitDistance(0)}},
		{"offset equals distance", []OrbitControllerBuilderOption{WithOrbitDistance(4), WithVerticalOffset(4)}},
		{"offset exceeds distance", []OrbitControllerBuilderOption{WithOrbitDistance(4), WithVerticalOffset(-5)}},
		{"negative speed", []OrbitControllerBuilderOption{WithSpeed(-1, 20)}},
		{"vertical fallback", []OrbitControllerBuilderOption{WithFallbackDirection(mgl32.Vec3{0, 1, 0})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrbitController(tt.options...)
			assert.ErrorIs(t, err, ErrInvalidOrbit)
		})
	}
}

func TestCustomBindings(t *testing.T) {
	b := DefaultOrbitBindings()
	b.Right = common.KeyRight
	b.Rotate = common.MouseButtonRight
	c := newController(t, WithBindings(b), WithVerticalOffset(0))

	prev := OrbitState{Camera: mgl32.Vec3{0, 0, -6}, Target: mgl32.Vec3{0, 0, 0}}
	next, mode := c.Step(prev, 1, input.NewSnapshot(
		input.WithHeldKeys(common.KeyRight),
		input.WithButtons(common.MouseButtonRight),
	))
	assert.Equal(t, CursorModeCaptured, mode)
	assert.InDelta(t, 5, next.Target.X(), 1e-5)
	assert.Equal(t, b, c.Bindings())
}
