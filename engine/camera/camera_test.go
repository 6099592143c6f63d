package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d", i)
	}
}

func TestControllerDefaults(t *testing.T) {
	cc := NewCameraController()
	assertVec(t, DefaultPosition, cc.Position())
	assertVec(t, DefaultTarget, cc.Target())
	assert.Equal(t, DefaultDamping, cc.Damping())
	assert.InDelta(t, math32.Sqrt(4+100), cc.Radius(), 1e-4)
	assert.False(t, cc.Update(), "a controller without input is at rest")
}

func TestPlaceRoundTripsThroughSpherical(t *testing.T) {
	cc := NewCameraController()
	cc.Place([3]float32{4, 5, -6}, [3]float32{1, 1, 1})
	assertVec(t, [3]float32{4, 5, -6}, cc.Position())

	// moving the pivot keeps the offset
	cc.SetTarget([3]float32{2, 1, 1})
	assertVec(t, [3]float32{5, 5, -6}, cc.Position())
}

func TestOrbitIsDamped(t *testing.T) {
	cc := NewCameraController(WithRotateSpeed(1))
	start := cc.Azimuth()

	cc.Orbit(1, 0)
	require.True(t, cc.Update())
	assert.InDelta(t, start+DefaultDamping, cc.Azimuth(), 1e-5)

	// the remaining motion decays geometrically toward the full input
	for i := 0; i < 2000 && cc.Update(); i++ {
	}
	assert.InDelta(t, start+1, cc.Azimuth(), 1e-3)
	assert.False(t, cc.Update())

	// the radius is unchanged by orbiting
	assert.InDelta(t, math32.Sqrt(104), cc.Radius(), 1e-4)
}

func TestZoomClampsRadius(t *testing.T) {
	cc := NewCameraController(WithRadiusBounds(2, 20), WithDamping(1))
	cc.Zoom(100)
	cc.Update()
	assert.Equal(t, float32(2), cc.Radius())

	cc.Zoom(-100)
	cc.Update()
	assert.Equal(t, float32(20), cc.Radius())
}

func TestPanMovesEyeAndTargetTogether(t *testing.T) {
	cc := NewCameraController(WithDamping(1))
	before := common.Sub3(cc.Position(), cc.Target())
	cc.Pan(10, 0)
	cc.Update()
	assertVec(t, before, common.Sub3(cc.Position(), cc.Target()))
	assert.NotEqual(t, DefaultTarget, cc.Target())
}

func TestCameraMatrices(t *testing.T) {
	c := NewCamera(WithAspect(2))
	assert.InDelta(t, DegreesToRadians(DefaultFovDegrees), c.Fov(), 1e-6)
	assert.Equal(t, float32(2), c.Aspect())
	assertVec(t, DefaultPosition, c.Position())

	want := [16]float32{}
	vp := c.ViewProjectionMatrix()
	p, v := c.ProjectionMatrix(), c.ViewMatrix()
	common.Mul4(want[:], p[:], v[:])
	assert.Equal(t, want, vp)

	u := c.Uniform()
	assert.Equal(t, vp, u.ViewProj)
	assert.Equal(t, c.Position(), u.CameraPosition)
	assert.Len(t, u.Marshal(), 80)
}

func TestSetAspectIgnoresDegenerateSizes(t *testing.T) {
	c := NewCamera()
	c.SetAspect(0)
	c.SetAspect(-1)
	assert.Equal(t, float32(1), c.Aspect())
}

func TestCameraUpdateFollowsController(t *testing.T) {
	cc := NewCameraController(WithDamping(1))
	c := NewCamera(WithController(cc))
	cc.Place([3]float32{0, 10, 0.01}, [3]float32{})
	c.Update()
	assertVec(t, [3]float32{0, 10, 0.01}, c.Position())
}
