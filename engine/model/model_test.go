package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelGeneratesEveryPrimitive(t *testing.T) {
	for _, p := range common.Primitives {
		t.Run(p.String(), func(t *testing.T) {
			m := NewModel(WithPrimitive(p))
			require.NotEmpty(t, m.Vertices())
			require.NotZero(t, m.IndexCount())
			assert.Zero(t, m.IndexCount()%3)
			assert.Equal(t, p.String(), m.Name())
			assert.Len(t, m.VertexData(), len(m.Vertices())*GPUVertexSize)
			assert.Len(t, m.IndexData(), m.IndexCount()*4)
			for _, idx := range m.Indices() {
				require.Less(t, int(idx), len(m.Vertices()))
			}
		})
	}
}

func TestBoxGeometry(t *testing.T) {
	m := NewModel(WithPrimitive(common.PrimitiveBox))
	assert.Len(t, m.Vertices(), 24)
	assert.Equal(t, 36, m.IndexCount())
	for _, v := range m.Vertices() {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 0.5, abs(v.Position[k]), 1e-6)
		}
	}
}

func TestBoundingRadius(t *testing.T) {
	sphere := NewModel(WithPrimitive(common.PrimitiveSphere))
	assert.InDelta(t, 0.5, sphere.BoundingRadius(), 1e-5)

	torus := NewModel(WithPrimitive(common.PrimitiveTorus))
	assert.InDelta(t, 2.2, torus.BoundingRadius(), 1e-4)
}

// The water shader waves the torus over model-space x and y, so the ring must lie in that plane.
func TestTorusRingLiesInXYPlane(t *testing.T) {
	torus := NewModel(WithPrimitive(common.PrimitiveTorus))
	var reach float32
	for _, v := range torus.Vertices() {
		assert.LessOrEqual(t, abs(v.Position[2]), float32(0.2)+1e-5)
		reach = max(reach, abs(v.Position[0]), abs(v.Position[1]))
	}
	assert.InDelta(t, 2.2, reach, 1e-4)
}

func TestConeHasNoTopCap(t *testing.T) {
	cone := NewModel(WithPrimitive(common.PrimitiveCone), WithSegments(8))
	cyl := NewModel(WithPrimitive(common.PrimitiveCylinder), WithSegments(8))
	assert.Less(t, len(cone.Vertices()), len(cyl.Vertices()))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
