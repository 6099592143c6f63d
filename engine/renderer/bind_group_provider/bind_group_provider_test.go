package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseIsIdempotent(t *testing.T) {
	calls := 0
	p := NewBindGroupProvider("mesh:box", WithSize(64), WithReleaseHook(func(BindGroupProvider) { calls++ }))

	assert.Equal(t, "mesh:box", p.Label())
	assert.Equal(t, uint64(64), p.Size())
	assert.False(t, p.Released())

	p.Release()
	p.Release()

	assert.True(t, p.Released())
	assert.Equal(t, 1, calls)
}

func TestReleaseWithoutGPUObjects(t *testing.T) {
	p := NewBindGroupProvider("instances")
	p.SetIndexCount(36)
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.NotPanics(t, p.Release)
	assert.Equal(t, 36, p.IndexCount())
}
