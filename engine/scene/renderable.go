package scene

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
)

// Renderable is one individually drawn object: a shared primitive mesh, its own material and
// a single-instance transform buffer.
type Renderable struct {
	ID        string
	Primitive common.Primitive
	Material  material.Material

	mu        sync.RWMutex
	transform common.Transform
	matrix    [16]float32
	dirty     atomic.Bool

	mesh      bind_group_provider.BindGroupProvider
	params    bind_group_provider.BindGroupProvider
	instances bind_group_provider.BindGroupProvider
}

var _ animator.Target = &Renderable{}

// Transform returns the renderable's current transform.
func (r *Renderable) Transform() common.Transform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transform
}

// SetTransform replaces the transform and marks the instance buffer for upload.
func (r *Renderable) SetTransform(t common.Transform) {
	r.mu.Lock()
	r.transform = t
	t.Matrix(r.matrix[:])
	r.mu.Unlock()
	r.dirty.Store(true)
}

// DrawCall returns the single-instance draw of this renderable.
func (r *Renderable) DrawCall() renderer.DrawCall {
	return renderer.DrawCall{
		PipelineKey:   r.Material.PipelineKey(),
		Mesh:          r.mesh,
		Material:      r.params,
		Instances:     r.instances,
		InstanceCount: 1,
	}
}

// writes appends the pending buffer writes of this renderable. Water materials upload their
// parameters every frame so the time uniform stays current.
func (r *Renderable) writes(out []bind_group_provider.BufferWrite) []bind_group_provider.BufferWrite {
	if r.dirty.Swap(false) {
		r.mu.RLock()
		data := append([]byte(nil), common.SliceToBytes(r.matrix[:])...)
		r.mu.RUnlock()
		out = append(out, bind_group_provider.BufferWrite{Provider: r.instances, Data: data})
	}
	if r.Material.Shading() == material.ShadingWater {
		params := r.Material.Params()
		out = append(out, bind_group_provider.BufferWrite{Provider: r.params, Data: params.Marshal()})
	}
	return out
}

// release returns the renderable's own storage. The mesh belongs to the graph's cache.
func (r *Renderable) release() {
	if r.params != nil {
		r.params.Release()
	}
	if r.instances != nil {
		r.instances.Release()
	}
}
