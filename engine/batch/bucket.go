package batch

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
)

// Key selects a bucket: one primitive shape in one quantized color.
type Key struct {
	Kind  common.Primitive
	Color common.ColorKey
}

// bucket is the implementation of the Bucket interface.
type bucket struct {
	mu       sync.Mutex
	key      Key
	color    common.Color
	capacity int
	material material.Material

	mesh      bind_group_provider.BindGroupProvider
	params    bind_group_provider.BindGroupProvider
	instances bind_group_provider.BindGroupProvider

	transforms []common.Transform
	matrices   []float32
	visible    int
	dropped    int
	dirty      atomic.Bool
}

// Bucket is one instanced draw: every object of one (kind, color) pair shares its mesh and
// material, and each contributes one transform slot.
type Bucket interface {
	// Key returns the bucket's key.
	Key() Key

	// Color returns the color of the first object added to the bucket.
	Color() common.Color

	// Capacity returns the fixed maximum instance count.
	Capacity() int

	// Material returns the material every instance is drawn with.
	Material() material.Material

	// Len returns the number of instances written so far.
	Len() int

	// Count returns the visible instance count. It is zero until Finalize.
	Count() int

	// Dropped returns how many adds were rejected because the bucket was full.
	Dropped() int

	// Transform returns the transform of slot i.
	//
	// Parameters:
	//   - i: the slot index
	//
	// Returns:
	//   - common.Transform: the slot's current transform
	Transform(i int) common.Transform

	// Slot returns an animation target bound to slot i.
	//
	// Parameters:
	//   - i: the slot index
	//
	// Returns:
	//   - animator.Target: the slot handle
	Slot(i int) animator.Target

	// DrawCall returns the instanced draw for the visible instances.
	DrawCall() renderer.DrawCall
}

var _ Bucket = &bucket{}

func (b *bucket) Key() Key {
	return b.key
}

func (b *bucket) Color() common.Color {
	return b.color
}

func (b *bucket) Capacity() int {
	return b.capacity
}

func (b *bucket) Material() material.Material {
	return b.material
}

func (b *bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.transforms)
}

func (b *bucket) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

func (b *bucket) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *bucket) Transform(i int) common.Transform {
	return b.transforms[i]
}

func (b *bucket) Slot(i int) animator.Target {
	return &slot{bucket: b, index: i}
}

func (b *bucket) DrawCall() renderer.DrawCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return renderer.DrawCall{
		PipelineKey:   b.material.PipelineKey(),
		Mesh:          b.mesh,
		Material:      b.params,
		Instances:     b.instances,
		InstanceCount: b.visible,
	}
}

// add appends a transform, returning its slot index or false when the bucket is full.
func (b *bucket) add(t common.Transform) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.transforms) >= b.capacity {
		b.dropped++
		return 0, false
	}
	i := len(b.transforms)
	b.transforms = append(b.transforms, t)
	t.Matrix(b.matrices[i*16 : i*16+16])
	b.dirty.Store(true)
	return i, true
}

func (b *bucket) finalize() {
	b.mu.Lock()
	b.visible = len(b.transforms)
	b.mu.Unlock()
	b.dirty.Store(true)
}

// flush uploads the visible matrices when any slot changed since the last flush.
func (b *bucket) flush(alloc renderer.ResourceAllocator) {
	if !b.dirty.Swap(false) {
		return
	}
	b.mu.Lock()
	n := b.visible
	b.mu.Unlock()
	if n == 0 {
		return
	}
	// copied so the queued write never observes later slot updates
	data := append([]byte(nil), common.SliceToBytes(b.matrices[:n*16])...)
	alloc.WriteBuffers(bind_group_provider.BufferWrite{
		Provider: b.instances,
		Binding:  0,
		Data:     data,
	})
}

func (b *bucket) release() {
	for _, p := range []bind_group_provider.BindGroupProvider{b.instances, b.params, b.mesh} {
		if p != nil {
			p.Release()
		}
	}
}

// slot is an animation target addressing one instance of a bucket. Distinct slots touch
// disjoint ranges of the bucket's storage, so they may be updated concurrently.
type slot struct {
	bucket *bucket
	index  int
}

var _ animator.Target = &slot{}

func (s *slot) Transform() common.Transform {
	return s.bucket.transforms[s.index]
}

func (s *slot) SetTransform(t common.Transform) {
	b := s.bucket
	b.transforms[s.index] = t
	t.Matrix(b.matrices[s.index*16 : s.index*16+16])
	b.dirty.Store(true)
}
