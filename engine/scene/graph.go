package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/batch"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/light"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
)

// Graph is the materialized scene of one description: lights, ground, individual renderables
// and batches, together with the animation entries that drive them. A graph is built once and
// disposed once; it is never edited structurally.
type Graph struct {
	Title       string
	TimeOfDay   description.TimeOfDay
	Environment string
	Background  common.Color
	Fog         material.Fog
	ToneMapping material.ToneMapping
	PostFX      description.ResolvedPostFX
	// Camera is nil when the description leaves the camera where it was.
	Camera *description.ResolvedCamera

	Lights      []light.Light
	Ground      *Renderable
	Renderables []*Renderable
	Batches     batch.Allocator
	Registry    animator.Registry

	alloc  renderer.ResourceAllocator
	meshes map[common.Primitive]bind_group_provider.BindGroupProvider
	byID   map[string]*Renderable
	water  []*Renderable

	mu       sync.Mutex
	disposed bool
}

// Renderable looks up an individual renderable by object id.
//
// Parameters:
//   - id: the object id from the description
//
// Returns:
//   - *Renderable: the renderable, or nil if the id was batched or unknown
func (g *Graph) Renderable(id string) *Renderable {
	return g.byID[id]
}

// Water returns the renderables using the water shading model.
func (g *Graph) Water() []*Renderable {
	return g.water
}

// Animate advances every animation entry and every water material to elapsed time t.
//
// Parameters:
//   - t: elapsed time in seconds
func (g *Graph) Animate(t float32) {
	g.Registry.Update(t)
	for _, w := range g.water {
		w.Material.SetTime(t)
	}
}

// Flush uploads every transform and material parameter changed since the last flush.
func (g *Graph) Flush() {
	if g.Disposed() {
		return
	}
	var writes []bind_group_provider.BufferWrite
	if g.Ground != nil {
		writes = g.Ground.writes(writes)
	}
	for _, r := range g.Renderables {
		writes = r.writes(writes)
	}
	if len(writes) > 0 {
		g.alloc.WriteBuffers(writes...)
	}
	g.Batches.Flush()
}

// DrawCalls returns the draws of the ground, every renderable and every non-empty batch.
func (g *Graph) DrawCalls() []renderer.DrawCall {
	if g.Disposed() {
		return nil
	}
	draws := make([]renderer.DrawCall, 0, len(g.Renderables)+len(g.Batches.Buckets())+1)
	if g.Ground != nil {
		draws = append(draws, g.Ground.DrawCall())
	}
	for _, r := range g.Renderables {
		draws = append(draws, r.DrawCall())
	}
	return append(draws, g.Batches.DrawCalls()...)
}

// ResourceCount returns the number of GPU resources this graph owns.
func (g *Graph) ResourceCount() int {
	if g.Disposed() {
		return 0
	}
	n := len(g.meshes) + 2*len(g.Renderables) + 3*len(g.Batches.Buckets())
	if g.Ground != nil {
		n += 2
	}
	return n
}

// Dispose releases every renderable, batch and cached mesh. It is safe to call more than once.
func (g *Graph) Dispose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return
	}
	g.disposed = true

	if g.Ground != nil {
		g.Ground.release()
	}
	for _, r := range g.Renderables {
		r.release()
	}
	g.Batches.Dispose()
	for _, m := range g.meshes {
		m.Release()
	}
}

// Disposed reports whether Dispose has been called.
func (g *Graph) Disposed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disposed
}
