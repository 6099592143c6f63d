package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/batch"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/light"
	"github.com/Carmen-Shannon/oxy-dream/engine/model"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
	"github.com/chewxy/math32"
)

const (
	// LeafPrefix marks cone objects as batched foliage.
	LeafPrefix = "tree-leaf-"
	// TrunkPrefix marks cylinder objects as batched trunks.
	TrunkPrefix = "tree-trunk-"
)

// BatchEligible reports whether an object is a decorative repeated element drawn through a
// batch instead of individually.
//
// Parameters:
//   - o: the resolved object
//
// Returns:
//   - bool: true for cones with LeafPrefix ids and cylinders with TrunkPrefix ids
func BatchEligible(o description.ResolvedObject) bool {
	switch o.Primitive {
	case common.PrimitiveCone:
		return strings.HasPrefix(o.ID, LeafPrefix)
	case common.PrimitiveCylinder:
		return strings.HasPrefix(o.ID, TrunkPrefix)
	}
	return false
}

// builder is the implementation of the Builder interface.
type builder struct {
	mu            sync.Mutex
	logger        *slog.Logger
	alloc         renderer.ResourceAllocator
	pool          worker.DynamicWorkerPool
	batchCapacity int
	segments      int

	current *Graph
}

// Builder turns descriptions into render graphs. It owns the graph it built last and
// disposes it before building the next one.
type Builder interface {
	// Build disposes the previous graph and materializes desc.
	//
	// Parameters:
	//   - desc: the scene description, nil builds the all-default scene
	//
	// Returns:
	//   - *Graph: the new graph, nil only on allocation failure
	//   - error: joined non-fatal warnings (batch overflows), or the allocation failure
	Build(desc *description.Description) (*Graph, error)

	// Current returns the graph built last, or nil.
	Current() *Graph

	// Dispose releases the current graph. It is safe to call more than once.
	Dispose()
}

var _ Builder = &builder{}

// NewBuilder creates a Builder allocating GPU storage from alloc.
//
// Parameters:
//   - alloc: the renderer resource allocator
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Builder: the builder
func NewBuilder(alloc renderer.ResourceAllocator, options ...SceneBuilderOption) Builder {
	if alloc == nil {
		panic("scene: nil resource allocator")
	}
	b := &builder{
		logger:        slog.Default(),
		alloc:         alloc,
		batchCapacity: batch.DefaultCapacity,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *builder) Current() *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *builder) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		b.current.Dispose()
		b.current = nil
	}
}

func (b *builder) Build(desc *description.Description) (*Graph, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// 1. return the previous generation's storage before allocating the next
	if b.current != nil {
		b.current.Dispose()
		b.current = nil
	}

	if desc == nil {
		desc = &description.Description{}
	}
	res := desc.Resolve(b.logger)

	batchOpts := []batch.AllocatorBuilderOption{batch.WithCapacity(b.batchCapacity), batch.WithLogger(b.logger)}
	if b.segments > 0 {
		batchOpts = append(batchOpts, batch.WithSegments(b.segments))
	}
	regOpts := []animator.RegistryBuilderOption{animator.WithLogger(b.logger)}
	if b.pool != nil {
		regOpts = append(regOpts, animator.WithWorkerPool(b.pool))
	}

	g := &Graph{
		Title:       res.Title,
		TimeOfDay:   res.TimeOfDay,
		Environment: res.Environment,
		// 2. background is the time-of-day weighted sky midpoint
		Background: res.Background,
		// 3. a disabled fog is the zero Fog
		Fog: res.Fog,
		// 8.
		ToneMapping: res.PostFX.ToneMapping,
		PostFX:      res.PostFX,
		// 9. nil unless both position and look_at were well formed
		Camera:   res.Camera,
		Batches:  batch.NewAllocator(b.alloc, batchOpts...),
		Registry: animator.NewRegistry(regOpts...),
		alloc:    b.alloc,
		meshes:   make(map[common.Primitive]bind_group_provider.BindGroupProvider),
		byID:     make(map[string]*Renderable),
	}

	// 4. the resolved list already carries the synthesized ambient light when empty
	g.Lights = buildLights(res.Lights)

	// 5.
	ground, err := b.buildGround(g, res.Ground)
	if err != nil {
		g.Dispose()
		return nil, err
	}
	g.Ground = ground

	// 6. and 7.
	for _, obj := range res.Objects {
		target, err := b.place(g, obj)
		if err != nil {
			// dropped objects get no entry; the overflow is reported per bucket below
			if errors.Is(err, batch.ErrBatchOverflow) {
				continue
			}
			g.Dispose()
			return nil, err
		}
		if obj.Behavior != nil && obj.Behavior.Kind() != animator.KindNone {
			g.Registry.Add(animator.NewEntry(obj.ID, target, obj.Behavior))
		}
	}
	g.Batches.Finalize()
	g.Flush()

	var warnings []error
	for _, bk := range g.Batches.Buckets() {
		if d := bk.Dropped(); d > 0 {
			b.logger.Warn("[Scene] batch overflow", "kind", bk.Key().Kind, "color", bk.Color().Hex(),
				"capacity", bk.Capacity(), "dropped", d)
			warnings = append(warnings, &batch.OverflowError{
				Kind:     bk.Key().Kind,
				Color:    bk.Color(),
				Capacity: bk.Capacity(),
				Dropped:  d,
			})
		}
	}

	b.current = g
	b.logger.Info("[Scene] graph built",
		"title", g.Title,
		"lights", len(g.Lights),
		"renderables", len(g.Renderables),
		"buckets", len(g.Batches.Buckets()),
		"animated", g.Registry.Len(),
	)
	return g, errors.Join(warnings...)
}

// place adds obj to the graph, either as a batch slot or as an individual renderable.
func (b *builder) place(g *Graph, obj description.ResolvedObject) (animator.Target, error) {
	if BatchEligible(obj) {
		surface := batch.Surface{Kind: obj.Material.Kind, Metalness: obj.Material.Metalness, Roughness: obj.Material.Roughness}
		h, err := g.Batches.AddSurface(obj.Primitive, obj.Material.Color, surface, obj.Transform)
		if err != nil {
			return nil, err
		}
		return g.Batches.Slot(h), nil
	}

	var mat material.Material
	if obj.Primitive == common.PrimitiveTorus {
		mat = material.NewWater(material.WithName(obj.ID), material.WithBaseColor(obj.Material.Color.Array4(0.85)))
	} else {
		mat = standardMaterial(obj.ID, obj.Material)
	}
	r, err := b.newRenderable(g, obj.ID, obj.Primitive, mat, obj.Transform)
	if err != nil {
		return nil, err
	}
	g.Renderables = append(g.Renderables, r)
	if obj.ID != "" {
		g.byID[obj.ID] = r
	}
	if mat.Shading() == material.ShadingWater {
		g.water = append(g.water, r)
	}
	return r, nil
}

func (b *builder) buildGround(g *Graph, ground description.ResolvedGround) (*Renderable, error) {
	t := common.IdentityTransform()
	t.Rotation = common.QuatFromAxisAngle([3]float32{1, 0, 0}, -math32.Pi/2)
	t.Scale = [3]float32{ground.Size, ground.Size, 1}
	return b.newRenderable(g, "ground", common.PrimitivePlane, standardMaterial("ground", ground.Material), t)
}

func (b *builder) newRenderable(g *Graph, id string, kind common.Primitive, mat material.Material, t common.Transform) (*Renderable, error) {
	mesh, err := b.mesh(g, kind)
	if err != nil {
		return nil, err
	}
	r := &Renderable{ID: id, Primitive: kind, Material: mat, mesh: mesh}
	label := "object:" + id
	if r.params, err = b.alloc.CreateMaterial(label, mat); err != nil {
		return nil, fmt.Errorf("scene %s: %w", label, err)
	}
	if r.instances, err = b.alloc.CreateInstances(label, 1); err != nil {
		r.release()
		return nil, fmt.Errorf("scene %s: %w", label, err)
	}
	r.SetTransform(t)
	return r, nil
}

// mesh returns the graph's shared mesh for kind, uploading it on first use.
func (b *builder) mesh(g *Graph, kind common.Primitive) (bind_group_provider.BindGroupProvider, error) {
	if m, ok := g.meshes[kind]; ok {
		return m, nil
	}
	opts := []model.ModelBuilderOption{model.WithName(kind.String()), model.WithPrimitive(kind)}
	if b.segments > 0 {
		opts = append(opts, model.WithSegments(b.segments))
	}
	m, err := b.alloc.CreateMesh("mesh:"+kind.String(), model.NewModel(opts...))
	if err != nil {
		return nil, fmt.Errorf("scene mesh %s: %w", kind, err)
	}
	g.meshes[kind] = m
	return m, nil
}

func standardMaterial(name string, m description.ResolvedMaterial) material.Material {
	return material.NewMaterial(
		material.WithName(name),
		material.WithKind(m.Kind),
		material.WithBaseColor(m.Color.Array4(1)),
		material.WithMetallic(m.Metalness),
		material.WithRoughness(m.Roughness),
	)
}

func buildLights(resolved []description.ResolvedLight) []light.Light {
	lights := make([]light.Light, 0, len(resolved))
	for _, rl := range resolved {
		opts := []light.LightBuilderOption{
			light.WithColor(rl.Color.R, rl.Color.G, rl.Color.B),
			light.WithIntensity(rl.Intensity),
		}
		switch rl.Type {
		case light.LightTypeDirectional:
			opts = append(opts, light.WithPosition(rl.Position[0], rl.Position[1], rl.Position[2]))
		case light.LightTypeHemisphere:
			opts = append(opts, light.WithGroundColor(rl.GroundColor.R, rl.GroundColor.G, rl.GroundColor.B))
		}
		lights = append(lights, light.NewLight(rl.Type, opts...))
	}
	return lights
}
