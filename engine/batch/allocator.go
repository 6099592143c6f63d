package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/model"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
)

// DefaultCapacity is the fixed instance capacity of every bucket.
const DefaultCapacity = 1024

// DefaultRoughness is the roughness of buckets created through Add.
const DefaultRoughness float32 = 0.8

// Surface is the shading a bucket is created with. The first object added to a bucket decides
// it; later objects only contribute transforms.
type Surface struct {
	Kind      material.Kind
	Metalness float32
	Roughness float32
}

// ErrBatchOverflow is reported when a bucket is asked to hold more instances than its capacity.
// It is a warning: the extra instances are dropped and the rest of the scene renders.
var ErrBatchOverflow = errors.New("batch: bucket capacity exceeded")

// OverflowError names the bucket that overflowed. It wraps ErrBatchOverflow.
type OverflowError struct {
	Kind     common.Primitive
	Color    common.Color
	Capacity int
	Dropped  int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: %s %s holds %d, dropped %d", ErrBatchOverflow, e.Kind, e.Color.Hex(), e.Capacity, e.Dropped)
}

func (e *OverflowError) Unwrap() error {
	return ErrBatchOverflow
}

// Handle addresses one instance slot inside a bucket.
type Handle struct {
	Key   Key
	Index int
}

// allocator is the implementation of the Allocator interface.
type allocator struct {
	mu        sync.Mutex
	logger    *slog.Logger
	alloc     renderer.ResourceAllocator
	capacity  int
	roughness float32
	segments  int

	buckets  map[Key]*bucket
	order    []*bucket
	disposed bool
}

// Allocator groups batch-eligible objects into fixed-capacity instanced buckets keyed by
// primitive and quantized color. Buckets are created on first use and live for one render
// graph generation.
type Allocator interface {
	// Add writes a transform into the bucket for (kind, color), creating the bucket if needed.
	//
	// Parameters:
	//   - kind: the primitive shape
	//   - color: the object's color; colors sharing a ColorKey share a bucket
	//   - t: the instance transform
	//
	// Returns:
	//   - Handle: the slot the transform was written to
	//   - error: an *OverflowError when the bucket is full, or an allocation error
	Add(kind common.Primitive, color common.Color, t common.Transform) (Handle, error)

	// AddSurface is Add for an object with an authored surface. A new bucket takes its shading
	// from surface; an existing bucket keeps the shading it was created with.
	AddSurface(kind common.Primitive, color common.Color, surface Surface, t common.Transform) (Handle, error)

	// Slot returns the animation target for a handle previously returned by Add.
	//
	// Parameters:
	//   - h: the handle
	//
	// Returns:
	//   - animator.Target: the slot target, or nil if the handle's bucket does not exist
	Slot(h Handle) animator.Target

	// Finalize sets every bucket's visible count to the number of instances written.
	Finalize()

	// Flush uploads the instance matrices of every bucket whose slots changed.
	Flush()

	// Bucket looks up the bucket for (kind, color).
	//
	// Returns:
	//   - Bucket: the bucket
	//   - bool: false if no object of that kind and color was added
	Bucket(kind common.Primitive, color common.Color) (Bucket, bool)

	// Buckets returns the buckets in creation order.
	Buckets() []Bucket

	// DrawCalls returns one draw per bucket with visible instances.
	DrawCalls() []renderer.DrawCall

	// Dispose releases the GPU storage of every bucket. It is safe to call more than once.
	Dispose()

	// Disposed reports whether Dispose has been called.
	Disposed() bool
}

var _ Allocator = &allocator{}

// NewAllocator creates an empty Allocator drawing its storage from alloc.
//
// Parameters:
//   - alloc: the renderer resource allocator
//   - options: variadic list of AllocatorBuilderOption functions
//
// Returns:
//   - Allocator: the allocator
func NewAllocator(alloc renderer.ResourceAllocator, options ...AllocatorBuilderOption) Allocator {
	if alloc == nil {
		panic("batch: nil resource allocator")
	}
	a := &allocator{
		logger:    slog.Default(),
		alloc:     alloc,
		capacity:  DefaultCapacity,
		roughness: DefaultRoughness,
		buckets:   make(map[Key]*bucket),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *allocator) Add(kind common.Primitive, color common.Color, t common.Transform) (Handle, error) {
	return a.AddSurface(kind, color, Surface{Kind: material.KindStandard, Roughness: a.roughness}, t)
}

func (a *allocator) AddSurface(kind common.Primitive, color common.Color, surface Surface, t common.Transform) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := Key{Kind: kind, Color: color.Key()}
	if a.disposed {
		return Handle{Key: key}, renderer.ErrReleased
	}
	b, ok := a.buckets[key]
	if !ok {
		var err error
		if b, err = a.newBucket(key, color, surface); err != nil {
			return Handle{Key: key}, err
		}
		a.buckets[key] = b
		a.order = append(a.order, b)
	}

	i, ok := b.add(t)
	if !ok {
		return Handle{Key: key}, &OverflowError{
			Kind:     kind,
			Color:    b.color,
			Capacity: b.capacity,
			Dropped:  b.Dropped(),
		}
	}
	return Handle{Key: key, Index: i}, nil
}

// newBucket allocates the mesh, material and instance storage of a new bucket.
func (a *allocator) newBucket(key Key, color common.Color, surface Surface) (*bucket, error) {
	label := fmt.Sprintf("batch-%s-%s", key.Kind, color.Hex())
	opts := []model.ModelBuilderOption{model.WithName(label), model.WithPrimitive(key.Kind)}
	if a.segments > 0 {
		opts = append(opts, model.WithSegments(a.segments))
	}
	b := &bucket{
		key:        key,
		color:      color,
		capacity:   a.capacity,
		transforms: make([]common.Transform, 0, a.capacity),
		matrices:   make([]float32, a.capacity*16),
		material: material.NewMaterial(
			material.WithName(label),
			material.WithKind(surface.Kind),
			material.WithBaseColor(color.Array4(1)),
			material.WithMetallic(surface.Metalness),
			material.WithRoughness(surface.Roughness),
		),
	}

	var err error
	if b.mesh, err = a.alloc.CreateMesh(label, model.NewModel(opts...)); err != nil {
		return nil, fmt.Errorf("batch %s: %w", label, err)
	}
	if b.params, err = a.alloc.CreateMaterial(label, b.material); err != nil {
		b.release()
		return nil, fmt.Errorf("batch %s: %w", label, err)
	}
	if b.instances, err = a.alloc.CreateInstances(label, a.capacity); err != nil {
		b.release()
		return nil, fmt.Errorf("batch %s: %w", label, err)
	}
	a.logger.Debug("[Batch] bucket created", "kind", key.Kind, "color", color.Hex(), "capacity", a.capacity)
	return b, nil
}

func (a *allocator) Slot(h Handle) animator.Target {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buckets[h.Key]
	if !ok || h.Index < 0 || h.Index >= b.Len() {
		return nil
	}
	return b.Slot(h.Index)
}

func (a *allocator) Finalize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.order {
		b.finalize()
	}
	a.flushLocked()
}

func (a *allocator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flushLocked()
}

func (a *allocator) flushLocked() {
	if a.disposed {
		return
	}
	for _, b := range a.order {
		b.flush(a.alloc)
	}
}

func (a *allocator) Bucket(kind common.Primitive, color common.Color) (Bucket, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buckets[Key{Kind: kind, Color: color.Key()}]
	if !ok {
		return nil, false
	}
	return b, true
}

func (a *allocator) Buckets() []Bucket {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Bucket, len(a.order))
	for i, b := range a.order {
		out[i] = b
	}
	return out
}

func (a *allocator) DrawCalls() []renderer.DrawCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return nil
	}
	draws := make([]renderer.DrawCall, 0, len(a.order))
	for _, b := range a.order {
		if dc := b.DrawCall(); dc.InstanceCount > 0 {
			draws = append(draws, dc)
		}
	}
	return draws
}

func (a *allocator) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.disposed = true
	for _, b := range a.order {
		b.release()
	}
	a.buckets = make(map[Key]*bucket)
	a.order = nil
}

func (a *allocator) Disposed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}
