package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/light"
	"github.com/Carmen-Shannon/oxy-dream/engine/model"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrReleased is returned by calls made after the renderer has been released.
	ErrReleased = errors.New("renderer: released")

	// ErrNoSurface is returned when the GPU backend is selected without a surface source.
	ErrNoSurface = errors.New("renderer: no surface source")
)

// SurfaceSource supplies the platform surface the GPU backend presents into. Windows implement it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// DrawCall is one instanced draw of a mesh with a material.
type DrawCall struct {
	// PipelineKey selects the registered pipeline, normally the material's PipelineKey.
	PipelineKey string
	Mesh        bind_group_provider.BindGroupProvider
	Material    bind_group_provider.BindGroupProvider
	Instances   bind_group_provider.BindGroupProvider
	// InstanceCount is the number of leading instance records to draw.
	InstanceCount int
}

// Frame is everything the renderer needs to produce one image.
type Frame struct {
	Clear          common.Color
	ViewProjection [16]float32
	CameraPosition [3]float32
	Fog            material.Fog
	ToneMapping    material.ToneMapping
	Time           float32
	Lights         []light.Light
	Draws          []DrawCall
}

// Stats describes the renderer's submitted work.
type Stats struct {
	// Frames is the number of frames submitted since creation.
	Frames uint64
	// DrawCalls is the number of draws encoded in the last frame.
	DrawCalls int
	// Instances is the number of instances drawn in the last frame.
	Instances int
}

// ResourceAllocator creates the GPU-side storage owned by scene objects and keeps count of what
// is still alive. Every handle it returns must eventually be released by its owner.
type ResourceAllocator interface {
	// CreateMesh uploads a model's vertex and index data.
	//
	// Parameters:
	//   - label: debug label for the allocation
	//   - m: the model to upload
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh handle
	//   - error: an error if the backend could not allocate the buffers
	CreateMesh(label string, m model.Model) (bind_group_provider.BindGroupProvider, error)

	// CreateMaterial allocates a material uniform and uploads the material's current parameters.
	//
	// Parameters:
	//   - label: debug label for the allocation
	//   - m: the material
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the material handle
	//   - error: an error if the backend could not allocate the buffer
	CreateMaterial(label string, m material.Material) (bind_group_provider.BindGroupProvider, error)

	// CreateInstances allocates storage for capacity instance records.
	//
	// Parameters:
	//   - label: debug label for the allocation
	//   - capacity: the maximum number of instances
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the instance buffer handle
	//   - error: an error if capacity is not positive or the backend could not allocate
	CreateInstances(label string, capacity int) (bind_group_provider.BindGroupProvider, error)

	// WriteBuffers queues writes into buffers created by this allocator. Writes targeting a
	// released handle are dropped.
	WriteBuffers(writes ...bind_group_provider.BufferWrite)

	// LiveResources returns the number of handles created and not yet released.
	LiveResources() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     sync.Mutex
	logger *slog.Logger

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	liveMu sync.Mutex
	live   map[bind_group_provider.BindGroupProvider]struct{}

	width, height int
	stats         Stats
	released      bool

	// Pre-creation config collected from builder options
	surface              SurfaceSource
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer is the engine's drawing surface. It owns the backend, the standard and water pipelines
// and the accounting of every resource it allocates.
type Renderer interface {
	ResourceAllocator

	// BackendType returns the backend this renderer was created with.
	BackendType() RendererBackendType

	// Pipeline returns the registered pipeline for key, or nil.
	Pipeline(key string) pipeline.Pipeline

	// Resize reconfigures the surface for a new size. Non-positive sizes, as reported for a
	// minimized window, are ignored.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// Size returns the current surface size.
	Size() (width, height int)

	// Render encodes and presents one frame. Draws whose resources have been released, whose
	// pipeline is unknown or whose instance count is zero are skipped. Opaque pipelines draw
	// before blended ones.
	//
	// Parameters:
	//   - frame: the frame to draw
	//
	// Returns:
	//   - error: ErrReleased, or an error from the backend when the surface image could not be acquired
	Render(frame *Frame) error

	// Stats returns the submitted-work counters.
	Stats() Stats

	// Release releases the pipelines and the backend. Resources still alive are reported in the
	// log but not released; they belong to their owners. Safe to call more than once.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the selected backend and registers the built-in pipelines.
//
// Parameters:
//   - backendType: the rendering backend to use
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrNoSurface, or an error from adapter, device or pipeline creation
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		logger:        slog.Default(),
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		live:          make(map[bind_group_provider.BindGroupProvider]struct{}),
		width:         1280,
		height:        720,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend()
	case BackendTypeWGPU:
		fallthrough
	default:
		if r.surface == nil {
			return nil, ErrNoSurface
		}
		b, err := newWGPURendererBackend(r.surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		if err != nil {
			return nil, err
		}
		r.backend = b
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("configure surface: %w", err)
	}

	pipelines, err := builtinPipelines()
	if err != nil {
		r.backend.Release()
		return nil, err
	}
	for _, p := range pipelines {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			r.backend.Release()
			return nil, fmt.Errorf("register pipeline %s: %w", p.PipelineKey(), err)
		}
		r.pipelineCache[p.PipelineKey()] = p
	}

	r.logger.Info("[Renderer] initialized", "backend", backendType.String(), "width", r.width, "height", r.height)
	return r, nil
}

// builtinPipelines builds the standard and water pipelines from the embedded shaders.
func builtinPipelines() ([]pipeline.Pipeline, error) {
	pp := shader.NewPreProcessor(shaderIncludes())
	build := func(key, source string, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
		vs, err := shader.NewShader(key+"-vs", shader.ShaderTypeVertex, source, pp)
		if err != nil {
			return nil, err
		}
		fs, err := shader.NewShader(key+"-fs", shader.ShaderTypeFragment, source, pp)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))
		return pipeline.NewPipeline(key, opts...), nil
	}

	standard, err := build(material.ShadingStandard.PipelineKey(), standardShaderSource)
	if err != nil {
		return nil, err
	}
	water, err := build(material.ShadingWater.PipelineKey(), waterShaderSource,
		pipeline.WithBlendEnabled(true),
		pipeline.WithDepthWriteEnabled(false),
	)
	if err != nil {
		return nil, err
	}
	return []pipeline.Pipeline{standard, water}, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	if width == r.width && height == r.height {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	r.width, r.height = width, height
	return nil
}

// track registers p as live. The release hook installed on p removes it again.
func (r *renderer) track(p bind_group_provider.BindGroupProvider) {
	r.liveMu.Lock()
	r.live[p] = struct{}{}
	r.liveMu.Unlock()
}

func (r *renderer) forget(p bind_group_provider.BindGroupProvider) {
	r.liveMu.Lock()
	delete(r.live, p)
	r.liveMu.Unlock()
}

func (r *renderer) LiveResources() int {
	r.liveMu.Lock()
	defer r.liveMu.Unlock()
	return len(r.live)
}

func (r *renderer) newProvider(label string, size uint64) bind_group_provider.BindGroupProvider {
	return bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithSize(size),
		bind_group_provider.WithReleaseHook(r.forget),
	)
}

func (r *renderer) CreateMesh(label string, m model.Model) (bind_group_provider.BindGroupProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}

	vertexData := m.VertexData()
	p := r.newProvider(label, uint64(len(vertexData)))
	if err := r.backend.InitMeshBuffers(p, vertexData, m.IndexData(), m.IndexCount()); err != nil {
		p.Release()
		return nil, fmt.Errorf("mesh %s: %w", label, err)
	}
	r.track(p)
	return p, nil
}

func (r *renderer) CreateMaterial(label string, m material.Material) (bind_group_provider.BindGroupProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}

	p := r.newProvider(label, material.GPUMaterialParamsSize)
	if err := r.backend.InitBindGroup(p, SlotMaterial, material.GPUMaterialParamsSize); err != nil {
		p.Release()
		return nil, fmt.Errorf("material %s: %w", label, err)
	}
	params := m.Params()
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: p, Binding: 0, Data: params.Marshal()}})
	r.track(p)
	return p, nil
}

func (r *renderer) CreateInstances(label string, capacity int) (bind_group_provider.BindGroupProvider, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("instances %s: capacity must be positive, got %d", label, capacity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}

	size := uint64(capacity) * GPUInstanceSize
	p := r.newProvider(label, size)
	if err := r.backend.InitBindGroup(p, SlotInstances, size); err != nil {
		p.Release()
		return nil, fmt.Errorf("instances %s: %w", label, err)
	}
	r.track(p)
	return p, nil
}

func (r *renderer) WriteBuffers(writes ...bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}

	kept := writes[:0:0]
	for _, w := range writes {
		if w.Provider == nil || w.Provider.Released() || len(w.Data) == 0 {
			continue
		}
		if w.Offset+uint64(len(w.Data)) > w.Provider.Size() {
			r.logger.Warn("[Renderer] dropping out-of-range buffer write", "label", w.Provider.Label(), "offset", w.Offset, "bytes", len(w.Data))
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) > 0 {
		r.backend.WriteBuffers(kept)
	}
}

func (r *renderer) Render(frame *Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}

	uniform := GPUFrameUniform{
		Camera: camera.GPUCameraUniform{
			ViewProj:       frame.ViewProjection,
			CameraPosition: frame.CameraPosition,
		},
		Time:        frame.Time,
		ToneMapping: uint32(frame.ToneMapping),
	}
	if frame.Fog.Enabled {
		uniform.FogEnabled = 1
		uniform.FogColor = frame.Fog.Color
		uniform.FogNear = frame.Fog.Near
		uniform.FogFar = frame.Fog.Far
	}

	draws := make([]DrawCall, 0, len(frame.Draws))
	for _, dc := range frame.Draws {
		if dc.InstanceCount <= 0 || dc.Mesh == nil || dc.Material == nil || dc.Instances == nil {
			continue
		}
		if dc.Mesh.Released() || dc.Material.Released() || dc.Instances.Released() {
			continue
		}
		if _, ok := r.pipelineCache[dc.PipelineKey]; !ok {
			continue
		}
		draws = append(draws, dc)
	}
	sort.SliceStable(draws, func(i, j int) bool {
		return !r.pipelineCache[draws[i].PipelineKey].BlendEnabled() && r.pipelineCache[draws[j].PipelineKey].BlendEnabled()
	})

	if err := r.backend.BeginFrame(frame.Clear, uniform.Marshal(), light.MarshalLightBlock(frame.Lights)); err != nil {
		return err
	}
	instances := 0
	for _, dc := range draws {
		r.backend.DrawCall(r.pipelineCache[dc.PipelineKey], dc.Mesh, uint32(dc.InstanceCount),
			[]bind_group_provider.BindGroupProvider{dc.Material, dc.Instances})
		instances += dc.InstanceCount
	}
	r.backend.EndFrame()
	r.backend.Present()

	r.stats.Frames++
	r.stats.DrawCalls = len(draws)
	r.stats.Instances = instances
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true

	if n := r.LiveResources(); n > 0 {
		r.logger.Warn("[Renderer] released with live resources", "count", n)
	}
	for _, p := range r.pipelineCache {
		p.Release()
	}
	r.backend.Release()
}
