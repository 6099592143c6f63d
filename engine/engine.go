package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/profiler"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/scene"
)

var (
	// ErrDisposed is returned by calls made after Dispose.
	ErrDisposed = errors.New("engine: disposed")

	// ErrFrameSkipped wraps the failure of a single frame. The loop keeps running.
	ErrFrameSkipped = errors.New("engine: frame skipped")
)

// Stats describes the frames the engine has driven.
type Stats struct {
	Frames  uint64
	Skipped uint64
	// Generation counts the graphs built by OnSceneChanged.
	Generation uint64
}

// engine implements the Engine interface.
type engine struct {
	// mu serializes ticks against graph swaps so a frame never sees a half-built graph.
	mu     sync.Mutex
	logger *slog.Logger

	renderer renderer.Renderer
	camera   camera.Camera
	builder  scene.Builder
	graph    *scene.Graph

	pool      worker.DynamicWorkerPool
	ownsPool  bool
	workers   int
	batchCap  int
	onWarning func(error)

	profiler         *profiler.Profiler
	profilingEnabled bool
	tickRate         time.Duration
	frameLimit       uint64

	stats    Stats
	disposed bool
}

// Engine is the frame driver. It owns the current render graph, rebuilds it whenever a new
// description arrives and renders it once per tick.
type Engine interface {
	// OnSceneChanged replaces the current graph with one built from desc. The previous graph
	// is released before the new one allocates, and no tick observes the swap half done.
	//
	// Parameters:
	//   - desc: the new scene description
	//
	// Returns:
	//   - error: joined non-fatal build warnings, an allocation failure, or ErrDisposed
	OnSceneChanged(desc *description.Description) error

	// Tick advances every animation to elapsed time t, eases the camera and renders one frame.
	// A failing frame is logged, counted and skipped.
	//
	// Parameters:
	//   - t: seconds since the loop started
	//
	// Returns:
	//   - error: an ErrFrameSkipped-wrapped failure, or ErrDisposed
	Tick(t float32) error

	// Resize updates the projection and surface size. It never touches the graph and is safe
	// to call concurrently with Tick.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// Run drives Tick at the configured tick rate until ctx is done, the frame limit is reached or
	// the renderer is released.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ErrDisposed if the engine was disposed, a renderer.ErrReleased-wrapped error once
	//     the surface is gone, nil when ctx ends the loop
	Run(ctx context.Context) error

	// Dispose releases the current graph and the worker pool. It is safe to call more
	// than once. The renderer belongs to the caller.
	Dispose()

	// Graph returns the graph currently rendered, or nil.
	Graph() *scene.Graph

	// Camera returns the engine's camera.
	Camera() camera.Camera

	// Renderer returns the renderer frames are submitted to.
	Renderer() renderer.Renderer

	// Stats returns frame and rebuild counters.
	Stats() Stats
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. A renderer is required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:   slog.Default(),
		tickRate: time.Second / 60,
		workers:  max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.renderer == nil {
		panic("engine: NewEngine requires WithRenderer")
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if w, h := e.renderer.Size(); w > 0 && h > 0 {
		e.camera.SetAspect(float32(w) / float32(h))
	}
	if e.pool == nil {
		e.pool = worker.NewDynamicWorkerPool(e.workers, 256, time.Second)
		e.ownsPool = true
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	e.builder = scene.NewBuilder(e.renderer,
		scene.WithLogger(e.logger),
		scene.WithWorkerPool(e.pool),
		scene.WithBatchCapacity(e.batchCap),
	)
	return e
}

func (e *engine) OnSceneChanged(desc *description.Description) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}

	// Build disposes the previous graph before allocating; both happen under mu.
	g, err := e.builder.Build(desc)
	e.graph = g
	if g == nil {
		e.logger.Error("[Engine] scene build failed", "error", err)
		return err
	}
	e.stats.Generation++
	if g.Camera != nil {
		e.camera.Controller().Place(g.Camera.Position, g.Camera.LookAt)
	}
	if err != nil {
		e.logger.Warn("[Engine] scene built with warnings", "generation", e.stats.Generation, "error", err)
		if e.onWarning != nil {
			e.onWarning(err)
		}
	}
	return err
}

func (e *engine) Tick(t float32) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrFrameSkipped, r)
		}
		if err != nil {
			e.stats.Skipped++
			e.profiler.Skip()
			e.logger.Error("[Engine] frame skipped", "t", t, "error", err)
			return
		}
		e.stats.Frames++
		if e.profilingEnabled {
			e.profiler.Tick()
		}
	}()

	frame := &renderer.Frame{Time: t}
	if g := e.graph; g != nil {
		g.Animate(t)
		g.Flush()
		frame.Clear = g.Background
		frame.Fog = g.Fog
		frame.ToneMapping = g.ToneMapping
		frame.Lights = g.Lights
		frame.Draws = g.DrawCalls()
	}

	e.camera.Update()
	u := e.camera.Uniform()
	frame.ViewProjection = u.ViewProj
	frame.CameraPosition = u.CameraPosition

	if rerr := e.renderer.Render(frame); rerr != nil {
		return fmt.Errorf("%w: %w", ErrFrameSkipped, rerr)
	}
	return nil
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := e.renderer.Resize(width, height); err != nil {
		e.logger.Warn("[Engine] resize failed", "width", width, "height", height, "error", err)
		return
	}
	e.camera.SetAspect(float32(width) / float32(height))
}

func (e *engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			err := e.Tick(float32(now.Sub(start).Seconds()))
			if errors.Is(err, ErrDisposed) || errors.Is(err, renderer.ErrReleased) {
				return err
			}
			if e.frameLimit > 0 && e.Stats().Frames >= e.frameLimit {
				return nil
			}
		}
	}
}

func (e *engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	e.builder.Dispose()
	e.graph = nil
	if e.ownsPool {
		e.pool.Stop()
	}
	e.logger.Info("[Engine] disposed", "frames", e.stats.Frames, "skipped", e.stats.Skipped)
}

func (e *engine) Graph() *scene.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
