package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/engine"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/window"
)

var (
	// ErrSurfaceAcquisition is returned when the render surface cannot be created. The viewer
	// does not attempt to render without one.
	ErrSurfaceAcquisition = errors.New("viewer: surface acquisition failed")

	// ErrUnmounted is returned by Mount after Unmount.
	ErrUnmounted = errors.New("viewer: unmounted")
)

// Viewer owns the render surface and the frame loop around an engine. It creates the surface
// when constructed, starts the loop on Mount, forwards viewport changes and tears everything
// down on Unmount.
type Viewer interface {
	// Mount starts the frame loop on its own goroutine. Mounting twice is a no-op.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	//
	// Returns:
	//   - error: ErrUnmounted after Unmount
	Mount(ctx context.Context) error

	// Resize forwards a viewport change to the engine. Safe from any goroutine, and ignored
	// once the surface is released.
	Resize(width, height int)

	// OnSceneChanged hands a new description to the engine.
	OnSceneChanged(desc *description.Description) error

	// Unmount releases the surface, stops the frame loop and disposes the engine with its
	// graph and batches, in that order. When the viewer owns a window it must be called on the
	// goroutine that created the viewer. Safe to call more than once.
	Unmount()

	// Run mounts the viewer and blocks until ctx is done, the frame loop ends or the window is
	// closed, then unmounts.
	// With a window the message loop runs on the calling goroutine.
	//
	// Returns:
	//   - error: ErrUnmounted if the viewer was already unmounted
	Run(ctx context.Context) error

	// Engine returns the engine driven by this viewer.
	Engine() engine.Engine

	// Window returns the window presenting the surface, or nil for headless and external surfaces.
	Window() window.Window
}

type viewer struct {
	mu     sync.Mutex
	logger *slog.Logger

	backend     renderer.RendererBackendType
	title       string
	width       int
	height      int
	presentMode *renderer.PresentMode
	msaa        *renderer.MSAASampleCount
	engineOpts  []engine.EngineBuilderOption
	newWindow   func(...window.WindowBuilderOption) (window.Window, error)

	surface  renderer.SurfaceSource
	win      window.Window
	renderer renderer.Renderer
	engine   engine.Engine
	controls *controls

	cancel context.CancelFunc
	done   chan struct{}

	mounted         bool
	surfaceReleased bool
	unmounted       bool
}

var _ Viewer = &viewer{}

// NewViewer acquires the render surface and builds the engine around it. With the GPU backend
// and no external surface a window is opened.
//
// Parameters:
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the viewer, not yet mounted
//   - error: an ErrSurfaceAcquisition-wrapped error if no surface could be created
func NewViewer(options ...ViewerBuilderOption) (Viewer, error) {
	v := &viewer{
		logger:    slog.Default(),
		backend:   renderer.BackendTypeWGPU,
		title:     "dreamview",
		width:     1280,
		height:    720,
		newWindow: window.NewWindow,
	}
	for _, opt := range options {
		opt(v)
	}

	if err := v.acquireSurface(); err != nil {
		v.logger.Error("[Viewer] surface acquisition failed", "backend", v.backend.String(), "error", err)
		return nil, err
	}

	opts := append([]engine.EngineBuilderOption{
		engine.WithRenderer(v.renderer),
		engine.WithLogger(v.logger),
	}, v.engineOpts...)
	v.engine = engine.NewEngine(opts...)

	if v.win != nil {
		v.win.SetResizeCallback(v.Resize)
		v.controls = bindControls(v.win, v.engine.Camera().Controller())
	}
	v.logger.Info("[Viewer] surface acquired", "backend", v.backend.String(), "width", v.width, "height", v.height)
	return v, nil
}

// acquireSurface creates the window when one is needed, then the renderer presenting into it.
func (v *viewer) acquireSurface() error {
	if v.backend == renderer.BackendTypeWGPU && v.surface == nil {
		w, err := v.newWindow(
			window.WithTitle(v.title),
			window.WithWidth(v.width),
			window.WithHeight(v.height),
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSurfaceAcquisition, err)
		}
		v.win = w
		v.surface = w
		v.width, v.height = w.Size()
	}

	if v.backend == renderer.BackendTypeWGPU && v.surface.SurfaceDescriptor() == nil {
		v.closeWindow()
		return fmt.Errorf("%w: no surface descriptor", ErrSurfaceAcquisition)
	}

	opts := []renderer.RendererBuilderOption{
		renderer.WithSize(v.width, v.height),
		renderer.WithLogger(v.logger),
	}
	if v.surface != nil {
		opts = append(opts, renderer.WithSurface(v.surface))
	}
	if v.presentMode != nil {
		opts = append(opts, renderer.WithPresentMode(*v.presentMode))
	}
	if v.msaa != nil {
		opts = append(opts, renderer.WithMSAA(*v.msaa))
	}
	r, err := renderer.NewRenderer(v.backend, opts...)
	if err != nil {
		v.closeWindow()
		return fmt.Errorf("%w: %w", ErrSurfaceAcquisition, err)
	}
	v.renderer = r
	return nil
}

func (v *viewer) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return ErrUnmounted
	}
	if v.mounted {
		return nil
	}
	v.mounted = true

	ctx, v.cancel = context.WithCancel(ctx)
	v.done = make(chan struct{})
	go func() {
		defer close(v.done)
		if err := v.engine.Run(ctx); err != nil && !errors.Is(err, renderer.ErrReleased) {
			v.logger.Error("[Viewer] frame loop stopped", "error", err)
		}
	}()
	v.logger.Info("[Viewer] mounted")
	return nil
}

func (v *viewer) Resize(width, height int) {
	v.mu.Lock()
	released := v.surfaceReleased
	v.mu.Unlock()
	if released {
		return
	}
	v.engine.Resize(width, height)
}

func (v *viewer) OnSceneChanged(desc *description.Description) error {
	return v.engine.OnSceneChanged(desc)
}

func (v *viewer) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return
	}
	v.unmounted = true

	// surface
	v.surfaceReleased = true
	v.renderer.Release()
	v.closeWindow()

	// loop
	if v.mounted {
		v.cancel()
		<-v.done
	}

	// graph and batches
	v.engine.Dispose()
	v.logger.Info("[Viewer] unmounted", "frames", v.engine.Stats().Frames)
}

func (v *viewer) closeWindow() {
	if v.win == nil {
		return
	}
	if err := v.win.Close(); err != nil {
		v.logger.Warn("[Viewer] window close failed", "error", err)
	}
}

func (v *viewer) Run(ctx context.Context) error {
	if err := v.Mount(ctx); err != nil {
		return err
	}
	defer v.Unmount()

	if v.win != nil {
		v.win.SetUpdateCallback(func() {
			select {
			case <-ctx.Done():
				v.win.RequestClose()
			case <-v.done:
				v.win.RequestClose()
			default:
			}
		})
		v.win.ProcessMessages()
		return nil
	}

	select {
	case <-ctx.Done():
	case <-v.done:
	}
	return nil
}

func (v *viewer) Engine() engine.Engine {
	return v.engine
}

func (v *viewer) Window() window.Window {
	return v.win
}
