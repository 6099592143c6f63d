package viewer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-dream/engine"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/window"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*viewer)

// WithBackend selects the renderer backend. Defaults to renderer.BackendTypeWGPU.
// renderer.BackendTypeHeadless needs no window and is what tests use.
//
// Parameters:
//   - backend: the backend type
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithBackend(backend renderer.RendererBackendType) ViewerBuilderOption {
	return func(v *viewer) {
		v.backend = backend
	}
}

// WithSurface presents into an existing surface instead of opening a window.
func WithSurface(src renderer.SurfaceSource) ViewerBuilderOption {
	return func(v *viewer) {
		v.surface = src
	}
}

// WithTitle sets the window title.
func WithTitle(title string) ViewerBuilderOption {
	return func(v *viewer) {
		if title != "" {
			v.title = title
		}
	}
}

// WithSize sets the initial surface size in pixels. Non-positive values keep 1280x720.
func WithSize(width, height int) ViewerBuilderOption {
	return func(v *viewer) {
		if width > 0 && height > 0 {
			v.width, v.height = width, height
		}
	}
}

// WithVSync selects between vsync and uncapped presentation.
func WithVSync(enabled bool) ViewerBuilderOption {
	return func(v *viewer) {
		mode := renderer.PresentModeUncapped
		if enabled {
			mode = renderer.PresentModeVSync
		}
		v.presentMode = &mode
	}
}

// WithMSAA sets the multisample count of the surface.
func WithMSAA(count renderer.MSAASampleCount) ViewerBuilderOption {
	return func(v *viewer) {
		v.msaa = &count
	}
}

// WithLogger sets the logger shared by the viewer, renderer and engine.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithEngineOptions passes options through to engine.NewEngine. The renderer and logger are
// always supplied by the viewer.
//
// Parameters:
//   - options: engine options such as tick rate, profiling or batch capacity
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithEngineOptions(options ...engine.EngineBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.engineOpts = append(v.engineOpts, options...)
	}
}

// WithWindowFactory replaces the function used to open the window.
func WithWindowFactory(fn func(...window.WindowBuilderOption) (window.Window, error)) ViewerBuilderOption {
	return func(v *viewer) {
		if fn != nil {
			v.newWindow = fn
		}
	}
}
