package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-dream/engine"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/generator"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/source"
	"github.com/Carmen-Shannon/oxy-dream/engine/viewer"
	"github.com/spf13/cobra"
)

// viewFlags override configuration values for a viewing session.
type viewFlags struct {
	headless bool
	frames   uint64
	width    int
	height   int
	watch    bool
	listen   string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&v.headless, "headless", false, "render without a window or GPU")
	f.Uint64Var(&v.frames, "frames", 0, "stop after this many frames")
	f.IntVar(&v.width, "width", 0, "window width in pixels")
	f.IntVar(&v.height, "height", 0, "window height in pixels")
	f.BoolVar(&v.watch, "watch", true, "reload the description file when it changes")
	f.StringVar(&v.listen, "listen", "", "accept pushed descriptions on this websocket address")
}

// apply copies the flags the user set onto the configuration.
func (v *viewFlags) apply(cmd *cobra.Command, a *app) error {
	f := cmd.Flags()
	if f.Changed("frames") {
		a.cfg.Engine.FrameLimit = v.frames
	}
	if f.Changed("width") {
		a.cfg.Window.Width = v.width
	}
	if f.Changed("height") {
		a.cfg.Window.Height = v.height
	}
	if f.Changed("watch") {
		a.cfg.Source.Watch = v.watch
	}
	if f.Changed("listen") {
		a.cfg.Source.Listen = v.listen
	}
	return a.cfg.Validate()
}

func newViewCmd(a *app) *cobra.Command {
	var (
		vf viewFlags
		mf moodFlags
	)
	cmd := &cobra.Command{
		Use:   "view [description file]",
		Short: "Open a description file, or a generated scene, in a live view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := vf.apply(cmd, a); err != nil {
				a.status.fail("%v", err)
				return err
			}
			var initial initialScene
			switch {
			case len(args) == 1:
				initial = a.fileSource(args[0])
			default:
				req, err := mf.request(cmd)
				if err != nil {
					return err
				}
				initial = func(_ context.Context, sink source.Sink) error {
					desc, err := generator.Generate(req)
					if err != nil {
						return err
					}
					return a.apply(sink, desc)
				}
			}
			return a.runViewer(cmd.Context(), vf.headless, initial)
		},
	}
	vf.register(cmd)
	mf.register(cmd)
	return cmd
}

// initialScene feeds the first description to a new viewer. Anything it keeps running must
// stop when ctx is done.
type initialScene func(ctx context.Context, sink source.Sink) error

// fileSource loads path once, or keeps it watched when watching is on.
func (a *app) fileSource(path string) initialScene {
	return func(ctx context.Context, sink source.Sink) error {
		if !a.cfg.Source.Watch {
			desc, err := description.Load(path)
			if err != nil {
				return err
			}
			return a.apply(sink, desc)
		}
		fw := source.NewFileWatcher(path, sink, source.WithWatcherLogger(a.logger))
		if err := fw.Start(ctx); err != nil && !source.IsWarning(err) {
			return err
		}
		a.status.ok("watching %s", path)
		return nil
	}
}

// apply hands desc to sink. Build warnings reach the user through the engine's warning
// handler and do not fail the command.
func (a *app) apply(sink source.Sink, desc *description.Description) error {
	err := sink.OnSceneChanged(desc)
	if source.IsWarning(err) {
		return nil
	}
	return err
}

// runViewer opens the viewer, feeds it the initial scene and any pushed ones, and blocks until
// the window closes, the frame limit is reached or the process is interrupted.
func (a *app) runViewer(parent context.Context, headless bool, initial initialScene) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := viewer.NewViewer(a.viewerOptions(headless)...)
	if err != nil {
		a.status.fail("%v", err)
		return err
	}
	defer v.Unmount()
	// sources stop before the viewer unmounts
	srcCtx, stopSources := context.WithCancel(ctx)
	defer stopSources()

	if initial != nil {
		if err := initial(srcCtx, v); err != nil {
			a.status.fail("%v", err)
			return err
		}
	}

	if addr := a.cfg.Source.Listen; addr != "" {
		ps := source.NewPushServer(v, source.WithAddr(addr), source.WithServerLogger(a.logger))
		go func() {
			if err := ps.ListenAndServe(srcCtx); err != nil {
				a.status.fail("push server: %v", err)
			}
		}()
		a.status.ok("accepting descriptions on ws://%s%s", addr, source.DefaultPushPath)
	}

	if err := v.Run(ctx); err != nil {
		return err
	}
	s := v.Engine().Stats()
	a.status.ok("rendered %d frames, skipped %d, %d scene(s)", s.Frames, s.Skipped, s.Generation)
	return nil
}

func (a *app) viewerOptions(headless bool) []viewer.ViewerBuilderOption {
	cfg := a.cfg
	ctrl := camera.NewCameraController(
		camera.WithTarget(cfg.Camera.Target),
		camera.WithDamping(cfg.Camera.Damping),
	)
	cam := camera.NewCamera(
		camera.WithFov(camera.DegreesToRadians(cfg.Camera.Fov)),
		camera.WithNear(cfg.Camera.Near),
		camera.WithFar(cfg.Camera.Far),
		camera.WithController(ctrl),
	)

	engineOpts := []engine.EngineBuilderOption{
		engine.WithCamera(cam),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithBatchCapacity(cfg.Batch.Capacity),
		engine.WithWarningHandler(func(err error) { a.status.warn("%v", err) }),
	}
	if cfg.Engine.Workers > 0 {
		engineOpts = append(engineOpts, engine.WithWorkers(cfg.Engine.Workers))
	}

	opts := []viewer.ViewerBuilderOption{
		viewer.WithTitle(cfg.Window.Title),
		viewer.WithSize(cfg.Window.Width, cfg.Window.Height),
		viewer.WithVSync(cfg.Window.VSync),
		viewer.WithMSAA(renderer.MSAASampleCount(cfg.Window.MSAA)),
		viewer.WithLogger(a.logger),
		viewer.WithEngineOptions(engineOpts...),
	}
	if headless {
		opts = append(opts, viewer.WithBackend(renderer.BackendTypeHeadless))
	}
	return opts
}
