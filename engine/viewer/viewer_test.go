package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow records the callbacks registered on it and never yields a surface.
type fakeWindow struct {
	closed  int
	resize  func(int, int)
	scroll  func(float32)
	key     func(uint32, bool)
	button  func(window.MouseButton, bool, int32, int32)
	move    func(int32, int32)
	update  func()
	running bool
}

func (f *fakeWindow) SetUpdateCallback(cb func())                { f.update = cb }
func (f *fakeWindow) SetResizeCallback(cb func(int, int))        { f.resize = cb }
func (f *fakeWindow) SetScrollCallback(cb func(float32))         { f.scroll = cb }
func (f *fakeWindow) SetKeyCallback(cb func(uint32, bool))       { f.key = cb }
func (f *fakeWindow) SetMouseMoveCallback(cb func(int32, int32)) { f.move = cb }
func (f *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (f *fakeWindow) IsRunning() bool                            { return f.running }
func (f *fakeWindow) RequestClose()                              { f.running = false }
func (f *fakeWindow) ProcessMessages()                           {}
func (f *fakeWindow) Size() (int, int)                           { return 640, 480 }
func (f *fakeWindow) Close() error                               { f.closed++; return nil }
func (f *fakeWindow) SetMouseButtonCallback(cb func(window.MouseButton, bool, int32, int32)) {
	f.button = cb
}

// recordingController records the motion forwarded to it.
type recordingController struct {
	camera.CameraController
	mu     sync.Mutex
	orbits [][2]float32
	pans   [][2]float32
	zooms  []float32
}

func (r *recordingController) Orbit(a, e float32) {
	r.mu.Lock()
	r.orbits = append(r.orbits, [2]float32{a, e})
	r.mu.Unlock()
}

func (r *recordingController) Pan(dx, dy float32) {
	r.mu.Lock()
	r.pans = append(r.pans, [2]float32{dx, dy})
	r.mu.Unlock()
}

func (r *recordingController) Zoom(d float32) {
	r.mu.Lock()
	r.zooms = append(r.zooms, d)
	r.mu.Unlock()
}

func newHeadlessViewer(t *testing.T, opts ...ViewerBuilderOption) Viewer {
	t.Helper()
	opts = append([]ViewerBuilderOption{
		WithBackend(renderer.BackendTypeHeadless),
		WithSize(320, 240),
		WithEngineOptions(engine.WithWorkers(1), engine.WithTickRate(500)),
	}, opts...)
	v, err := NewViewer(opts...)
	require.NoError(t, err)
	t.Cleanup(v.Unmount)
	return v
}

func scene() *description.Description {
	return &description.Description{
		Objects: []description.Object{
			{ID: "totem", Primitive: "cylinder", Behavior: &description.Behavior{Kind: "pulse"}},
			{ID: "tree-leaf-0", Primitive: "cone"},
			{ID: "tree-leaf-1", Primitive: "cone"},
		},
	}
}

func TestMountRendersContinuously(t *testing.T) {
	v := newHeadlessViewer(t)
	require.NoError(t, v.OnSceneChanged(scene()))
	require.NoError(t, v.Mount(context.Background()))
	require.NoError(t, v.Mount(context.Background()), "mounting twice is a no-op")

	r := v.Engine().Renderer()
	require.Eventually(t, func() bool { return r.Stats().Frames >= 3 }, 5*time.Second, 5*time.Millisecond)
	assert.Nil(t, v.Window())
}

func TestResizeReachesRendererAndCamera(t *testing.T) {
	v := newHeadlessViewer(t)
	require.NoError(t, v.Mount(context.Background()))
	v.Resize(1000, 250)

	w, h := v.Engine().Renderer().Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 250, h)
	assert.InDelta(t, 4.0, v.Engine().Camera().Aspect(), 1e-6)
}

func TestUnmountReleasesEverythingOnce(t *testing.T) {
	v := newHeadlessViewer(t)
	require.NoError(t, v.OnSceneChanged(scene()))
	require.NoError(t, v.Mount(context.Background()))
	r := v.Engine().Renderer()
	require.NotZero(t, r.LiveResources())

	v.Unmount()
	v.Unmount()
	assert.Equal(t, 0, r.LiveResources())
	assert.Nil(t, v.Engine().Graph())
	assert.ErrorIs(t, v.Mount(context.Background()), ErrUnmounted)
	assert.ErrorIs(t, v.OnSceneChanged(scene()), engine.ErrDisposed)

	frames := r.Stats().Frames
	v.Resize(10, 10)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frames, r.Stats().Frames, "no frame after unmount")
}

func TestUnmountWithoutMount(t *testing.T) {
	v := newHeadlessViewer(t)
	require.NoError(t, v.OnSceneChanged(scene()))
	v.Unmount()
	assert.Equal(t, 0, v.Engine().Renderer().LiveResources())
}

func TestRunUnmountsWhenContextEnds(t *testing.T) {
	v := newHeadlessViewer(t)
	require.NoError(t, v.OnSceneChanged(scene()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, v.Run(ctx))
	assert.ErrorIs(t, v.Mount(context.Background()), ErrUnmounted)
	assert.Equal(t, 0, v.Engine().Renderer().LiveResources())
}

type nilSurface struct{}

func (nilSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

func TestSurfaceAcquisitionFailure(t *testing.T) {
	t.Run("no descriptor", func(t *testing.T) {
		v, err := NewViewer(WithSurface(nilSurface{}))
		assert.Nil(t, v)
		assert.ErrorIs(t, err, ErrSurfaceAcquisition)
	})

	t.Run("window cannot open", func(t *testing.T) {
		v, err := NewViewer(WithWindowFactory(func(...window.WindowBuilderOption) (window.Window, error) {
			return nil, errors.New("no display")
		}))
		assert.Nil(t, v)
		assert.ErrorIs(t, err, ErrSurfaceAcquisition)
		assert.ErrorContains(t, err, "no display")
	})

	t.Run("window without surface is closed", func(t *testing.T) {
		fw := &fakeWindow{}
		v, err := NewViewer(WithWindowFactory(func(...window.WindowBuilderOption) (window.Window, error) {
			return fw, nil
		}))
		assert.Nil(t, v)
		assert.ErrorIs(t, err, ErrSurfaceAcquisition)
		assert.Equal(t, 1, fw.closed)
	})
}

func TestControlsForwardInput(t *testing.T) {
	fw := &fakeWindow{}
	rc := &recordingController{}
	bindControls(fw, rc)

	// moving without a button held does nothing
	fw.move(5, 5)

	fw.button(window.MouseButtonLeft, true, 10, 10)
	fw.move(14, 7)
	fw.button(window.MouseButtonLeft, false, 14, 7)

	fw.button(window.MouseButtonRight, true, 0, 0)
	fw.move(3, 2)
	fw.button(window.MouseButtonRight, false, 3, 2)

	fw.key(common.KeyShift, true)
	fw.button(window.MouseButtonLeft, true, 0, 0)
	fw.move(1, 1)
	fw.key(common.KeyShift, false)

	fw.scroll(2)

	assert.Equal(t, [][2]float32{{-4, -3}}, rc.orbits)
	assert.Equal(t, [][2]float32{{3, 2}, {1, 1}}, rc.pans)
	assert.Equal(t, []float32{2}, rc.zooms)
}

func TestKeyboardControls(t *testing.T) {
	fw := &fakeWindow{}
	rc := &recordingController{}
	bindControls(fw, rc)

	fw.key(common.KeyLeft, true)
	fw.key(common.KeyLeft, false)
	fw.key(common.KeyUp, true)
	fw.key(common.KeyD, true)
	fw.key(common.KeyEqual, true)
	fw.key(common.KeyMinus, true)
	fw.key('Z', true)

	assert.Equal(t, [][2]float32{{keyStep, 0}, {0, keyStep}}, rc.orbits)
	assert.Equal(t, [][2]float32{{-keyStep, 0}}, rc.pans)
	assert.Equal(t, []float32{1, -1}, rc.zooms)
}

func TestRunEndsAtFrameLimit(t *testing.T) {
	v := newHeadlessViewer(t, WithEngineOptions(engine.WithFrameLimit(3)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, v.Run(ctx))
	assert.NoError(t, ctx.Err())
	assert.Equal(t, uint64(3), v.Engine().Stats().Frames)
}
