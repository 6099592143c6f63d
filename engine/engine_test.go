package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-dream/engine/batch"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panickingRenderer fails the next Render call with a panic.
type panickingRenderer struct {
	renderer.Renderer
	mu    sync.Mutex
	armed bool
}

func (p *panickingRenderer) arm() {
	p.mu.Lock()
	p.armed = true
	p.mu.Unlock()
}

func (p *panickingRenderer) Render(f *renderer.Frame) error {
	p.mu.Lock()
	armed := p.armed
	p.armed = false
	p.mu.Unlock()
	if armed {
		panic("device lost")
	}
	return p.Renderer.Render(f)
}

func newTestEngine(t *testing.T, opts ...EngineBuilderOption) (Engine, renderer.Renderer) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithSize(800, 400))
	require.NoError(t, err)
	t.Cleanup(r.Release)
	e := NewEngine(append([]EngineBuilderOption{WithRenderer(r), WithWorkers(2)}, opts...)...)
	t.Cleanup(e.Dispose)
	return e, r
}

func orbitScene() *description.Description {
	return &description.Description{
		Objects: []description.Object{
			{ID: "orb", Primitive: "sphere", Position: description.V3(0, 1, 0), Behavior: &description.Behavior{Kind: "orbit"}},
			{ID: "pond", Primitive: "torus"},
		},
	}
}

func TestNewEngineRequiresRenderer(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
}

func TestTickWithoutSceneRendersEmptyFrame(t *testing.T) {
	e, r := newTestEngine(t)
	require.NoError(t, e.Tick(0))
	assert.Equal(t, uint64(1), r.Stats().Frames)
	assert.Equal(t, 0, r.Stats().DrawCalls)
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
}

func TestSceneChangeAndTick(t *testing.T) {
	e, r := newTestEngine(t)
	require.NoError(t, e.OnSceneChanged(orbitScene()))

	g := e.Graph()
	require.NotNil(t, g)
	base := g.Renderable("orb").Transform().Position

	require.NoError(t, e.Tick(1.5))
	assert.NotEqual(t, base, g.Renderable("orb").Transform().Position)
	assert.Equal(t, float32(1.5), g.Renderable("pond").Material.Time())
	// ground, orb, pond
	assert.Equal(t, 3, r.Stats().DrawCalls)
	assert.Equal(t, uint64(1), e.Stats().Frames)
}

func TestSceneChangeReplacesGraphWithoutLeaking(t *testing.T) {
	e, r := newTestEngine(t)
	var graphs []*scene.Graph
	for i := 0; i < 4; i++ {
		desc := orbitScene()
		for j := 0; j < i; j++ {
			desc.Objects = append(desc.Objects, description.Object{ID: fmt.Sprintf("box-%d", j), Primitive: "box"})
		}
		require.NoError(t, e.OnSceneChanged(desc))
		graphs = append(graphs, e.Graph())
		require.NoError(t, e.Tick(float32(i)))
		assert.Equal(t, e.Graph().ResourceCount(), r.LiveResources())
	}
	for _, g := range graphs[:len(graphs)-1] {
		assert.True(t, g.Disposed())
	}
	assert.Equal(t, uint64(4), e.Stats().Generation)
}

func TestSceneChangePlacesCamera(t *testing.T) {
	e, _ := newTestEngine(t)
	desc := orbitScene()
	desc.Camera = &description.Camera{Position: description.V3(0, 20, 20), LookAt: description.V3(0, 0, 0)}
	require.NoError(t, e.OnSceneChanged(desc))
	assert.Equal(t, [3]float32{0, 20, 20}, e.Camera().Controller().Position())

	// a description without a camera leaves it where it was
	require.NoError(t, e.OnSceneChanged(orbitScene()))
	assert.Equal(t, [3]float32{0, 20, 20}, e.Camera().Controller().Position())
}

func TestOverflowWarningReachesHandler(t *testing.T) {
	var warnings []error
	e, _ := newTestEngine(t, WithBatchCapacity(2), WithWarningHandler(func(err error) { warnings = append(warnings, err) }))

	desc := &description.Description{}
	for i := 0; i < 3; i++ {
		desc.Objects = append(desc.Objects, description.Object{ID: fmt.Sprintf("%s%d", scene.LeafPrefix, i), Primitive: "cone"})
	}
	err := e.OnSceneChanged(desc)
	assert.ErrorIs(t, err, batch.ErrBatchOverflow)
	require.Len(t, warnings, 1)
	require.NotNil(t, e.Graph())
	assert.Equal(t, 2, e.Graph().Batches.Buckets()[0].Count())
	assert.NoError(t, e.Tick(0))
}

func TestPanickingFrameIsSkipped(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless)
	require.NoError(t, err)
	defer r.Release()
	pr := &panickingRenderer{Renderer: r}
	e := NewEngine(WithRenderer(pr), WithWorkers(1))
	defer e.Dispose()
	require.NoError(t, e.OnSceneChanged(orbitScene()))

	pr.arm()
	err = e.Tick(0)
	assert.ErrorIs(t, err, ErrFrameSkipped)
	assert.NoError(t, e.Tick(0.1), "the loop recovers on the next frame")
	assert.Equal(t, Stats{Frames: 1, Skipped: 1, Generation: 1}, e.Stats())
}

func TestResizeIsSafeDuringTicks(t *testing.T) {
	e, r := newTestEngine(t)
	require.NoError(t, e.OnSceneChanged(orbitScene()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			e.Resize(100*i, 50*i)
		}
	}()
	for i := 0; i < 50; i++ {
		require.NoError(t, e.Tick(float32(i)/60))
	}
	wg.Wait()

	w, h := r.Size()
	assert.Equal(t, 5000, w)
	assert.Equal(t, 2500, h)
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)

	e.Resize(0, 10)
	w, _ = r.Size()
	assert.Equal(t, 5000, w)
}

func TestDisposeIsIdempotent(t *testing.T) {
	e, r := newTestEngine(t)
	require.NoError(t, e.OnSceneChanged(orbitScene()))
	require.NotZero(t, r.LiveResources())

	e.Dispose()
	e.Dispose()
	assert.Equal(t, 0, r.LiveResources())
	assert.Nil(t, e.Graph())
	assert.ErrorIs(t, e.Tick(0), ErrDisposed)
	assert.ErrorIs(t, e.OnSceneChanged(orbitScene()), ErrDisposed)
	assert.ErrorIs(t, e.Run(context.Background()), ErrDisposed)
}

func TestRunStopsWithContext(t *testing.T) {
	e, r := newTestEngine(t, WithTickRate(500))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)
	assert.NoError(t, err)
	assert.False(t, errors.Is(err, ErrDisposed))
	assert.NotZero(t, r.Stats().Frames)
}

func TestWithCamera(t *testing.T) {
	c := camera.NewCamera()
	e, _ := newTestEngine(t, WithCamera(c))
	assert.Same(t, c, e.Camera())
}

func TestRunStopsWhenRendererReleased(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless)
	require.NoError(t, err)
	e := NewEngine(WithRenderer(r), WithWorkers(1), WithTickRate(500))
	defer e.Dispose()

	r.Release()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = e.Run(ctx)
	assert.ErrorIs(t, err, renderer.ErrReleased)
	assert.ErrorIs(t, err, ErrFrameSkipped)
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	e, r := newTestEngine(t, WithTickRate(1000), WithFrameLimit(5))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, e.Run(ctx))
	assert.NoError(t, ctx.Err(), "the limit ended the loop, not the timeout")
	assert.Equal(t, uint64(5), e.Stats().Frames)
	assert.Equal(t, uint64(5), r.Stats().Frames)
}
