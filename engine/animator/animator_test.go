package animator

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	mu sync.Mutex
	tr common.Transform
}

func newFakeTarget(pos [3]float32) *fakeTarget {
	tr := common.IdentityTransform()
	tr.Position = pos
	return &fakeTarget{tr: tr}
}

func (f *fakeTarget) Transform() common.Transform {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tr
}

func (f *fakeTarget) SetTransform(t common.Transform) {
	f.mu.Lock()
	f.tr = t
	f.mu.Unlock()
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"", KindNone, true},
		{"none", KindNone, true},
		{"Rotate", KindRotate, true},
		{"orbit", KindOrbit, true},
		{"pulse", KindPulse, true},
		{"wobble", KindNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestOrbitKeepsRadius(t *testing.T) {
	base := [3]float32{3, 1, -2}
	o := Orbit{Radius: DefaultOrbitRadius, Speed: DefaultOrbitSpeed, PhaseOffset: PhaseOffset("orb-3")}
	for _, tm := range []float32{0, 0.016, 1, 2.5, 10, 123.4} {
		p := o.Position(base, tm)
		dx, dz := p[0]-base[0], p[2]-base[2]
		assert.InDelta(t, 6.0, math32.Sqrt(dx*dx+dz*dz), 1e-4, "t=%v", tm)
		assert.Equal(t, base[1], p[1])
	}
}

func TestPulseBounds(t *testing.T) {
	p := Pulse{Amplitude: DefaultPulseAmplitude, Speed: DefaultPulseSpeed}
	for tm := float32(0); tm < 30; tm += 0.05 {
		m := p.Multiplier(tm)
		assert.GreaterOrEqual(t, m, float32(0.8)-1e-6)
		assert.LessOrEqual(t, m, float32(1.2)+1e-6)
	}
}

func TestPulseMultipliesAuthoredScale(t *testing.T) {
	target := newFakeTarget([3]float32{})
	tr := target.Transform()
	tr.Scale = [3]float32{2, 4, 1}
	target.SetTransform(tr)

	p := Pulse{Amplitude: 0.5, Speed: 1}
	e := NewEntry("totem", target, p)
	tm := math32.Pi / 4 // sin(pi/2) = 1
	e.update(tm)
	scale := target.Transform().Scale
	assert.InDeltaSlice(t, []float32{3, 6, 1.5}, scale[:], 1e-5)

	// Evaluating the same time again does not compound.
	e.update(tm)
	scale = target.Transform().Scale
	assert.InDeltaSlice(t, []float32{3, 6, 1.5}, scale[:], 1e-5)
}

func TestRotateIsIncremental(t *testing.T) {
	target := newFakeTarget([3]float32{})
	e := NewEntry("star-1", target, Rotate{Speed: 10})
	for i := 0; i < 5; i++ {
		e.update(float32(i))
	}
	assert.InDelta(t, 0.5, target.Transform().Rotation.Angle(), 1e-4)
}

func TestRotateZeroAxisFallsBackToY(t *testing.T) {
	target := newFakeTarget([3]float32{})
	e := NewEntry("r", target, Rotate{Speed: 100})
	e.update(0)
	q := target.Transform().Rotation
	assert.InDelta(t, 0, q[0], 1e-6)
	assert.NotZero(t, q[1])
	assert.InDelta(t, 0, q[2], 1e-6)
}

func TestPhaseOffsetIsStable(t *testing.T) {
	a := PhaseOffset("orb-1")
	assert.Equal(t, a, PhaseOffset("orb-1"))
	assert.GreaterOrEqual(t, a, float32(0))
	assert.LessOrEqual(t, a, float32(4.95))
}

func TestRegistryUpdateIsOrderIndependent(t *testing.T) {
	build := func(reverse bool) []*fakeTarget {
		targets := make([]*fakeTarget, 20)
		reg := NewRegistry()
		for i := range targets {
			targets[i] = newFakeTarget([3]float32{float32(i), 0, 0})
		}
		order := make([]int, len(targets))
		for i := range order {
			order[i] = i
			if reverse {
				order[i] = len(targets) - 1 - i
			}
		}
		for _, i := range order {
			id := fmt.Sprintf("orb-%d", i)
			reg.Add(NewEntry(id, targets[i], Orbit{Radius: 6, Speed: 0.5, PhaseOffset: PhaseOffset(id)}))
		}
		reg.Update(1.25)
		return targets
	}
	fwd, rev := build(false), build(true)
	for i := range fwd {
		assert.Equal(t, fwd[i].Transform(), rev[i].Transform())
	}
}

func TestRegistryDropsIncompleteEntries(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Entry{ID: "x"})
	assert.Zero(t, reg.Len())
}

func TestRegistryParallelUpdate(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 256, time.Second)
	defer pool.Stop()

	reg := NewRegistry(WithWorkerPool(pool), WithParallelThreshold(0))
	targets := make([]*fakeTarget, 1000)
	for i := range targets {
		targets[i] = newFakeTarget([3]float32{0, 0, 0})
		reg.Add(NewEntry(fmt.Sprintf("o%d", i), targets[i], Orbit{Radius: 2, Speed: 1}))
	}
	require.Equal(t, 1000, reg.Len())
	reg.Update(0)
	for _, tg := range targets {
		assert.InDelta(t, 2, tg.Transform().Position[0], 1e-6)
	}
}
