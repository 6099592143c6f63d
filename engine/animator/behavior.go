package animator

import (
	"hash/fnv"
	"strings"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/chewxy/math32"
)

// Kind names a behavior in the closed set understood by the registry.
type Kind int

const (
	KindNone Kind = iota
	KindRotate
	KindOrbit
	KindPulse
)

var kindNames = [...]string{"none", "rotate", "orbit", "pulse"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "none"
	}
	return kindNames[k]
}

// ParseKind resolves a behavior name. Empty names resolve to KindNone; the bool is false
// only for a non-empty unknown name, which also resolves to KindNone.
func ParseKind(name string) (Kind, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return KindNone, true
	}
	for i, s := range kindNames {
		if s == n {
			return Kind(i), true
		}
	}
	return KindNone, false
}

const (
	// DefaultRotateSpeed is the rotate speed when none is authored.
	DefaultRotateSpeed float32 = 0.4
	// RotateTickScale converts a rotate speed into radians applied per tick.
	RotateTickScale float32 = 0.01

	DefaultOrbitRadius float32 = 6
	DefaultOrbitSpeed  float32 = 0.5

	DefaultPulseAmplitude float32 = 0.2
	DefaultPulseSpeed     float32 = 0.6
)

// DefaultRotateAxis is the axis rotate behaviors spin around when none is authored.
var DefaultRotateAxis = [3]float32{0, 1, 0}

// Behavior is a procedural animation rule. The set of behaviors is closed: Rotate,
// Orbit and Pulse are the only implementations.
type Behavior interface {
	// Kind returns the behavior's tag.
	Kind() Kind

	// Apply computes the transform of an animated object for elapsed time t.
	//
	// Parameters:
	//   - base: the resting transform captured when the entry was created
	//   - current: the transform the object has now
	//   - t: elapsed time in seconds
	//
	// Returns:
	//   - common.Transform: the new transform
	Apply(base, current common.Transform, t float32) common.Transform

	behavior()
}

// Rotate spins an object around a local axis by Speed*RotateTickScale radians every tick.
// It composes with the current orientation rather than recomputing it from t.
type Rotate struct {
	Axis  [3]float32
	Speed float32
}

// Orbit moves an object on a horizontal circle around its resting position.
type Orbit struct {
	Radius      float32
	Speed       float32
	PhaseOffset float32
}

// Pulse scales an object uniformly around its authored scale.
type Pulse struct {
	Amplitude float32
	Speed     float32
}

var (
	_ Behavior = Rotate{}
	_ Behavior = Orbit{}
	_ Behavior = Pulse{}
)

func (Rotate) Kind() Kind { return KindRotate }
func (Orbit) Kind() Kind  { return KindOrbit }
func (Pulse) Kind() Kind  { return KindPulse }

func (Rotate) behavior() {}
func (Orbit) behavior()  {}
func (Pulse) behavior()  {}

func (r Rotate) Apply(_, current common.Transform, _ float32) common.Transform {
	axis := common.Normalize3(r.Axis)
	if axis == ([3]float32{}) {
		axis = DefaultRotateAxis
	}
	current.Rotation = current.Rotation.RotateOnAxis(axis, r.Speed*RotateTickScale)
	return current
}

func (o Orbit) Apply(base, current common.Transform, t float32) common.Transform {
	current.Position = o.Position(base.Position, t)
	return current
}

// Position returns the orbit position around base at time t. The horizontal distance
// from base is always Radius.
func (o Orbit) Position(base [3]float32, t float32) [3]float32 {
	phase := t*o.Speed + o.PhaseOffset
	return [3]float32{
		base[0] + o.Radius*math32.Cos(phase),
		base[1],
		base[2] + o.Radius*math32.Sin(phase),
	}
}

func (p Pulse) Apply(base, current common.Transform, t float32) common.Transform {
	current.Scale = common.Scale3(base.Scale, p.Multiplier(t))
	return current
}

// Multiplier returns the uniform scale factor at time t, in [1-Amplitude, 1+Amplitude].
func (p Pulse) Multiplier(t float32) float32 {
	return 1 + p.Amplitude*math32.Sin(t*p.Speed*2)
}

// PhaseOffset derives a stable orbit phase offset from an object identity so objects
// orbiting the same point stay out of phase. The same id always yields the same offset.
//
// Parameters:
//   - id: the object identifier
//
// Returns:
//   - float32: an offset in [0, 4.95] radians
func PhaseOffset(id string) float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return float32(h.Sum32()%100) * 0.05
}
