package description

import (
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/light"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
)

// Documented defaults applied by Resolve.
var (
	DefaultSkyTop       = common.RGB(0.2, 0.3, 0.6)
	DefaultSkyBottom    = common.RGB(0.8, 0.9, 1.0)
	DefaultFogColor     = common.RGB(0.2, 0.3, 0.6)
	DefaultGroundColor  = common.RGB(0.25, 0.35, 0.25)
	DefaultCameraTarget = [3]float32{0, 1, 0}
)

const (
	DefaultFogNear       float32 = 10
	DefaultFogFar        float32 = 160
	DefaultGroundSize    float32 = 200
	DefaultBloomStrength float32 = 0.8
)

// TimeOfDay shifts the sky midpoint and selects the environment preset.
type TimeOfDay int

const (
	TimeOfDayDay TimeOfDay = iota
	TimeOfDayDawn
	TimeOfDayDusk
	TimeOfDayNight
)

func (t TimeOfDay) String() string {
	switch t {
	case TimeOfDayDawn:
		return "dawn"
	case TimeOfDayDusk:
		return "dusk"
	case TimeOfDayNight:
		return "night"
	default:
		return "day"
	}
}

// SkyFactor is the weight of the bottom sky color in the background blend.
func (t TimeOfDay) SkyFactor() float32 {
	switch t {
	case TimeOfDayDawn:
		return 0.35
	case TimeOfDayDusk:
		return 0.65
	case TimeOfDayNight:
		return 0.2
	default:
		return 0.5
	}
}

// Environment names the lighting preset for the time of day.
func (t TimeOfDay) Environment() string {
	if t == TimeOfDayNight {
		return "night"
	}
	return "sunset"
}

// ParseTimeOfDay resolves a time-of-day tag. Empty and unknown tags resolve to day;
// the bool is false only for a non-empty unknown tag.
func ParseTimeOfDay(name string) (TimeOfDay, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "day":
		return TimeOfDayDay, true
	case "dawn":
		return TimeOfDayDawn, true
	case "dusk":
		return TimeOfDayDusk, true
	case "night":
		return TimeOfDayNight, true
	default:
		return TimeOfDayDay, false
	}
}

// Resolved is a description with every optional field filled in. Downstream code
// never re-checks optionality.
type Resolved struct {
	Title       string
	Summary     string
	Style       string
	TimeOfDay   TimeOfDay
	Environment string
	SkyTop      common.Color
	SkyBottom   common.Color
	Background  common.Color
	Fog         material.Fog
	Lights      []ResolvedLight
	Ground      ResolvedGround
	Objects     []ResolvedObject
	PostFX      ResolvedPostFX
	// Camera is nil when the description does not place the camera.
	Camera *ResolvedCamera
}

type ResolvedLight struct {
	Type        light.LightType
	Color       common.Color
	Intensity   float32
	Position    [3]float32
	GroundColor common.Color
}

type ResolvedMaterial struct {
	Kind      material.Kind
	Color     common.Color
	Metalness float32
	Roughness float32
}

type ResolvedGround struct {
	Size     float32
	Material ResolvedMaterial
}

type ResolvedObject struct {
	ID        string
	Primitive common.Primitive
	Transform common.Transform
	Material  ResolvedMaterial
	// Behavior is nil for objects that do not animate.
	Behavior animator.Behavior
}

type ResolvedCamera struct {
	Position [3]float32
	LookAt   [3]float32
}

type ResolvedPostFX struct {
	Bloom         bool
	BloomStrength float32
	Vignette      bool
	ToneMapping   material.ToneMapping
}

// Resolve runs the default pass over a deep copy of d. Missing or malformed fields take
// their documented defaults silently; unknown enum values are logged at Warn and fall back
// to a safe variant (box primitive, no behavior, skipped light). d is not modified.
//
// Parameters:
//   - logger: receives warnings about unknown enum values; nil uses slog.Default()
//
// Returns:
//   - Resolved: the fully-populated scene
func (d *Description) Resolve(logger *slog.Logger) Resolved {
	if logger == nil {
		logger = slog.Default()
	}
	src, err := d.Clone()
	if err != nil || src == nil {
		if err != nil {
			logger.Warn("[Description] deep copy failed, resolving defaults only", "error", err)
		}
		src = &Description{}
	}

	r := Resolved{
		Title:   src.Title,
		Summary: src.Description,
		Style:   src.Style,
	}
	src.resolveSky(&r, logger)
	r.Fog = src.resolveFog()
	r.Lights = src.resolveLights(logger)
	r.Ground = src.resolveGround(logger)
	r.Objects = make([]ResolvedObject, 0, len(src.Objects))
	for i := range src.Objects {
		r.Objects = append(r.Objects, src.Objects[i].resolve(logger))
	}
	r.PostFX = src.resolvePostFX(logger)
	if c := src.Camera; c != nil && c.Position.Valid() && c.LookAt.Valid() {
		r.Camera = &ResolvedCamera{
			Position: c.Position.Or([3]float32{}),
			LookAt:   c.LookAt.Or([3]float32{}),
		}
	}
	return r
}

func (d *Description) resolveSky(r *Resolved, logger *slog.Logger) {
	sky := d.Sky
	if sky == nil {
		sky = &Sky{}
	}
	tod, ok := ParseTimeOfDay(sky.TimeOfDay)
	if !ok {
		logger.Warn("[Description] unknown time of day, using day", "time_of_day", sky.TimeOfDay)
	}
	r.TimeOfDay = tod
	r.Environment = tod.Environment()
	r.SkyTop = sky.ColorTop.Resolve(DefaultSkyTop)
	r.SkyBottom = sky.ColorBottom.Resolve(DefaultSkyBottom)
	r.Background = r.SkyTop.Lerp(r.SkyBottom, tod.SkyFactor())
}

func (d *Description) resolveFog() material.Fog {
	if d.Fog == nil || !common.Deref(d.Fog.Enabled, true) {
		return material.Fog{}
	}
	near := common.Deref(d.Fog.Near, DefaultFogNear)
	far := common.Deref(d.Fog.Far, DefaultFogFar)
	if near <= 0 || !finite(near) {
		near = DefaultFogNear
	}
	if far <= near || !finite(far) {
		far = max(DefaultFogFar, near+1)
	}
	return material.Fog{
		Enabled: true,
		Color:   d.Fog.Color.Resolve(DefaultFogColor).Array(),
		Near:    near,
		Far:     far,
	}
}

func (d *Description) resolveLights(logger *slog.Logger) []ResolvedLight {
	out := make([]ResolvedLight, 0, len(d.Lights))
	for i, l := range d.Lights {
		lt, ok := light.ParseLightType(l.Type)
		if !ok {
			logger.Warn("[Description] skipping light with unknown type", "index", i, "type", l.Type)
			continue
		}
		intensity := common.Deref(l.Intensity, light.DefaultIntensity(lt))
		if intensity < 0 || !finite(intensity) {
			intensity = light.DefaultIntensity(lt)
		}
		rl := ResolvedLight{
			Type:        lt,
			Color:       l.Color.Resolve(common.White),
			Intensity:   intensity,
			GroundColor: common.RGB(light.DefaultGroundColor[0], light.DefaultGroundColor[1], light.DefaultGroundColor[2]),
		}
		if lt == light.LightTypeDirectional {
			rl.Position = l.Position.Or(light.DefaultDirectionalPosition)
		}
		out = append(out, rl)
	}
	if len(out) == 0 {
		out = append(out, ResolvedLight{Type: light.LightTypeAmbient, Color: common.White, Intensity: 1})
	}
	return out
}

func (d *Description) resolveGround(logger *slog.Logger) ResolvedGround {
	g := d.Ground
	if g == nil {
		g = &Ground{}
	}
	size := common.Deref(g.Size, DefaultGroundSize)
	if size <= 0 || !finite(size) {
		size = DefaultGroundSize
	}
	return ResolvedGround{
		Size:     size,
		Material: g.Material.resolve(DefaultGroundColor, "ground", logger),
	}
}

func (m *Material) resolve(defColor common.Color, owner string, logger *slog.Logger) ResolvedMaterial {
	if m == nil {
		m = &Material{}
	}
	kind, ok := material.ParseKind(m.Kind)
	if !ok {
		logger.Warn("[Description] unknown material kind, using standard", "owner", owner, "kind", m.Kind)
	}
	return ResolvedMaterial{
		Kind:      kind,
		Color:     m.Color.Resolve(defColor),
		Metalness: unit(common.Deref(m.Metalness, 0), 0),
		Roughness: unit(common.Deref(m.Roughness, 1), 1),
	}
}

func (o *Object) resolve(logger *slog.Logger) ResolvedObject {
	prim, ok := common.ParsePrimitive(o.Primitive)
	if !ok && strings.TrimSpace(o.Primitive) != "" {
		logger.Warn("[Description] unknown primitive, using box", "id", o.ID, "primitive", o.Primitive)
	}
	rot := o.Rotation.Or([3]float32{})
	return ResolvedObject{
		ID:        o.ID,
		Primitive: prim,
		Transform: common.Transform{
			Position: o.Position.Or([3]float32{}),
			Rotation: common.QuatFromEuler(rot[0], rot[1], rot[2]),
			Scale:    o.Scale.Or([3]float32{1, 1, 1}),
		},
		Material: o.Material.resolve(common.White, o.ID, logger),
		Behavior: o.Behavior.resolve(o.ID, logger),
	}
}

func (b *Behavior) resolve(id string, logger *slog.Logger) animator.Behavior {
	if b == nil {
		return nil
	}
	kind, ok := animator.ParseKind(b.Kind)
	if !ok {
		logger.Warn("[Description] unknown behavior, treating as none", "id", id, "kind", b.Kind)
	}
	switch kind {
	case animator.KindRotate:
		return animator.Rotate{
			Axis:  b.Axis.Or(animator.DefaultRotateAxis),
			Speed: number(b.Speed, animator.DefaultRotateSpeed),
		}
	case animator.KindOrbit:
		return animator.Orbit{
			Radius:      number(b.Radius, animator.DefaultOrbitRadius),
			Speed:       number(b.Speed, animator.DefaultOrbitSpeed),
			PhaseOffset: animator.PhaseOffset(id),
		}
	case animator.KindPulse:
		return animator.Pulse{
			Amplitude: number(b.Amplitude, animator.DefaultPulseAmplitude),
			Speed:     number(b.Speed, animator.DefaultPulseSpeed),
		}
	default:
		return nil
	}
}

func (d *Description) resolvePostFX(logger *slog.Logger) ResolvedPostFX {
	p := d.PostFX
	if p == nil {
		p = &PostFX{}
	}
	tm, ok := material.ParseToneMapping(p.ToneMapping)
	if !ok {
		logger.Warn("[Description] unknown tone mapping, using filmic", "tone_mapping", p.ToneMapping)
	}
	return ResolvedPostFX{
		Bloom:         common.Deref(p.Bloom, true),
		BloomStrength: number(p.BloomStrength, DefaultBloomStrength),
		Vignette:      common.Deref(p.Vignette, true),
		ToneMapping:   tm,
	}
}

func number(p *float32, def float32) float32 {
	if p == nil || !finite(*p) {
		return def
	}
	return *p
}

func unit(v, def float32) float32 {
	if !finite(v) {
		return def
	}
	return common.Clamp(v, 0, 1)
}
