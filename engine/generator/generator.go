// Package generator turns a mood and a short narrative into a scene description. The output
// is an ordinary description, so everything it produces can also be written by hand.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/scene"
	"github.com/chewxy/math32"
)

// ErrInvalidRequest is returned for a mood outside its documented ranges or an unknown style.
var ErrInvalidRequest = errors.New("generator: invalid request")

// Styles accepted in a Request.
const (
	StyleStylized  = "stylized"
	StyleRealistic = "realistic"
	StyleLowPoly   = "lowpoly"
)

// Mood drives colour, pacing and density. Valence and Arousal are in [-1, 1]; Warmth and
// Nostalgia in [0, 1].
type Mood struct {
	Valence   float32 `json:"valence" yaml:"valence"`
	Arousal   float32 `json:"arousal" yaml:"arousal"`
	Warmth    float32 `json:"warmth" yaml:"warmth"`
	Nostalgia float32 `json:"nostalgia" yaml:"nostalgia"`
}

// Request is one generation. Narrative keywords switch scene features on; Seed makes the
// result reproducible.
type Request struct {
	Narrative string `json:"narrative" yaml:"narrative"`
	Mood      Mood   `json:"mood" yaml:"mood"`
	Seed      *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Style     string `json:"style,omitempty" yaml:"style,omitempty"`
}

// Validate checks the mood ranges and the style.
func (r Request) Validate() error {
	check := func(name string, v, lo, hi float32) error {
		if math32.IsNaN(v) || v < lo || v > hi {
			return fmt.Errorf("%w: %s %v outside [%v, %v]", ErrInvalidRequest, name, v, lo, hi)
		}
		return nil
	}
	return errors.Join(
		check("valence", r.Mood.Valence, -1, 1),
		check("arousal", r.Mood.Arousal, -1, 1),
		check("warmth", r.Mood.Warmth, 0, 1),
		check("nostalgia", r.Mood.Nostalgia, 0, 1),
		checkStyle(r.Style),
	)
}

func checkStyle(s string) error {
	switch s {
	case "", StyleStylized, StyleRealistic, StyleLowPoly:
		return nil
	}
	return fmt.Errorf("%w: unknown style %q", ErrInvalidRequest, s)
}

// Keywords that switch on optional scene features.
var (
	treeWords   = []string{"forest", "tree", "nature", "park", "meadow"}
	waterWords  = []string{"lake", "ocean", "sea", "river", "rain", "water"}
	structWords = []string{"temple", "ruin", "house", "city", "tower", "bridge", "pillar", "monolith"}
)

// Layout constants.
const (
	treeCount    = 12
	treeRadius   = 16
	pillarCount  = 6
	pillarRadius = 22
	starCount    = 50
	groundSize   = 240
	fogNear      = 12
	fogFar       = 180
)

// Generate builds a description from req. The same request with the same seed always yields
// the same description.
//
// Parameters:
//   - req: the mood, narrative and optional seed
//
// Returns:
//   - *description.Description: the generated scene
//   - error: an ErrInvalidRequest-wrapped error
func Generate(req Request) (*description.Description, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	m := req.Mood
	text := strings.ToLower(req.Narrative)
	p := paletteFor(m)
	tod := TimeOfDay(m.Arousal)
	a := (m.Arousal + 1) / 2

	d := &description.Description{
		Title:       titleFor(req.Narrative),
		Description: req.Narrative,
		Style:       common.Coalesce(req.Style, StyleStylized),
		Camera: &description.Camera{
			Position: description.V3(0, 3, common.Lerp(10, 6, a)),
			LookAt:   description.V3(0, 0, 0),
		},
		Sky: &description.Sky{
			TimeOfDay:   tod,
			ColorTop:    description.FromColor(p.skyTop),
			ColorBottom: description.FromColor(p.skyBottom),
		},
		Lights: []description.Light{
			{Type: "ambient", Intensity: description.Ptr[float32](0.6), Color: description.FromColor(p.skyBottom)},
			{Type: "hemisphere", Intensity: description.Ptr[float32](0.45), Color: description.FromColor(p.skyTop), Position: description.V3(0, 10, 0)},
			{Type: "directional", Intensity: description.Ptr[float32](0.95), Color: description.FromColor(p.key), Position: description.V3(5, 8, 5)},
		},
		Ground: &description.Ground{
			Size:     description.Ptr[float32](groundSize),
			Material: mat(p.ground, 0, 1),
		},
		Fog: &description.Fog{
			Enabled: description.Ptr(true),
			Color:   description.FromColor(p.skyBottom),
			Near:    description.Ptr[float32](fogNear),
			Far:     description.Ptr[float32](fogFar),
		},
		PostFX: &description.PostFX{
			Bloom:         description.Ptr(true),
			BloomStrength: description.Ptr(0.7 + 0.3*m.Warmth),
			Vignette:      description.Ptr(true),
			ToneMapping:   "aces",
		},
	}

	d.Objects = append(d.Objects, totem(p, a))
	d.Objects = append(d.Objects, orbs(p, a, m.Nostalgia)...)
	if containsAny(text, treeWords) {
		d.Objects = append(d.Objects, trees(p)...)
	}
	if containsAny(text, structWords) {
		d.Objects = append(d.Objects, pillars()...)
	}
	if containsAny(text, waterWords) {
		d.Objects = append(d.Objects, water(p, a))
	}
	if strings.Contains(text, "star") || tod == "night" {
		d.Objects = append(d.Objects, stars(rng)...)
	}
	return d, nil
}

// TimeOfDay maps arousal onto the sky preset: calm moods dawn, agitated ones night.
func TimeOfDay(arousal float32) string {
	switch {
	case arousal < -0.25:
		return "dawn"
	case arousal < 0.35:
		return "day"
	case arousal < 0.75:
		return "dusk"
	default:
		return "night"
	}
}

func totem(p palette, a float32) description.Object {
	h := common.Lerp(1.2, 3.8, a)
	return description.Object{
		ID:        "totem",
		Primitive: "cylinder",
		Position:  description.V3(0, h/2, 0),
		Scale:     description.V3(0.8, h, 0.8),
		Material:  mat(p.key, 0.2, 0.5),
		Behavior: &description.Behavior{
			Kind:      "pulse",
			Amplitude: description.Ptr(0.1 + 0.2*a),
			Speed:     description.Ptr(0.35 + 0.35*a),
		},
	}
}

func orbs(p palette, a, nostalgia float32) []description.Object {
	col := p.key.Lerp(p.skyTop, 0.5)
	n := max(4, int(common.Lerp(6, 16, nostalgia)))
	out := make([]description.Object, 0, n)
	for i, pt := range ring(n, common.Lerp(6, 12, a), 0.9) {
		out = append(out, description.Object{
			ID:        fmt.Sprintf("orb-%02d", i),
			Primitive: "sphere",
			Position:  description.V3(pt.x, pt.y, pt.z),
			Rotation:  description.V3(0, pt.angle, 0),
			Scale:     description.V3(0.9, 0.9, 0.9),
			Material:  mat(col, 0, 0.25),
			Behavior: &description.Behavior{
				Kind:   "orbit",
				Speed:  description.Ptr(0.25 + 0.55*a),
				Radius: description.Ptr(5 + 8*a),
				Axis:   description.V3(0, 1, 0),
			},
		})
	}
	return out
}

// trees places trunks and canopies on a ring. Their ids mark them for batching.
func trees(p palette) []description.Object {
	trunk := common.RGB(0.25, 0.13, 0.05)
	canopy := common.RGB(p.ground.R*0.6, p.ground.G*1.05, p.ground.B*0.6).Clamped()
	out := make([]description.Object, 0, 2*treeCount)
	for i, pt := range ring(treeCount, treeRadius, 0) {
		out = append(out,
			description.Object{
				ID:        fmt.Sprintf("%s%02d", scene.TrunkPrefix, i),
				Primitive: "cylinder",
				Position:  description.V3(pt.x, 1, pt.z),
				Scale:     description.V3(0.3, 2, 0.3),
				Material:  mat(trunk, 0, 1),
			},
			description.Object{
				ID:        fmt.Sprintf("%s%02d", scene.LeafPrefix, i),
				Primitive: "cone",
				Position:  description.V3(pt.x, 3, pt.z),
				Scale:     description.V3(1.4, 2, 1.4),
				Material:  mat(canopy, 0, 0.8),
			},
		)
	}
	return out
}

func pillars() []description.Object {
	stone := common.RGB(0.75, 0.75, 0.78)
	out := make([]description.Object, 0, pillarCount)
	for i, pt := range ring(pillarCount, pillarRadius, 0.6) {
		out = append(out, description.Object{
			ID:        fmt.Sprintf("pillar-%02d", i),
			Primitive: "box",
			Position:  description.V3(pt.x, 0.9, pt.z),
			Scale:     description.V3(1.4, 1.6, 1.4),
			Material:  mat(stone, 0.12, 0.6),
		})
	}
	return out
}

func water(p palette, a float32) description.Object {
	s := common.Lerp(8, 14, a)
	return description.Object{
		ID:        "water",
		Primitive: "torus",
		Position:  description.V3(0, 0.2, 0),
		Rotation:  description.V3(math32.Pi/2, 0, 0),
		Scale:     description.V3(s, 0.2, s),
		Material:  mat(common.RGB(p.skyTop.R*0.5, p.skyTop.G*0.6, p.skyTop.B), 0, 0.2),
	}
}

func stars(rng *rand.Rand) []description.Object {
	white := common.RGB(1, 1, 1)
	out := make([]description.Object, 0, starCount)
	for i := range starCount {
		x := rng.Float32()*80 - 40
		z := rng.Float32()*80 - 40
		y := 10 + rng.Float32()*15
		out = append(out, description.Object{
			ID:        fmt.Sprintf("star-%02d", i),
			Primitive: "sphere",
			Position:  description.V3(x, y, z),
			Scale:     description.V3(0.05, 0.05, 0.05),
			Material:  mat(white, 0, 0),
			Behavior: &description.Behavior{
				Kind:  "rotate",
				Speed: description.Ptr[float32](0.1),
				Axis:  description.V3(0, 1, 0),
			},
		})
	}
	return out
}

type ringPoint struct {
	x, y, z, angle float32
}

// ring spaces n points evenly on a horizontal circle.
func ring(n int, radius, y float32) []ringPoint {
	n = max(1, n)
	out := make([]ringPoint, n)
	for i := range out {
		ang := float32(i) / float32(n) * 2 * math32.Pi
		out[i] = ringPoint{x: math32.Cos(ang) * radius, y: y, z: math32.Sin(ang) * radius, angle: ang}
	}
	return out
}

func mat(c common.Color, metalness, roughness float32) *description.Material {
	return &description.Material{
		Kind:      "standard",
		Color:     description.FromColor(c),
		Metalness: description.Ptr(metalness),
		Roughness: description.Ptr(roughness),
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// titleFor uses the first sentence of the narrative, shortened to a title.
func titleFor(narrative string) string {
	const maxRunes = 48
	t := strings.TrimSpace(narrative)
	if i := strings.IndexAny(t, ".!?\n"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return "Untitled dream"
	}
	if utf8.RuneCountInString(t) > maxRunes {
		r := []rune(t)
		t = strings.TrimSpace(string(r[:maxRunes])) + "..."
	}
	return t
}
