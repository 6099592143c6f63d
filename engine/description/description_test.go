package description

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/animator"
	"github.com/Carmen-Shannon/oxy-dream/engine/light"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "title": "Quiet lake",
  "sky": {"time_of_day": "dusk", "color_top": {"r": 0.1, "g": 0.2, "b": 0.3}, "color_bottom": [0.9, 0.8, 0.7]},
  "fog": {"enabled": true, "color": "#336699"},
  "lights": [{"type": "ambient", "intensity": 0.8, "color": {"r": 1, "g": 1, "b": 1}}],
  "ground": {"size": 120, "material": {"color": {"r": 0.1, "g": 0.5, "b": 0.1}, "roughness": 0.9}},
  "objects": [
    {"id": "water", "primitive": "torus", "rotation": [1.5707963, 0, 0], "material": {"color": {"r": 0, "g": 0, "b": 1}}},
    {"id": "orb-1", "primitive": "sphere", "position": [1, 2, 3], "material": {"color": {"r": 1, "g": 0, "b": 0}}, "behavior": {"kind": "orbit"}}
  ],
  "camera": {"position": [0, 3, 10], "look_at": [0, 0, 0]},
  "postfx": {"tone_mapping": "aces"}
}`

const sampleYAML = `
title: Quiet lake
sky:
  time_of_day: dusk
  color_top: {r: 0.1, g: 0.2, b: 0.3}
  color_bottom: [0.9, 0.8, 0.7]
fog:
  enabled: true
  color: "#336699"
lights:
  - type: ambient
    intensity: 0.8
    color: {r: 1, g: 1, b: 1}
ground:
  size: 120
  material:
    color: {r: 0.1, g: 0.5, b: 0.1}
    roughness: 0.9
objects:
  - id: water
    primitive: torus
    rotation: [1.5707963, 0, 0]
    material: {color: {r: 0, g: 0, b: 1}}
  - id: orb-1
    primitive: sphere
    position: [1, 2, 3]
    material: {color: {r: 1, g: 0, b: 0}}
    behavior: {kind: orbit}
camera:
  position: [0, 3, 10]
  look_at: [0, 0, 0]
postfx:
  tone_mapping: aces
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDecodeJSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := Decode([]byte(sampleJSON), FormatAuto)
	require.NoError(t, err)
	fromYAML, err := Decode([]byte(sampleYAML), FormatAuto)
	require.NoError(t, err)

	rj := fromJSON.Resolve(quietLogger())
	ry := fromYAML.Resolve(quietLogger())
	assert.Equal(t, rj.Background, ry.Background)
	assert.Equal(t, rj.Fog, ry.Fog)
	assert.Equal(t, len(rj.Objects), len(ry.Objects))
	for i := range rj.Objects {
		assert.Equal(t, rj.Objects[i].Transform, ry.Objects[i].Transform)
		assert.Equal(t, rj.Objects[i].Material, ry.Objects[i].Material)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("   "), FormatAuto)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode([]byte(`[1, 2, 3]`), FormatJSON)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode([]byte(`{"title": "t",`), FormatJSON)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode([]byte("just a sentence"), FormatYAML)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestMalformedFieldsFallBackToDefaults(t *testing.T) {
	payloads := map[string]string{
		"json": `{
  "title": ["not", "a", "title"],
  "ground": {"size": "big"},
  "fog": {"enabled": "yes", "near": "ten", "far": 90},
  "lights": [{"type": "ambient", "intensity": "bright"}, 5],
  "objects": [
    {"id": "a", "primitive": "sphere", "material": {"metalness": "shiny", "roughness": 0.25}},
    {"id": 7, "primitive": 3, "behavior": {"kind": "orbit", "radius": {}, "speed": 2}}
  ],
  "postfx": {"bloom": 1, "tone_mapping": "linear"}
}`,
		"yaml": `
title: [not, a, title]
ground: {size: big}
fog: {enabled: maybe, near: ten, far: 90}
lights:
  - {type: ambient, intensity: bright}
  - 5
objects:
  - {id: a, primitive: sphere, material: {metalness: shiny, roughness: 0.25}}
  - {id: [7], primitive: [3], behavior: {kind: orbit, radius: {}, speed: 2}}
postfx: {bloom: [1], tone_mapping: linear}
`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			d, err := Decode([]byte(payload), FormatAuto)
			require.NoError(t, err)
			r := d.Resolve(quietLogger())

			assert.Empty(t, r.Title)
			assert.Equal(t, DefaultGroundSize, r.Ground.Size)
			assert.True(t, r.Fog.Enabled, "a fog block without a usable flag is on")
			assert.Equal(t, DefaultFogNear, r.Fog.Near)
			assert.Equal(t, float32(90), r.Fog.Far)

			require.Len(t, r.Lights, 1, "the non-mapping light has no type and is skipped")
			assert.Equal(t, light.DefaultIntensity(light.LightTypeAmbient), r.Lights[0].Intensity)

			require.Len(t, r.Objects, 2)
			assert.Equal(t, float32(0), r.Objects[0].Material.Metalness)
			assert.Equal(t, float32(0.25), r.Objects[0].Material.Roughness)
			assert.Empty(t, r.Objects[1].ID)
			assert.Equal(t, common.PrimitiveBox, r.Objects[1].Primitive)
			orbit, ok := r.Objects[1].Behavior.(animator.Orbit)
			require.True(t, ok)
			assert.Equal(t, animator.DefaultOrbitRadius, orbit.Radius)
			assert.Equal(t, float32(2), orbit.Speed)

			assert.True(t, r.PostFX.Bloom)
			assert.Equal(t, material.ToneMappingLinear, r.PostFX.ToneMapping)
		})
	}
}

func TestMalformedGroundSize(t *testing.T) {
	d, err := Decode([]byte(`{"ground":{"size":"big"}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, float32(200), d.Resolve(quietLogger()).Ground.Size)
}

func TestMalformedSectionIsAbsent(t *testing.T) {
	d, err := Decode([]byte(`{"objects": 5, "sky": "blue", "fog": [1]}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, d.Objects)
	assert.Nil(t, d.Sky)
	assert.Nil(t, d.Fog)
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Quiet lake", d.Title)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestColorForms(t *testing.T) {
	d, err := Decode([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)
	r := d.Resolve(quietLogger())

	assert.InDelta(t, 0.2, r.Fog.Color[0], 1e-3)
	assert.InDelta(t, 0.4, r.Fog.Color[1], 1e-3)
	assert.InDelta(t, 0.6, r.Fog.Color[2], 1e-3)
	assert.Equal(t, common.RGB(0.9, 0.8, 0.7), r.SkyBottom)
}

func TestMalformedColorFallsBackToDefault(t *testing.T) {
	d, err := Decode([]byte(`{"sky": {"color_top": "not-a-color", "color_bottom": [1, 2]}}`), FormatJSON)
	require.NoError(t, err)
	r := d.Resolve(quietLogger())
	assert.Equal(t, DefaultSkyTop, r.SkyTop)
	assert.Equal(t, DefaultSkyBottom, r.SkyBottom)
}

func TestMalformedVectorFallsBackToDefault(t *testing.T) {
	d, err := Decode([]byte(`{"objects": [{"id": "a", "primitive": "box", "position": "up", "scale": [1, 2]}]}`), FormatJSON)
	require.NoError(t, err)
	r := d.Resolve(quietLogger())
	require.Len(t, r.Objects, 1)
	assert.Equal(t, [3]float32{}, r.Objects[0].Transform.Position)
	assert.Equal(t, [3]float32{1, 1, 1}, r.Objects[0].Transform.Scale)
}

func TestBackgroundMidpoint(t *testing.T) {
	d := &Description{Sky: &Sky{ColorTop: RGB(0, 0, 0), ColorBottom: RGB(1, 1, 1)}}
	r := d.Resolve(quietLogger())
	assert.InDelta(t, 0.5, r.Background.R, 1e-6)
	assert.Equal(t, "sunset", r.Environment)

	d.Sky.TimeOfDay = "night"
	r = d.Resolve(quietLogger())
	assert.InDelta(t, 0.2, r.Background.G, 1e-6)
	assert.Equal(t, "night", r.Environment)
}

func TestFogDefaults(t *testing.T) {
	r := (&Description{}).Resolve(quietLogger())
	assert.False(t, r.Fog.Enabled)

	r = (&Description{Fog: &Fog{Enabled: Ptr(true)}}).Resolve(quietLogger())
	assert.True(t, r.Fog.Enabled)
	assert.Equal(t, DefaultFogNear, r.Fog.Near)
	assert.Equal(t, DefaultFogFar, r.Fog.Far)

	r = (&Description{Fog: &Fog{Enabled: Ptr(false), Near: Ptr[float32](1)}}).Resolve(quietLogger())
	assert.False(t, r.Fog.Enabled)

	r = (&Description{Fog: &Fog{Near: Ptr[float32](50), Far: Ptr[float32](20)}}).Resolve(quietLogger())
	assert.True(t, r.Fog.Enabled)
	assert.Greater(t, r.Fog.Far, r.Fog.Near)
}

func TestLightsDefaultsAndFallbacks(t *testing.T) {
	r := (&Description{}).Resolve(quietLogger())
	require.Len(t, r.Lights, 1)
	assert.Equal(t, light.LightTypeAmbient, r.Lights[0].Type)
	assert.Equal(t, float32(1), r.Lights[0].Intensity)
	assert.Equal(t, common.White, r.Lights[0].Color)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r = (&Description{Lights: []Light{
		{Type: "spot"},
		{Type: "hemisphere"},
		{Type: "directional", Intensity: Ptr[float32](-3)},
	}}).Resolve(logger)
	require.Len(t, r.Lights, 2)
	assert.Equal(t, light.LightTypeHemisphere, r.Lights[0].Type)
	assert.InDelta(t, 0.4, r.Lights[0].Intensity, 1e-6)
	assert.Equal(t, light.DefaultDirectionalPosition, r.Lights[1].Position)
	assert.InDelta(t, 0.9, r.Lights[1].Intensity, 1e-6)
	assert.Contains(t, logs.String(), "unknown type")
}

func TestObjectDefaults(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	d := &Description{Objects: []Object{
		{ID: "a"},
		{ID: "b", Primitive: "dodecahedron"},
		{ID: "c", Primitive: "CONE", Behavior: &Behavior{Kind: "wiggle"}},
	}}
	r := d.Resolve(logger)
	require.Len(t, r.Objects, 3)
	for _, o := range r.Objects {
		assert.Equal(t, common.PrimitiveBox == o.Primitive, o.ID != "c", o.ID)
		assert.Equal(t, common.IdentityTransform(), o.Transform)
		assert.Equal(t, common.White, o.Material.Color)
		assert.Equal(t, float32(1), o.Material.Roughness)
		assert.Nil(t, o.Behavior)
	}
	assert.Contains(t, logs.String(), "unknown primitive")
	assert.Contains(t, logs.String(), "unknown behavior")
}

func TestBehaviorDefaults(t *testing.T) {
	d := &Description{Objects: []Object{
		{ID: "r", Behavior: &Behavior{Kind: "rotate"}},
		{ID: "o", Behavior: &Behavior{Kind: "orbit"}},
		{ID: "p", Behavior: &Behavior{Kind: "pulse"}},
		{ID: "n", Behavior: &Behavior{Kind: "none"}},
	}}
	r := d.Resolve(quietLogger())
	assert.Equal(t, animator.Rotate{Axis: [3]float32{0, 1, 0}, Speed: 0.4}, r.Objects[0].Behavior)
	assert.Equal(t, animator.Orbit{Radius: 6, Speed: 0.5, PhaseOffset: animator.PhaseOffset("o")}, r.Objects[1].Behavior)
	assert.Equal(t, animator.Pulse{Amplitude: 0.2, Speed: 0.6}, r.Objects[2].Behavior)
	assert.Nil(t, r.Objects[3].Behavior)
}

func TestCameraPlacement(t *testing.T) {
	r := (&Description{Camera: &Camera{Position: V3(1, 2, 3)}}).Resolve(quietLogger())
	assert.Nil(t, r.Camera)

	r = (&Description{Camera: &Camera{Position: V3(1, 2, 3), LookAt: Vec3{1, 2}}}).Resolve(quietLogger())
	assert.Nil(t, r.Camera)

	r = (&Description{Camera: &Camera{Position: V3(1, 2, 3), LookAt: V3(0, 1, 0)}}).Resolve(quietLogger())
	require.NotNil(t, r.Camera)
	assert.Equal(t, [3]float32{1, 2, 3}, r.Camera.Position)
}

func TestPostFXDefaults(t *testing.T) {
	r := (&Description{}).Resolve(quietLogger())
	assert.Equal(t, material.ToneMappingFilmic, r.PostFX.ToneMapping)
	assert.True(t, r.PostFX.Bloom)
	assert.Equal(t, DefaultBloomStrength, r.PostFX.BloomStrength)

	r = (&Description{PostFX: &PostFX{ToneMapping: "reinhard", Bloom: Ptr(false)}}).Resolve(quietLogger())
	assert.Equal(t, material.ToneMappingReinhard, r.PostFX.ToneMapping)
	assert.False(t, r.PostFX.Bloom)
}

func TestGroundDefaults(t *testing.T) {
	r := (&Description{Ground: &Ground{Size: Ptr[float32](-5)}}).Resolve(quietLogger())
	assert.Equal(t, DefaultGroundSize, r.Ground.Size)
	assert.Equal(t, DefaultGroundColor, r.Ground.Material.Color)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	d, err := Decode([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)
	fresh, err := Decode([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	_ = d.Resolve(quietLogger())
	assert.Equal(t, fresh, d)
}

func TestCloneIsDeep(t *testing.T) {
	d := &Description{Fog: &Fog{Color: RGB(1, 0, 0)}, Objects: []Object{{ID: "a", Position: V3(1, 2, 3)}}}
	c, err := d.Clone()
	require.NoError(t, err)

	c.Fog.Color.R = 0
	c.Objects[0].Position[0] = 9
	assert.Equal(t, float32(1), d.Fog.Color.R)
	assert.Equal(t, float32(1), d.Objects[0].Position[0])
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	d := &Description{
		Title:       "t",
		Description: "a long night",
		Style:       "stylized",
		Camera:      &Camera{Position: V3(0, 3, 10), LookAt: V3(0, 1, 0)},
		Sky:         &Sky{TimeOfDay: "night", ColorTop: RGB(0, 0, 0.25), ColorBottom: RGB(0.5, 0.5, 1)},
		Lights: []Light{
			{Type: "directional", Intensity: Ptr[float32](0.75), Color: RGB(1, 1, 0.5), Position: V3(5, 8, 5)},
		},
		Ground: &Ground{Size: Ptr[float32](64), Material: &Material{Kind: "lambert", Color: RGB(0.25, 0.5, 0.25)}},
		Objects: []Object{{
			ID:        "a",
			Primitive: "cone",
			Position:  V3(1, 2, 3),
			Rotation:  V3(0, 0.5, 0),
			Scale:     V3(2, 2, 2),
			Material:  &Material{Kind: "phong", Color: RGB(0.5, 0.5, 0.5), Metalness: Ptr[float32](0.25), Roughness: Ptr[float32](0.5)},
			Behavior:  &Behavior{Kind: "rotate", Speed: Ptr[float32](2), Radius: Ptr[float32](4), Amplitude: Ptr[float32](0.125), Axis: V3(1, 0, 0)},
		}},
		Fog:    &Fog{Enabled: Ptr(true), Color: RGB(0.25, 0.25, 0.25), Near: Ptr[float32](8), Far: Ptr[float32](96)},
		PostFX: &PostFX{Bloom: Ptr(false), BloomStrength: Ptr[float32](0.5), Vignette: Ptr(true), ToneMapping: "reinhard"},
	}
	for _, f := range []Format{FormatJSON, FormatYAML} {
		data, err := Encode(d, f)
		require.NoError(t, err)
		back, err := Decode(data, f)
		require.NoError(t, err)
		assert.Equal(t, d, back, "every field survives format %v", f)
	}
}

func TestResolveNilDescription(t *testing.T) {
	var d *Description
	r := d.Resolve(quietLogger())
	assert.Len(t, r.Lights, 1)
	assert.Equal(t, DefaultGroundSize, r.Ground.Size)
}
