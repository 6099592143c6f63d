package generator

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(narrative string, m Mood) Request {
	seed := int64(42)
	return Request{Narrative: narrative, Mood: m, Seed: &seed}
}

func countPrefix(d *description.Description, prefix string) int {
	n := 0
	for _, o := range d.Objects {
		if strings.HasPrefix(o.ID, prefix) {
			n++
		}
	}
	return n
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	req := seeded("stars over a ruined temple", Mood{Arousal: 0.9, Warmth: 0.3})
	a, err := Generate(req)
	require.NoError(t, err)
	b, err := Generate(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := int64(7)
	req.Seed = &other
	c, err := Generate(req)
	require.NoError(t, err)
	assert.NotEqual(t, a.Objects, c.Objects, "stars move with the seed")
}

func TestKeywordsSelectFeatures(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		trees     int
		pillars   int
		water     int
		stars     int
	}{
		{"plain", "an empty room", 0, 0, 0, 0},
		{"forest", "a walk in the Forest", 24, 0, 0, 0},
		{"lake", "rain on the lake", 0, 0, 1, 0},
		{"temple", "the old temple", 0, 6, 0, 0},
		{"stars", "counting stars", 0, 0, 0, 50},
		{"all", "a forest temple by the sea under the stars", 24, 6, 1, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Generate(seeded(tt.narrative, Mood{}))
			require.NoError(t, err)
			assert.Equal(t, tt.trees, countPrefix(d, "tree-"))
			assert.Equal(t, tt.pillars, countPrefix(d, "pillar-"))
			assert.Equal(t, tt.water, countPrefix(d, "water"))
			assert.Equal(t, tt.stars, countPrefix(d, "star-"))
			assert.Equal(t, 1, countPrefix(d, "totem"))
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		arousal float32
		want    string
	}{
		{-1, "dawn"}, {-0.26, "dawn"}, {-0.25, "day"}, {0.34, "day"},
		{0.35, "dusk"}, {0.74, "dusk"}, {0.75, "night"}, {1, "night"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeOfDay(tt.arousal), "arousal %v", tt.arousal)
	}
}

func TestNightAlwaysHasStars(t *testing.T) {
	d, err := Generate(seeded("nothing in particular", Mood{Arousal: 0.8}))
	require.NoError(t, err)
	assert.Equal(t, "night", d.Sky.TimeOfDay)
	assert.Equal(t, 50, countPrefix(d, "star-"))
	for _, o := range d.Objects {
		if strings.HasPrefix(o.ID, "star-") {
			y := o.Position[1]
			assert.True(t, y >= 10 && y <= 25, "star height %v", y)
		}
	}
}

func TestMoodShapesScene(t *testing.T) {
	calm, err := Generate(seeded("", Mood{Arousal: -1, Nostalgia: 1}))
	require.NoError(t, err)
	wild, err := Generate(seeded("", Mood{Arousal: 1}))
	require.NoError(t, err)

	assert.InDelta(t, 10, calm.Camera.Position[2], 1e-5)
	assert.InDelta(t, 6, wild.Camera.Position[2], 1e-5)
	assert.Equal(t, 16, countPrefix(calm, "orb-"))
	assert.Equal(t, 6, countPrefix(wild, "orb-"))
	assert.Equal(t, "Untitled dream", calm.Title)
	assert.Equal(t, StyleStylized, calm.Style)

	cold, err := Generate(seeded("", Mood{Warmth: 0}))
	require.NoError(t, err)
	warm, err := Generate(seeded("", Mood{Warmth: 1}))
	require.NoError(t, err)
	assert.Greater(t, cold.Sky.ColorTop.B, cold.Sky.ColorTop.R)
	assert.Greater(t, warm.Sky.ColorTop.R, warm.Sky.ColorTop.B)
}

func TestValidate(t *testing.T) {
	_, err := Generate(Request{Mood: Mood{Arousal: 2}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = Generate(Request{Mood: Mood{Warmth: -0.1}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = Generate(Request{Style: "cubist"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NoError(t, Request{Style: StyleLowPoly}.Validate())
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "A lake at dawn", titleFor("  A lake at dawn. Then the birds came."))
	long := strings.Repeat("word ", 20)
	assert.True(t, strings.HasSuffix(titleFor(long), "..."))
}

func TestGeneratedSceneBuilds(t *testing.T) {
	d, err := Generate(seeded("a forest temple by the lake", Mood{Arousal: 0.9}))
	require.NoError(t, err)

	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless)
	require.NoError(t, err)
	defer r.Release()
	b := scene.NewBuilder(r)
	defer b.Dispose()

	g, err := b.Build(d)
	require.NoError(t, err)
	buckets := g.Batches.Buckets()
	require.Len(t, buckets, 2, "one bucket for trunks, one for canopies")
	for _, bk := range buckets {
		assert.Equal(t, treeCount, bk.Count())
	}
	// totem, 6 orbs, 6 pillars, water, 50 stars
	assert.Len(t, g.Renderables, 64)
	assert.Equal(t, 57, g.Registry.Len())
	assert.Len(t, g.Water(), 1)
	assert.Len(t, g.Lights, 3)
	assert.Equal(t, g.ResourceCount(), r.LiveResources())
}
