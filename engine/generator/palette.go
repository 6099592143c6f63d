package generator

import "github.com/Carmen-Shannon/oxy-dream/common"

// palette is the set of colours a mood produces.
type palette struct {
	skyTop    common.Color
	skyBottom common.Color
	ground    common.Color
	key       common.Color
}

// paletteFor derives the palette from a mood. Warmth turns the hue from blue (220) to amber
// (30), valence brightens and nostalgia washes the colours out.
func paletteFor(m Mood) palette {
	val := (m.Valence + 1) / 2
	desat := 0.15 + 0.35*m.Nostalgia
	hue := common.Lerp(220, 30, m.Warmth)
	return palette{
		skyTop:    common.HSV(hue, common.Clamp(0.5-desat, 0, 1), common.Lerp(0.3, 0.8, val)),
		skyBottom: common.HSV(common.Lerp(hue, 190, 0.3), common.Clamp(0.6-desat, 0, 1), common.Lerp(0.2, 0.6, val)),
		ground:    common.HSV(common.Lerp(110, 40, m.Warmth), common.Clamp(0.6-desat, 0, 1), common.Lerp(0.3, 0.7, val)),
		key:       common.HSV(hue, 0.2, common.Lerp(0.6, 1.0, val)),
	}
}
