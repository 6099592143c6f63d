package material

import "strings"

// ToneMapping selects the fixed function mapping HDR color to display range.
type ToneMapping int

const (
	// ToneMappingFilmic is the ACES filmic curve. It is the default.
	ToneMappingFilmic ToneMapping = iota
	ToneMappingReinhard
	ToneMappingLinear
)

func (t ToneMapping) String() string {
	switch t {
	case ToneMappingReinhard:
		return "reinhard"
	case ToneMappingLinear:
		return "linear"
	default:
		return "filmic"
	}
}

// ParseToneMapping resolves a tone mapping name. "aces" is accepted as an alias of filmic.
// Empty and unknown names resolve to filmic; the bool is false only for a non-empty unknown name.
func ParseToneMapping(name string) (ToneMapping, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "filmic", "aces":
		return ToneMappingFilmic, true
	case "reinhard":
		return ToneMappingReinhard, true
	case "linear":
		return ToneMappingLinear, true
	default:
		return ToneMappingFilmic, false
	}
}

// Fog is linear distance fog applied in the fragment stage of every pipeline.
// A disabled Fog leaves fragment colors untouched.
type Fog struct {
	Enabled bool
	Color   [3]float32
	Near    float32
	Far     float32
}
