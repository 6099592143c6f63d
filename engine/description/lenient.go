package description

import (
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"
)

var errNotMapping = errors.New("description: payload is not a mapping")

// field decodes one authored value into its destination. A value of the wrong shape leaves
// the destination untouched, so resolution sees the field as absent.
type field interface {
	decodeJSON(data []byte)
	decodeYAML(node *yaml.Node)
}

type slot[T any] struct {
	dst *T
}

func (s slot[T]) decodeJSON(data []byte) {
	var v T
	if json.Unmarshal(data, &v) == nil {
		*s.dst = v
	}
}

func (s slot[T]) decodeYAML(node *yaml.Node) {
	var v T
	if node.Decode(&v) == nil {
		*s.dst = v
	}
}

func bind[T any](dst *T) field {
	return slot[T]{dst: dst}
}

// fieldSet maps each authored key of a struct to its field.
type fieldSet map[string]field

// decodeJSONFields decodes data as an object one key at a time. Unknown keys are ignored.
//
// Returns:
//   - bool: false if data is not a JSON object
func decodeJSONFields(data []byte, fields fieldSet) bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	for key, msg := range raw {
		if f, ok := fields[key]; ok {
			f.decodeJSON(msg)
		}
	}
	return true
}

// decodeYAMLFields is decodeJSONFields for a YAML node.
func decodeYAMLFields(node *yaml.Node, fields fieldSet) bool {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if f, ok := fields[node.Content[i].Value]; ok {
			f.decodeYAML(node.Content[i+1])
		}
	}
	return true
}

func (d *Description) fields() fieldSet {
	return fieldSet{
		"title":       bind(&d.Title),
		"description": bind(&d.Description),
		"style":       bind(&d.Style),
		"camera":      bind(&d.Camera),
		"sky":         bind(&d.Sky),
		"lights":      bind(&d.Lights),
		"ground":      bind(&d.Ground),
		"objects":     bind(&d.Objects),
		"fog":         bind(&d.Fog),
		"postfx":      bind(&d.PostFX),
	}
}

// UnmarshalJSON fails only when the payload is not an object. Malformed fields are dropped.
func (d *Description) UnmarshalJSON(data []byte) error {
	*d = Description{}
	if !decodeJSONFields(data, d.fields()) {
		return errNotMapping
	}
	return nil
}

func (d *Description) UnmarshalYAML(node *yaml.Node) error {
	*d = Description{}
	if !decodeYAMLFields(node, d.fields()) {
		return errNotMapping
	}
	return nil
}

func (c *Camera) fields() fieldSet {
	return fieldSet{"position": bind(&c.Position), "look_at": bind(&c.LookAt)}
}

func (c *Camera) UnmarshalJSON(data []byte) error {
	*c = Camera{}
	decodeJSONFields(data, c.fields())
	return nil
}

func (c *Camera) UnmarshalYAML(node *yaml.Node) error {
	*c = Camera{}
	decodeYAMLFields(node, c.fields())
	return nil
}

func (s *Sky) fields() fieldSet {
	return fieldSet{
		"time_of_day":  bind(&s.TimeOfDay),
		"color_top":    bind(&s.ColorTop),
		"color_bottom": bind(&s.ColorBottom),
	}
}

func (s *Sky) UnmarshalJSON(data []byte) error {
	*s = Sky{}
	decodeJSONFields(data, s.fields())
	return nil
}

func (s *Sky) UnmarshalYAML(node *yaml.Node) error {
	*s = Sky{}
	decodeYAMLFields(node, s.fields())
	return nil
}

func (l *Light) fields() fieldSet {
	return fieldSet{
		"type":      bind(&l.Type),
		"intensity": bind(&l.Intensity),
		"color":     bind(&l.Color),
		"position":  bind(&l.Position),
	}
}

func (l *Light) UnmarshalJSON(data []byte) error {
	*l = Light{}
	decodeJSONFields(data, l.fields())
	return nil
}

func (l *Light) UnmarshalYAML(node *yaml.Node) error {
	*l = Light{}
	decodeYAMLFields(node, l.fields())
	return nil
}

func (g *Ground) fields() fieldSet {
	return fieldSet{"size": bind(&g.Size), "material": bind(&g.Material)}
}

func (g *Ground) UnmarshalJSON(data []byte) error {
	*g = Ground{}
	decodeJSONFields(data, g.fields())
	return nil
}

func (g *Ground) UnmarshalYAML(node *yaml.Node) error {
	*g = Ground{}
	decodeYAMLFields(node, g.fields())
	return nil
}

func (m *Material) fields() fieldSet {
	return fieldSet{
		"kind":      bind(&m.Kind),
		"color":     bind(&m.Color),
		"metalness": bind(&m.Metalness),
		"roughness": bind(&m.Roughness),
	}
}

func (m *Material) UnmarshalJSON(data []byte) error {
	*m = Material{}
	decodeJSONFields(data, m.fields())
	return nil
}

func (m *Material) UnmarshalYAML(node *yaml.Node) error {
	*m = Material{}
	decodeYAMLFields(node, m.fields())
	return nil
}

func (b *Behavior) fields() fieldSet {
	return fieldSet{
		"kind":      bind(&b.Kind),
		"speed":     bind(&b.Speed),
		"radius":    bind(&b.Radius),
		"amplitude": bind(&b.Amplitude),
		"axis":      bind(&b.Axis),
	}
}

func (b *Behavior) UnmarshalJSON(data []byte) error {
	*b = Behavior{}
	decodeJSONFields(data, b.fields())
	return nil
}

func (b *Behavior) UnmarshalYAML(node *yaml.Node) error {
	*b = Behavior{}
	decodeYAMLFields(node, b.fields())
	return nil
}

func (o *Object) fields() fieldSet {
	return fieldSet{
		"id":        bind(&o.ID),
		"primitive": bind(&o.Primitive),
		"position":  bind(&o.Position),
		"rotation":  bind(&o.Rotation),
		"scale":     bind(&o.Scale),
		"material":  bind(&o.Material),
		"behavior":  bind(&o.Behavior),
	}
}

func (o *Object) UnmarshalJSON(data []byte) error {
	*o = Object{}
	decodeJSONFields(data, o.fields())
	return nil
}

func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	*o = Object{}
	decodeYAMLFields(node, o.fields())
	return nil
}

func (f *Fog) fields() fieldSet {
	return fieldSet{
		"enabled": bind(&f.Enabled),
		"color":   bind(&f.Color),
		"near":    bind(&f.Near),
		"far":     bind(&f.Far),
	}
}

func (f *Fog) UnmarshalJSON(data []byte) error {
	*f = Fog{}
	decodeJSONFields(data, f.fields())
	return nil
}

func (f *Fog) UnmarshalYAML(node *yaml.Node) error {
	*f = Fog{}
	decodeYAMLFields(node, f.fields())
	return nil
}

func (p *PostFX) fields() fieldSet {
	return fieldSet{
		"bloom":          bind(&p.Bloom),
		"bloom_strength": bind(&p.BloomStrength),
		"vignette":       bind(&p.Vignette),
		"tone_mapping":   bind(&p.ToneMapping),
	}
}

func (p *PostFX) UnmarshalJSON(data []byte) error {
	*p = PostFX{}
	decodeJSONFields(data, p.fields())
	return nil
}

func (p *PostFX) UnmarshalYAML(node *yaml.Node) error {
	*p = PostFX{}
	decodeYAMLFields(node, p.fields())
	return nil
}
