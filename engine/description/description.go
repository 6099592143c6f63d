// Package description defines the scene description contract: the optional-everything
// schema produced by a generator or an author, its decoders, and the single resolution
// pass that turns it into a fully-populated value the scene builder can consume.
package description

import (
	"github.com/jinzhu/copier"
)

// Description is one scene as authored. Every field is optional; Resolve fills the gaps.
// A field whose value has the wrong shape decodes as absent.
type Description struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Style       string   `json:"style,omitempty" yaml:"style,omitempty"`
	Camera      *Camera  `json:"camera,omitempty" yaml:"camera,omitempty"`
	Sky         *Sky     `json:"sky,omitempty" yaml:"sky,omitempty"`
	Lights      []Light  `json:"lights,omitempty" yaml:"lights,omitempty"`
	Ground      *Ground  `json:"ground,omitempty" yaml:"ground,omitempty"`
	Objects     []Object `json:"objects,omitempty" yaml:"objects,omitempty"`
	Fog         *Fog     `json:"fog,omitempty" yaml:"fog,omitempty"`
	PostFX      *PostFX  `json:"postfx,omitempty" yaml:"postfx,omitempty"`
}

// Camera places the view. It is applied only when both vectors are well-formed.
type Camera struct {
	Position Vec3 `json:"position,omitempty" yaml:"position,omitempty"`
	LookAt   Vec3 `json:"look_at,omitempty" yaml:"look_at,omitempty"`
}

type Sky struct {
	TimeOfDay   string `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`
	ColorTop    *Color `json:"color_top,omitempty" yaml:"color_top,omitempty"`
	ColorBottom *Color `json:"color_bottom,omitempty" yaml:"color_bottom,omitempty"`
}

type Light struct {
	Type      string   `json:"type" yaml:"type"`
	Intensity *float32 `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Color     *Color   `json:"color,omitempty" yaml:"color,omitempty"`
	Position  Vec3     `json:"position,omitempty" yaml:"position,omitempty"`
}

type Ground struct {
	Size     *float32  `json:"size,omitempty" yaml:"size,omitempty"`
	Material *Material `json:"material,omitempty" yaml:"material,omitempty"`
}

type Material struct {
	Kind      string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Color     *Color   `json:"color,omitempty" yaml:"color,omitempty"`
	Metalness *float32 `json:"metalness,omitempty" yaml:"metalness,omitempty"`
	Roughness *float32 `json:"roughness,omitempty" yaml:"roughness,omitempty"`
}

// Behavior is the authored parameter bag of an animation. Only the fields that
// matter for Kind are read.
type Behavior struct {
	Kind      string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Speed     *float32 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Radius    *float32 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Amplitude *float32 `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
	Axis      Vec3     `json:"axis,omitempty" yaml:"axis,omitempty"`
}

// Object is one shape in the scene. ID must be unique within a description.
type Object struct {
	ID        string    `json:"id" yaml:"id"`
	Primitive string    `json:"primitive" yaml:"primitive"`
	Position  Vec3      `json:"position,omitempty" yaml:"position,omitempty"`
	Rotation  Vec3      `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale     Vec3      `json:"scale,omitempty" yaml:"scale,omitempty"`
	Material  *Material `json:"material,omitempty" yaml:"material,omitempty"`
	Behavior  *Behavior `json:"behavior,omitempty" yaml:"behavior,omitempty"`
}

type Fog struct {
	Enabled *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Color   *Color   `json:"color,omitempty" yaml:"color,omitempty"`
	Near    *float32 `json:"near,omitempty" yaml:"near,omitempty"`
	Far     *float32 `json:"far,omitempty" yaml:"far,omitempty"`
}

type PostFX struct {
	Bloom         *bool    `json:"bloom,omitempty" yaml:"bloom,omitempty"`
	BloomStrength *float32 `json:"bloom_strength,omitempty" yaml:"bloom_strength,omitempty"`
	Vignette      *bool    `json:"vignette,omitempty" yaml:"vignette,omitempty"`
	ToneMapping   string   `json:"tone_mapping,omitempty" yaml:"tone_mapping,omitempty"`
}

// Clone returns a deep copy of d that shares no slices or pointers with it.
//
// Returns:
//   - *Description: the copy
//   - error: an error if the copy failed
func (d *Description) Clone() (*Description, error) {
	if d == nil {
		return nil, nil
	}
	out := &Description{}
	if err := copier.CopyWithOption(out, d, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return out, nil
}

// Ptr returns a pointer to v. It keeps hand-built descriptions readable.
func Ptr[T any](v T) *T {
	return &v
}
