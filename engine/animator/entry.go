package animator

import "github.com/Carmen-Shannon/oxy-dream/common"

// Target is anything whose transform an animation entry drives: an individual
// renderable or one instance slot of a batch.
type Target interface {
	Transform() common.Transform
	SetTransform(t common.Transform)
}

// Entry binds a behavior to a target together with the target's resting transform.
type Entry struct {
	ID       string
	Target   Target
	Behavior Behavior
	Base     common.Transform
}

// NewEntry captures the target's current transform as the resting state.
//
// Parameters:
//   - id: the identifier of the animated object
//   - target: the transform owner to drive
//   - b: the behavior to apply
//
// Returns:
//   - Entry: the entry ready to be added to a Registry
func NewEntry(id string, target Target, b Behavior) Entry {
	return Entry{
		ID:       id,
		Target:   target,
		Behavior: b,
		Base:     target.Transform(),
	}
}

func (e *Entry) update(t float32) {
	e.Target.SetTransform(e.Behavior.Apply(e.Base, e.Target.Transform(), t))
}
