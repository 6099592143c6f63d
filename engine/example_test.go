package engine_test

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-dream/engine"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dream/engine/scene"
)

// forest returns n batched trees on a grid.
func forest(n int) *description.Description {
	desc := &description.Description{Title: "many trees"}
	for i := range n {
		x, z := float32(i%20)*2-20, float32(i/20)*2-10
		desc.Objects = append(desc.Objects,
			description.Object{
				ID:        fmt.Sprintf("%s%d", scene.TrunkPrefix, i),
				Primitive: "cylinder",
				Position:  description.V3(x, 1, z),
				Material:  &description.Material{Color: description.RGB(0.25, 0.13, 0.05)},
			},
			description.Object{
				ID:        fmt.Sprintf("%s%d", scene.LeafPrefix, i),
				Primitive: "cone",
				Position:  description.V3(x, 3, z),
				Material:  &description.Material{Color: description.RGB(0.2, 0.4, 0.2)},
			},
		)
	}
	return desc
}

func Example() {
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer r.Release()
	e := engine.NewEngine(engine.WithRenderer(r), engine.WithWorkers(2))
	defer e.Dispose()

	if err := e.OnSceneChanged(forest(200)); err != nil {
		fmt.Println(err)
		return
	}
	for i := range 3 {
		e.Tick(float32(i) / 60)
	}

	s := r.Stats()
	fmt.Printf("buckets=%d draws=%d instances=%d frames=%d\n",
		len(e.Graph().Batches.Buckets()), s.DrawCalls, s.Instances, s.Frames)
	// Output: buckets=2 draws=3 instances=401 frames=3
}

func ExampleEngine_OnSceneChanged_overflow() {
	r, _ := renderer.NewRenderer(renderer.BackendTypeHeadless)
	defer r.Release()
	e := engine.NewEngine(engine.WithRenderer(r), engine.WithWorkers(1), engine.WithBatchCapacity(4))
	defer e.Dispose()

	err := e.OnSceneChanged(forest(5))
	fmt.Println(err)
	for _, b := range e.Graph().Batches.Buckets() {
		fmt.Println(b.Key().Kind, b.Count(), b.Dropped())
	}
	// Output:
	// batch: bucket capacity exceeded: cylinder #40210d holds 4, dropped 1
	// batch: bucket capacity exceeded: cone #336633 holds 4, dropped 1
	// cylinder 4 1
	// cone 4 1
}
