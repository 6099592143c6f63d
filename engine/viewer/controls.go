package viewer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/camera"
	"github.com/Carmen-Shannon/oxy-dream/engine/window"
)

// keyStep is the drag distance in pixels one arrow or WASD press stands for.
const keyStep float32 = 12

// controls forwards window input to the camera controller. A left drag orbits, a right or
// middle drag pans, shift turns a left drag into a pan and the wheel zooms. The arrow keys
// orbit, WASD pans and =/- zoom.
type controls struct {
	mu   sync.Mutex
	ctrl camera.CameraController

	shift    bool
	dragging bool
	panning  bool
	lastX    int32
	lastY    int32
}

// bindControls registers the input callbacks of w and returns the state they share.
func bindControls(w window.Window, ctrl camera.CameraController) *controls {
	c := &controls{ctrl: ctrl}
	w.SetKeyCallback(c.key)
	w.SetMouseButtonCallback(c.button)
	w.SetMouseMoveCallback(c.move)
	w.SetScrollCallback(c.scroll)
	return c
}

func (c *controls) key(code uint32, down bool) {
	if code == common.KeyShift {
		c.mu.Lock()
		c.shift = down
		c.mu.Unlock()
		return
	}
	if !down {
		return
	}
	switch code {
	case common.KeyLeft:
		c.ctrl.Orbit(keyStep, 0)
	case common.KeyRight:
		c.ctrl.Orbit(-keyStep, 0)
	case common.KeyUp:
		c.ctrl.Orbit(0, keyStep)
	case common.KeyDown:
		c.ctrl.Orbit(0, -keyStep)
	case common.KeyA:
		c.ctrl.Pan(keyStep, 0)
	case common.KeyD:
		c.ctrl.Pan(-keyStep, 0)
	case common.KeyW:
		c.ctrl.Pan(0, keyStep)
	case common.KeyS:
		c.ctrl.Pan(0, -keyStep)
	case common.KeyEqual:
		c.ctrl.Zoom(1)
	case common.KeyMinus:
		c.ctrl.Zoom(-1)
	}
}

func (c *controls) button(b window.MouseButton, down bool, x, y int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !down {
		c.dragging = false
		return
	}
	c.dragging = true
	c.panning = b != window.MouseButtonLeft || c.shift
	c.lastX, c.lastY = x, y
}

func (c *controls) move(x, y int32) {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return
	}
	dx, dy := float32(x-c.lastX), float32(y-c.lastY)
	c.lastX, c.lastY = x, y
	panning := c.panning
	c.mu.Unlock()

	if panning {
		c.ctrl.Pan(dx, dy)
		return
	}
	c.ctrl.Orbit(-dx, dy)
}

func (c *controls) scroll(delta float32) {
	c.ctrl.Zoom(delta)
}
