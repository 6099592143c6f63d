package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/chewxy/math32"
)

// Controller defaults.
var (
	DefaultPosition = [3]float32{0, 3, 10}
	DefaultTarget   = [3]float32{0, 1, 0}
)

const (
	// DefaultDamping is the fraction of pending motion applied per frame.
	DefaultDamping float32 = 0.05

	// restEpsilon is the pending motion below which the controller is considered at rest.
	restEpsilon float32 = 1e-5
)

// cameraControllerImpl is the single implementation of CameraController. The eye is kept
// in spherical coordinates around the target.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	damping     float32
	rotateSpeed float32
	zoomSpeed   float32
	panSpeed    float32

	// pending motion not yet applied by Update
	dAzimuth   float32
	dElevation float32
	dRadius    float32
	dPan       [3]float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a damped orbit controller placed at DefaultPosition looking
// at DefaultTarget.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:           &sync.Mutex{},
		position:     DefaultPosition,
		target:       DefaultTarget,
		minRadius:    1,
		maxRadius:    500,
		minElevation: -math32.Pi/2 + 0.01,
		maxElevation: math32.Pi/2 - 0.01,
		damping:      DefaultDamping,
		rotateSpeed:  0.005,
		zoomSpeed:    1,
		panSpeed:     0.01,
	}
	for _, option := range options {
		option(cc)
	}
	cc.syncSpherical()
	return cc
}

// syncSpherical derives radius and angles from position and target. Caller must hold the mutex.
func (cc *cameraControllerImpl) syncSpherical() {
	off := common.Sub3(cc.position, cc.target)
	cc.radius = common.Length3(off)
	if cc.radius < 1e-6 {
		cc.radius = cc.minRadius
		off = [3]float32{0, 0, cc.radius}
	}
	cc.azimuth = math32.Atan2(off[0], off[2])
	cc.elevation = math32.Asin(common.Clamp(off[1]/cc.radius, -1, 1))
}

// syncPosition recomputes the eye from spherical coordinates. Caller must hold the mutex.
func (cc *cameraControllerImpl) syncPosition() {
	cosEl, sinEl := math32.Cos(cc.elevation), math32.Sin(cc.elevation)
	cc.position = [3]float32{
		cc.target[0] + cc.radius*cosEl*math32.Sin(cc.azimuth),
		cc.target[1] + cc.radius*sinEl,
		cc.target[2] + cc.radius*cosEl*math32.Cos(cc.azimuth),
	}
}

func (cc *cameraControllerImpl) Position() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Place(position, target [3]float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position, cc.target = position, target
	cc.dAzimuth, cc.dElevation, cc.dRadius, cc.dPan = 0, 0, 0, [3]float32{}
	cc.syncSpherical()
}

func (cc *cameraControllerImpl) SetTarget(target [3]float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.syncPosition()
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dAzimuth += dAzimuth * cc.rotateSpeed
	cc.dElevation += dElevation * cc.rotateSpeed
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	back := common.Normalize3(common.Sub3(cc.position, cc.target))
	right := common.Normalize3(common.Cross3([3]float32{0, 1, 0}, back))
	up := common.Cross3(back, right)
	// scaled by radius so a drag covers the same screen fraction at any zoom
	s := cc.panSpeed * cc.radius
	cc.dPan = common.Add3(cc.dPan, common.Add3(common.Scale3(right, -dx*s), common.Scale3(up, dy*s)))
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dRadius -= delta * cc.zoomSpeed
}

func (cc *cameraControllerImpl) Update() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	pending := math32.Abs(cc.dAzimuth) + math32.Abs(cc.dElevation) + math32.Abs(cc.dRadius) + common.Length3(cc.dPan)
	if pending < restEpsilon {
		cc.dAzimuth, cc.dElevation, cc.dRadius, cc.dPan = 0, 0, 0, [3]float32{}
		return false
	}

	f := cc.damping
	cc.azimuth += cc.dAzimuth * f
	cc.elevation = common.Clamp(cc.elevation+cc.dElevation*f, cc.minElevation, cc.maxElevation)
	cc.radius = common.Clamp(cc.radius+cc.dRadius*f, cc.minRadius, cc.maxRadius)
	cc.target = common.Add3(cc.target, common.Scale3(cc.dPan, f))

	keep := 1 - f
	cc.dAzimuth *= keep
	cc.dElevation *= keep
	cc.dRadius *= keep
	cc.dPan = common.Scale3(cc.dPan, keep)

	cc.syncPosition()
	return true
}

func (cc *cameraControllerImpl) Damping() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.damping
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}
