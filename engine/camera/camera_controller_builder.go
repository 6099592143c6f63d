package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial eye position.
//
// Parameters:
//   - position: world-space eye position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(position [3]float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = position
	}
}

// WithTarget sets the initial orbit pivot.
//
// Parameters:
//   - target: world-space look-at point
//
// Returns:
//   - CameraControllerOption: functional option to set the target
func WithTarget(target [3]float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithDamping sets the fraction of pending motion applied per frame, clamped to (0, 1].
//
// Parameters:
//   - damping: the damping factor
//
// Returns:
//   - CameraControllerOption: functional option to set the damping
func WithDamping(damping float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if damping > 0 && damping <= 1 {
			cc.damping = damping
		}
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius.
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if min > 0 && max >= min {
			cc.minRadius, cc.maxRadius = min, max
		}
	}
}

// WithElevationBounds sets the minimum and maximum elevation angles in radians.
func WithElevationBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if max >= min {
			cc.minElevation, cc.maxElevation = min, max
		}
	}
}

// WithRotateSpeed sets the radians of orbit per input unit.
func WithRotateSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateSpeed = speed
	}
}

// WithZoomSpeed sets the radius change per zoom unit.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan distance per input unit, relative to the orbit radius.
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}
