package camera

// CameraController is a damped orbit/pan/zoom control. Input methods only accumulate
// pending motion; Update applies a damping fraction of it once per frame, so the camera
// eases toward rest after input stops. The controller owns the eye position and target.
type CameraController interface {
	// Position returns the camera's world-space position.
	Position() [3]float32

	// Target returns the look-at point.
	Target() [3]float32

	// Place moves the camera to position looking at target and discards pending motion.
	//
	// Parameters:
	//   - position: the world-space eye position
	//   - target: the world-space look-at point
	Place(position, target [3]float32)

	// SetTarget moves the orbit pivot, keeping the current orbit angles and radius.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target [3]float32)

	// Orbit queues a rotation around the target.
	//
	// Parameters:
	//   - dAzimuth: horizontal rotation in input units, scaled by the rotate speed
	//   - dElevation: vertical rotation in input units, scaled by the rotate speed
	Orbit(dAzimuth, dElevation float32)

	// Pan queues a translation of both eye and target along the view plane.
	//
	// Parameters:
	//   - dx: movement along the camera's right axis, scaled by the pan speed
	//   - dy: movement along the camera's up axis, scaled by the pan speed
	Pan(dx, dy float32)

	// Zoom queues a change of orbit radius. Positive delta moves toward the target.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Update applies one frame of damped motion.
	//
	// Returns:
	//   - bool: true if the camera moved
	Update() bool

	// Damping returns the fraction of pending motion applied per Update.
	Damping() float32

	// Radius returns the current distance from target.
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32
}
