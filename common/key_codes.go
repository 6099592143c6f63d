package common

// Key codes delivered by the window layer. Printable keys use their ASCII value and the rest
// follow GLFW's numbering, so a glfw.Key converts directly.
const (
	KeyA     uint32 = 65
	KeyD     uint32 = 68
	KeyS     uint32 = 83
	KeyW     uint32 = 87
	KeyMinus uint32 = 45
	KeyEqual uint32 = 61
	KeyEsc   uint32 = 256
)

// Arrow keys
const (
	KeyRight uint32 = 262
	KeyLeft  uint32 = 263
	KeyDown  uint32 = 264
	KeyUp    uint32 = 265
)

// KeyShift is reported for either shift key.
const KeyShift uint32 = 340
