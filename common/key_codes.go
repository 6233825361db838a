package common

// Key codes used by the viewer's input handling.
// Values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW      = 87  // W key (ASCII)
	KeyA      = 65  // A key (ASCII)
	KeyS      = 83  // S key (ASCII)
	KeyD      = 68  // D key (ASCII)
	KeyEscape = 256 // Escape key
	KeyRight  = 262 // Right arrow
	KeyLeft   = 263 // Left arrow
	KeyDown   = 264 // Down arrow
	KeyUp     = 265 // Up arrow
)
