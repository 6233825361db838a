package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition is an option builder that sets the starting position of the Camera.
//
// Parameters:
//   - position: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option to a camera
func WithPosition(position mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithYawPitch is an option builder that sets the starting orientation in degrees.
// Pitch is clamped to +-89.
//
// Parameters:
//   - yaw: heading, -90 looks down -Z
//   - pitch: elevation
//
// Returns:
//   - CameraBuilderOption: a function that applies the orientation option to a camera
func WithYawPitch(yaw, pitch float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.yaw = yaw
		c.pitch = pitch
	}
}

// WithSpeed is an option builder that sets the movement speed in units per second.
//
// Parameters:
//   - speed: movement speed
//
// Returns:
//   - CameraBuilderOption: a function that applies the speed option to a camera
func WithSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.speed = speed
	}
}

// WithSensitivity is an option builder that sets the degrees turned per unit of mouse offset.
//
// Parameters:
//   - sensitivity: mouse sensitivity
//
// Returns:
//   - CameraBuilderOption: a function that applies the sensitivity option to a camera
func WithSensitivity(sensitivity float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.sensitivity = sensitivity
	}
}

// WithZoom is an option builder that sets the starting field of view in degrees, clamped to [1, 45].
//
// Parameters:
//   - zoom: field of view
//
// Returns:
//   - CameraBuilderOption: a function that applies the zoom option to a camera
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zoom = zoom
	}
}
