package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Direction is a movement direction relative to where the camera faces.
type Direction int

const (
	// Forward moves along the view direction.
	Forward Direction = iota
	// Backward moves against the view direction.
	Backward
	// Left strafes against the camera's right vector.
	Left
	// Right strafes along the camera's right vector.
	Right
)

const (
	// MinZoom and MaxZoom bound the vertical field of view in degrees.
	MinZoom float32 = 1
	MaxZoom float32 = 45
	// MaxPitch keeps the camera from flipping over the vertical.
	MaxPitch float32 = 89
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3
	worldUp  mgl32.Vec3

	yaw         float32
	pitch       float32
	speed       float32
	sensitivity float32
	zoom        float32
}

// Camera is a free-flying first-person camera driven by Euler angles. Its state only changes
// through the Process methods, which the frame loop calls with input.
type Camera interface {
	// ViewMatrix returns the look-at matrix from the camera position along its front vector.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProcessMovement moves the camera speed*dt units in a direction.
	//
	// Parameters:
	//   - dir: the direction to move
	//   - dt: elapsed time in seconds
	ProcessMovement(dir Direction, dt float32)

	// ProcessLook turns the camera by a mouse offset scaled by the sensitivity. Pitch is clamped
	// to +-89 degrees.
	//
	// Parameters:
	//   - dx: horizontal offset, positive to the right
	//   - dy: vertical offset, positive up
	ProcessLook(dx, dy float32)

	// ProcessScroll narrows or widens the field of view, clamped to [1, 45] degrees.
	//
	// Parameters:
	//   - dy: scroll offset, positive zooms in
	ProcessScroll(dy float32)

	// Zoom returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: the field of view
	Zoom() float32

	// Position returns the camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space position
	Position() mgl32.Vec3

	// Front returns the unit view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the view direction
	Front() mgl32.Vec3

	// Yaw returns the heading in degrees.
	//
	// Returns:
	//   - float32: the yaw
	Yaw() float32

	// Pitch returns the elevation in degrees.
	//
	// Returns:
	//   - float32: the pitch
	Pitch() float32
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 5) looking down -Z: yaw -90, pitch 0, speed 2.5,
// sensitivity 0.1 and a 45 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		position:    mgl32.Vec3{0, 0, 5},
		worldUp:     mgl32.Vec3{0, 1, 0},
		yaw:         -90,
		pitch:       0,
		speed:       2.5,
		sensitivity: 0.1,
		zoom:        MaxZoom,
	}
	for _, option := range options {
		option(c)
	}
	c.pitch = common.Clamp(c.pitch, -MaxPitch, MaxPitch)
	c.zoom = common.Clamp(c.zoom, MinZoom, MaxZoom)
	c.updateVectors()
	return c
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

func (c *cameraImpl) ProcessMovement(dir Direction, dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	velocity := c.speed * dt
	switch dir {
	case Forward:
		c.position = c.position.Add(c.front.Mul(velocity))
	case Backward:
		c.position = c.position.Sub(c.front.Mul(velocity))
	case Left:
		c.position = c.position.Sub(c.right.Mul(velocity))
	case Right:
		c.position = c.position.Add(c.right.Mul(velocity))
	}
}

func (c *cameraImpl) ProcessLook(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.yaw += dx * c.sensitivity
	c.pitch = common.Clamp(c.pitch+dy*c.sensitivity, -MaxPitch, MaxPitch)
	c.updateVectors()
}

func (c *cameraImpl) ProcessScroll(dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = common.Clamp(c.zoom-dy, MinZoom, MaxZoom)
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Front() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

// updateVectors recomputes front, right and up from yaw and pitch. Callers hold mu.
func (c *cameraImpl) updateVectors() {
	yaw, pitch := mgl32.DegToRad(c.yaw), mgl32.DegToRad(c.pitch)
	c.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}
