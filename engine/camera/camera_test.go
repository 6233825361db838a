package camera_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d", i)
	}
}

func assertMat4(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d", i)
	}
}

func TestDefaults(t *testing.T) {
	c := camera.NewCamera()
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assert.Equal(t, float32(45), c.Zoom())
	assert.Equal(t, float32(-90), c.Yaw())
	assertVec3(t, mgl32.Vec3{0, 0, -1}, c.Front())

	want := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 4}, mgl32.Vec3{0, 1, 0})
	assertMat4(t, want, c.ViewMatrix())
}

func TestMovementIsLinearInDeltaTime(t *testing.T) {
	for _, dir := range []camera.Direction{camera.Forward, camera.Backward, camera.Left, camera.Right} {
		a := camera.NewCamera()
		b := camera.NewCamera()
		start := a.Position()

		a.ProcessMovement(dir, 0.1)
		b.ProcessMovement(dir, 0.2)

		da := a.Position().Sub(start)
		db := b.Position().Sub(start)
		assert.InDelta(t, 0.25, da.Len(), 1e-5)
		assertVec3(t, da.Mul(2), db)
	}
}

func TestMovementAxes(t *testing.T) {
	c := camera.NewCamera(camera.WithSpeed(1))
	c.ProcessMovement(camera.Forward, 1)
	assertVec3(t, mgl32.Vec3{0, 0, 4}, c.Position())
	c.ProcessMovement(camera.Right, 2)
	assertVec3(t, mgl32.Vec3{2, 0, 4}, c.Position())
	c.ProcessMovement(camera.Left, 2)
	c.ProcessMovement(camera.Backward, 1)
	assertVec3(t, mgl32.Vec3{0, 0, 5}, c.Position())
}

func TestLookClampsPitch(t *testing.T) {
	c := camera.NewCamera()
	c.ProcessLook(0, 5000)
	assert.Equal(t, camera.MaxPitch, c.Pitch())
	c.ProcessLook(0, -5000)
	assert.Equal(t, -camera.MaxPitch, c.Pitch())

	c = camera.NewCamera(camera.WithSensitivity(1))
	c.ProcessLook(90, 0)
	assert.Equal(t, float32(0), c.Yaw())
	assertVec3(t, mgl32.Vec3{1, 0, 0}, c.Front())
}

func TestScrollClampsZoom(t *testing.T) {
	c := camera.NewCamera()
	c.ProcessScroll(10)
	assert.Equal(t, float32(35), c.Zoom())
	c.ProcessScroll(100)
	assert.Equal(t, camera.MinZoom, c.Zoom())
	c.ProcessScroll(-100)
	assert.Equal(t, camera.MaxZoom, c.Zoom())

	assert.Equal(t, camera.MinZoom, camera.NewCamera(camera.WithZoom(0)).Zoom())
}
