package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneObject is an imported model placed in the scene: its meshes in draw order plus a
// placement that stays separate from the geometry, so moving an object never touches its buffers.
type SceneObject struct {
	// Name identifies the object in logs, the manifest name or the imported file path.
	Name string
	// Meshes are drawn in order with the object's model matrix.
	Meshes []mesh.Mesh
	// Position is the translation applied to every mesh.
	Position mgl32.Vec3
	// Scale is the per-axis scale applied before translation.
	Scale mgl32.Vec3
}

// NewSceneObject creates an object at the origin with unit scale.
//
// Parameters:
//   - name: the object name
//   - meshes: the object's meshes
//
// Returns:
//   - SceneObject: the placed object
func NewSceneObject(name string, meshes []mesh.Mesh) SceneObject {
	return SceneObject{
		Name:   name,
		Meshes: meshes,
		Scale:  mgl32.Vec3{1, 1, 1},
	}
}

// ModelMatrix returns translate(Position) * scale(Scale).
//
// Returns:
//   - mgl32.Mat4: the object's model matrix
func (o SceneObject) ModelMatrix() mgl32.Mat4 {
	return common.ModelMatrix(o.Position, o.Scale)
}

// Empty reports whether the object has nothing to draw.
func (o SceneObject) Empty() bool {
	return len(o.Meshes) == 0
}

// Draw uploads the model matrix to p and draws every mesh.
//
// Parameters:
//   - p: the program, already active with the frame's view and projection set
func (o SceneObject) Draw(p shader.Program) {
	p.SetMatrix("model", o.ModelMatrix())
	for _, m := range o.Meshes {
		m.Draw(p)
	}
}

// Release frees every mesh and its textures.
func (o SceneObject) Release() {
	for _, m := range o.Meshes {
		m.Release()
	}
}
