package mesh_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader/builtin"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*renderertest.Renderer, shader.Program) {
	t.Helper()
	r := renderertest.New()
	p, err := builtin.ModelProgram()
	require.NoError(t, err)
	require.NoError(t, r.RegisterProgram(p))
	return r, p
}

func diffuse(t *testing.T, r renderer.Renderer, label string) texture.Handle {
	t.Helper()
	id, err := r.CreateTexture(renderer.TextureDescriptor{Label: label, Target: renderer.Texture2D, Width: 1, Height: 1})
	require.NoError(t, err)
	return texture.Handle{ID: id, Kind: texture.KindDiffuse, Path: label}
}

func quad() ([]common.Vertex, []uint32) {
	return []common.Vertex{
		{Position: [3]float32{-1, -1, 0}},
		{Position: [3]float32{1, -1, 0}},
		{Position: [3]float32{1, 1, 0}},
		{Position: [3]float32{-1, 1, 0}},
	}, []uint32{0, 1, 2, 0, 2, 3}
}

func TestNewMeshUploadsOnce(t *testing.T) {
	r, _ := setup(t)
	verts, idx := quad()

	m, err := mesh.NewMesh(r, verts, idx, nil, mesh.WithLabel("quad"))
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 6, m.IndexCount())
	assert.Empty(t, m.Textures())

	require.Len(t, r.Backend.Meshes, 1)
	for _, rec := range r.Backend.Meshes {
		assert.Equal(t, "quad", rec.Label)
		assert.Equal(t, 4*int(common.VertexStride), rec.VertexBytes)
		assert.Equal(t, 6, rec.IndexCount)
	}
}

func TestNewMeshRejectsOutOfRangeIndex(t *testing.T) {
	r, _ := setup(t)
	verts, _ := quad()

	m, err := mesh.NewMesh(r, verts, []uint32{0, 1, 4}, nil)
	assert.Error(t, err)
	assert.Nil(t, m)
	assert.Empty(t, r.Backend.Meshes)
}

func TestNewMeshDropsInvalidTextures(t *testing.T) {
	r, _ := setup(t)
	verts, idx := quad()
	tex := diffuse(t, r, "wood.png")

	m, err := mesh.NewMesh(r, verts, idx, []texture.Handle{{}, tex})
	require.NoError(t, err)
	assert.Equal(t, []texture.Handle{tex}, m.Textures())
}

func TestDrawBindsThenUnbindsSlots(t *testing.T) {
	r, p := setup(t)
	verts, idx := quad()
	tex := diffuse(t, r, "wood.png")

	m, err := mesh.NewMesh(r, verts, idx, []texture.Handle{tex})
	require.NoError(t, err)

	r.ActiveTexture(5)
	require.NoError(t, r.BeginFrame())
	m.Draw(p)
	r.EndFrame()

	require.Len(t, r.Backend.Draws, 1)
	d := r.Backend.Draws[0]
	assert.True(t, d.Indexed)
	assert.Equal(t, 6, d.Count)
	assert.Equal(t, []uint32{tex.ID}, d.Textures)
	assert.Equal(t, builtin.ModelProgramKey, d.Program)

	assert.Equal(t, 0, r.ActiveTextureSlot())
	assert.Zero(t, r.BoundTexture(0, renderer.Texture2D))
}

func TestDrawUntexturedUsesNoTexture(t *testing.T) {
	r, p := setup(t)
	verts, idx := quad()

	m, err := mesh.NewMesh(r, verts, idx, nil)
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame())
	m.Draw(p)
	r.EndFrame()

	require.Len(t, r.Backend.Draws, 1)
	assert.Equal(t, []uint32{0}, r.Backend.Draws[0].Textures)
}

func TestReleaseIsIdempotent(t *testing.T) {
	r, p := setup(t)
	verts, idx := quad()
	tex := diffuse(t, r, "wood.png")

	m, err := mesh.NewMesh(r, verts, idx, []texture.Handle{tex})
	require.NoError(t, err)

	m.Release()
	m.Release()
	assert.Empty(t, r.Backend.Meshes)
	assert.NotContains(t, r.Backend.Textures, tex.ID)

	require.NoError(t, r.BeginFrame())
	m.Draw(p)
	r.EndFrame()
	assert.Empty(t, r.Backend.Draws)
}
