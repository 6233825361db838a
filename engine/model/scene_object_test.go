package model_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader/builtin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelMatrixIsPureTranslationForUnitScale(t *testing.T) {
	a := model.NewSceneObject("compu", nil)
	b := model.NewSceneObject("silla", nil)
	b.Position = mgl32.Vec3{-3.5, 0, 0}

	ma, mb := a.ModelMatrix(), b.ModelMatrix()
	assert.Equal(t, mgl32.Ident4(), ma)
	for col := 0; col < 3; col++ {
		assert.Equal(t, ma.Col(col), mb.Col(col))
	}
	assert.Equal(t, mgl32.Vec4{-3.5, 0, 0, 1}, mb.Col(3))
}

func TestModelMatrixScalesBeforeTranslating(t *testing.T) {
	o := model.NewSceneObject("salon", nil)
	o.Position = mgl32.Vec3{1, 2, 3}
	o.Scale = mgl32.Vec3{2, 2, 2}

	p := o.ModelMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.Equal(t, mgl32.Vec4{3, 2, 3, 1}, p)
}

func TestDrawSetsModelMatrixPerObject(t *testing.T) {
	r := renderertest.New()
	p, err := builtin.ModelProgram()
	require.NoError(t, err)
	require.NoError(t, r.RegisterProgram(p))

	verts := []common.Vertex{{}, {}, {}}
	m, err := mesh.NewMesh(r, verts, []uint32{0, 1, 2}, nil)
	require.NoError(t, err)

	a := model.NewSceneObject("a", []mesh.Mesh{m})
	b := model.NewSceneObject("b", []mesh.Mesh{m})
	b.Position = mgl32.Vec3{-3.5, 0, 0}

	require.NoError(t, r.BeginFrame())
	p.Use()
	a.Draw(p)
	b.Draw(p)
	r.EndFrame()

	require.Len(t, r.Backend.Draws, 2)
	first, second := r.Backend.Draws[0].Uniforms, r.Backend.Draws[1].Uniforms
	assert.Equal(t, common.SliceToBytes([]float32{0, 0, 0, 1}), first[48:64])
	assert.Equal(t, common.SliceToBytes([]float32{-3.5, 0, 0, 1}), second[48:64])
	assert.Equal(t, first[:48], second[:48])
}
