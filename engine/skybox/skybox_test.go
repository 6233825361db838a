package skybox_test

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader/builtin"
	"github.com/Carmen-Shannon/oxy-viewer/engine/skybox"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func faces(t *testing.T, dir string, size int) [texture.FaceCount]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, size, size))))

	var out [texture.FaceCount]string
	for i, name := range []string{"right", "left", "top", "bottom", "front", "back"} {
		out[i] = filepath.Join(dir, name+".png")
		require.NoError(t, os.WriteFile(out[i], buf.Bytes(), 0o644))
	}
	return out
}

func setup(t *testing.T) (*renderertest.Renderer, shader.Program) {
	t.Helper()
	r := renderertest.New()
	p, err := builtin.SkyboxProgram()
	require.NoError(t, err)
	require.NoError(t, r.RegisterProgram(p))
	return r, p
}

func TestDrawUsesLessEqualAndRestoresDepthFunc(t *testing.T) {
	r, p := setup(t)
	sky := skybox.NewSkybox(r, texture.NewLoader(r), faces(t, t.TempDir(), 4))
	require.True(t, sky.Cubemap().Valid())

	for _, before := range []renderer.DepthFunc{renderer.DepthLess, renderer.DepthAlways} {
		r.SetDepthFunc(before)
		require.NoError(t, r.BeginFrame())
		sky.Draw(p, mgl32.Ident4(), mgl32.Ident4())
		r.EndFrame()
		assert.Equal(t, before, r.DepthFunc())
	}

	require.Len(t, r.Backend.Draws, 2)
	d := r.Backend.Draws[0]
	assert.Equal(t, wgpu.CompareFunctionLessEqual, d.DepthFunc)
	assert.False(t, d.Indexed)
	assert.Equal(t, skybox.VertexCount, d.Count)
	assert.Equal(t, []uint32{sky.Cubemap().ID}, d.Textures)
	assert.Zero(t, r.BoundTexture(0, renderer.TextureCube))
}

func TestDrawStripsViewTranslation(t *testing.T) {
	r, p := setup(t)
	sky := skybox.NewSkybox(r, texture.NewLoader(r), faces(t, t.TempDir(), 2))

	view := mgl32.LookAtV(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, r.BeginFrame())
	sky.Draw(p, view, mgl32.Ident4())
	r.EndFrame()

	require.Len(t, r.Backend.Draws, 1)
	got := r.Backend.Draws[0].Uniforms[:common.Mat4Size]
	want := make([]byte, common.Mat4Size)
	common.PutMat4(want, common.StripTranslation(view))
	assert.Equal(t, want, got)

	stripped := common.StripTranslation(view)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, stripped.Col(3))
	assert.Equal(t, view.Col(0).Vec3(), stripped.Col(0).Vec3())
}

func TestInvalidCubemapStillRestoresDepthFunc(t *testing.T) {
	r, p := setup(t)
	r.Backend.FailTextures = true
	sky := skybox.NewSkybox(r, texture.NewLoader(r), faces(t, t.TempDir(), 2))
	require.False(t, sky.Cubemap().Valid())

	r.SetDepthFunc(renderer.DepthLess)
	require.NoError(t, r.BeginFrame())
	assert.NotPanics(t, func() { sky.Draw(p, mgl32.Ident4(), mgl32.Ident4()) })
	r.EndFrame()

	assert.Equal(t, renderer.DepthLess, r.DepthFunc())
	require.Len(t, r.Backend.Draws, 1)
	assert.Equal(t, []uint32{0}, r.Backend.Draws[0].Textures)
}

func TestMissingFacesKeepSkyboxUsable(t *testing.T) {
	r, _ := setup(t)
	fs := faces(t, t.TempDir(), 2)
	fs[4] = filepath.Join(t.TempDir(), "front.jpg")

	sky := skybox.NewSkybox(r, texture.NewLoader(r), fs)
	require.True(t, sky.Cubemap().Valid())
	assert.Len(t, r.Backend.WritesFor(sky.Cubemap().ID), 5)
}

func TestRelease(t *testing.T) {
	r, _ := setup(t)
	sky := skybox.NewSkybox(r, texture.NewLoader(r), faces(t, t.TempDir(), 2))
	require.Len(t, r.Backend.Meshes, 1)

	sky.Release()
	sky.Release()
	assert.Empty(t, r.Backend.Meshes)
	assert.Empty(t, r.Backend.Textures)
}
