package texture_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h), 0o644))
	return path
}

func TestLoad2DUploadsFullMipChain(t *testing.T) {
	r := renderertest.New()
	l := texture.NewLoader(r)
	path := writePNG(t, t.TempDir(), "wood.png", 13, 6)

	h, err := l.Load2D(path)
	require.NoError(t, err)
	require.True(t, h.Valid())
	assert.Equal(t, texture.KindDiffuse, h.Kind)
	assert.Equal(t, path, h.Path)

	desc := r.Backend.Textures[h.ID]
	assert.Equal(t, renderer.Texture2D, desc.Target)
	assert.Equal(t, uint32(4), desc.MipLevels)
	assert.Equal(t, wgpu.AddressModeRepeat, desc.Sampler.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, desc.Sampler.AddressModeV)
	assert.Equal(t, wgpu.AddressModeRepeat, desc.Sampler.AddressModeW)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, desc.Sampler.MipmapFilter)

	writes := r.Backend.WritesFor(h.ID)
	require.Len(t, writes, 4)
	sizes := [][2]uint32{{13, 6}, {6, 3}, {3, 1}, {1, 1}}
	for i, w := range writes {
		assert.Equal(t, uint32(i), w.Level)
		assert.Equal(t, sizes[i], [2]uint32{w.Width, w.Height})
	}
}

func TestLoad2DRestoresPreviousBinding(t *testing.T) {
	r := renderertest.New()
	l := texture.NewLoader(r)
	dir := t.TempDir()

	first, err := l.Load2D(writePNG(t, dir, "a.png", 4, 4))
	require.NoError(t, err)

	r.ActiveTexture(3)
	r.BindTexture(renderer.Texture2D, first.ID)

	second, err := l.Load2D(writePNG(t, dir, "b.png", 4, 4))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 3, r.ActiveTextureSlot())
	assert.Equal(t, first.ID, r.BoundTexture(3, renderer.Texture2D))
}

func TestLoad2DMissingFile(t *testing.T) {
	r := renderertest.New()
	l := texture.NewLoader(r)

	var h texture.Handle
	var err error
	assert.NotPanics(t, func() {
		h, err = l.Load2D(filepath.Join(t.TempDir(), "missing.png"))
	})
	assert.False(t, h.Valid())
	var decodeErr *texture.TextureDecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, decodeErr.Path, "missing.png")
	assert.Empty(t, r.Backend.Textures)
}

func TestLoad2DRejectsGarbage(t *testing.T) {
	r := renderertest.New()
	l := texture.NewLoader(r)
	path := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	h, err := l.Load2D(path)
	assert.False(t, h.Valid())
	var decodeErr *texture.TextureDecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestLoad2DFromMemory(t *testing.T) {
	r := renderertest.New()
	l := texture.NewLoader(r)

	h, err := l.Load2DFromMemory("scene.glb#image0", encodePNG(t, 8, 8))
	require.NoError(t, err)
	assert.True(t, h.Valid())
	assert.Equal(t, "scene.glb#image0", h.Path)
	assert.Len(t, r.Backend.WritesFor(h.ID), 4)
}

func TestPathCache(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "brick.png", 2, 2)

	t.Run("disabled by default", func(t *testing.T) {
		l := texture.NewLoader(renderertest.New())
		a, err := l.Load2D(path)
		require.NoError(t, err)
		b, err := l.Load2D(path)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("enabled", func(t *testing.T) {
		r := renderertest.New()
		l := texture.NewLoader(r, texture.WithPathCache(true))
		a, err := l.Load2D(path)
		require.NoError(t, err)
		b, err := l.Load2D(filepath.Join(dir, ".", "brick.png"))
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
		assert.Len(t, r.Backend.Textures, 1)

		l.Release(a)
		assert.Len(t, r.Backend.Textures, 1)
		l.Release(b)
		assert.Empty(t, r.Backend.Textures)

		c, err := l.Load2D(path)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, c.ID)
	})
}

func TestLoadCubemap(t *testing.T) {
	dir := t.TempDir()
	var faces [texture.FaceCount]string
	for i, name := range []string{"right", "left", "top", "bottom", "front", "back"} {
		faces[i] = writePNG(t, dir, name+".png", 16, 16)
	}

	t.Run("all faces", func(t *testing.T) {
		r := renderertest.New()
		l := texture.NewLoader(r, texture.WithWorkers(2))

		h, err := l.LoadCubemap(faces)
		require.NoError(t, err)
		require.True(t, h.Valid())
		assert.Equal(t, texture.KindCubemap, h.Kind)

		desc := r.Backend.Textures[h.ID]
		assert.Equal(t, renderer.TextureCube, desc.Target)
		assert.Equal(t, uint32(16), desc.Width)
		assert.Equal(t, uint32(1), desc.MipLevels)
		assert.Equal(t, wgpu.AddressModeClampToEdge, desc.Sampler.AddressModeU)
		assert.Equal(t, wgpu.AddressModeClampToEdge, desc.Sampler.AddressModeW)

		writes := r.Backend.WritesFor(h.ID)
		require.Len(t, writes, texture.FaceCount)
		for i, w := range writes {
			assert.Equal(t, uint32(i), w.Layer)
		}
		assert.Zero(t, r.BoundTexture(0, renderer.TextureCube))
	})

	t.Run("one missing face", func(t *testing.T) {
		r := renderertest.New()
		l := texture.NewLoader(r)
		partial := faces
		partial[2] = filepath.Join(dir, "gone.png")

		h, err := l.LoadCubemap(partial)
		require.True(t, h.Valid())
		var decodeErr *texture.TextureDecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, partial[2], decodeErr.Path)

		writes := r.Backend.WritesFor(h.ID)
		require.Len(t, writes, 5)
		for _, w := range writes {
			assert.NotEqual(t, uint32(2), w.Layer)
		}
	})

	t.Run("mismatched face size", func(t *testing.T) {
		r := renderertest.New()
		l := texture.NewLoader(r)
		odd := faces
		odd[5] = writePNG(t, dir, "small.png", 8, 8)

		h, err := l.LoadCubemap(odd)
		require.True(t, h.Valid())
		assert.Error(t, err)
		assert.Len(t, r.Backend.WritesFor(h.ID), 5)
	})

	t.Run("every face missing", func(t *testing.T) {
		r := renderertest.New()
		l := texture.NewLoader(r)
		var missing [texture.FaceCount]string
		for i := range missing {
			missing[i] = filepath.Join(dir, "none", "face.png")
		}

		h, err := l.LoadCubemap(missing)
		require.True(t, h.Valid())
		assert.Error(t, err)
		assert.Equal(t, uint32(1), r.Backend.Textures[h.ID].Width)
		assert.Empty(t, r.Backend.WritesFor(h.ID))
	})

	t.Run("allocation failure", func(t *testing.T) {
		r := renderertest.New()
		r.Backend.FailTextures = true
		l := texture.NewLoader(r)

		h, err := l.LoadCubemap(faces)
		assert.False(t, h.Valid())
		assert.Error(t, err)
	})
}

func TestReleaseInvalidHandle(t *testing.T) {
	r := renderertest.New()
	l := texture.NewLoader(r)
	assert.NotPanics(t, func() { l.Release(texture.Handle{}) })
}
