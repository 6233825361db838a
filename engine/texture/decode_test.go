package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMipLevelCount(t *testing.T) {
	assert.Equal(t, uint32(1), mipLevelCount(1, 1))
	assert.Equal(t, uint32(2), mipLevelCount(2, 1))
	assert.Equal(t, uint32(10), mipLevelCount(512, 300))
	assert.Equal(t, uint32(11), mipLevelCount(1024, 1024))
	assert.Equal(t, uint32(11), mipLevelCount(17, 1500))
}

func TestStagingDropsStridePadding(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 6})

	data := staging(img)
	assert.Equal(t, uint32(3), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Len(t, data.Pixels, 3*2*4)
	assert.Equal(t, []byte{9, 8, 7, 6}, data.Pixels[20:24])
}

func TestMipChainHalvesToOne(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 2))
	chain := mipChain(img, mipLevelCount(5, 2))

	assert.Len(t, chain, 3)
	assert.Equal(t, uint32(2), chain[1].Width)
	assert.Equal(t, uint32(1), chain[1].Height)
	assert.Equal(t, uint32(1), chain[2].Width)
	assert.Len(t, chain[2].Pixels, 4)
}
