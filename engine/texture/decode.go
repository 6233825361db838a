package texture

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// errZeroSize is returned for images that decode to an empty rectangle.
var errZeroSize = errors.New("image has zero width or height")

// decodeFile reads and decodes the image at path into tightly packed RGBA.
func decodeFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TextureDecodeError{Path: path, Err: errors.Wrap(err, "open")}
	}
	defer f.Close()
	return decode(path, f)
}

// decodeBytes decodes an in-memory image, naming it label in errors.
func decodeBytes(label string, data []byte) (*image.NRGBA, error) {
	return decode(label, bytes.NewReader(data))
}

func decode(name string, r io.Reader) (*image.NRGBA, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, &TextureDecodeError{Path: name, Err: errors.Wrap(err, "decode")}
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &TextureDecodeError{Path: name, Err: errors.Wrap(errZeroSize, format)}
	}

	// the GPU format is 4 channels, so everything is widened to NRGBA with rows starting at 0
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// mipLevelCount returns floor(log2(max(w, h))) + 1, the length of a full mip chain.
func mipLevelCount(width, height int) uint32 {
	largest := max(width, height, 1)
	return uint32(math32.Floor(math32.Log2(float32(largest)))) + 1
}

// mipChain returns level 0 followed by successively halved levels down to 1x1, each
// downsampled from the previous one with a bilinear filter.
func mipChain(base *image.NRGBA, levels uint32) []common.TextureStagingData {
	chain := make([]common.TextureStagingData, 0, levels)
	chain = append(chain, staging(base))

	prev := base
	for level := uint32(1); level < levels; level++ {
		w := max(base.Bounds().Dx()>>level, 1)
		h := max(base.Bounds().Dy()>>level, 1)
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		chain = append(chain, staging(next))
		prev = next
	}
	return chain
}

// staging copies an image's pixels out row by row, dropping any stride padding.
func staging(img *image.NRGBA) common.TextureStagingData {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	rowBytes := w * 4
	pixels := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		copy(pixels[y*rowBytes:(y+1)*rowBytes], img.Pix[y*img.Stride:y*img.Stride+rowBytes])
	}
	return common.TextureStagingData{
		Pixels: pixels,
		Width:  uint32(w),
		Height: uint32(h),
	}
}
