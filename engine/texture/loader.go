package texture

import (
	stderrors "errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// FaceCount is the number of faces in a cubemap.
const FaceCount = 6

// Loader decodes images and uploads them as GPU textures with the viewer's fixed sampling
// setup: repeating, mipmapped 2D textures for models and clamped cubemaps for the skybox.
type Loader interface {
	// Load2D decodes an image file into a mipmapped 2D texture.
	//
	// Parameters:
	//   - path: the image file
	//
	// Returns:
	//   - Handle: the texture, or the invalid handle on failure
	//   - error: a *TextureDecodeError when the file cannot be decoded, or the renderer's error
	Load2D(path string) (Handle, error)

	// Load2DFromMemory decodes an encoded image held in memory, such as one embedded in a glTF file.
	//
	// Parameters:
	//   - label: a name for logs and errors
	//   - data: the encoded image
	//
	// Returns:
	//   - Handle: the texture, or the invalid handle on failure
	//   - error: a *TextureDecodeError when the data cannot be decoded, or the renderer's error
	Load2DFromMemory(label string, data []byte) (Handle, error)

	// LoadCubemap decodes six face images in +X, -X, +Y, -Y, +Z, -Z order into a cubemap.
	// Faces that fail to decode are skipped and their layers left unwritten.
	//
	// Parameters:
	//   - faces: the face image files
	//
	// Returns:
	//   - Handle: the cubemap; only invalid when the GPU allocation fails
	//   - error: the joined per-face errors, nil when every face loaded
	LoadCubemap(faces [FaceCount]string) (Handle, error)

	// Release frees the texture behind a handle. Releasing the invalid handle does nothing.
	//
	// Parameters:
	//   - h: the handle to release
	Release(h Handle)
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu     *sync.Mutex
	logger *slog.Logger

	r renderer.Renderer

	pool    worker.DynamicWorkerPool
	workers int

	cacheEnabled bool
	cache        map[string]*cacheEntry
}

// cacheEntry is a cached texture and the number of handles given out for it.
type cacheEntry struct {
	handle Handle
	refs   int
}

var _ Loader = &loader{}

// NewLoader creates a texture loader uploading through r.
//
// Parameters:
//   - r: the renderer that owns the textures
//   - options: optional settings such as WithPathCache and WithWorkers
//
// Returns:
//   - Loader: the loader
func NewLoader(r renderer.Renderer, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:      &sync.Mutex{},
		logger:  slog.Default().With("component", "texture"),
		r:       r,
		workers: FaceCount,
		cache:   make(map[string]*cacheEntry),
	}
	for _, opt := range options {
		opt(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

// sampler2D is repeat on every axis with trilinear filtering.
var sampler2D = common.SamplerStagingData{
	AddressModeU: wgpu.AddressModeRepeat,
	AddressModeV: wgpu.AddressModeRepeat,
	AddressModeW: wgpu.AddressModeRepeat,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeLinear,
	MipmapFilter: wgpu.MipmapFilterModeLinear,
}

// samplerCube clamps to the edge so face seams do not bleed.
var samplerCube = common.SamplerStagingData{
	AddressModeU: wgpu.AddressModeClampToEdge,
	AddressModeV: wgpu.AddressModeClampToEdge,
	AddressModeW: wgpu.AddressModeClampToEdge,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeLinear,
	LodMaxClamp:  1,
}

func (l *loader) Load2D(path string) (Handle, error) {
	key := filepath.Clean(path)
	if l.cacheEnabled {
		l.mu.Lock()
		entry, ok := l.cache[key]
		if ok {
			entry.refs++
		}
		l.mu.Unlock()
		if ok {
			return entry.handle, nil
		}
	}

	img, err := decodeFile(path)
	if err != nil {
		return Handle{}, err
	}
	h, err := l.upload2D(path, img)
	if err != nil {
		return Handle{}, err
	}

	if l.cacheEnabled {
		l.mu.Lock()
		l.cache[key] = &cacheEntry{handle: h, refs: 1}
		l.mu.Unlock()
	}
	return h, nil
}

func (l *loader) Load2DFromMemory(label string, data []byte) (Handle, error) {
	img, err := decodeBytes(label, data)
	if err != nil {
		return Handle{}, err
	}
	return l.upload2D(label, img)
}

// upload2D allocates a mipmapped 2D texture and writes every level through the active slot.
func (l *loader) upload2D(path string, img *image.NRGBA) (Handle, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	levels := mipLevelCount(w, h)

	id, err := l.r.CreateTexture(renderer.TextureDescriptor{
		Label:     path,
		Target:    renderer.Texture2D,
		Width:     uint32(w),
		Height:    uint32(h),
		MipLevels: levels,
		Sampler:   sampler2D,
	})
	if err != nil {
		return Handle{}, errors.Wrapf(err, "allocate %s", path)
	}

	chain := mipChain(img, levels)
	err = l.withBound(renderer.Texture2D, id, func() error {
		for level, data := range chain {
			if err := l.r.UploadTexture(renderer.Texture2D, 0, uint32(level), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.r.DeleteTexture(id)
		return Handle{}, errors.Wrapf(err, "upload %s", path)
	}

	l.logger.Debug("texture loaded", "path", path, "width", w, "height", h, "levels", levels)
	return Handle{ID: id, Kind: KindDiffuse, Path: path}, nil
}

// decodedFace is the outcome of decoding one cubemap face on the pool.
type decodedFace struct {
	img *image.NRGBA
	err error
}

func (l *loader) LoadCubemap(faces [FaceCount]string) (Handle, error) {
	var decoded [FaceCount]decodedFace
	var wg sync.WaitGroup
	for i, path := range faces {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := decodeFile(path)
				decoded[i] = decodedFace{img: img, err: err}
				return nil, nil
			},
		})
	}
	wg.Wait()

	// the cubemap takes the size of the first face that decoded
	var w, h int
	for _, f := range decoded {
		if f.img != nil {
			w, h = f.img.Bounds().Dx(), f.img.Bounds().Dy()
			break
		}
	}

	var faceErrs []error
	for i, f := range decoded {
		switch {
		case f.err != nil:
			faceErrs = append(faceErrs, f.err)
		case f.img.Bounds().Dx() != w || f.img.Bounds().Dy() != h:
			err := &TextureDecodeError{
				Path: faces[i],
				Err:  errors.Errorf("face is %dx%d, cubemap is %dx%d", f.img.Bounds().Dx(), f.img.Bounds().Dy(), w, h),
			}
			faceErrs = append(faceErrs, err)
			decoded[i].img = nil
		}
	}
	for _, err := range faceErrs {
		l.logger.Warn("cubemap face skipped", "err", err)
	}

	label := fmt.Sprintf("cubemap %s", filepath.Dir(faces[0]))
	id, err := l.r.CreateTexture(renderer.TextureDescriptor{
		Label:     label,
		Target:    renderer.TextureCube,
		Width:     uint32(max(w, 1)),
		Height:    uint32(max(h, 1)),
		MipLevels: 1,
		Sampler:   samplerCube,
	})
	if err != nil {
		return Handle{}, errors.Wrap(err, "allocate cubemap")
	}

	err = l.withBound(renderer.TextureCube, id, func() error {
		for layer, f := range decoded {
			if f.img == nil {
				continue
			}
			if err := l.r.UploadTexture(renderer.TextureCube, uint32(layer), 0, staging(f.img)); err != nil {
				return errors.Wrapf(err, "face %d", layer)
			}
		}
		return nil
	})
	if err != nil {
		l.r.DeleteTexture(id)
		return Handle{}, errors.Wrap(err, "upload cubemap")
	}

	l.logger.Debug("cubemap loaded", "label", label, "size", w, "faces", FaceCount-len(faceErrs))
	return Handle{ID: id, Kind: KindCubemap, Path: faces[0]}, stderrors.Join(faceErrs...)
}

// withBound binds id on the active slot for the duration of fn, then puts back whatever
// was bound there before.
func (l *loader) withBound(target renderer.TextureTarget, id uint32, fn func() error) error {
	prev := l.r.BoundTexture(l.r.ActiveTextureSlot(), target)
	l.r.BindTexture(target, id)
	defer l.r.BindTexture(target, prev)
	return fn()
}

func (l *loader) Release(h Handle) {
	if !h.Valid() {
		return
	}

	l.mu.Lock()
	for key, entry := range l.cache {
		if entry.handle.ID != h.ID {
			continue
		}
		entry.refs--
		if entry.refs > 0 {
			l.mu.Unlock()
			return
		}
		delete(l.cache, key)
	}
	l.mu.Unlock()

	l.r.DeleteTexture(h.ID)
}
