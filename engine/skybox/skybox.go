package skybox

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// VertexCount is the number of vertices in the skybox cube: 6 faces of 2 triangles.
const VertexCount = 36

// cubeVertices is a unit cube drawn from the inside, as non-indexed triangles.
var cubeVertices = [VertexCount][3]float32{
	// -Z
	{-1, 1, -1}, {-1, -1, -1}, {1, -1, -1},
	{1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	// -X
	{-1, -1, 1}, {-1, -1, -1}, {-1, 1, -1},
	{-1, 1, -1}, {-1, 1, 1}, {-1, -1, 1},
	// +X
	{1, -1, -1}, {1, -1, 1}, {1, 1, 1},
	{1, 1, 1}, {1, 1, -1}, {1, -1, -1},
	// +Z
	{-1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
	{1, 1, 1}, {1, -1, 1}, {-1, -1, 1},
	// +Y
	{-1, 1, -1}, {1, 1, -1}, {1, 1, 1},
	{1, 1, 1}, {-1, 1, 1}, {-1, 1, -1},
	// -Y
	{-1, -1, -1}, {-1, -1, 1}, {1, -1, -1},
	{1, -1, -1}, {-1, -1, 1}, {1, -1, 1},
}

// Skybox draws a cubemap around the camera behind all other geometry.
type Skybox interface {
	// Draw renders the cube with the rotation part of view, so it never moves with the camera,
	// and with a LessEqual depth test so it passes at the far plane. The renderer's depth function
	// is restored before returning, including when the cubemap failed to load.
	//
	// Parameters:
	//   - p: the skybox program
	//   - view: the camera view matrix, translation included
	//   - projection: the projection matrix
	Draw(p shader.Program, view, projection mgl32.Mat4)

	// Cubemap returns the cubemap handle, which is invalid when loading failed.
	//
	// Returns:
	//   - texture.Handle: the cubemap
	Cubemap() texture.Handle

	// Release frees the cube geometry and the cubemap.
	Release()
}

// skybox is the implementation of the Skybox interface.
type skybox struct {
	mu     *sync.Mutex
	logger *slog.Logger

	r       renderer.Renderer
	loader  texture.Loader
	mesh    uint32
	cubemap texture.Handle
}

var _ Skybox = &skybox{}

// NewSkybox uploads the cube and loads the six faces. Load failures are logged and the skybox
// keeps working with whatever loaded.
//
// Parameters:
//   - r: the renderer
//   - loader: the texture loader for the cubemap
//   - faces: face images in +X, -X, +Y, -Y, +Z, -Z order
//
// Returns:
//   - Skybox: the skybox
func NewSkybox(r renderer.Renderer, loader texture.Loader, faces [texture.FaceCount]string) Skybox {
	s := &skybox{
		mu:     &sync.Mutex{},
		logger: slog.Default().With("component", "skybox"),
		r:      r,
		loader: loader,
	}

	id, err := r.CreateMesh("skybox", common.SliceToBytes(cubeVertices[:]), VertexCount, nil)
	if err != nil {
		s.logger.Error("skybox geometry not created", "err", err)
	}
	s.mesh = id

	s.cubemap, err = loader.LoadCubemap(faces)
	switch {
	case !s.cubemap.Valid():
		s.logger.Error("cubemap not loaded", "err", err)
	case err != nil:
		s.logger.Warn("cubemap loaded with missing faces", "err", err)
	}
	return s
}

func (s *skybox) Draw(p shader.Program, view, projection mgl32.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.r.DepthFunc()
	s.r.SetDepthFunc(renderer.DepthLessEqual)
	defer s.r.SetDepthFunc(prev)

	p.Use()
	p.SetMatrix("view", common.StripTranslation(view))
	p.SetMatrix("projection", projection)

	if s.mesh == 0 {
		return
	}

	s.r.ActiveTexture(0)
	s.r.BindTexture(renderer.TextureCube, s.cubemap.ID)
	if err := s.r.DrawArrays(s.mesh, VertexCount); err != nil {
		s.logger.Debug("skybox draw skipped", "err", err)
	}
	s.r.BindTexture(renderer.TextureCube, 0)
}

func (s *skybox) Cubemap() texture.Handle {
	return s.cubemap
}

func (s *skybox) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mesh != 0 {
		s.r.DeleteMesh(s.mesh)
		s.mesh = 0
	}
	s.loader.Release(s.cubemap)
	s.cubemap = texture.Handle{}
}
