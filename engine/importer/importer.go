package importer

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/pkg/errors"
)

// Importer turns asset files into placed, draw-ready scene objects.
// The backend is selected by file extension: .obj for Wavefront OBJ, .gltf and .glb for glTF 2.0.
type Importer interface {
	// Import parses an asset file, flattens its node tree depth first into meshes and loads each
	// mesh's diffuse texture. Failures are logged and yield an object without meshes.
	//
	// Parameters:
	//   - filePath: the asset file
	//
	// Returns:
	//   - model.SceneObject: the imported object at the origin with unit scale
	Import(filePath string) model.SceneObject

	// ImportScene parses an asset file without touching the GPU.
	//
	// Parameters:
	//   - filePath: the asset file
	//
	// Returns:
	//   - *Scene: the parsed scene
	//   - error: an *ImportError if the file cannot be parsed or its node tree is incomplete
	ImportScene(filePath string) (*Scene, error)
}

// importer is the implementation of the Importer interface.
type importer struct {
	logger *slog.Logger

	r      renderer.Renderer
	loader texture.Loader

	flipUVs  bool
	backends map[string]importerBackend
}

var _ Importer = &importer{}

// NewImporter creates an importer uploading meshes through r and textures through loader.
//
// Parameters:
//   - r: the renderer owning mesh buffers
//   - loader: the texture loader for diffuse maps
//   - options: optional settings such as WithFlipUVs
//
// Returns:
//   - Importer: the importer
func NewImporter(r renderer.Renderer, loader texture.Loader, options ...ImporterBuilderOption) Importer {
	imp := &importer{
		logger:  slog.Default().With("component", "importer"),
		r:       r,
		loader:  loader,
		flipUVs: true,
	}
	for _, opt := range options {
		opt(imp)
	}

	gltfB := newGLTFBackend(imp.logger)
	imp.backends = map[string]importerBackend{
		".obj":  newOBJBackend(imp.logger, imp.flipUVs),
		".gltf": gltfB,
		".glb":  gltfB,
	}
	return imp
}

func (imp *importer) ImportScene(filePath string) (*Scene, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	backend, ok := imp.backends[ext]
	if !ok {
		return nil, &ImportError{Path: filePath, Reason: "unsupported format " + ext}
	}

	scene, err := backend.Parse(filePath)
	if err != nil {
		return nil, err
	}
	if err := validateScene(scene); err != nil {
		return nil, &ImportError{Path: filePath, Reason: "incomplete node tree", Err: err}
	}
	return scene, nil
}

// validateScene checks that the tree exists and only references meshes and materials that exist.
func validateScene(s *Scene) error {
	if s.Root == nil {
		return errors.New("scene has no root node")
	}
	var err error
	s.Walk(func(n *Node, m int) {
		if err == nil && (m < 0 || m >= len(s.Meshes)) {
			err = errors.Errorf("node %q references missing mesh %d", n.Name, m)
		}
	})
	if err != nil {
		return err
	}
	for i, m := range s.Meshes {
		if m.Material >= len(s.Materials) {
			return errors.Errorf("mesh %d references missing material %d", i, m.Material)
		}
	}
	return nil
}

func (imp *importer) Import(filePath string) model.SceneObject {
	scene, err := imp.ImportScene(filePath)
	if err != nil {
		imp.logger.Error("import failed", "path", filePath, "err", err)
		return model.NewSceneObject(filePath, nil)
	}

	dir := filepath.Dir(filePath)
	var meshes []mesh.Mesh
	scene.Walk(func(_ *Node, idx int) {
		if m := imp.buildMesh(filePath, dir, scene, scene.Meshes[idx]); m != nil {
			meshes = append(meshes, m)
		}
	})

	imp.logger.Info("model imported", "path", filePath, "meshes", len(meshes))
	return model.NewSceneObject(filePath, meshes)
}

// buildMesh uploads one mesh with its diffuse texture. A mesh that fails to upload is logged and skipped.
func (imp *importer) buildMesh(filePath, dir string, scene *Scene, data MeshData) mesh.Mesh {
	vertices := data.Vertices()
	imp.logger.Debug("mesh vertices", "mesh", data.Name, "vertices", len(vertices), "indices", len(data.Indices))

	var textures []texture.Handle
	if data.Material >= 0 {
		if h, ok := imp.diffuse(filePath, dir, scene.Materials[data.Material]); ok {
			textures = append(textures, h)
		}
	}

	m, err := mesh.NewMesh(imp.r, vertices, data.Indices, textures,
		mesh.WithLabel(filePath+":"+data.Name),
		mesh.WithTextureLoader(imp.loader),
	)
	if err != nil {
		imp.logger.Error("mesh skipped", "path", filePath, "mesh", data.Name, "err", err)
		for _, h := range textures {
			imp.loader.Release(h)
		}
		return nil
	}
	return m
}

// diffuse loads a material's first diffuse image. Any other maps the material names are ignored.
func (imp *importer) diffuse(filePath, dir string, mat MaterialData) (texture.Handle, bool) {
	if !mat.HasDiffuse() {
		imp.logger.Info("material has no diffuse texture", "path", filePath, "material", mat.Name)
		return texture.Handle{}, false
	}

	var h texture.Handle
	var err error
	if len(mat.DiffuseTextures) > 0 {
		h, err = imp.loader.Load2D(filepath.Join(dir, mat.DiffuseTextures[0]))
	} else {
		h, err = imp.loader.Load2DFromMemory(filePath+"#"+mat.Name, mat.EmbeddedDiffuse)
	}
	if err != nil {
		imp.logger.Warn("diffuse texture not loaded", "material", mat.Name, "err", err)
		return texture.Handle{}, false
	}
	return h, true
}
