package importer

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfBackend parses glTF 2.0 files, both .gltf with external or data URI buffers and binary .glb.
type gltfBackend struct {
	logger *slog.Logger
}

var _ importerBackend = &gltfBackend{}

func newGLTFBackend(logger *slog.Logger) *gltfBackend {
	return &gltfBackend{logger: logger}
}

func (b *gltfBackend) Parse(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &ImportError{Path: path, Reason: "cannot parse glTF", Err: err}
	}

	scene := &Scene{}
	for i, m := range doc.Materials {
		scene.Materials = append(scene.Materials, b.material(doc, i, m))
	}

	// every glTF mesh becomes one MeshData per triangle primitive
	meshMap := make([][]int, len(doc.Meshes))
	for i, m := range doc.Meshes {
		for j, prim := range m.Primitives {
			data, err := b.primitive(doc, m, j, prim)
			if err != nil {
				return nil, &ImportError{Path: path, Reason: fmt.Sprintf("mesh %d primitive %d", i, j), Err: err}
			}
			if data == nil {
				continue
			}
			meshMap[i] = append(meshMap[i], len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, *data)
		}
	}

	roots, err := gltfRootNodes(doc)
	if err != nil {
		return nil, &ImportError{Path: path, Reason: "incomplete node tree", Err: err}
	}
	visited := make([]bool, len(doc.Nodes))
	scene.Root = &Node{Name: "root"}
	for _, idx := range roots {
		child, err := gltfNode(doc, idx, meshMap, visited)
		if err != nil {
			return nil, &ImportError{Path: path, Reason: "incomplete node tree", Err: err}
		}
		scene.Root.Children = append(scene.Root.Children, child)
	}
	return scene, nil
}

// gltfRootNodes returns the default scene's root nodes, or every node that is nobody's
// child when the file declares no scene.
func gltfRootNodes(doc *gltf.Document) ([]uint32, error) {
	if len(doc.Nodes) == 0 {
		return nil, errors.New("file has no nodes")
	}
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = int(*doc.Scene)
		}
		if idx >= len(doc.Scenes) {
			return nil, errors.Errorf("default scene %d does not exist", idx)
		}
		return doc.Scenes[idx].Nodes, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []uint32
	for i, child := range isChild {
		if !child {
			roots = append(roots, uint32(i))
		}
	}
	return roots, nil
}

// gltfNode copies a node and its subtree into owned Nodes, rejecting dangling and repeated references.
func gltfNode(doc *gltf.Document, idx uint32, meshMap [][]int, visited []bool) (*Node, error) {
	if int(idx) >= len(doc.Nodes) {
		return nil, errors.Errorf("node %d does not exist", idx)
	}
	if visited[idx] {
		return nil, errors.Errorf("node %d is referenced twice", idx)
	}
	visited[idx] = true

	src := doc.Nodes[idx]
	n := &Node{Name: src.Name}
	if src.Mesh != nil {
		if int(*src.Mesh) >= len(meshMap) {
			return nil, errors.Errorf("node %d references missing mesh %d", idx, *src.Mesh)
		}
		n.Meshes = append(n.Meshes, meshMap[*src.Mesh]...)
	}
	for _, c := range src.Children {
		child, err := gltfNode(doc, c, meshMap, visited)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// primitive reads one primitive. Non-triangle primitives are skipped and return nil.
func (b *gltfBackend) primitive(doc *gltf.Document, m *gltf.Mesh, index int, prim *gltf.Primitive) (*MeshData, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		b.logger.Debug("non-triangle primitive skipped", "mesh", m.Name, "primitive", index)
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || int(posIdx) >= len(doc.Accessors) {
		return nil, errors.New("primitive has no positions")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, errors.Wrap(err, "read positions")
	}

	data := &MeshData{
		Name:      m.Name,
		Positions: positions,
		Material:  -1,
	}
	if len(m.Primitives) > 1 {
		data.Name = fmt.Sprintf("%s/%d", m.Name, index)
	}

	if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok && int(nIdx) < len(doc.Accessors) {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
		if err != nil {
			return nil, errors.Wrap(err, "read normals")
		}
		if len(normals) == len(positions) {
			data.Normals = normals
		}
	}
	if tIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok && int(tIdx) < len(doc.Accessors) {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[tIdx], nil)
		if err != nil {
			return nil, errors.Wrap(err, "read texture coordinates")
		}
		if len(uvs) == len(positions) {
			data.TexCoords = uvs
			data.HasTexCoords = true
		}
	}

	if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
		data.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, errors.Wrap(err, "read indices")
		}
	} else {
		data.Indices = make([]uint32, len(positions))
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}
	if len(data.Indices)%3 != 0 {
		return nil, errors.Errorf("%d indices do not form triangles", len(data.Indices))
	}
	for _, idx := range data.Indices {
		if int(idx) >= len(positions) {
			return nil, errors.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
	}

	if prim.Material != nil && int(*prim.Material) < len(doc.Materials) {
		data.Material = int(*prim.Material)
	}
	return data, nil
}

// material resolves the base color texture to an external path or embedded image bytes.
func (b *gltfBackend) material(doc *gltf.Document, index int, m *gltf.Material) MaterialData {
	out := MaterialData{Name: m.Name}
	if out.Name == "" {
		out.Name = fmt.Sprintf("material%d", index)
	}
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorTexture == nil {
		return out
	}

	texIdx := m.PBRMetallicRoughness.BaseColorTexture.Index
	if int(texIdx) >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return out
	}
	imgIdx := *doc.Textures[texIdx].Source
	if int(imgIdx) >= len(doc.Images) {
		return out
	}
	img := doc.Images[imgIdx]

	switch {
	case img.BufferView != nil && int(*img.BufferView) < len(doc.BufferViews):
		data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			b.logger.Warn("embedded image unreadable", "material", out.Name, "err", err)
			return out
		}
		out.EmbeddedDiffuse = data
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			b.logger.Warn("data URI image unreadable", "material", out.Name, "err", err)
			return out
		}
		out.EmbeddedDiffuse = data
	case img.URI != "":
		out.DiffuseTextures = append(out.DiffuseTextures, cleanAssetPath(unescapeURI(img.URI)))
	}
	return out
}

// unescapeURI decodes the percent escapes glTF exporters write into file URIs.
func unescapeURI(uri string) string {
	if s, err := url.PathUnescape(uri); err == nil {
		return s
	}
	return uri
}
