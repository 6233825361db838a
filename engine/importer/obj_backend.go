package importer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/g3n/engine/loader/obj"
	"github.com/pkg/errors"
)

// objBackend parses Wavefront OBJ files with their MTL material libraries.
type objBackend struct {
	logger *slog.Logger
	flipV  bool
}

var _ importerBackend = &objBackend{}

func newOBJBackend(logger *slog.Logger, flipV bool) *objBackend {
	return &objBackend{logger: logger, flipV: flipV}
}

// objVertexKey is one distinct position/uv/normal triple of a face corner. Missing
// components are -1.
type objVertexKey struct {
	position, texCoord, normal int
}

// objMeshBuilder collects the faces of one object that share a material.
type objMeshBuilder struct {
	data    MeshData
	lookup  map[objVertexKey]uint32
	hasNorm bool
}

// objBuild turns a decoded OBJ into a Scene.
type objBuild struct {
	dec   *obj.Decoder
	flipV bool
	// used holds the material tokens named by usemtl statements
	used     map[string]bool
	scene    *Scene
	builders []*objMeshBuilder
	// materials maps a material token to its index in scene.Materials
	materials map[string]int
}

func (b *objBackend) Parse(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImportError{Path: path, Reason: "cannot open file", Err: err}
	}

	dir := filepath.Dir(path)
	src := prepareOBJ(string(raw), dir)
	dec, err := decodeOBJ(strings.NewReader(src.body), b.materialLibraries(dir, src.libs))
	if err != nil {
		return nil, &ImportError{Path: path, Reason: "malformed OBJ data", Err: err}
	}
	if len(dec.Warnings) > 0 {
		b.logger.Debug("OBJ statements ignored", "path", path, "count", len(dec.Warnings))
	}

	build := &objBuild{
		dec:       dec,
		flipV:     b.flipV,
		used:      src.materials,
		scene:     &Scene{Root: &Node{Name: filepath.Base(path)}},
		materials: make(map[string]int),
	}
	for i := range dec.Objects {
		if err := build.object(&dec.Objects[i]); err != nil {
			return nil, &ImportError{Path: path, Reason: "object " + unescapeURI(dec.Objects[i].Name), Err: err}
		}
	}

	for _, mb := range build.builders {
		if !mb.hasNorm {
			mb.data.Normals = nil
		}
		build.scene.Meshes = append(build.scene.Meshes, mb.data)
	}
	if len(build.scene.Meshes) == 0 {
		return nil, &ImportError{Path: path, Reason: "file contains no faces"}
	}
	return build.scene, nil
}

// materialLibraries concatenates the readable MTL libraries. A library that cannot be read
// is logged and its materials left untextured.
func (b *objBackend) materialLibraries(dir string, libs []string) io.Reader {
	var sb strings.Builder
	for _, lib := range libs {
		libPath := filepath.Join(dir, lib)
		raw, err := os.ReadFile(libPath)
		if err != nil {
			b.logger.Warn("material library skipped", "path", libPath, "err", err)
			continue
		}
		sb.WriteString(prepareMTL(string(raw)))
		sb.WriteByte('\n')
	}
	return strings.NewReader(sb.String())
}

// decodeOBJ runs the decoder, turning a panic on hostile input into an error.
func decodeOBJ(objData, mtlData io.Reader) (dec *obj.Decoder, err error) {
	defer func() {
		if r := recover(); r != nil {
			dec, err = nil, errors.Errorf("decoder panic: %v", r)
		}
	}()
	return obj.DecodeReader(objData, mtlData)
}

// object adds one decoded object as a child of the root, one mesh per material it uses.
// Objects without faces are skipped, so "o" directly followed by "g" yields one node.
func (ob *objBuild) object(o *obj.Object) error {
	if len(o.Faces) == 0 {
		return nil
	}

	node := &Node{Name: unescapeURI(o.Name)}
	byMaterial := make(map[string]*objMeshBuilder)
	for i := range o.Faces {
		face := &o.Faces[i]
		token := face.Material
		if !ob.used[token] {
			token = ""
		}

		mb, ok := byMaterial[token]
		if !ok {
			mb = ob.newBuilder(node, token)
			byMaterial[token] = mb
		}
		if err := ob.face(mb, face); err != nil {
			return errors.Wrapf(err, "face %d", i+1)
		}
	}
	ob.scene.Root.Children = append(ob.scene.Root.Children, node)
	return nil
}

func (ob *objBuild) newBuilder(node *Node, token string) *objMeshBuilder {
	name := node.Name
	material := -1
	if token != "" {
		name += "/" + unescapeURI(token)
		material = ob.material(token)
	}

	mb := &objMeshBuilder{
		data:   MeshData{Name: name, Material: material},
		lookup: make(map[objVertexKey]uint32),
	}
	node.Meshes = append(node.Meshes, len(ob.builders))
	ob.builders = append(ob.builders, mb)
	return mb
}

// material returns the scene index of a material, adding it on first use. A name the
// libraries never defined becomes an untextured material.
func (ob *objBuild) material(token string) int {
	if i, ok := ob.materials[token]; ok {
		return i
	}

	out := MaterialData{Name: unescapeURI(token)}
	if m := ob.dec.Materials[token]; m != nil && m.MapKd != "" {
		out.DiffuseTextures = []string{cleanAssetPath(unescapeURI(m.MapKd))}
	}
	i := len(ob.scene.Materials)
	ob.materials[token] = i
	ob.scene.Materials = append(ob.scene.Materials, out)
	return i
}

// face adds a polygon as a triangle fan around its first corner.
func (ob *objBuild) face(mb *objMeshBuilder, face *obj.Face) error {
	indices := make([]uint32, len(face.Vertices))
	for k := range face.Vertices {
		key, err := ob.corner(face, k)
		if err != nil {
			return err
		}
		indices[k] = mb.vertex(key, ob)
	}
	for i := 1; i+1 < len(indices); i++ {
		mb.data.Indices = append(mb.data.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

// corner resolves the k-th corner of a face. The decoder has already made the references
// 0-based; a texture coordinate or normal outside its array is treated as absent.
func (ob *objBuild) corner(face *obj.Face, k int) (objVertexKey, error) {
	key := objVertexKey{position: face.Vertices[k], texCoord: -1, normal: -1}
	if count := len(ob.dec.Vertices) / 3; key.position < 0 || key.position >= count {
		return key, errors.Errorf("position index %d out of range for %d vertices", key.position+1, count)
	}
	if k < len(face.Uvs) && inRange(face.Uvs[k], len(ob.dec.Uvs)/2) {
		key.texCoord = face.Uvs[k]
	}
	if k < len(face.Normals) && inRange(face.Normals[k], len(ob.dec.Normals)/3) {
		key.normal = face.Normals[k]
	}
	return key, nil
}

func inRange(idx, count int) bool {
	return idx >= 0 && idx < count
}

// vertex returns the index of key in the mesh, appending a new vertex on first use.
func (mb *objMeshBuilder) vertex(key objVertexKey, ob *objBuild) uint32 {
	if idx, ok := mb.lookup[key]; ok {
		return idx
	}

	idx := uint32(len(mb.data.Positions))
	mb.lookup[key] = idx

	v := ob.dec.Vertices
	p := key.position * 3
	mb.data.Positions = append(mb.data.Positions, [3]float32{v[p], v[p+1], v[p+2]})

	var uv [2]float32
	if key.texCoord >= 0 {
		t := key.texCoord * 2
		uv = [2]float32{ob.dec.Uvs[t], ob.dec.Uvs[t+1]}
		if ob.flipV {
			uv[1] = 1 - uv[1]
		}
		mb.data.HasTexCoords = true
	}
	mb.data.TexCoords = append(mb.data.TexCoords, uv)

	var n [3]float32
	if key.normal >= 0 {
		q := key.normal * 3
		n = [3]float32{ob.dec.Normals[q], ob.dec.Normals[q+1], ob.dec.Normals[q+2]}
		mb.hasNorm = true
	}
	mb.data.Normals = append(mb.data.Normals, n)
	return idx
}

// cleanAssetPath normalizes separators in paths written by tools on other platforms.
func cleanAssetPath(p string) string {
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(p, `\`, "/")))
}

// splitKeyword separates the leading statement keyword from the rest of a line.
func splitKeyword(line string) (string, string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}
