package importer_test

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/importer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# unit cube
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
f 1 3 2
f 1 4 3
f 5 6 7
f 5 7 8
f 1 2 6
f 1 6 5
f 4 8 7
f 4 7 3
f 1 5 8
f 1 8 4
f 2 3 7
f 2 7 6
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func assertIndicesInRange(t *testing.T, s *importer.Scene) {
	t.Helper()
	for _, m := range s.Meshes {
		for _, idx := range m.Indices {
			assert.Less(t, int(idx), len(m.Positions), "mesh %s", m.Name)
		}
	}
}

func TestImportSceneCubeOBJ(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cube.obj", cubeOBJ)

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 1)

	m := s.Meshes[0]
	assert.Len(t, m.Positions, 8)
	assert.Len(t, m.Indices, 36)
	assert.False(t, m.HasTexCoords)
	assert.Empty(t, m.Normals)
	assert.Equal(t, -1, m.Material)
	assertIndicesInRange(t, s)

	for _, v := range m.Vertices() {
		assert.Equal(t, [2]float32{0, 0}, v.TexCoord)
	}
}

func TestImportCubeOBJEndToEnd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cube.obj", cubeOBJ)
	r := renderertest.New()

	obj := importer.NewImporter(r, texture.NewLoader(r)).Import(path)
	require.Len(t, obj.Meshes, 1)
	assert.Equal(t, 8, obj.Meshes[0].VertexCount())
	assert.Equal(t, 36, obj.Meshes[0].IndexCount())
	assert.Empty(t, obj.Meshes[0].Textures())
	assert.Equal(t, float32(1), obj.Scale.X())
}

func TestOBJFanTriangulationAndNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 2 0
f -5 -4 -3 -2 -1
`
	path := writeFile(t, t.TempDir(), "pentagon.obj", src)

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 1)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, s.Meshes[0].Indices)
}

func TestOBJSharesCornersWithIdenticalAttributes(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0.5 0.5
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 2/4/1
`
	path := writeFile(t, t.TempDir(), "tris.obj", src)

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	m := s.Meshes[0]
	// corner 2/4/1 differs from 2/2/1 in its uv, so it gets its own vertex
	assert.Len(t, m.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	require.Len(t, m.Normals, 4)
	assert.Equal(t, [3]float32{0, 0, 1}, m.Normals[3])
}

func TestOBJFlipsV(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
vt 0.25 0.75
vt 1 0
vt 1 1
f 1/1 2/2 3/3
`
	path := writeFile(t, t.TempDir(), "uv.obj", src)

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	m := s.Meshes[0]
	assert.True(t, m.HasTexCoords)
	assert.InDelta(t, 0.25, m.TexCoords[0][0], 1e-6)
	assert.InDelta(t, 0.25, m.TexCoords[0][1], 1e-6)
	assert.InDelta(t, 1.0, m.TexCoords[1][1], 1e-6)

	s, err = importer.NewImporter(nil, nil, importer.WithFlipUVs(false)).ImportScene(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, s.Meshes[0].TexCoords[0][1], 1e-6)
}

func TestOBJGroupsAndMaterialsSplitMeshes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "room.mtl", `newmtl wood
Kd 0.8 0.6 0.4
map_Kd -s 1 1 1 textures\wood.png

newmtl plain
Kd 1 1 1
`)
	src := `mtllib room.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
o desk
usemtl wood
f 1 2 3
usemtl plain
f 1 3 4
o chair
usemtl wood
f 1 2 4
`
	path := writeFile(t, dir, "room.obj", src)

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	require.Len(t, s.Root.Children, 2)
	assert.Equal(t, "desk", s.Root.Children[0].Name)
	assert.Equal(t, []int{0, 1}, s.Root.Children[0].Meshes)
	assert.Equal(t, "chair", s.Root.Children[1].Name)
	assert.Equal(t, []int{2}, s.Root.Children[1].Meshes)

	require.Len(t, s.Materials, 2)
	assert.Equal(t, []string{filepath.Join("textures", "wood.png")}, s.Materials[0].DiffuseTextures)
	assert.False(t, s.Materials[1].HasDiffuse())
	assert.Equal(t, 0, s.Meshes[0].Material)
	assert.Equal(t, 1, s.Meshes[1].Material)
	assert.Equal(t, 0, s.Meshes[2].Material)
	assertIndicesInRange(t, s)
}

func TestImportResolvesDiffuseRelativeToModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "models/textures/wood.png", string(pngBytes(t, 4, 4)))
	writeFile(t, dir, "models/desk.mtl", "newmtl wood\nmap_Kd textures/wood.png\nnewmtl bare\nnewmtl lost\nmap_Kd nowhere.png\n")
	path := writeFile(t, dir, "models/desk.obj", `mtllib desk.mtl
v 0 0 0
v 1 0 0
v 1 1 0
vt 0 0
usemtl wood
f 1/1 2/1 3/1
usemtl bare
f 1 3 2
usemtl lost
f 2 3 1
`)
	r := renderertest.New()

	obj := importer.NewImporter(r, texture.NewLoader(r)).Import(path)
	require.Len(t, obj.Meshes, 3)

	textures := obj.Meshes[0].Textures()
	require.Len(t, textures, 1)
	assert.Equal(t, filepath.Join(dir, "models", "textures", "wood.png"), textures[0].Path)
	assert.Equal(t, texture.KindDiffuse, textures[0].Kind)
	assert.Empty(t, obj.Meshes[1].Textures())
	assert.Empty(t, obj.Meshes[2].Textures())
}

func TestOBJPathsAndNamesWithSpaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "my mats.mtl", `newmtl old oak
map_Kd -s 1 1 1 -clamp on wood grain.png
newmtl tiles
map_Kd -o 0.5 floor tiles\blue tile.png
`)
	path := writeFile(t, dir, "room.obj", `mtllib my mats.mtl
v 0 0 0
v 1 0 0
v 1 1 0
o Big Desk
usemtl old oak
f 1 2 3
usemtl tiles
f 1 3 2
`)

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	require.Len(t, s.Root.Children, 1)
	assert.Equal(t, "Big Desk", s.Root.Children[0].Name)
	assert.Equal(t, "Big Desk/old oak", s.Meshes[0].Name)

	require.Len(t, s.Materials, 2)
	assert.Equal(t, "old oak", s.Materials[0].Name)
	assert.Equal(t, []string{"wood grain.png"}, s.Materials[0].DiffuseTextures)
	assert.Equal(t, []string{filepath.Join("floor tiles", "blue tile.png")}, s.Materials[1].DiffuseTextures)
}

func TestOBJFacesBeforeAnyObjectGoToDefault(t *testing.T) {
	path := writeFile(t, t.TempDir(), "loose.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl red\nf 1 2 3\nf 1 2\n")

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	require.Len(t, s.Root.Children, 1)
	assert.Equal(t, "default", s.Root.Children[0].Name)
	require.Len(t, s.Meshes, 1)
	assert.Len(t, s.Meshes[0].Indices, 3)
	assert.Equal(t, "red", s.Materials[s.Meshes[0].Material].Name)
}

func TestOBJMissingMaterialLibraryIsNotFatal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m.obj", "mtllib gone.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl wood\nf 1 2 3\n")

	s, err := importer.NewImporter(nil, nil).ImportScene(path)
	require.NoError(t, err)
	require.Len(t, s.Materials, 1)
	assert.Equal(t, "wood", s.Materials[0].Name)
	assert.False(t, s.Materials[0].HasDiffuse())
}

func TestImportFailures(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"missing":     filepath.Join(dir, "missing.obj"),
		"bad index":   writeFile(t, dir, "bad.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"),
		"bad float":   writeFile(t, dir, "nan.obj", "v 0 zero 0\n"),
		"no faces":    writeFile(t, dir, "points.obj", "v 0 0 0\n"),
		"unsupported": writeFile(t, dir, "model.fbx", "binary"),
		"broken gltf": writeFile(t, dir, "broken.gltf", "{not json"),
	}

	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := importer.NewImporter(nil, nil).ImportScene(path)
			var importErr *importer.ImportError
			require.True(t, errors.As(err, &importErr), "got %v", err)
			assert.Equal(t, path, importErr.Path)

			r := renderertest.New()
			obj := importer.NewImporter(r, texture.NewLoader(r)).Import(path)
			assert.True(t, obj.Empty())
			assert.Equal(t, path, obj.Name)
			assert.Empty(t, r.Backend.Meshes)
		})
	}
}
