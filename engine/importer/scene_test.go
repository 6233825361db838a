package importer_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/importer"
	"github.com/stretchr/testify/assert"
)

func TestWalkVisitsOwnMeshesBeforeChildren(t *testing.T) {
	s := &importer.Scene{
		Root: &importer.Node{
			Name:   "root",
			Meshes: []int{4},
			Children: []*importer.Node{
				{Name: "a", Meshes: []int{0, 1}, Children: []*importer.Node{{Name: "a1", Meshes: []int{2}}}},
				{Name: "b"},
				{Name: "c", Meshes: []int{3}},
			},
		},
	}

	var got []int
	var nodes []string
	s.Walk(func(n *importer.Node, m int) {
		got = append(got, m)
		nodes = append(nodes, n.Name)
	})
	assert.Equal(t, []int{4, 0, 1, 2, 3}, got)
	assert.Equal(t, []string{"root", "a", "a", "a1", "c"}, nodes)
}

func TestVerticesFillsMissingAttributes(t *testing.T) {
	m := importer.MeshData{
		Positions: [][3]float32{{1, 2, 3}, {4, 5, 6}},
		TexCoords: [][2]float32{{0.5, 0.5}, {1, 1}},
	}

	got := m.Vertices()
	assert.Equal(t, []common.Vertex{
		{Position: [3]float32{1, 2, 3}},
		{Position: [3]float32{4, 5, 6}},
	}, got)

	m.HasTexCoords = true
	m.Normals = [][3]float32{{0, 1, 0}, {0, 1, 0}}
	got = m.Vertices()
	assert.Equal(t, [2]float32{1, 1}, got[1].TexCoord)
	assert.Equal(t, [3]float32{0, 1, 0}, got[0].Normal)
}
