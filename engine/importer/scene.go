package importer

import "github.com/Carmen-Shannon/oxy-viewer/common"

// Scene is a parsed asset file: an owned node tree over a flat list of meshes and materials.
// It holds no GPU resources and is discarded once flattened.
type Scene struct {
	// Root is the top of the node tree.
	Root *Node
	// Meshes is every mesh in the file; nodes refer to them by index.
	Meshes []MeshData
	// Materials is every material in the file; meshes refer to them by index.
	Materials []MaterialData
}

// Node is one node of the scene tree.
type Node struct {
	Name string
	// Meshes are indices into Scene.Meshes, in declared order.
	Meshes []int
	// Children are owned by this node, in file order.
	Children []*Node
}

// MeshData is one triangulated mesh on the CPU.
type MeshData struct {
	Name      string
	Positions [][3]float32
	// Normals is either empty or the same length as Positions.
	Normals [][3]float32
	// TexCoords is the first UV channel, the same length as Positions when HasTexCoords is set.
	TexCoords    [][2]float32
	HasTexCoords bool
	// Indices is a triangle list.
	Indices []uint32
	// Material is an index into Scene.Materials, or -1 for none.
	Material int
}

// MaterialData is the part of a material the viewer shades with.
type MaterialData struct {
	Name string
	// DiffuseTextures are image paths as written in the asset, relative to the asset's directory.
	DiffuseTextures []string
	// EmbeddedDiffuse is the encoded diffuse image for assets that carry their images inline.
	EmbeddedDiffuse []byte
}

// HasDiffuse reports whether the material names a diffuse image.
func (m MaterialData) HasDiffuse() bool {
	return len(m.DiffuseTextures) > 0 || len(m.EmbeddedDiffuse) > 0
}

// Vertices interleaves the mesh's attributes. Missing normals are zero and missing texture
// coordinates are (0, 0).
//
// Returns:
//   - []common.Vertex: one vertex per position
func (m MeshData) Vertices() []common.Vertex {
	out := make([]common.Vertex, len(m.Positions))
	for i, p := range m.Positions {
		out[i].Position = p
		if i < len(m.Normals) {
			out[i].Normal = m.Normals[i]
		}
		if m.HasTexCoords && i < len(m.TexCoords) {
			out[i].TexCoord = m.TexCoords[i]
		}
	}
	return out
}

// Walk visits the tree depth first: a node's own meshes in declared order, then its children
// in order. fn receives each mesh index with the node that references it.
//
// Parameters:
//   - fn: the visitor
func (s *Scene) Walk(fn func(n *Node, mesh int)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if n == nil {
			return
		}
		for _, m := range n.Meshes {
			fn(n, m)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(s.Root)
}
