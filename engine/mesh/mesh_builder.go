package mesh

import "github.com/Carmen-Shannon/oxy-viewer/engine/texture"

// MeshBuilderOption is a functional option applied to a mesh during construction via NewMesh.
type MeshBuilderOption func(*mesh)

// WithLabel names the mesh's GPU buffers.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - MeshBuilderOption: a function that applies the label option to a mesh
func WithLabel(label string) MeshBuilderOption {
	return func(m *mesh) {
		if label != "" {
			m.label = label
		}
	}
}

// WithTextureLoader releases the mesh's textures through the loader that created them, which
// keeps the loader's path cache consistent.
//
// Parameters:
//   - l: the texture loader
//
// Returns:
//   - MeshBuilderOption: a function that applies the loader option to a mesh
func WithTextureLoader(l texture.Loader) MeshBuilderOption {
	return func(m *mesh) {
		m.release = l.Release
	}
}
