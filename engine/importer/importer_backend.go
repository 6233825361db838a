package importer

// importerBackend parses one family of asset formats into a Scene.
// Concrete implementations (objBackend, gltfBackend) handle format-specific details.
type importerBackend interface {
	// Parse reads an asset file. Faces must come back triangulated and indices in range.
	//
	// Parameters:
	//   - path: the asset file
	//
	// Returns:
	//   - *Scene: the parsed scene
	//   - error: an *ImportError if the file cannot be read or is malformed
	Parse(path string) (*Scene, error)
}
