package importer

// ImporterBuilderOption is a functional option applied to an importer during construction via NewImporter.
type ImporterBuilderOption func(*importer)

// WithFlipUVs controls whether OBJ texture coordinates are flipped vertically (v' = 1 - v) so
// that they address images stored top row first. Enabled by default. glTF coordinates already
// use that origin and are never flipped.
//
// Parameters:
//   - flip: whether to flip OBJ texture coordinates
//
// Returns:
//   - ImporterBuilderOption: a function that applies the flip option to an importer
func WithFlipUVs(flip bool) ImporterBuilderOption {
	return func(imp *importer) {
		imp.flipUVs = flip
	}
}
