package texture

// LoaderBuilderOption is a functional option applied to a loader during construction via NewLoader.
type LoaderBuilderOption func(*loader)

// WithPathCache makes repeated Load2D calls for the same cleaned path return the first handle
// instead of decoding and uploading again. Cached textures are reference counted, so the GPU
// texture is freed by the last Release. Disabled by default.
//
// Parameters:
//   - enabled: whether to cache by path
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache option to a loader
func WithPathCache(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.cacheEnabled = enabled
	}
}

// WithWorkers sets the number of goroutines decoding cubemap faces. Defaults to one per face.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 1 {
			l.workers = n
		}
	}
}
