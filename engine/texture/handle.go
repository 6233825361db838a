package texture

// Kind is the role a texture plays in shading.
type Kind string

const (
	// KindDiffuse is a model's base color map, sampled as texture_diffuse1 in the model shader.
	KindDiffuse Kind = "texture_diffuse"
	// KindCubemap is a six-face environment map drawn by the skybox.
	KindCubemap Kind = "texture_cubemap"
)

// Handle refers to a GPU texture owned by exactly one mesh or skybox.
type Handle struct {
	// ID is the renderer texture ID. 0 is the invalid handle.
	ID uint32
	// Kind is the texture's role.
	Kind Kind
	// Path is the source file, or a label for images decoded from memory.
	Path string
}

// Valid reports whether the handle refers to a GPU texture.
func (h Handle) Valid() bool {
	return h.ID != 0
}
