package shader

import (
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// ShaderType identifies the pipeline stage a shader runs in.
type ShaderType int

const (
	// ShaderTypeVertex is a shader containing a @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a shader containing a @fragment entry point, paired with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	parsed     parsedSource
}

// Shader is one parsed WGSL stage. It exposes what the renderer needs to build pipelines
// (source, entry point, vertex layouts, bind group layouts) and what a Program needs to
// place named uniforms (struct layouts of uniform bindings).
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and caching.
	//
	// Returns:
	//   - string: the shader's key
	Key() string

	// Source retrieves the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// ShaderType returns the stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry point function.
	//
	// Returns:
	//   - string: the entry point name, or empty when the source declares none
	EntryPoint() string

	// VertexLayouts returns the vertex buffer layouts parsed from the vertex input structs.
	// Fragment shaders return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per vertex input struct, in declaration order
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the layout descriptors of every declared bind group,
	// keyed by group index, with visibility set to this shader's stage.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindingVarName returns the variable name declared at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or empty when nothing is declared there
	BindingVarName(group, binding int) string

	// UniformLayout resolves the struct bound to a uniform buffer at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - UniformLayout: member offsets and total size of the bound struct
	//   - bool: false if the binding is not a uniform buffer of a resolvable struct type
	UniformLayout(group, binding int) (UniformLayout, bool)
}

var _ Shader = &shader{}

// NewShader parses WGSL source for the given stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source is written for
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	return &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		parsed:     parseSource(source, shaderType),
	}
}

// NewShaderFromFile reads WGSL source from disk and parses it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source is written for
//   - path: the WGSL file to read
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if the file cannot be read
func NewShaderFromFile(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s: read %s", key, path)
	}
	return NewShader(key, shaderType, string(data)), nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.parsed.entryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.parsed.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	groups := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, b := range s.parsed.bindings {
		desc := groups[b.group]
		desc.Entries = append(desc.Entries, b.entry)
		groups[b.group] = desc
	}
	return groups
}

func (s *shader) BindingVarName(group, binding int) string {
	if b, ok := s.binding(group, binding); ok {
		return b.varName
	}
	return ""
}

func (s *shader) UniformLayout(group, binding int) (UniformLayout, bool) {
	b, ok := s.binding(group, binding)
	if !ok || b.entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
		return UniformLayout{}, false
	}
	for _, ps := range s.parsed.structs {
		if ps.name != b.typeName {
			continue
		}
		fields, layout, ok := computeStructFields(ps, s.parsed.structSizes)
		if !ok {
			return UniformLayout{}, false
		}
		return UniformLayout{StructName: ps.name, Size: layout.size, Fields: fields}, true
	}
	return UniformLayout{}, false
}

func (s *shader) binding(group, binding int) (parsedBinding, bool) {
	for _, b := range s.parsed.bindings {
		if b.group == group && b.binding == binding {
			return b, true
		}
	}
	return parsedBinding{}, false
}
