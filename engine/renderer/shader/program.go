package shader

import (
	"log/slog"
	"sort"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Binder activates a program for the draws that follow. The renderer implements it.
type Binder interface {
	UseProgram(p Program)
}

// TextureSlot maps a texture unit index to the texture and sampler bindings that serve it.
type TextureSlot struct {
	// Slot is the texture unit index, counted from 0 in binding order.
	Slot int
	// TextureBinding is the binding of the sampled texture within the texture group.
	TextureBinding uint32
	// SamplerBinding is the binding of the sampler paired with the texture.
	SamplerBinding uint32
	// Dimension is the view dimension the shader declares for the texture.
	Dimension wgpu.TextureViewDimension
}

// program is the implementation of the Program interface.
type program struct {
	key      string
	vertex   Shader
	fragment Shader
	binder   Binder

	uniformGroup   int
	uniformBinding int
	textureGroup   int

	uniforms UniformLayout
	block    []byte
	slots    []TextureSlot
	layouts  map[int]wgpu.BindGroupLayoutDescriptor
}

// Program is a linked vertex and fragment shader pair with a CPU-side copy of its uniform block.
// Use activates it on its Binder; SetMatrix writes a named 4x4 matrix member of the vertex
// shader's uniform struct, and the renderer snapshots the block at every draw.
type Program interface {
	// Key retrieves the unique identifier of the program.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// Shader returns the stage shader of the given type.
	//
	// Parameters:
	//   - shaderType: ShaderTypeVertex or ShaderTypeFragment
	//
	// Returns:
	//   - Shader: the stage, or nil for an unknown type
	Shader(shaderType ShaderType) Shader

	// Use makes this program the active program for subsequent draws.
	Use()

	// SetMatrix writes a column-major 4x4 matrix into the uniform member called name.
	// Names that are not mat4x4 members of the uniform struct are ignored.
	//
	// Parameters:
	//   - name: the uniform struct member name, e.g. "view"
	//   - m: the matrix value
	SetMatrix(name string, m mgl32.Mat4)

	// Matrix reads back the current value of a mat4x4 uniform member.
	//
	// Parameters:
	//   - name: the uniform struct member name
	//
	// Returns:
	//   - mgl32.Mat4: the stored value
	//   - bool: false if there is no such member
	Matrix(name string) (mgl32.Mat4, bool)

	// UniformData returns the current uniform block bytes. The slice is owned by the program.
	//
	// Returns:
	//   - []byte: the uniform block, UniformLayout().Size bytes long
	UniformData() []byte

	// UniformLayout returns the layout of the uniform struct.
	//
	// Returns:
	//   - UniformLayout: member offsets and block size
	UniformLayout() UniformLayout

	// UniformGroup returns the bind group index of the uniform buffer binding.
	UniformGroup() int

	// UniformBinding returns the binding index of the uniform buffer within its group.
	UniformBinding() int

	// TextureGroup returns the bind group index that holds the program's textures and samplers.
	TextureGroup() int

	// TextureSlots returns the texture units the program samples from, in slot order.
	//
	// Returns:
	//   - []TextureSlot: one entry per texture unit
	TextureSlots() []TextureSlot

	// BindGroupLayoutDescriptors returns the merged vertex and fragment layouts, with the
	// uniform binding marked as using a dynamic offset.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// SetBinder replaces the Binder that Use activates the program on.
	//
	// Parameters:
	//   - b: the new Binder
	SetBinder(b Binder)
}

var _ Program = &program{}

// NewProgram links a vertex and fragment shader into a Program with all options applied.
//
// Parameters:
//   - key: a unique identifier for the program
//   - vertex: the vertex stage
//   - fragment: the fragment stage
//   - opts: functional options
//
// Returns:
//   - Program: the linked program
//   - error: error if a stage is missing, an entry point is absent, the uniform binding does not
//     resolve to a struct, or textures and samplers in the texture group do not pair up
func NewProgram(key string, vertex, fragment Shader, opts ...ProgramBuilderOption) (Program, error) {
	p := &program{
		key:            key,
		vertex:         vertex,
		fragment:       fragment,
		uniformGroup:   0,
		uniformBinding: 0,
		textureGroup:   1,
	}
	for _, opt := range opts {
		opt(p)
	}

	if vertex == nil || vertex.ShaderType() != ShaderTypeVertex {
		return nil, errors.Errorf("program %s: a vertex shader is required", key)
	}
	if fragment == nil || fragment.ShaderType() != ShaderTypeFragment {
		return nil, errors.Errorf("program %s: a fragment shader is required", key)
	}
	if vertex.EntryPoint() == "" || fragment.EntryPoint() == "" {
		return nil, errors.Errorf("program %s: missing @vertex or @fragment entry point", key)
	}

	layout, ok := vertex.UniformLayout(p.uniformGroup, p.uniformBinding)
	if !ok {
		return nil, errors.Errorf("program %s: no uniform struct at @group(%d) @binding(%d)", key, p.uniformGroup, p.uniformBinding)
	}
	p.uniforms = layout
	p.block = make([]byte, layout.Size)
	for _, f := range layout.Fields {
		if f.Size == common.Mat4Size {
			common.PutMat4(p.block[f.Offset:], mgl32.Ident4())
		}
	}

	p.layouts = mergeBindGroupLayouts(vertex.BindGroupLayoutDescriptors(), fragment.BindGroupLayoutDescriptors())
	if desc, ok := p.layouts[p.uniformGroup]; ok {
		for i := range desc.Entries {
			if desc.Entries[i].Binding == uint32(p.uniformBinding) {
				desc.Entries[i].Buffer.HasDynamicOffset = true
			}
		}
		p.layouts[p.uniformGroup] = desc
	}

	slots, err := pairTextureSlots(p.layouts[p.textureGroup])
	if err != nil {
		return nil, errors.Wrapf(err, "program %s", key)
	}
	p.slots = slots

	return p, nil
}

func (p *program) Key() string {
	return p.key
}

func (p *program) Shader(shaderType ShaderType) Shader {
	switch shaderType {
	case ShaderTypeVertex:
		return p.vertex
	case ShaderTypeFragment:
		return p.fragment
	default:
		return nil
	}
}

func (p *program) Use() {
	if p.binder == nil {
		slog.Debug("program has no binder", "component", "shader", "program", p.key)
		return
	}
	p.binder.UseProgram(p)
}

func (p *program) SetMatrix(name string, m mgl32.Mat4) {
	f, ok := p.uniforms.Field(name)
	if !ok || f.Size != common.Mat4Size {
		return
	}
	common.PutMat4(p.block[f.Offset:], m)
}

func (p *program) Matrix(name string) (mgl32.Mat4, bool) {
	f, ok := p.uniforms.Field(name)
	if !ok || f.Size != common.Mat4Size {
		return mgl32.Mat4{}, false
	}
	return readMat4(p.block[f.Offset:]), true
}

func (p *program) UniformData() []byte {
	return p.block
}

func (p *program) UniformLayout() UniformLayout {
	return p.uniforms
}

func (p *program) UniformGroup() int {
	return p.uniformGroup
}

func (p *program) UniformBinding() int {
	return p.uniformBinding
}

func (p *program) TextureGroup() int {
	return p.textureGroup
}

func (p *program) TextureSlots() []TextureSlot {
	return p.slots
}

func (p *program) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.layouts
}

func (p *program) SetBinder(b Binder) {
	p.binder = b
}

// pairTextureSlots pairs the k-th texture entry of a group with its k-th sampler entry,
// both in binding order, to form texture unit k.
func pairTextureSlots(desc wgpu.BindGroupLayoutDescriptor) ([]TextureSlot, error) {
	var textures, samplers []wgpu.BindGroupLayoutEntry
	for _, e := range desc.Entries {
		switch {
		case e.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			textures = append(textures, e)
		case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			samplers = append(samplers, e)
		}
	}
	if len(textures) != len(samplers) {
		return nil, errors.Errorf("texture group declares %d textures but %d samplers", len(textures), len(samplers))
	}

	slots := make([]TextureSlot, len(textures))
	for i := range textures {
		slots[i] = TextureSlot{
			Slot:           i,
			TextureBinding: textures[i].Binding,
			SamplerBinding: samplers[i].Binding,
			Dimension:      textures[i].Texture.ViewDimension,
		}
	}
	return slots, nil
}

// mergeBindGroupLayouts merges the vertex and fragment layouts per group. Entries present in both
// stages at the same binding have their visibility flags combined; entries are sorted by binding.
//
// Parameters:
//   - vertexLayouts: descriptors from the vertex shader
//   - fragmentLayouts: descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	add := func(layouts map[int]wgpu.BindGroupLayoutDescriptor) {
		for g, desc := range layouts {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					e = existing
				}
				byGroup[g][e.Binding] = e
			}
		}
	}
	add(vertexLayouts)
	add(fragmentLayouts)

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entries := range byGroup {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return merged
}
