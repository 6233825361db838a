package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo pairs a wgpu vertex format with its byte size for offset calculation.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout is the byte size and alignment of a WGSL type in host-shareable memory.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// parsedBinding is one @group/@binding resource declaration.
type parsedBinding struct {
	group    int
	binding  int
	varName  string
	typeName string
	entry    wgpu.BindGroupLayoutEntry
}

// UniformField describes where a named member of a uniform struct lives in the uniform block.
type UniformField struct {
	// Name is the struct member name, e.g. "view".
	Name string
	// TypeName is the WGSL type of the member, e.g. "mat4x4<f32>".
	TypeName string
	// Offset is the byte offset of the member from the start of the block.
	Offset uint64
	// Size is the byte size of the member.
	Size uint64
}

// UniformLayout is the resolved memory layout of the struct bound to a uniform buffer binding.
type UniformLayout struct {
	// StructName is the WGSL struct type bound at the binding.
	StructName string
	// Size is the total byte size of the struct, rounded up to its alignment.
	Size uint64
	// Fields holds every member in declaration order.
	Fields []UniformField
}

// Field looks up a member by name.
//
// Parameters:
//   - name: the member name
//
// Returns:
//   - UniformField: the member layout
//   - bool: false when the struct has no member with that name
func (l UniformLayout) Field(name string) (UniformField, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return UniformField{}, false
}
