package shader

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ProgramBuilderOption is a functional option for configuring a Program.
type ProgramBuilderOption func(p *program)

// WithBinder sets the Binder that Use activates the program on.
//
// Parameters:
//   - b: usually the renderer
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithBinder(b Binder) ProgramBuilderOption {
	return func(p *program) {
		p.binder = b
	}
}

// WithUniformBinding selects the vertex shader binding that holds the program's uniform struct.
// Defaults to @group(0) @binding(0).
//
// Parameters:
//   - group: the bind group index
//   - binding: the binding index within the group
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithUniformBinding(group, binding int) ProgramBuilderOption {
	return func(p *program) {
		p.uniformGroup = group
		p.uniformBinding = binding
	}
}

// WithTextureGroup selects the bind group that holds the program's textures and samplers.
// Defaults to group 1.
//
// Parameters:
//   - group: the bind group index
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithTextureGroup(group int) ProgramBuilderOption {
	return func(p *program) {
		p.textureGroup = group
	}
}

func readMat4(src []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return m
}
