// Package builtin embeds the WGSL sources of the viewer's two programs.
package builtin

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
)

const (
	// ModelProgramKey identifies the textured, lit model program.
	ModelProgramKey = "model"
	// SkyboxProgramKey identifies the cubemap skybox program.
	SkyboxProgramKey = "skybox"
)

var (
	//go:embed model.vert.wgsl
	ModelVertexSource string
	//go:embed model.frag.wgsl
	ModelFragmentSource string
	//go:embed skybox.vert.wgsl
	SkyboxVertexSource string
	//go:embed skybox.frag.wgsl
	SkyboxFragmentSource string
)

// ModelProgram links the model shaders. Its vertex uniform struct has model, view and
// projection members; texture unit 0 is the diffuse texture.
//
// Parameters:
//   - opts: program options, typically shader.WithBinder
//
// Returns:
//   - shader.Program: the linked program
//   - error: error if linking fails
func ModelProgram(opts ...shader.ProgramBuilderOption) (shader.Program, error) {
	return shader.NewProgram(ModelProgramKey,
		shader.NewShader(ModelProgramKey+".vert", shader.ShaderTypeVertex, ModelVertexSource),
		shader.NewShader(ModelProgramKey+".frag", shader.ShaderTypeFragment, ModelFragmentSource),
		opts...,
	)
}

// SkyboxProgram links the skybox shaders. Its vertex uniform struct has view and projection
// members; texture unit 0 is the cubemap.
//
// Parameters:
//   - opts: program options, typically shader.WithBinder
//
// Returns:
//   - shader.Program: the linked program
//   - error: error if linking fails
func SkyboxProgram(opts ...shader.ProgramBuilderOption) (shader.Program, error) {
	return shader.NewProgram(SkyboxProgramKey,
		shader.NewShader(SkyboxProgramKey+".vert", shader.ShaderTypeVertex, SkyboxVertexSource),
		shader.NewShader(SkyboxProgramKey+".frag", shader.ShaderTypeFragment, SkyboxFragmentSource),
		opts...,
	)
}
