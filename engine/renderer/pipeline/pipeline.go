package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render state for one program at one depth comparison, and the GPU pipeline built from it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string
	// program supplies the vertex and fragment stages and the bind group layouts
	program shader.Program

	// renderPipeline is the GPU object, nil until the backend registers the pipeline
	renderPipeline *wgpu.RenderPipeline

	depthCompare      wgpu.CompareFunction
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	frontFace         wgpu.FrontFace
}

// Pipeline is the fixed-function render state a program is drawn with. WebGPU bakes the depth
// comparison into the pipeline object, so the renderer keeps one Pipeline per program and depth
// comparison and selects among them at draw time.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Program returns the program whose stages this pipeline runs.
	//
	// Returns:
	//   - shader.Program: the program
	Program() shader.Program

	// Shader retrieves the program's shader of the given type, nil if not set.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the GPU pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// DepthCompare returns the comparison a fragment's depth must pass against the depth buffer.
	//
	// Returns:
	//   - wgpu.CompareFunction: the depth comparison
	DepthCompare() wgpu.CompareFunction

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// Descriptor assembles the render pipeline descriptor for this state.
	//
	// Parameters:
	//   - target: the formats and sample count of the render pass the pipeline draws into
	//   - layout: the pipeline layout built from the program's bind group layouts
	//   - vertexModule: the compiled vertex stage
	//   - fragmentModule: the compiled fragment stage
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor to create the GPU pipeline from
	Descriptor(target Target, layout *wgpu.PipelineLayout, vertexModule, fragmentModule *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor

	// SetRenderPipeline sets the GPU pipeline created from Descriptor.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

// Target describes the attachments of the render pass a pipeline draws into.
type Target struct {
	ColorFormat wgpu.TextureFormat
	DepthFormat wgpu.TextureFormat
	SampleCount uint32
}

var _ Pipeline = &pipeline{}

// alphaBlend is the "over" blend used when blending is enabled.
var alphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// Key builds the cache key of the pipeline that draws programKey with the given depth comparison.
//
// Parameters:
//   - programKey: the program's key
//   - depthCompare: the depth comparison
//
// Returns:
//   - string: the pipeline key
func Key(programKey string, depthCompare wgpu.CompareFunction) string {
	return fmt.Sprintf("%s/depth-%d", programKey, depthCompare)
}

// NewPipeline is the entry point to create a new Pipeline for a program.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline, usually from Key
//   - program: the program to draw with
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, program shader.Program, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		program:           program,
		depthCompare:      wgpu.CompareFunctionLess,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		frontFace:         wgpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Program() shader.Program {
	return p.program
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	if p.program == nil {
		return nil
	}
	return p.program.Shader(shaderType)
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) Descriptor(target Target, layout *wgpu.PipelineLayout, vertexModule, fragmentModule *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	colorTarget := wgpu.ColorTargetState{
		Format:    target.ColorFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if p.blendEnabled {
		colorTarget.Blend = &alphaBlend
	}

	return &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vertexModule,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fragmentModule,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: max(target.SampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            target.DepthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      p.depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
