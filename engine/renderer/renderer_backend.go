package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// DepthFunc is the comparison a fragment's depth must pass to be kept.
type DepthFunc int

const (
	// DepthLess keeps fragments strictly closer than the stored depth. This is the default.
	DepthLess DepthFunc = iota
	// DepthLessEqual also keeps fragments at exactly the stored depth, which lets geometry
	// placed on the far plane pass against a cleared depth buffer.
	DepthLessEqual
	// DepthAlways disables the depth comparison.
	DepthAlways
)

// CompareFunction maps the depth function to its WebGPU comparison.
//
// Returns:
//   - wgpu.CompareFunction: the comparison baked into pipelines drawn under this function
func (d DepthFunc) CompareFunction() wgpu.CompareFunction {
	switch d {
	case DepthLessEqual:
		return wgpu.CompareFunctionLessEqual
	case DepthAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionLess
	}
}

func (d DepthFunc) String() string {
	switch d {
	case DepthLessEqual:
		return "less-equal"
	case DepthAlways:
		return "always"
	default:
		return "less"
	}
}

// TextureTarget is the kind of texture a slot binding refers to. Every texture slot holds
// one binding per target.
type TextureTarget int

const (
	// Texture2D is a single-layer 2D texture with an optional mip chain.
	Texture2D TextureTarget = iota
	// TextureCube is a six-layer cubemap in +X, -X, +Y, -Y, +Z, -Z layer order.
	TextureCube
)

// ViewDimension maps the target to the view dimension shaders declare for it.
//
// Returns:
//   - wgpu.TextureViewDimension: the view dimension
func (t TextureTarget) ViewDimension() wgpu.TextureViewDimension {
	if t == TextureCube {
		return wgpu.TextureViewDimensionCube
	}
	return wgpu.TextureViewDimension2D
}

// Layers returns the number of array layers a texture of this target has.
//
// Returns:
//   - uint32: 6 for cubemaps, 1 otherwise
func (t TextureTarget) Layers() uint32 {
	if t == TextureCube {
		return 6
	}
	return 1
}

// TextureDescriptor describes the storage and sampling of a texture to allocate.
type TextureDescriptor struct {
	// Label names the texture in GPU debug output.
	Label string
	// Target selects 2D or cubemap storage.
	Target TextureTarget
	// Width and Height are the level 0 dimensions in pixels.
	Width, Height uint32
	// MipLevels is the number of mip levels, at least 1.
	MipLevels uint32
	// Sampler configures the sampler paired with the texture.
	Sampler common.SamplerStagingData
}

// DrawCommand is one draw as the backend receives it, with every piece of renderer state resolved.
type DrawCommand struct {
	// Pipeline is the pipeline for the active program and depth function.
	Pipeline pipeline.Pipeline
	// UniformOffset is the dynamic offset of this draw's uniform snapshot in the frame's uniform data.
	UniformOffset uint32
	// Uniforms is the uniform snapshot itself. It is only valid until the next BeginFrame.
	Uniforms []byte
	// Textures holds the texture ID for each of the program's texture slots. Zero selects the
	// backend's fallback texture for the slot's dimension.
	Textures []uint32
	// Mesh is the ID of the vertex and index buffers to draw.
	Mesh uint32
	// Count is the number of indices, or vertices for non-indexed draws.
	Count int
	// Indexed selects an indexed draw.
	Indexed bool
}

// RendererBackend is the GPU side of the Renderer. The Renderer keeps all GL-like state
// (active program, depth function, texture slots, uniform snapshots) and hands the backend
// fully resolved commands, so a backend only creates GPU objects and encodes draws.
type RendererBackend interface {
	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterProgram compiles the program's stages and creates its bind group layouts and its
	// uniform bind group over the shared uniform buffer.
	//
	// Parameters:
	//   - p: the program to register
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterProgram(p shader.Program) error

	// RegisterPipeline creates the GPU pipeline for a pipeline whose program is already registered,
	// storing it on the pipeline via SetRenderPipeline.
	//
	// Parameters:
	//   - p: the pipeline to create
	//
	// Returns:
	//   - error: an error if the program is unknown or the pipeline could not be created
	RegisterPipeline(p pipeline.Pipeline) error

	// CreateTexture allocates texture storage and a sampler under the given ID.
	//
	// Parameters:
	//   - id: the renderer-assigned texture ID
	//   - desc: size, levels, target and sampler
	//
	// Returns:
	//   - error: an error if allocation fails
	CreateTexture(id uint32, desc TextureDescriptor) error

	// WriteTexture uploads tightly packed RGBA8 pixels into one layer and level of a texture.
	//
	// Parameters:
	//   - id: the texture ID
	//   - layer: the array layer, the cube face index for cubemaps
	//   - level: the mip level
	//   - data: the pixels and their dimensions
	WriteTexture(id, layer, level uint32, data common.TextureStagingData)

	// ReleaseTexture frees a texture. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the texture ID
	ReleaseTexture(id uint32)

	// CreateMeshBuffers uploads vertex data and, when indexData is non-empty, 32-bit indices.
	//
	// Parameters:
	//   - id: the renderer-assigned mesh ID
	//   - label: a debug label
	//   - vertexData: the raw vertex bytes
	//   - vertexCount: the number of vertices in vertexData
	//   - indexData: the raw uint32 index bytes, may be empty
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if buffer creation fails
	CreateMeshBuffers(id uint32, label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error

	// ReleaseMeshBuffers frees a mesh's buffers. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the mesh ID
	ReleaseMeshBuffers(id uint32)

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass, clearing color and depth.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Draw encodes one draw into the current render pass.
	//
	// Parameters:
	//   - cmd: the resolved draw
	//
	// Returns:
	//   - error: an error if the command references unknown resources
	Draw(cmd DrawCommand) error

	// WriteUniforms uploads the frame's uniform snapshots to the start of the uniform buffer.
	// It is called once per frame before EndFrame.
	//
	// Parameters:
	//   - data: every snapshot of the frame, at the offsets recorded in the draws
	WriteUniforms(data []byte)

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release frees every GPU object the backend owns.
	Release()
}
