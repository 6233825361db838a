package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertexSource = `
// transforms shared by every draw
struct Transforms {
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    projection: mat4x4<f32>,
};

struct Light {
    color: vec3<f32>,
    intensity: f32,
    direction: vec3<f32>,
};

struct Lit {
    tint: vec2<f32>,
    light: Light,
};

@group(0) @binding(0) var<uniform> transforms: Transforms;
@group(0) @binding(1) var<uniform> lit: Lit;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

/* the entry point
   @fragment fn not_this_one() {} */
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    return out;
}
`

func TestParseSourceVertexLayout(t *testing.T) {
	ps := parseSource(testVertexSource, ShaderTypeVertex)

	assert.Equal(t, "vs_main", ps.entryPoint)
	require.Len(t, ps.vertexLayouts, 1)

	layout := ps.vertexLayouts[0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)
}

func TestParseSourceFragmentHasNoVertexLayouts(t *testing.T) {
	ps := parseSource(testVertexSource, ShaderTypeFragment)
	assert.Empty(t, ps.vertexLayouts)
	assert.Empty(t, ps.entryPoint)
}

func TestStructLayoutRules(t *testing.T) {
	ps := parseSource(testVertexSource, ShaderTypeVertex)

	assert.Equal(t, wgslTypeLayout{192, 16}, ps.structSizes["Transforms"])
	// vec3 aligns to 16, f32 packs into its tail
	assert.Equal(t, wgslTypeLayout{32, 16}, ps.structSizes["Light"])
	// nested struct starts on its own 16-byte alignment
	assert.Equal(t, wgslTypeLayout{48, 16}, ps.structSizes["Lit"])
}

func TestParseBindings(t *testing.T) {
	ps := parseSource(testVertexSource, ShaderTypeVertex)
	require.Len(t, ps.bindings, 2)

	b := ps.bindings[0]
	assert.Equal(t, "transforms", b.varName)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, b.entry.Buffer.Type)
	assert.Equal(t, uint64(192), b.entry.Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, b.entry.Visibility)
	assert.Equal(t, uint64(48), ps.bindings[1].entry.Buffer.MinBindingSize)
}

func TestClassifyTexturesAndSamplers(t *testing.T) {
	source := `
@group(1) @binding(2) var faces: texture_cube<f32>;
@group(1) @binding(0) var diffuse: texture_2d<f32>;
@group(1) @binding(1) var diffuse_sampler: sampler;
@group(1) @binding(3) var faces_sampler: sampler;
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	ps := parseSource(source, ShaderTypeFragment)
	require.Len(t, ps.bindings, 4)

	assert.Equal(t, 0, ps.bindings[0].binding)
	assert.Equal(t, wgpu.TextureViewDimension2D, ps.bindings[0].entry.Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, ps.bindings[0].entry.Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, ps.bindings[1].entry.Sampler.Type)
	assert.Equal(t, wgpu.TextureViewDimensionCube, ps.bindings[2].entry.Texture.ViewDimension)
	assert.Equal(t, wgpu.ShaderStageFragment, ps.bindings[3].entry.Visibility)
	assert.Equal(t, "fs_main", ps.entryPoint)
}

func TestResolveArrayLayout(t *testing.T) {
	layout, ok := resolveTypeLayout("array<f32, 4>", nil)
	require.True(t, ok)
	assert.Equal(t, uint64(64), layout.size)

	_, ok = resolveTypeLayout("array<f32>", nil)
	assert.False(t, ok)

	_, ok = resolveTypeLayout("Unknown", nil)
	assert.False(t, ok)
}

func TestStripComments(t *testing.T) {
	src := "a /* b /* nested */ c */ d // e\nf"
	assert.Equal(t, "a  d \nf", stripComments(src))
}

func TestSplitAtTopLevelCommas(t *testing.T) {
	parts := splitAtTopLevelCommas("a: array<f32, 4>, b: f32")
	require.Len(t, parts, 2)
	assert.Equal(t, "a: array<f32, 4>", parts[0])
}
