package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFragmentSource = `
@group(1) @binding(0) var diffuse: texture_2d<f32>;
@group(1) @binding(1) var diffuse_sampler: sampler;
@group(0) @binding(0) var<uniform> transforms: Transforms;

struct Transforms {
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    projection: mat4x4<f32>,
};

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(diffuse, diffuse_sampler, uv);
}
`

type recordingBinder struct {
	used []Program
}

func (b *recordingBinder) UseProgram(p Program) {
	b.used = append(b.used, p)
}

func newTestProgram(t *testing.T, opts ...ProgramBuilderOption) Program {
	t.Helper()
	p, err := NewProgram("test",
		NewShader("test.vert", ShaderTypeVertex, testVertexSource),
		NewShader("test.frag", ShaderTypeFragment, testFragmentSource),
		opts...,
	)
	require.NoError(t, err)
	return p
}

func TestProgramUniformBlockStartsAsIdentity(t *testing.T) {
	p := newTestProgram(t)

	assert.Len(t, p.UniformData(), 192)
	for _, name := range []string{"model", "view", "projection"} {
		m, ok := p.Matrix(name)
		require.True(t, ok, name)
		assert.Equal(t, mgl32.Ident4(), m, name)
	}
}

func TestProgramSetMatrix(t *testing.T) {
	p := newTestProgram(t)
	view := mgl32.Translate3D(1, 2, 3)

	p.SetMatrix("view", view)

	got, ok := p.Matrix("view")
	require.True(t, ok)
	assert.Equal(t, view, got)

	model, _ := p.Matrix("model")
	assert.Equal(t, mgl32.Ident4(), model)
}

func TestProgramSetMatrixIgnoresUnknownName(t *testing.T) {
	p := newTestProgram(t)
	before := append([]byte(nil), p.UniformData()...)

	p.SetMatrix("nope", mgl32.Scale3D(2, 2, 2))

	assert.Equal(t, before, p.UniformData())
	_, ok := p.Matrix("nope")
	assert.False(t, ok)
}

func TestProgramUseCallsBinder(t *testing.T) {
	binder := &recordingBinder{}
	p := newTestProgram(t, WithBinder(binder))

	p.Use()
	p.Use()

	require.Len(t, binder.used, 2)
	assert.Equal(t, "test", binder.used[0].Key())
}

func TestProgramUseWithoutBinderIsNoop(t *testing.T) {
	p := newTestProgram(t)
	assert.NotPanics(t, p.Use)
}

func TestProgramMergedLayouts(t *testing.T) {
	p := newTestProgram(t)
	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 2)

	g0 := layouts[0]
	require.Len(t, g0.Entries, 2)
	assert.True(t, g0.Entries[0].Buffer.HasDynamicOffset)
	assert.False(t, g0.Entries[1].Buffer.HasDynamicOffset)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, g0.Entries[0].Visibility)

	slots := p.TextureSlots()
	require.Len(t, slots, 1)
	assert.Equal(t, TextureSlot{Slot: 0, TextureBinding: 0, SamplerBinding: 1, Dimension: wgpu.TextureViewDimension2D}, slots[0])
}

func TestProgramUniformBindingOption(t *testing.T) {
	p := newTestProgram(t, WithUniformBinding(0, 1))
	assert.Len(t, p.UniformData(), 48)
	assert.Equal(t, 1, p.UniformBinding())
}

func TestNewProgramErrors(t *testing.T) {
	vert := NewShader("v", ShaderTypeVertex, testVertexSource)
	frag := NewShader("f", ShaderTypeFragment, testFragmentSource)

	_, err := NewProgram("swapped", frag, vert)
	assert.Error(t, err)

	_, err = NewProgram("nil", vert, nil)
	assert.Error(t, err)

	_, err = NewProgram("no-uniform", vert, frag, WithUniformBinding(3, 0))
	assert.Error(t, err)

	unpaired := NewShader("f", ShaderTypeFragment, `
@group(1) @binding(0) var diffuse: texture_2d<f32>;
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`)
	_, err = NewProgram("unpaired", vert, unpaired)
	assert.Error(t, err)
}

func TestNewShaderFromFileMissing(t *testing.T) {
	_, err := NewShaderFromFile("missing", ShaderTypeVertex, "does/not/exist.wgsl")
	assert.Error(t, err)
}
