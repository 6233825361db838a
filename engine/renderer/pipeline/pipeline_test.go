package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader/builtin"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDistinguishesDepthCompare(t *testing.T) {
	assert.NotEqual(t,
		Key("skybox", wgpu.CompareFunctionLess),
		Key("skybox", wgpu.CompareFunctionLessEqual),
	)
	assert.Equal(t, Key("model", wgpu.CompareFunctionLess), Key("model", wgpu.CompareFunctionLess))
}

func TestNewPipelineDefaults(t *testing.T) {
	prog, err := builtin.ModelProgram()
	require.NoError(t, err)

	p := NewPipeline("model", prog)

	assert.Equal(t, wgpu.CompareFunctionLess, p.DepthCompare())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.False(t, p.BlendEnabled())
	assert.Nil(t, p.RenderPipeline())
	assert.Equal(t, prog, p.Program())
}

func TestDescriptorCarriesState(t *testing.T) {
	prog, err := builtin.SkyboxProgram()
	require.NoError(t, err)

	p := NewPipeline(Key(prog.Key(), wgpu.CompareFunctionLessEqual), prog,
		WithDepthCompare(wgpu.CompareFunctionLessEqual),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeFront),
		WithFrontFace(wgpu.FrontFaceCW),
		WithBlendEnabled(true),
	)
	desc := p.Descriptor(Target{
		ColorFormat: wgpu.TextureFormatBGRA8Unorm,
		DepthFormat: wgpu.TextureFormatDepth24Plus,
		SampleCount: 4,
	}, nil, nil, nil)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.CompareFunctionLessEqual, desc.DepthStencil.DepthCompare)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, desc.DepthStencil.Format)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CullModeFront, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, uint32(4), desc.Multisample.Count)
	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	require.Len(t, desc.Vertex.Buffers, 1)
	assert.Equal(t, uint64(12), desc.Vertex.Buffers[0].ArrayStride)
	require.NotNil(t, desc.Fragment)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.NotNil(t, desc.Fragment.Targets[0].Blend)
}

func TestDescriptorClampsSampleCount(t *testing.T) {
	prog, err := builtin.ModelProgram()
	require.NoError(t, err)

	desc := NewPipeline("model", prog).Descriptor(Target{}, nil, nil, nil)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)
}
