package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntriesReportsMissingResources(t *testing.T) {
	p := NewBindGroupProvider("diffuse")

	_, err := p.Entries(wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Texture: wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat}},
		},
	}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diffuse")

	_, err = p.Entries(wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		},
	}, 0)
	assert.Error(t, err)

	_, err = p.Entries(wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	}, 0)
	assert.Error(t, err)
}

func TestEntriesEmptyDescriptor(t *testing.T) {
	p := NewBindGroupProvider("empty")
	entries, err := p.Entries(wgpu.BindGroupLayoutDescriptor{}, 256)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMeshCounts(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetVertexBuffer(nil, 24)
	p.SetIndexBuffer(nil, 36)

	assert.Equal(t, 24, p.VertexCount())
	assert.Equal(t, 36, p.IndexCount())

	p.Release()
	assert.Zero(t, p.VertexCount())
	assert.Zero(t, p.IndexCount())
	assert.Equal(t, "mesh", p.Label())
}
