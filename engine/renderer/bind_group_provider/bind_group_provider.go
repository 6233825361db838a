package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources owned by the provider and released by Release.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the backend.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the layout the bind group was created against.
	bindGroupLayout *wgpu.BindGroupLayout
	// sharedLayout marks bindGroupLayout as borrowed from a program, so Release leaves it alone.
	sharedLayout bool
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textures holds the GPU textures backing textureViews, keyed by binding index.
	textures map[int]*wgpu.Texture
	// textureViews holds the GPU texture views created for this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers created for this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler

	// The following fields are only set on mesh providers.

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	vertexCount  int
	indexCount   int
}

// BindGroupProvider holds the GPU objects behind one renderer resource: a mesh's vertex and index
// buffers, a texture with its view and sampler, or a program's uniform buffer and bind group.
// The backend creates the objects and stores them here; Release frees everything the provider owns.
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil if none has been created.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group is created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer stored at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Texture returns the texture stored at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Texture: the texture or nil
	Texture(binding int) *wgpu.Texture

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil for non-indexed meshes.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer or nil
	IndexBuffer() *wgpu.Buffer

	// VertexCount returns the number of vertices in the vertex buffer.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices in the index buffer.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Entries resolves every entry of a layout descriptor against the resources stored on the
	// provider, producing the entries of a bind group. Buffer entries bind size bytes from offset 0,
	// or the whole buffer when size is zero.
	//
	// Parameters:
	//   - descriptor: the layout to satisfy
	//   - size: the bound range of buffer entries
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: one entry per layout entry
	//   - error: error if a binding has no matching resource
	Entries(descriptor wgpu.BindGroupLayoutDescriptor, size uint64) ([]wgpu.BindGroupEntry, error)

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView)
	SetSampler(binding int, s *wgpu.Sampler)
	SetVertexBuffer(buf *wgpu.Buffer, count int)
	SetIndexBuffer(buf *wgpu.Buffer, count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label used for every GPU object created for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) Entries(descriptor wgpu.BindGroupLayoutDescriptor, size uint64) ([]wgpu.BindGroupEntry, error) {
	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := p.textureViews[binding]
			if tv == nil {
				return nil, errors.Errorf("%s: texture binding %d has no texture view", p.label, binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s := p.samplers[binding]
			if s == nil {
				return nil, errors.Errorf("%s: sampler binding %d has no sampler", p.label, binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: s}
		default:
			buf := p.buffers[binding]
			if buf == nil {
				return nil, errors.Errorf("%s: buffer binding %d has no buffer", p.label, binding)
			}
			bound := size
			if bound == 0 {
				bound = wgpu.WholeSize
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Buffer: buf, Offset: 0, Size: bound}
		}
	}
	return entries, nil
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
	p.sharedLayout = false
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView) {
	p.textures[binding] = tex
	p.textureViews[binding] = view
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer, count int) {
	p.vertexBuffer = buf
	p.vertexCount = count
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer, count int) {
	p.indexBuffer = buf
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil && !p.sharedLayout {
		p.bindGroupLayout.Release()
	}
	p.bindGroupLayout = nil

	for i, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for i, tex := range p.textures {
		if tex != nil {
			tex.Release()
		}
		delete(p.textures, i)
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}

	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.vertexCount, p.indexCount = 0, 0
}
