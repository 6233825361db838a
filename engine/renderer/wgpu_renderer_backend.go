package renderer

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

const (
	depthFormat   = wgpu.TextureFormatDepth24Plus
	textureFormat = wgpu.TextureFormatRGBA8UnormSrgb
)

// programResources are the GPU objects shared by every pipeline of one program.
type programResources struct {
	program        shader.Program
	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
	layouts        []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	// uniforms holds the program's uniform bind group over the shared uniform buffer
	uniforms bind_group_provider.BindGroupProvider
}

// gpuTexture is a texture provider (texture and view at binding 0, sampler at binding 1) and its descriptor.
type gpuTexture struct {
	desc     TextureDescriptor
	provider bind_group_provider.BindGroupProvider
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	uniformBuffer *wgpu.Buffer
	programs      map[string]*programResources
	textures      map[uint32]*gpuTexture
	meshes        map[uint32]bind_group_provider.BindGroupProvider

	// fallbacks stand in for unbound texture slots, keyed by target
	fallbacks map[TextureTarget]*gpuTexture
	// textureGroups caches texture bind groups by program and bound texture IDs
	textureGroups map[string]*wgpu.BindGroup
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, uniformCapacity uint64) RendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		sampleCount:   sampleCount,
		programs:      make(map[string]*programResources),
		textures:      make(map[uint32]*gpuTexture),
		meshes:        make(map[uint32]bind_group_provider.BindGroupProvider),
		fallbacks:     make(map[TextureTarget]*gpuTexture),
		textureGroups: make(map[string]*wgpu.BindGroup),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.uniformBuffer, err = d.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Arena",
		Size:  uniformCapacity,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	if err := w.createFallbacks(); err != nil {
		panic(err)
	}

	return w
}

// createFallbacks creates the 1x1 white 2D texture and 1x1 black cubemap sampled by unbound slots.
func (b *wgpuRendererBackendImpl) createFallbacks() error {
	white := common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	black := common.TextureStagingData{Pixels: []byte{0, 0, 0, 255}, Width: 1, Height: 1}

	labels := map[TextureTarget]string{Texture2D: "Fallback 2D", TextureCube: "Fallback Cube"}
	for _, target := range []TextureTarget{Texture2D, TextureCube} {
		t, err := b.newTexture(TextureDescriptor{
			Label:     labels[target],
			Target:    target,
			Width:     1,
			Height:    1,
			MipLevels: 1,
		})
		if err != nil {
			return err
		}
		pixels := white
		if target == TextureCube {
			pixels = black
		}
		for layer := uint32(0); layer < target.Layers(); layer++ {
			b.writeTexture(t, layer, 0, pixels)
		}
		b.fallbacks[target] = t
	}
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) RegisterProgram(p shader.Program) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexShader.Source()},
	})
	if err != nil {
		return err
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentShader.Source()},
	})
	if err != nil {
		return err
	}

	descriptors := p.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	// groups the shaders skip still need a layout in the pipeline layout
	layouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range layouts {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s group %d", p.Key(), g)
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return errors.Wrapf(layoutErr, "bind group layout for group %d", g)
		}
		layouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}

	uniformDesc := descriptors[p.UniformGroup()]
	if len(uniformDesc.Entries) != 1 {
		return errors.Errorf("uniform group %d must hold only the uniform buffer, found %d entries", p.UniformGroup(), len(uniformDesc.Entries))
	}
	uniforms := bind_group_provider.NewBindGroupProvider(p.Key()+" Uniforms",
		bind_group_provider.WithSharedLayout(layouts[p.UniformGroup()]),
		bind_group_provider.WithBuffer(p.UniformBinding(), b.uniformBuffer),
	)
	entries, err := uniforms.Entries(uniformDesc, p.UniformLayout().Size)
	if err != nil {
		return err
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   uniforms.Label(),
		Layout:  uniforms.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		return err
	}
	uniforms.SetBindGroup(bindGroup)

	b.programs[p.Key()] = &programResources{
		program:        p,
		vertexModule:   vs,
		fragmentModule: fs,
		layouts:        layouts,
		pipelineLayout: pipelineLayout,
		uniforms:       uniforms,
	}
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, ok := b.programs[p.Program().Key()]
	if !ok {
		return errors.Errorf("program %s is not registered", p.Program().Key())
	}

	desc := p.Descriptor(pipeline.Target{
		ColorFormat: *b.surfaceFormat,
		DepthFormat: depthFormat,
		SampleCount: uint32(b.sampleCount),
	}, res.pipelineLayout, res.vertexModule, res.fragmentModule)

	created, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(id uint32, desc TextureDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.newTexture(desc)
	if err != nil {
		return err
	}
	b.textures[id] = t
	return nil
}

func (b *wgpuRendererBackendImpl) newTexture(desc TextureDescriptor) (*gpuTexture, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Target.Layers(),
		},
		Format:        textureFormat,
		MipLevelCount: max(desc.MipLevels, 1),
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          textureFormat,
		Dimension:       desc.Target.ViewDimension(),
		BaseMipLevel:    0,
		MipLevelCount:   max(desc.MipLevels, 1),
		BaseArrayLayer:  0,
		ArrayLayerCount: desc.Target.Layers(),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, err
	}

	s := desc.Sampler
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(s.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}

	provider := bind_group_provider.NewBindGroupProvider(desc.Label)
	provider.SetTexture(0, tex, view)
	provider.SetSampler(1, samp)
	return &gpuTexture{desc: desc, provider: provider}, nil
}

func (b *wgpuRendererBackendImpl) WriteTexture(id, layer, level uint32, data common.TextureStagingData) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.textures[id]; ok {
		b.writeTexture(t, layer, level, data)
	}
}

func (b *wgpuRendererBackendImpl) writeTexture(t *gpuTexture, layer, level uint32, data common.TextureStagingData) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.provider.Texture(0),
			MipLevel: level,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(id uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[id]
	if !ok {
		return
	}
	for key, bg := range b.textureGroups {
		if textureGroupUses(key, id) {
			bg.Release()
			delete(b.textureGroups, key)
		}
	}
	t.provider.Release()
	delete(b.textures, id)
}

func (b *wgpuRendererBackendImpl) CreateMeshBuffers(id uint32, label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider := bind_group_provider.NewBindGroupProvider(label)

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(buf, 0, vertexData)
	provider.SetVertexBuffer(buf, vertexCount)

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			provider.Release()
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf, indexCount)
	}

	b.meshes[id] = provider
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseMeshBuffers(id uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.meshes[id]; ok {
		m.Release()
		delete(b.meshes, id)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A surface texture still held from the previous frame must be presented first.
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) Draw(cmd DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no render pass in progress")
	}
	prog := cmd.Pipeline.Program()
	res, ok := b.programs[prog.Key()]
	if !ok {
		return errors.Errorf("program %s is not registered", prog.Key())
	}
	mesh, ok := b.meshes[cmd.Mesh]
	if !ok {
		return errors.Errorf("unknown mesh %d", cmd.Mesh)
	}

	b.framePass.SetPipeline(cmd.Pipeline.RenderPipeline())
	b.framePass.SetBindGroup(uint32(prog.UniformGroup()), res.uniforms.BindGroup(), []uint32{cmd.UniformOffset})

	if slots := prog.TextureSlots(); len(slots) > 0 {
		bg, err := b.textureBindGroup(res, slots, cmd.Textures)
		if err != nil {
			return err
		}
		b.framePass.SetBindGroup(uint32(prog.TextureGroup()), bg, nil)
	}

	b.framePass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	if cmd.Indexed {
		b.framePass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(cmd.Count), 1, 0, 0, 0)
	} else {
		b.framePass.Draw(uint32(cmd.Count), 1, 0, 0)
	}
	return nil
}

// textureBindGroup returns the cached bind group of a program's texture group for a set of
// bound textures, creating it on first use. Unbound or unknown slots sample the fallback texture.
func (b *wgpuRendererBackendImpl) textureBindGroup(res *programResources, slots []shader.TextureSlot, ids []uint32) (*wgpu.BindGroup, error) {
	key := textureGroupKey(res.program.Key(), ids)
	if bg, ok := b.textureGroups[key]; ok {
		return bg, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(slots)*2)
	for i, slot := range slots {
		target := Texture2D
		if slot.Dimension == wgpu.TextureViewDimensionCube {
			target = TextureCube
		}
		t := b.fallbacks[target]
		if i < len(ids) {
			if bound, ok := b.textures[ids[i]]; ok {
				t = bound
			}
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: slot.TextureBinding, TextureView: t.provider.TextureView(0)},
			wgpu.BindGroupEntry{Binding: slot.SamplerBinding, Sampler: t.provider.Sampler(1)},
		)
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   key,
		Layout:  res.layouts[res.program.TextureGroup()],
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	b.textureGroups[key] = bg
	return bg, nil
}

func (b *wgpuRendererBackendImpl) WriteUniforms(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(b.uniformBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, bg := range b.textureGroups {
		bg.Release()
		delete(b.textureGroups, key)
	}
	for id, t := range b.textures {
		t.provider.Release()
		delete(b.textures, id)
	}
	for _, t := range b.fallbacks {
		t.provider.Release()
	}
	b.fallbacks = make(map[TextureTarget]*gpuTexture)
	for id, m := range b.meshes {
		m.Release()
		delete(b.meshes, id)
	}
	for key, res := range b.programs {
		// the uniform buffer is shared, so only the bind group is released here
		if bg := res.uniforms.BindGroup(); bg != nil {
			bg.Release()
		}
		res.pipelineLayout.Release()
		for _, l := range res.layouts {
			l.Release()
		}
		res.vertexModule.Release()
		res.fragmentModule.Release()
		delete(b.programs, key)
	}
	if b.uniformBuffer != nil {
		b.uniformBuffer.Release()
		b.uniformBuffer = nil
	}
	b.releaseAttachments()
}

func textureGroupKey(programKey string, ids []uint32) string {
	return fmt.Sprintf("%s textures %v", programKey, ids)
}

// textureGroupUses reports whether a texture group key was built with id among its textures.
func textureGroupUses(key string, id uint32) bool {
	_, list, ok := strings.Cut(key, " textures [")
	if !ok {
		return false
	}
	for _, f := range strings.Fields(strings.TrimSuffix(list, "]")) {
		if f == strconv.FormatUint(uint64(id), 10) {
			return true
		}
	}
	return false
}
