package renderer

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Surface is the window side of the renderer: where to present and at what size.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// FrameStats counts what happened during one frame.
type FrameStats struct {
	// Draws is the number of draws handed to the backend.
	Draws int
	// SkippedDraws is the number of draws dropped because the uniform arena was full.
	SkippedDraws int
	// UniformBytes is the size of the uniform data uploaded for the frame.
	UniformBytes int
}

type meshInfo struct {
	label       string
	vertexCount int
	indexCount  int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	backend RendererBackend

	programs        map[string]shader.Program
	pipelineOptions map[string][]pipeline.PipelineBuilderOption
	pipelineCache   map[string]pipeline.Pipeline
	current         shader.Program
	depthFunc       DepthFunc
	slots           textureSlots

	textures      map[uint32]TextureDescriptor
	meshes        map[uint32]meshInfo
	nextTextureID uint32
	nextMeshID    uint32

	arena     *uniformArena
	inFrame   bool
	frame     FrameStats
	lastFrame FrameStats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	uniformArenaSize     uint64
}

// Renderer is a small GL-style state machine on top of WebGPU. It tracks an active program,
// a depth function and a table of texture units, and turns every draw into a fully resolved
// DrawCommand for its backend: the pipeline for the active program at the current depth
// function, a snapshot of the program's uniform block, and the textures bound to the units
// the program samples.
//
// Textures and meshes are referred to by renderer-assigned IDs; 0 is never a valid ID.
type Renderer interface {
	shader.Binder

	// Resize configures the underlying backend to handle a new surface size.
	// A zero width or height (a minimized window) is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterProgram creates the GPU objects of a program and makes the renderer its Binder,
	// so p.Use() activates it. Programs whose keys are already registered are skipped.
	//
	// Parameters:
	//   - p: the program to register
	//   - opts: pipeline options applied to every pipeline built for the program
	//
	// Returns:
	//   - error: an error if GPU object creation fails or the uniform block exceeds the uniform arena
	RegisterProgram(p shader.Program, opts ...pipeline.PipelineBuilderOption) error

	// CurrentProgram returns the active program, or nil.
	//
	// Returns:
	//   - shader.Program: the active program
	CurrentProgram() shader.Program

	// SetDepthFunc sets the depth comparison used by subsequent draws.
	//
	// Parameters:
	//   - f: the depth function
	SetDepthFunc(f DepthFunc)

	// DepthFunc returns the depth comparison used by subsequent draws.
	//
	// Returns:
	//   - DepthFunc: the current depth function
	DepthFunc() DepthFunc

	// CreateTexture allocates a texture. Pixels are uploaded separately with UploadTexture.
	//
	// Parameters:
	//   - desc: size, mip levels, target and sampler
	//
	// Returns:
	//   - uint32: the new texture ID
	//   - error: an error if the size is zero or allocation fails
	CreateTexture(desc TextureDescriptor) (uint32, error)

	// UploadTexture writes pixels into the texture bound to target on the active texture slot.
	//
	// Parameters:
	//   - target: the binding target of the active slot to upload into
	//   - layer: the array layer, the face index for cubemaps
	//   - level: the mip level
	//   - data: tightly packed RGBA8 pixels with the level's exact dimensions
	//
	// Returns:
	//   - error: an error if nothing is bound or layer, level or size do not match the texture
	UploadTexture(target TextureTarget, layer, level uint32, data common.TextureStagingData) error

	// DeleteTexture releases a texture and clears every slot it is bound to. Unknown IDs and 0 are ignored.
	//
	// Parameters:
	//   - id: the texture ID
	DeleteTexture(id uint32)

	// ActiveTexture selects the texture slot that BindTexture and UploadTexture operate on.
	// Out of range slots are ignored.
	//
	// Parameters:
	//   - slot: the slot index, 0 to MaxTextureSlots-1
	ActiveTexture(slot int)

	// ActiveTextureSlot returns the selected texture slot.
	//
	// Returns:
	//   - int: the slot index
	ActiveTextureSlot() int

	// BindTexture binds a texture to target on the active slot. ID 0 unbinds. Unknown IDs and
	// textures of a different target are ignored.
	//
	// Parameters:
	//   - target: the binding target
	//   - id: the texture ID, or 0
	BindTexture(target TextureTarget, id uint32)

	// BoundTexture returns the texture bound to target on a slot.
	//
	// Parameters:
	//   - slot: the slot index
	//   - target: the binding target
	//
	// Returns:
	//   - uint32: the texture ID, or 0
	BoundTexture(slot int, target TextureTarget) uint32

	// CreateMesh uploads vertex data and optional 32-bit indices once.
	//
	// Parameters:
	//   - label: a debug label
	//   - vertexData: the interleaved vertex bytes the program's vertex layout expects
	//   - vertexCount: the number of vertices in vertexData
	//   - indices: the indices, nil for non-indexed meshes
	//
	// Returns:
	//   - uint32: the new mesh ID
	//   - error: an error if there are no vertices, an index is out of range, or upload fails
	CreateMesh(label string, vertexData []byte, vertexCount int, indices []uint32) (uint32, error)

	// DeleteMesh releases a mesh's buffers. Unknown IDs and 0 are ignored.
	//
	// Parameters:
	//   - id: the mesh ID
	DeleteMesh(id uint32)

	// BeginFrame acquires the next surface texture and starts a render pass that clears
	// color and depth. It also resets the frame's uniform snapshots.
	//
	// Returns:
	//   - error: an error if a frame is already open or the surface texture could not be acquired
	BeginFrame() error

	// DrawIndexed draws the first count indices of a mesh as triangles with the current state.
	//
	// Parameters:
	//   - mesh: the mesh ID
	//   - count: the number of indices to draw
	//
	// Returns:
	//   - error: an error if no frame is open, no program is active, or the mesh or count is invalid
	DrawIndexed(mesh uint32, count int) error

	// DrawArrays draws the first count vertices of a mesh as triangles with the current state.
	//
	// Parameters:
	//   - mesh: the mesh ID
	//   - count: the number of vertices to draw
	//
	// Returns:
	//   - error: an error if no frame is open, no program is active, or the mesh or count is invalid
	DrawArrays(mesh uint32, count int) error

	// EndFrame uploads the frame's uniform snapshots, ends the render pass and submits it.
	EndFrame()

	// Present presents the finished frame.
	Present()

	// FrameStats returns the statistics of the last completed frame.
	//
	// Returns:
	//   - FrameStats: draw and upload counts
	FrameStats() FrameStats

	// Release frees every GPU object the renderer owns.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to the given surface. Unless WithBackend supplies a
// backend, a WebGPU backend is created for the surface; GPU initialization failures panic.
//
// Parameters:
//   - surface: the surface to present to, usually the window
//   - options: a variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(surface Surface, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:               &sync.Mutex{},
		logger:           slog.Default().With("component", "renderer"),
		programs:         make(map[string]shader.Program),
		pipelineOptions:  make(map[string][]pipeline.PipelineBuilderOption),
		pipelineCache:    make(map[string]pipeline.Pipeline),
		textures:         make(map[uint32]TextureDescriptor),
		meshes:           make(map[uint32]meshInfo),
		nextTextureID:    1,
		nextMeshID:       1,
		depthFunc:        DepthLess,
		uniformArenaSize: defaultUniformArenaSize,
	}

	for _, opt := range options {
		opt(r)
	}

	r.arena = newUniformArena(r.uniformArenaSize, uniformAlignment)

	if r.backend == nil {
		msaa := MSAA4x
		if r.pendingMSAA != nil {
			msaa = *r.pendingMSAA
		}
		r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.arena.capacity())
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(surface.Width(), surface.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) RegisterProgram(p shader.Program, opts ...pipeline.PipelineBuilderOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.programs[p.Key()]; exists {
		return nil
	}
	if size := p.UniformLayout().Size; size > r.arena.capacity() {
		return errors.Errorf("program %s: uniform block of %d bytes exceeds the %d byte uniform arena", p.Key(), size, r.arena.capacity())
	}
	if err := r.backend.RegisterProgram(p); err != nil {
		return errors.Wrapf(err, "register program %s", p.Key())
	}

	p.SetBinder(r)
	r.programs[p.Key()] = p
	r.pipelineOptions[p.Key()] = opts
	return nil
}

func (r *renderer) UseProgram(p shader.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p == nil {
		r.current = nil
		return
	}
	if _, ok := r.programs[p.Key()]; !ok {
		r.logger.Warn("use of unregistered program ignored", "program", p.Key())
		return
	}
	r.current = p
}

func (r *renderer) CurrentProgram() shader.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *renderer) SetDepthFunc(f DepthFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depthFunc = f
}

func (r *renderer) DepthFunc() DepthFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depthFunc
}

func (r *renderer) CreateTexture(desc TextureDescriptor) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.Width == 0 || desc.Height == 0 {
		return 0, errors.Errorf("texture %q: zero size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	desc.MipLevels = max(desc.MipLevels, 1)

	id := r.nextTextureID
	if err := r.backend.CreateTexture(id, desc); err != nil {
		return 0, errors.Wrapf(err, "texture %q", desc.Label)
	}
	r.nextTextureID++
	r.textures[id] = desc
	return id, nil
}

func (r *renderer) UploadTexture(target TextureTarget, layer, level uint32, data common.TextureStagingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.slots.bound(r.slots.active, target)
	if id == 0 {
		return errors.Errorf("no texture bound to slot %d", r.slots.active)
	}
	desc := r.textures[id]
	if layer >= target.Layers() {
		return errors.Errorf("texture %q: layer %d out of range", desc.Label, layer)
	}
	if level >= desc.MipLevels {
		return errors.Errorf("texture %q: mip level %d out of range", desc.Label, level)
	}
	w, h := max(desc.Width>>level, 1), max(desc.Height>>level, 1)
	if data.Width != w || data.Height != h {
		return errors.Errorf("texture %q: level %d is %dx%d, got %dx%d", desc.Label, level, w, h, data.Width, data.Height)
	}
	if len(data.Pixels) != int(w*h*4) {
		return errors.Errorf("texture %q: expected %d bytes of RGBA8, got %d", desc.Label, w*h*4, len(data.Pixels))
	}

	r.backend.WriteTexture(id, layer, level, data)
	return nil
}

func (r *renderer) DeleteTexture(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.textures[id]; !ok {
		return
	}
	r.slots.forget(id)
	r.backend.ReleaseTexture(id)
	delete(r.textures, id)
}

func (r *renderer) ActiveTexture(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.slots.activate(slot) {
		r.logger.Warn("texture slot out of range", "slot", slot)
	}
}

func (r *renderer) ActiveTextureSlot() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots.active
}

func (r *renderer) BindTexture(target TextureTarget, id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != 0 {
		desc, ok := r.textures[id]
		if !ok {
			r.logger.Warn("bind of unknown texture ignored", "texture", id)
			return
		}
		if desc.Target != target {
			r.logger.Warn("bind to mismatched target ignored", "texture", id, "label", desc.Label)
			return
		}
	}
	r.slots.bind(target, id)
}

func (r *renderer) BoundTexture(slot int, target TextureTarget) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots.bound(slot, target)
}

func (r *renderer) CreateMesh(label string, vertexData []byte, vertexCount int, indices []uint32) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vertexCount <= 0 || len(vertexData) == 0 {
		return 0, errors.Errorf("mesh %q: no vertices", label)
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return 0, errors.Errorf("mesh %q: index %d at position %d out of range for %d vertices", label, idx, i, vertexCount)
		}
	}

	var indexData []byte
	if len(indices) > 0 {
		indexData = common.SliceToBytes(indices)
	}

	id := r.nextMeshID
	if err := r.backend.CreateMeshBuffers(id, label, vertexData, vertexCount, indexData, len(indices)); err != nil {
		return 0, errors.Wrapf(err, "mesh %q", label)
	}
	r.nextMeshID++
	r.meshes[id] = meshInfo{label: label, vertexCount: vertexCount, indexCount: len(indices)}
	return id, nil
}

func (r *renderer) DeleteMesh(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meshes[id]; !ok {
		return
	}
	r.backend.ReleaseMeshBuffers(id)
	delete(r.meshes, id)
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inFrame {
		return errors.New("frame already in progress")
	}
	r.arena.reset()
	r.frame = FrameStats{}
	if err := r.backend.BeginFrame(); err != nil {
		return errors.Wrap(err, "begin frame")
	}
	r.inFrame = true
	return nil
}

func (r *renderer) DrawIndexed(mesh uint32, count int) error {
	return r.draw(mesh, count, true)
}

func (r *renderer) DrawArrays(mesh uint32, count int) error {
	return r.draw(mesh, count, false)
}

func (r *renderer) draw(meshID uint32, count int, indexed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return errors.New("draw outside of a frame")
	}
	if r.current == nil {
		return errors.New("draw without an active program")
	}
	m, ok := r.meshes[meshID]
	if !ok {
		return errors.Errorf("draw of unknown mesh %d", meshID)
	}
	limit := m.vertexCount
	if indexed {
		limit = m.indexCount
	}
	if count < 0 || count > limit {
		return errors.Errorf("mesh %q: draw count %d out of range 0..%d", m.label, count, limit)
	}
	if count == 0 {
		return nil
	}

	p, err := r.pipelineFor(r.current, r.depthFunc)
	if err != nil {
		return err
	}

	offset, snapshot, ok := r.arena.push(r.current.UniformData())
	if !ok {
		r.frame.SkippedDraws++
		return errors.Errorf("uniform arena of %d bytes is full", r.arena.capacity())
	}

	slots := r.current.TextureSlots()
	textures := make([]uint32, len(slots))
	for i, s := range slots {
		target := Texture2D
		if s.Dimension == wgpu.TextureViewDimensionCube {
			target = TextureCube
		}
		textures[i] = r.slots.bound(s.Slot, target)
	}

	cmd := DrawCommand{
		Pipeline:      p,
		UniformOffset: offset,
		Uniforms:      snapshot,
		Textures:      textures,
		Mesh:          meshID,
		Count:         count,
		Indexed:       indexed,
	}
	if err := r.backend.Draw(cmd); err != nil {
		return errors.Wrapf(err, "draw mesh %q", m.label)
	}
	r.frame.Draws++
	return nil
}

// pipelineFor returns the cached pipeline of a program at a depth function, creating it on first use.
func (r *renderer) pipelineFor(p shader.Program, f DepthFunc) (pipeline.Pipeline, error) {
	compare := f.CompareFunction()
	key := pipeline.Key(p.Key(), compare)
	if cached, ok := r.pipelineCache[key]; ok {
		return cached, nil
	}

	opts := append([]pipeline.PipelineBuilderOption{}, r.pipelineOptions[p.Key()]...)
	opts = append(opts, pipeline.WithDepthCompare(compare))
	created := pipeline.NewPipeline(key, p, opts...)
	if err := r.backend.RegisterPipeline(created); err != nil {
		return nil, errors.Wrapf(err, "pipeline %s", key)
	}
	r.logger.Debug("pipeline created", "pipeline", key, "depth", f.String())
	r.pipelineCache[key] = created
	return created, nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return
	}
	if data := r.arena.bytes(); len(data) > 0 {
		r.backend.WriteUniforms(data)
	}
	r.backend.EndFrame()

	r.frame.UniformBytes = len(r.arena.bytes())
	if r.frame.SkippedDraws > 0 {
		r.logger.Warn("draws skipped, uniform arena full", "skipped", r.frame.SkippedDraws)
	}
	r.lastFrame = r.frame
	r.inFrame = false
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Present()
}

func (r *renderer) FrameStats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFrame
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.Release()
	r.textures = make(map[uint32]TextureDescriptor)
	r.meshes = make(map[uint32]meshInfo)
	r.slots = textureSlots{}
	r.current = nil
}
