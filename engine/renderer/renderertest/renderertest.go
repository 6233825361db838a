// Package renderertest runs the renderer's state machine over a recording backend, so packages
// that draw can be tested without a GPU.
package renderertest

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// TextureWrite is one recorded texture upload.
type TextureWrite struct {
	ID     uint32
	Layer  uint32
	Level  uint32
	Width  uint32
	Height uint32
}

// Draw is one recorded draw with its uniform snapshot copied out.
type Draw struct {
	Program   string
	Pipeline  string
	DepthFunc wgpu.CompareFunction
	Uniforms  []byte
	Textures  []uint32
	Mesh      uint32
	Count     int
	Indexed   bool
}

// Mesh is one recorded mesh upload.
type Mesh struct {
	Label       string
	VertexBytes int
	VertexCount int
	IndexCount  int
}

// Backend records everything the renderer asks of it.
type Backend struct {
	mu *sync.Mutex

	Programs       []string
	Pipelines      []string
	PipelineStates map[string]pipeline.Pipeline
	Textures       map[uint32]renderer.TextureDescriptor
	TextureWrites  []TextureWrite
	Meshes         map[uint32]Mesh
	Draws          []Draw
	Frames         int
	Presents       int
	Surface        [2]int
	Released       bool

	// FailTextures makes CreateTexture fail, as a lost device would.
	FailTextures bool
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
//
// Returns:
//   - *Backend: the backend
func NewBackend() *Backend {
	return &Backend{
		mu:             &sync.Mutex{},
		PipelineStates: make(map[string]pipeline.Pipeline),
		Textures:       make(map[uint32]renderer.TextureDescriptor),
		Meshes:         make(map[uint32]Mesh),
	}
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Surface = [2]int{width, height}
}

func (b *Backend) SetPresentMode(renderer.PresentMode) {}

func (b *Backend) RegisterProgram(p shader.Program) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Programs = append(b.Programs, p.Key())
	return nil
}

func (b *Backend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Pipelines = append(b.Pipelines, p.PipelineKey())
	b.PipelineStates[p.PipelineKey()] = p
	return nil
}

func (b *Backend) CreateTexture(id uint32, desc renderer.TextureDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailTextures {
		return errors.New("device lost")
	}
	b.Textures[id] = desc
	return nil
}

func (b *Backend) WriteTexture(id, layer, level uint32, data common.TextureStagingData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TextureWrites = append(b.TextureWrites, TextureWrite{
		ID:     id,
		Layer:  layer,
		Level:  level,
		Width:  data.Width,
		Height: data.Height,
	})
}

func (b *Backend) ReleaseTexture(id uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Textures, id)
}

func (b *Backend) CreateMeshBuffers(id uint32, label string, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Meshes[id] = Mesh{
		Label:       label,
		VertexBytes: len(vertexData),
		VertexCount: vertexCount,
		IndexCount:  indexCount,
	}
	return nil
}

func (b *Backend) ReleaseMeshBuffers(id uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Meshes, id)
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Frames++
	return nil
}

func (b *Backend) Draw(cmd renderer.DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Draws = append(b.Draws, Draw{
		Program:   cmd.Pipeline.Program().Key(),
		Pipeline:  cmd.Pipeline.PipelineKey(),
		DepthFunc: cmd.Pipeline.DepthCompare(),
		Uniforms:  append([]byte(nil), cmd.Uniforms...),
		Textures:  append([]uint32(nil), cmd.Textures...),
		Mesh:      cmd.Mesh,
		Count:     cmd.Count,
		Indexed:   cmd.Indexed,
	})
	return nil
}

func (b *Backend) WriteUniforms([]byte) {}

func (b *Backend) EndFrame() {}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Presents++
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released = true
}

// WritesFor returns the recorded uploads into one texture.
//
// Parameters:
//   - id: the texture ID
//
// Returns:
//   - []TextureWrite: the uploads in call order
func (b *Backend) WritesFor(id uint32) []TextureWrite {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []TextureWrite
	for _, w := range b.TextureWrites {
		if w.ID == id {
			out = append(out, w)
		}
	}
	return out
}

// surface is a fixed-size surface with no presentable target.
type surface struct {
	width, height int
}

func (s surface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s surface) Width() int                                 { return s.width }
func (s surface) Height() int                                { return s.height }

// Renderer is a real renderer.Renderer driving a recording Backend.
type Renderer struct {
	renderer.Renderer
	Backend *Backend
}

// New creates a Renderer for an 800x600 surface.
//
// Parameters:
//   - opts: extra renderer options
//
// Returns:
//   - *Renderer: the renderer and its backend
func New(opts ...renderer.RendererBuilderOption) *Renderer {
	b := NewBackend()
	opts = append([]renderer.RendererBuilderOption{renderer.WithBackend(b)}, opts...)
	return &Renderer{
		Renderer: renderer.NewRenderer(surface{800, 600}, opts...),
		Backend:  b,
	}
}
