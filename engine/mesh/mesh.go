package mesh

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/pkg/errors"
)

// Mesh is the GPU side of one imported mesh: an interleaved vertex buffer, a 32-bit index
// buffer and the textures the mesh samples, in slot order. It is immutable once created.
type Mesh interface {
	// Draw binds the mesh's textures to slots 0..n-1, issues one indexed draw over every index
	// with the given program, then unbinds the slots it used and re-activates slot 0.
	//
	// Parameters:
	//   - p: the program to draw with, already holding the frame's matrices
	Draw(p shader.Program)

	// Release frees the buffers and every owned texture. Calling it again does nothing.
	Release()

	// VertexCount returns the number of vertices in the vertex buffer.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices drawn.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Textures returns the owned texture handles in slot order.
	//
	// Returns:
	//   - []texture.Handle: a copy of the handles
	Textures() []texture.Handle
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu     *sync.Mutex
	logger *slog.Logger

	r        renderer.Renderer
	release  func(texture.Handle)
	label    string
	id       uint32
	vertices int
	indices  int
	textures []texture.Handle
	released bool
}

var _ Mesh = &mesh{}

// NewMesh validates the geometry and uploads it once. The vertex and index slices are not retained.
//
// Parameters:
//   - r: the renderer that owns the buffers
//   - vertices: the mesh vertices
//   - indices: triangle list indices, each less than len(vertices)
//   - textures: the textures to bind to slots 0..n-1 when drawing; the mesh takes ownership
//   - options: optional settings such as WithLabel
//
// Returns:
//   - Mesh: the mesh
//   - error: an error if an index is out of range or the upload fails
func NewMesh(r renderer.Renderer, vertices []common.Vertex, indices []uint32, textures []texture.Handle, options ...MeshBuilderOption) (Mesh, error) {
	m := &mesh{
		mu:       &sync.Mutex{},
		logger:   slog.Default().With("component", "mesh"),
		r:        r,
		label:    "mesh",
		vertices: len(vertices),
		indices:  len(indices),
	}
	for _, opt := range options {
		opt(m)
	}

	if len(vertices) == 0 {
		return nil, errors.Errorf("mesh %q: no vertices", m.label)
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, errors.Errorf("mesh %q: index %d at position %d out of range for %d vertices", m.label, idx, i, len(vertices))
		}
	}
	if len(textures) > renderer.MaxTextureSlots {
		return nil, errors.Errorf("mesh %q: %d textures exceed %d slots", m.label, len(textures), renderer.MaxTextureSlots)
	}

	id, err := r.CreateMesh(m.label, common.SliceToBytes(vertices), len(vertices), indices)
	if err != nil {
		return nil, errors.Wrap(err, "upload mesh")
	}
	m.id = id
	for _, t := range textures {
		if t.Valid() {
			m.textures = append(m.textures, t)
		}
	}
	return m, nil
}

func (m *mesh) Draw(p shader.Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}

	p.Use()
	for i, t := range m.textures {
		m.r.ActiveTexture(i)
		m.r.BindTexture(renderer.Texture2D, t.ID)
	}

	if err := m.r.DrawIndexed(m.id, m.indices); err != nil {
		m.logger.Debug("draw skipped", "mesh", m.label, "err", err)
	}

	for i := range m.textures {
		m.r.ActiveTexture(i)
		m.r.BindTexture(renderer.Texture2D, 0)
	}
	m.r.ActiveTexture(0)
}

func (m *mesh) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.released = true

	m.r.DeleteMesh(m.id)
	for _, t := range m.textures {
		if m.release != nil {
			m.release(t)
		} else {
			m.r.DeleteTexture(t.ID)
		}
	}
	m.textures = nil
}

func (m *mesh) VertexCount() int {
	return m.vertices
}

func (m *mesh) IndexCount() int {
	return m.indices
}

func (m *mesh) Textures() []texture.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]texture.Handle(nil), m.textures...)
}
