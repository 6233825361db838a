// Package common contains plain data types and helpers shared across the viewer. They are not
// interface-wrapped structs, just the values that move between the importer, the GPU layer and the frame loop.
package common

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex is one mesh vertex in the interleaved layout uploaded to the GPU:
// position at byte 0, normal at byte 12, texture coordinate at byte 24.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// VertexStride is the byte distance between consecutive vertices in a vertex buffer.
const VertexStride = uint64(unsafe.Sizeof(Vertex{}))

// TextureStagingData holds RGBA pixel data pending GPU upload.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA8 data, 4 bytes per pixel with no row padding.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero fields fall back to the renderer defaults (repeat addressing, linear filtering).
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside the [0, 1] range per axis.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode between mip levels.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp bound the sampled level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy is the anisotropic filtering limit.
	MaxAnisotropy uint16
}
