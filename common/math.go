package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the byte size of a column-major 4x4 float32 matrix.
const Mat4Size = 64

// clipDepthCorrection remaps OpenGL clip depth [-w, w] to the WebGPU range [0, w].
var clipDepthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input and must not be modified.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// PutMat4 writes m into dst as 16 little-endian float32 values in column-major order.
//
// Parameters:
//   - dst: destination slice, at least Mat4Size bytes long
//   - m: the matrix to encode
func PutMat4(dst []byte, m mgl32.Mat4) {
	_ = dst[Mat4Size-1]
	for i, v := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// Perspective builds a right-handed perspective projection whose clip depth lands in [0, 1],
// the range WebGPU expects, instead of the [-1, 1] range produced by mgl32.Perspective.
//
// Parameters:
//   - fovYDegrees: vertical field of view in degrees
//   - aspect: viewport width divided by height
//   - near: distance to the near clip plane
//   - far: distance to the far clip plane
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovYDegrees, aspect, near, far float32) mgl32.Mat4 {
	return clipDepthCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(fovYDegrees), aspect, near, far))
}

// StripTranslation keeps the rotation part of a view matrix and drops its translation,
// so geometry drawn with it stays centred on the camera.
//
// Parameters:
//   - view: the full view matrix
//
// Returns:
//   - mgl32.Mat4: the upper 3x3 of view with identity in the fourth row and column
func StripTranslation(view mgl32.Mat4) mgl32.Mat4 {
	return view.Mat3().Mat4()
}

// ModelMatrix composes translate(position) * scale(scale) applied to identity.
//
// Parameters:
//   - position: world-space translation
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the model matrix
func ModelMatrix(position, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}
