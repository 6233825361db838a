package renderer

// uniformAlignment is the WebGPU default minUniformBufferOffsetAlignment.
const uniformAlignment = 256

// defaultUniformArenaSize holds 4096 snapshots of up to 256 bytes per frame.
const defaultUniformArenaSize = 1 << 20

// uniformArena collects the uniform snapshots of one frame. Each draw gets its own aligned
// region, which the backend binds with a dynamic offset.
type uniformArena struct {
	data  []byte
	used  uint64
	align uint64
}

func newUniformArena(capacity, align uint64) *uniformArena {
	return &uniformArena{
		data:  make([]byte, capacity),
		align: align,
	}
}

// push copies block into the next aligned region and returns the region's offset and bytes.
// It fails when the frame has run out of space.
func (a *uniformArena) push(block []byte) (uint32, []byte, bool) {
	offset := roundUp(a.used, a.align)
	end := offset + uint64(len(block))
	if end > uint64(len(a.data)) {
		return 0, nil, false
	}
	region := a.data[offset:end]
	copy(region, block)
	a.used = end
	return uint32(offset), region, true
}

func (a *uniformArena) reset() {
	a.used = 0
}

func (a *uniformArena) bytes() []byte {
	return a.data[:a.used]
}

func (a *uniformArena) capacity() uint64 {
	return uint64(len(a.data))
}

func roundUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}
