package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap holds the size and alignment of the scalar, vector and matrix types
// a uniform block may contain.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// roundUpAlign rounds value up to the next multiple of alignment, which must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name against the primitive table, the structs resolved
// so far, and fixed-size arrays of either. Runtime-sized arrays and unknown types do not resolve.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "mat4x4<f32>", "Transforms", "array<vec4<f32>, 4>"
//   - knownTypes: layouts of already-resolved structs
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: true if the type could be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	elemType, countStr, sized := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	if !sized {
		return wgslTypeLayout{}, false
	}
	elem, ok := resolveTypeLayout(strings.TrimSpace(elemType), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	// uniform arrays use a 16-byte element stride
	stride := roundUpAlign(max(elem.align, 16), elem.size)
	return wgslTypeLayout{count * stride, max(elem.align, 16)}, true
}

// computeStructFields lays out every field of ps with WGSL struct rules: each member starts at
// the next offset aligned to its own alignment, and the struct size is rounded up to the largest
// member alignment. Builtin members are skipped.
//
// Parameters:
//   - ps: the struct to lay out
//   - knownTypes: layouts of already-resolved structs
//
// Returns:
//   - []UniformField: per-member offsets in declaration order
//   - wgslTypeLayout: the struct's own size and alignment
//   - bool: false if any member type could not be resolved
func computeStructFields(ps parsedStruct, knownTypes map[string]wgslTypeLayout) ([]UniformField, wgslTypeLayout, bool) {
	fields := make([]UniformField, 0, len(ps.fields))
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		layout, ok := resolveTypeLayout(f.typeName, knownTypes)
		if !ok {
			return nil, wgslTypeLayout{}, false
		}
		offset = roundUpAlign(layout.align, offset)
		fields = append(fields, UniformField{
			Name:     f.name,
			TypeName: f.typeName,
			Offset:   offset,
			Size:     layout.size,
		})
		offset += layout.size
		maxAlign = max(maxAlign, layout.align)
	}

	return fields, wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves the layout of every struct, repeating passes until structs that
// embed other structs have all been resolved or no further progress is possible.
//
// Parameters:
//   - structs: every struct parsed from the source
//
// Returns:
//   - map[string]wgslTypeLayout: struct name to layout
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			if _, layout, ok := computeStructFields(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}

	return resolved
}
