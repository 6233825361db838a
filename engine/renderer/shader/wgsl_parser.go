package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL vertex input types to wgpu vertex formats.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"i32":       {wgpu.VertexFormatSint32, 4},
}

// wgslTextureDimensionMap maps sampled texture base types to their view dimension.
var wgslTextureDimensionMap = map[string]wgpu.TextureViewDimension{
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_3d":       wgpu.TextureViewDimension3D,
	"texture_cube":     wgpu.TextureViewDimensionCube,
}

var (
	// structBlockRegex captures a struct name and its body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...)
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex captures a member name and type after any attributes
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, address space, name and type of a resource,
	// e.g. @group(0) @binding(0) var<uniform> transforms: Transforms;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parsedSource is everything the shader keeps from a WGSL source.
type parsedSource struct {
	entryPoint    string
	vertexLayouts []wgpu.VertexBufferLayout
	bindings      []parsedBinding
	structs       []parsedStruct
	structSizes   map[string]wgslTypeLayout
}

// parseSource strips comments once and extracts entry point, vertex inputs and resource bindings.
//
// Parameters:
//   - source: raw WGSL source
//   - shaderType: the stage, which selects the entry point attribute and binding visibility
//
// Returns:
//   - parsedSource: the extracted metadata
func parseSource(source string, shaderType ShaderType) parsedSource {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	sizes := computeStructSizes(structs)

	ps := parsedSource{
		entryPoint:  parseEntryPoint(cleaned, shaderType),
		structs:     structs,
		structSizes: sizes,
	}
	if shaderType == ShaderTypeVertex {
		ps.vertexLayouts = parseVertexLayouts(structs)
	}

	visibility := wgpu.ShaderStageVertex
	if shaderType == ShaderTypeFragment {
		visibility = wgpu.ShaderStageFragment
	}
	ps.bindings = parseBindings(cleaned, visibility, sizes)
	return ps
}

// parseVertexLayouts turns every pure vertex input struct (locations only, no builtins) into a
// tightly packed vertex buffer layout, in declaration order.
func parseVertexLayouts(structs []parsedStruct) []wgpu.VertexBufferLayout {
	var layouts []wgpu.VertexBufferLayout
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexBufferLayout(ps); ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

// parseBindings extracts every @group/@binding declaration, sorted by group then binding.
// Uniform buffer entries get MinBindingSize from the bound struct's layout.
//
// Parameters:
//   - source: WGSL source with comments removed
//   - visibility: stage visibility applied to every entry
//   - structSizes: resolved struct layouts
//
// Returns:
//   - []parsedBinding: the declarations
func parseBindings(source string, visibility wgpu.ShaderStage, structSizes map[string]wgslTypeLayout) []parsedBinding {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(source, -1)
	bindings := make([]parsedBinding, 0, len(matches))

	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		typeName := strings.TrimSpace(m[5])

		entry := classifyResource(uint32(binding), visibility, strings.TrimSpace(m[3]), typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
				entry.Buffer.MinBindingSize = layout.size
			}
		}

		bindings = append(bindings, parsedBinding{
			group:    group,
			binding:  binding,
			varName:  strings.TrimSpace(m[4]),
			typeName: typeName,
			entry:    entry,
		})
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].group != bindings[j].group {
			return bindings[i].group < bindings[j].group
		}
		return bindings[i].binding < bindings[j].binding
	})
	return bindings
}

// classifyResource builds the layout entry for one declaration. Only the resource kinds the
// viewer's shaders use are recognised: uniform buffers, filtering samplers and sampled float textures.
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case strings.HasPrefix(typeName, "texture_"):
		base, _, _ := strings.Cut(typeName, "<")
		if dim, ok := wgslTextureDimensionMap[base]; ok {
			entry.Texture.ViewDimension = dim
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		}
	}

	return entry
}

// parseEntryPoint returns the name of the first function carrying the stage attribute,
// or an empty string when there is none.
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := vertexEntryRegex
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRegex
	}
	if m := re.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return ""
}

// parseStructBlocks finds every struct block in source, which must already be comment free.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{
			name:   m[1],
			fields: parseStructFields(m[2]),
		})
	}
	return structs
}

// parseStructFields splits a struct body into members with their @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			if loc, err := strconv.Atoi(lm[1]); err == nil {
				field.location = loc
			}
		}
		fields = append(fields, field)
	}

	return fields
}

// isVertexInputStruct reports whether ps has at least one @location member and no @builtin
// member, which separates vertex inputs from stage outputs carrying @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// buildVertexBufferLayout packs the members of a vertex input struct back to back in
// declaration order. It fails when a member type has no vertex format.
func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
	var offset uint64

	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitAtTopLevelCommas splits s at commas outside angle brackets, so "array<T, 4>" stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes nested block comments and line comments from WGSL source.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}

	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		if before, _, found := strings.Cut(line, "//"); found {
			lines[i] = before
		}
	}
	return strings.Join(lines, "\n")
}
