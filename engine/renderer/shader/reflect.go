package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// layout is the byte size and alignment of a host-shareable WGSL type.
type layout struct {
	size  uint64
	align uint64
}

// field is one member of a WGSL struct as seen by the reflector.
type field struct {
	name     string
	typeName string
	location int
	builtin  bool
}

// structDecl is a WGSL struct declaration.
type structDecl struct {
	name   string
	fields []field
}

// vertexFormats maps WGSL vertex attribute types to their wgpu format and byte size.
var vertexFormats = map[string]struct {
	format wgpu.VertexFormat
	size   uint64
}{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"i32":       {wgpu.VertexFormatSint32, 4},
}

// scalarLayouts holds the size and alignment of the scalar, vector and matrix types the engine's
// shaders use.
var scalarLayouts = map[string]layout{
	"f32":         {4, 4},
	"u32":         {4, 4},
	"i32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec2f":       {8, 8},
	"vec3<f32>":   {12, 16},
	"vec3f":       {12, 16},
	"vec4<f32>":   {16, 16},
	"vec4f":       {16, 16},
	"vec4<u32>":   {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
}

var (
	structRegex      = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex    = regexp.MustCompile(`@location\((\d+)\)`)
	fieldRegex       = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)
	bindingRegex     = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
	vertexEntryRe    = regexp.MustCompile(`(?s)@vertex\s+fn\s+(\w+)`)
	fragmentEntryRe  = regexp.MustCompile(`(?s)@fragment\s+fn\s+(\w+)`)
	lineCommentRegex = regexp.MustCompile(`//[^\n]*`)
)

// stripComments removes line comments. The engine's shaders do not use block comments.
func stripComments(source string) string {
	return lineCommentRegex.ReplaceAllString(source, "")
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// splitTopLevel splits s on commas that are not inside angle brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func parseStructs(source string) []structDecl {
	var out []structDecl
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		sd := structDecl{name: m[1]}
		for _, part := range splitTopLevel(m[2]) {
			part = strings.TrimSpace(part)
			fm := fieldRegex.FindStringSubmatch(part)
			if fm == nil {
				continue
			}
			f := field{
				name:     fm[1],
				typeName: strings.TrimSpace(fm[2]),
				location: -1,
				builtin:  strings.Contains(part, "@builtin("),
			}
			if lm := locationRegex.FindStringSubmatch(part); lm != nil {
				f.location, _ = strconv.Atoi(lm[1])
			}
			sd.fields = append(sd.fields, f)
		}
		out = append(out, sd)
	}
	return out
}

// typeLayout resolves the layout of typeName. A runtime-sized array resolves to one element.
func typeLayout(typeName string, known map[string]layout) (layout, bool) {
	if l, ok := scalarLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok {
		return layout{}, false
	}
	inner = strings.TrimSuffix(inner, ">")
	parts := strings.SplitN(inner, ",", 2)
	elem, ok := typeLayout(strings.TrimSpace(parts[0]), known)
	if !ok {
		return layout{}, false
	}
	stride := alignUp(elem.align, elem.size)
	if len(parts) == 1 {
		return layout{stride, elem.align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return layout{}, false
	}
	return layout{n * stride, elem.align}, true
}

// structLayouts resolves struct layouts, repeating until nested struct references settle.
func structLayouts(structs []structDecl) map[string]layout {
	known := make(map[string]layout, len(structs))
	for progress := true; progress; {
		progress = false
		for _, sd := range structs {
			if _, done := known[sd.name]; done {
				continue
			}
			var offset uint64
			maxAlign := uint64(1)
			ok := true
			for _, f := range sd.fields {
				if f.builtin {
					continue
				}
				fl, found := typeLayout(f.typeName, known)
				if !found {
					ok = false
					break
				}
				offset = alignUp(fl.align, offset) + fl.size
				maxAlign = max(maxAlign, fl.align)
			}
			if ok {
				known[sd.name] = layout{alignUp(maxAlign, offset), maxAlign}
				progress = true
			}
		}
	}
	return known
}

// reflectBindGroups derives bind group layout descriptors from the buffer bindings declared in
// source. Only uniform and storage buffers are recognised.
func reflectBindGroups(source string, visibility wgpu.ShaderStage) map[int]wgpu.BindGroupLayoutDescriptor {
	cleaned := stripComments(source)
	known := structLayouts(parseStructs(cleaned))
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)

	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		space := strings.TrimSpace(m[3])

		entry := wgpu.BindGroupLayoutEntry{Binding: uint32(binding), Visibility: visibility}
		switch {
		case space == "uniform":
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		case strings.HasPrefix(space, "storage") && strings.Contains(space, "read_write"):
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		case strings.HasPrefix(space, "storage"):
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		default:
			continue
		}
		if l, ok := typeLayout(strings.TrimSpace(m[5]), known); ok {
			entry.Buffer.MinBindingSize = l.size
		}
		groups[group] = append(groups[group], entry)
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return out
}

// reflectVertexLayout builds a vertex buffer layout from the first struct in source that carries
// @location fields and no builtins.
func reflectVertexLayout(source string) (wgpu.VertexBufferLayout, bool) {
	for _, sd := range parseStructs(stripComments(source)) {
		hasLocation, hasBuiltin := false, false
		for _, f := range sd.fields {
			hasLocation = hasLocation || f.location >= 0
			hasBuiltin = hasBuiltin || f.builtin
		}
		if !hasLocation || hasBuiltin {
			continue
		}

		attrs := make([]wgpu.VertexAttribute, 0, len(sd.fields))
		var offset uint64
		ok := true
		for _, f := range sd.fields {
			vf, found := vertexFormats[f.typeName]
			if !found {
				ok = false
				break
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vf.format,
				Offset:         offset,
				ShaderLocation: uint32(f.location),
			})
			offset += vf.size
		}
		if ok {
			return wgpu.VertexBufferLayout{
				ArrayStride: offset,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attrs,
			}, true
		}
	}
	return wgpu.VertexBufferLayout{}, false
}

func reflectEntryPoint(source string, shaderType ShaderType) string {
	re := vertexEntryRe
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRe
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}
