package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL type names to their corresponding wgpu vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct member: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> frame: FrameUniforms;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexLayouts extracts vertex buffer layouts from WGSL source, one per struct that
// carries @location members and no @builtin members. Structs with unmapped types are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []wgpu.VertexBufferLayout: layouts in declaration order
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	var result []wgpu.VertexBufferLayout
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexBufferLayout(ps); ok {
			result = append(result, layout)
		}
	}
	return result
}

// parseResourceDecls returns every @group/@binding declaration in source order.
func parseResourceDecls(cleaned string) []resourceDecl {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	decls := make([]resourceDecl, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		decls = append(decls, resourceDecl{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(m[3]),
			varName:      strings.TrimSpace(m[4]),
			typeName:     strings.TrimSpace(m[5]),
		})
	}
	return decls
}

// parseBindGroupLayouts builds one wgpu.BindGroupLayoutDescriptor per group from the buffer
// declarations in source. Entries are sorted by binding and carry the given visibility.
// MinBindingSize is set from the resolved type layout so buffers can be sized from it.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - visibility: the shader stage visibility flag to set on each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	for _, d := range parseResourceDecls(cleaned) {
		entry, ok := classifyResource(uint32(d.binding), visibility, d.addressSpace)
		if !ok {
			continue
		}
		if layout, ok := resolveTypeLayout(d.typeName, structSizes); ok && layout.size > 0 {
			entry.Buffer.MinBindingSize = layout.size
		}
		groups[d.group] = append(groups[d.group], entry)

		if varNames[d.group] == nil {
			varNames[d.group] = make(map[int]string)
		}
		varNames[d.group][d.binding] = d.varName
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, varNames
}

// parseUniformFields maps every member of every var<uniform> struct to its buffer location.
// When two uniform buffers declare the same member name the first declaration wins.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - map[string]UniformField: member locations keyed by member name
func parseUniformFields(source string) map[string]UniformField {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	fields := make(map[string]UniformField)
	for _, d := range parseResourceDecls(cleaned) {
		if d.addressSpace != "uniform" {
			continue
		}
		ps, ok := byName[d.typeName]
		if !ok {
			continue
		}
		var offset uint64
		for _, f := range ps.fields {
			layout, ok := resolveTypeLayout(f.typeName, structSizes)
			if !ok {
				break
			}
			offset = roundUpAlign(layout.align, offset)
			if _, dup := fields[f.name]; !dup {
				fields[f.name] = UniformField{Group: d.group, Binding: d.binding, Offset: offset, Size: layout.size}
			}
			offset += layout.size
		}
	}
	return fields
}

// parseStorageBlocks lists the var<storage> declarations sorted by group then binding.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []StorageBlock: the storage blocks
func parseStorageBlocks(source string) []StorageBlock {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	var blocks []StorageBlock
	for _, d := range parseResourceDecls(cleaned) {
		if !strings.HasPrefix(d.addressSpace, "storage") {
			continue
		}
		b := StorageBlock{
			Name:     d.varName,
			VarName:  d.varName,
			Group:    d.group,
			Binding:  d.binding,
			ReadOnly: !strings.Contains(d.addressSpace, "read_write"),
		}
		arrayType := d.typeName
		if ps, ok := byName[d.typeName]; ok {
			b.Name = ps.name
			arrayType = ""
			if n := len(ps.fields); n > 0 {
				arrayType = ps.fields[n-1].typeName
			}
		}
		b.Stride = runtimeArrayStride(arrayType, structSizes)
		blocks = append(blocks, b)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Group != blocks[j].Group {
			return blocks[i].Group < blocks[j].Group
		}
		return blocks[i].Binding < blocks[j].Binding
	})
	return blocks
}

// parseEntryPoint extracts the entry point function name for the given shader type.
// Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - shaderType: ShaderTypeVertex or ShaderTypeFragment
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct blocks in comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields splits a struct body into members, recording @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(line),
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}
		fields = append(fields, field)
	}

	return fields
}
