package shader

import "github.com/cogentcore/webgpu/wgpu"

// UniformField locates one member of a uniform-buffer struct.
type UniformField struct {
	// Group is the @group index of the uniform buffer.
	Group int
	// Binding is the @binding index of the uniform buffer.
	Binding int
	// Offset is the byte offset of the member inside the buffer.
	Offset uint64
	// Size is the byte size of the member.
	Size uint64
}

// StorageBlock describes a storage-buffer binding. Name is the bound struct type name,
// or the variable name when the binding is a bare array.
type StorageBlock struct {
	Name     string
	VarName  string
	Group    int
	Binding  int
	ReadOnly bool
	// Stride is the byte size of one runtime-array element, or zero if the block has no runtime array.
	Stride uint64
}

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is a single struct member.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// resourceDecl is one @group/@binding variable declaration.
type resourceDecl struct {
	group        int
	binding      int
	addressSpace string
	varName      string
	typeName     string
}
