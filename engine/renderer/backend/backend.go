package backend

import (
	"errors"
)

var (
	// ErrUniformNotFound is returned when a named uniform does not exist in a program.
	ErrUniformNotFound = errors.New("uniform not found")

	// ErrUniformBlockNotFound is returned when a named storage block does not exist in a program.
	ErrUniformBlockNotFound = errors.New("uniform block not found")

	// ErrBufferAllocation is returned when the device cannot allocate a buffer.
	ErrBufferAllocation = errors.New("buffer allocation failed")

	// ErrUnknownBuffer is returned when a buffer handle was never created or was already released.
	ErrUnknownBuffer = errors.New("unknown buffer handle")

	// ErrUnknownProgram is returned when a program handle does not name a loaded program.
	ErrUnknownProgram = errors.New("unknown program handle")
)

// BufferHandle identifies a GPU-resident buffer created through a Backend.
// The zero value never names a live buffer.
type BufferHandle uint32

// ProgramHandle identifies a linked shading program.
type ProgramHandle uint32

// BufferUsage hints how often a buffer's contents are replaced.
type BufferUsage int

const (
	// BufferUsageStatic is for buffers written once.
	BufferUsageStatic BufferUsage = iota

	// BufferUsageDynamic is for buffers replaced as the scene grows.
	BufferUsageDynamic
)

// String returns a readable name for the usage.
func (u BufferUsage) String() string {
	switch u {
	case BufferUsageDynamic:
		return "dynamic"
	default:
		return "static"
	}
}

// Backend is the narrow graphics surface the raymarch core talks to.
// Every call happens on the thread that owns the graphics context.
type Backend interface {
	// CreateBuffer allocates a storage buffer initialized with data.
	//
	// Parameters:
	//   - data: the initial buffer contents (may be empty)
	//   - usage: how often the buffer is expected to change
	//
	// Returns:
	//   - BufferHandle: the new buffer
	//   - error: an error wrapping ErrBufferAllocation if the device refused the allocation
	CreateBuffer(data []byte, usage BufferUsage) (BufferHandle, error)

	// ReleaseBuffer frees a buffer. Releasing an unknown or zero handle is a no-op.
	//
	// Parameters:
	//   - h: the buffer to release
	ReleaseBuffer(h BufferHandle)

	// BindBufferToSlot attaches a buffer to an indexed storage binding slot.
	//
	// Parameters:
	//   - h: the buffer to bind
	//   - slot: the binding slot
	//
	// Returns:
	//   - error: ErrUnknownBuffer if h is not live
	BindBufferToSlot(h BufferHandle, slot uint32) error

	// ResolveUniformBlock looks up a storage block by name.
	//
	// Parameters:
	//   - p: the program to search
	//   - name: the block name as declared in the shader
	//
	// Returns:
	//   - uint32: the block index
	//   - error: ErrUniformBlockNotFound if the program declares no such block
	ResolveUniformBlock(p ProgramHandle, name string) (uint32, error)

	// BindBlock associates a program's storage block with a binding slot.
	//
	// Parameters:
	//   - p: the program owning the block
	//   - blockIndex: the index returned by ResolveUniformBlock
	//   - slot: the binding slot
	//
	// Returns:
	//   - error: error if the program or block index is unknown
	BindBlock(p ProgramHandle, blockIndex, slot uint32) error

	// SetUniform1f writes a scalar uniform.
	//
	// Returns:
	//   - error: ErrUniformNotFound if the program has no such uniform
	SetUniform1f(p ProgramHandle, name string, x float32) error

	// SetUniform2f writes a vec2 uniform.
	//
	// Returns:
	//   - error: ErrUniformNotFound if the program has no such uniform
	SetUniform2f(p ProgramHandle, name string, x, y float32) error

	// SetUniform3f writes a vec3 uniform.
	//
	// Returns:
	//   - error: ErrUniformNotFound if the program has no such uniform
	SetUniform3f(p ProgramHandle, name string, x, y, z float32) error
}
