package scene

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSphere is the storage-buffer representation of a Sphere.
// Matches the shader's Sphere struct layout exactly.
// Size: 16 bytes (std430 / WGSL aligned).
type GPUSphere struct {
	Center [3]float32 // offset  0: world-space center
	Radius float32    // offset 12: radius
}

// Size returns the size of the GPUSphere struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUSphere) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSphere into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUSphere) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Center[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Center[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Center[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Radius))
	return buf
}

// GPUCube is the storage-buffer representation of a Cube.
// Matches the shader's Cube struct layout exactly.
// Size: 32 bytes (std430 / WGSL aligned, each vec3 padded to 16).
type GPUCube struct {
	Center      [3]float32 // offset  0: world-space center
	_pad0       float32    // offset 12
	HalfExtents [3]float32 // offset 16: half size along each axis
	_pad1       float32    // offset 28
}

// Size returns the size of the GPUCube struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUCube) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCube into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUCube) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Center[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Center[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Center[2]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.HalfExtents[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.HalfExtents[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.HalfExtents[2]))
	return buf
}
