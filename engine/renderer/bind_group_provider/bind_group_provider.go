package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label prefixed onto the GPU objects created for this provider.
	label string

	// layoutDescriptor is the reflected layout the bind group is rebuilt from.
	layoutDescriptor wgpu.BindGroupLayoutDescriptor

	// The following fields are GPU resources owned by the provider and released with it.

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the buffers this provider created, keyed by binding index.
	buffers map[int]*wgpu.Buffer

	// attached holds buffers bound into the group but owned elsewhere, keyed by binding index.
	attached map[int]*wgpu.Buffer

	// vertexBuffer, indexBuffer and indexCount describe the geometry drawn with this provider.
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider holds the GPU resources of one bind group: its layout, the bind group itself,
// and the buffers behind each binding. A binding's buffer is either owned (SetBuffer) and released
// with the provider, or attached (AttachBuffer) and left to its owner. A provider can also carry
// the vertex and index buffers of the geometry drawn with it.
//
// Usage pattern:
//  1. The renderer creates a provider with the layout descriptor reflected from the shader
//  2. The renderer creates or attaches a buffer for every binding and builds the bind group
//  3. Uniform data is written through BufferWrite values targeting the provider
//  4. The draw call sets BindGroup() at the provider's group index
type BindGroupProvider interface {
	// Release releases the bind group, its layout, every owned buffer and the geometry buffers.
	// Attached buffers are forgotten but not released.
	Release()

	// Label returns the debug label for this provider.
	Label() string

	// LayoutDescriptor returns the layout descriptor the bind group is built from.
	LayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// BindGroup returns the bind group, or nil if it has not been built.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the bind group layout, or nil if it has not been created.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at binding, owned or attached.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if nothing is bound there
	Buffer(binding int) *wgpu.Buffer

	// VertexBuffer returns the geometry vertex buffer, or nil.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the geometry index buffer, or nil.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn from IndexBuffer.
	IndexCount() int

	// SetBindGroup replaces the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the new bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout.
	//
	// Parameters:
	//   - bgl: the bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores an owned buffer at binding, releasing any owned buffer it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer the provider takes ownership of
	SetBuffer(binding int, buf *wgpu.Buffer)

	// AttachBuffer binds a buffer owned elsewhere at binding. An owned buffer at the same
	// binding is released.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer, or nil to detach
	AttachBuffer(binding int, buf *wgpu.Buffer)

	// SetVertexBuffer sets the geometry vertex buffer.
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer sets the geometry index buffer.
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount sets the number of indices for draw calls.
	SetIndexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label for the provider's GPU objects
//   - options: options to configure the provider
//
// Returns:
//   - BindGroupProvider: the configured provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:    label,
		buffers:  make(map[int]*wgpu.Buffer),
		attached: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return p.layoutDescriptor
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	if buf, ok := p.buffers[binding]; ok {
		return buf
	}
	return p.attached[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old, ok := p.buffers[binding]; ok && old != nil && old != buf {
		old.Release()
	}
	delete(p.attached, binding)
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) AttachBuffer(binding int, buf *wgpu.Buffer) {
	if old, ok := p.buffers[binding]; ok {
		if old != nil {
			old.Release()
		}
		delete(p.buffers, binding)
	}
	if buf == nil {
		delete(p.attached, binding)
		return
	}
	p.attached[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.attached)

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
