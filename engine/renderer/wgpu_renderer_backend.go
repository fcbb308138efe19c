package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
	bgp "github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuProgram is the only program a WebGPU backend serves.
const wgpuProgram backend.ProgramHandle = 1

// wgpuRendererBackend drives the raymarch pipeline through WebGPU. Storage blocks are
// addressed the way GL addresses them: buffers bind to numbered slots, blocks bind to
// slots, and the bind group holding a block is rebuilt whenever either side changes.
type wgpuRendererBackend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue
	limits   wgpu.Limits

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	configured    bool

	pipeline pipeline.Pipeline
	// groups holds one provider per bind group index declared by the program.
	groups []bgp.BindGroupProvider
	quad   bgp.BindGroupProvider
	// placeholder stands in for blocks with no buffer bound yet.
	placeholder *wgpu.Buffer

	buffers    map[backend.BufferHandle]*wgpu.Buffer
	nextHandle backend.BufferHandle
	slots      map[uint32]backend.BufferHandle
	blocks     []shader.StorageBlock
	blockSlots map[uint32]uint32

	// pendingWrites are uniform writes flushed to the queue before the next draw, at most
	// one per uniform so skipped frames do not grow it.
	pendingWrites []bgp.BufferWrite

	log *slog.Logger
}

var _ RendererBackend = &wgpuRendererBackend{}

// newWGPURendererBackend creates the device for surfaceDescriptor and builds the raymarch
// pipeline from the given WGSL sources.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, mode PresentMode, vertexSource, fragmentSource string) (*wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("wgpu: window has no surface descriptor")
	}

	b := &wgpuRendererBackend{
		instance:   wgpu.CreateInstance(nil),
		buffers:    make(map[backend.BufferHandle]*wgpu.Buffer),
		slots:      make(map[uint32]backend.BufferHandle),
		blockSlots: make(map[uint32]uint32),
		log:        common.ComponentLogger("renderer").With(slog.String("backend", BackendTypeWGPU.String())),
	}
	b.SetPresentMode(mode)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu: failed to request adapter: %w", err)
	}
	b.adapter = a

	b.limits = wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Raymarch Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: b.limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu: failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, errors.New("wgpu: surface reports no texture formats")
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = capabilities.AlphaModes[0]

	if err := b.initProgram(vertexSource, fragmentSource); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.initQuad(); err != nil {
		b.Release()
		return nil, err
	}

	b.log.Info("device ready", slog.Any("format", b.surfaceFormat))
	return b, nil
}

// initProgram parses both stages, creates the render pipeline, one provider per bind group,
// the uniform buffers and the placeholder storage buffer.
func (b *wgpuRendererBackend) initProgram(vertexSource, fragmentSource string) error {
	vertexShader, err := shader.NewShader("raymarch.vert", shader.ShaderTypeVertex, vertexSource)
	if err != nil {
		return err
	}
	fragmentShader, err := shader.NewShader("raymarch.frag", shader.ShaderTypeFragment, fragmentSource)
	if err != nil {
		return err
	}
	b.pipeline = pipeline.NewPipeline("raymarch",
		pipeline.WithVertexShader(vertexShader),
		pipeline.WithFragmentShader(fragmentShader),
	)
	b.blocks = mergeStorageBlocks(vertexShader.StorageBlocks(), fragmentShader.StorageBlocks())

	placeholder, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Raymarch Empty Block",
		Size:  minStorageBufferSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create placeholder buffer: %w", err)
	}
	b.placeholder = placeholder

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	groupCount := 0
	for g := range merged {
		groupCount = max(groupCount, g+1)
	}

	b.groups = make([]bgp.BindGroupProvider, groupCount)
	layouts := make([]*wgpu.BindGroupLayout, groupCount)
	for g := range groupCount {
		desc := merged[g]
		desc.Label = fmt.Sprintf("Raymarch Group %d Layout", g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("wgpu: failed to create bind group layout for group %d: %w", g, err)
		}
		provider := bgp.NewBindGroupProvider(fmt.Sprintf("Raymarch Group %d", g),
			bgp.WithLayoutDescriptor(desc),
			bgp.WithBindGroupLayout(layout),
		)
		b.groups[g] = provider
		layouts[g] = layout

		for _, entry := range desc.Entries {
			if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
				continue
			}
			buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Uniforms",
				Size:  entry.Buffer.MinBindingSize,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return fmt.Errorf("wgpu: failed to create uniform buffer for group %d: %w", g, err)
			}
			provider.SetBuffer(int(entry.Binding), buf)
		}
		if err := b.rebuildGroup(g); err != nil {
			return err
		}
	}

	return b.registerPipeline(layouts)
}

// registerPipeline compiles both stages and stores the GPU pipeline on b.pipeline.
func (b *wgpuRendererBackend) registerPipeline(layouts []*wgpu.BindGroupLayout) error {
	p := b.pipeline
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("wgpu: failed to compile %s: %w", vertexShader.Key(), err)
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("wgpu: failed to compile %s: %w", fragmentShader.Key(), err)
	}
	defer fs.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create render pipeline: %w", err)
	}
	p.SetRenderPipeline(created)
	return nil
}

// initQuad uploads the full-screen quad.
func (b *wgpuRendererBackend) initQuad() error {
	b.quad = bgp.NewBindGroupProvider("Raymarch Quad")

	vertexBuf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    b.quad.Label() + " Vertex Buffer",
		Contents: common.Float32sToBytes(quadVertices...),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create quad vertex buffer: %w", err)
	}
	b.quad.SetVertexBuffer(vertexBuf)

	indexBuf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    b.quad.Label() + " Index Buffer",
		Contents: common.SliceToBytes(quadIndices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create quad index buffer: %w", err)
	}
	b.quad.SetIndexBuffer(indexBuf)
	b.quad.SetIndexCount(len(quadIndices))
	return nil
}

// rebuildGroup recreates the bind group of group g from its owned uniform buffers and the
// buffers currently bound to its blocks' slots.
func (b *wgpuRendererBackend) rebuildGroup(g int) error {
	provider := b.groups[g]
	desc := provider.LayoutDescriptor()
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, entry := range desc.Entries {
		binding := int(entry.Binding)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
			provider.AttachBuffer(binding, b.blockBuffer(g, binding))
		}
		buf := provider.Buffer(binding)
		if buf == nil {
			return fmt.Errorf("wgpu: group %d binding %d has no buffer", g, binding)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  provider.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create bind group %d: %w", g, err)
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// blockBuffer returns the buffer bound to the slot of the block at group and binding,
// or the placeholder.
func (b *wgpuRendererBackend) blockBuffer(group, binding int) *wgpu.Buffer {
	for i, block := range b.blocks {
		if block.Group != group || block.Binding != binding {
			continue
		}
		slot, ok := b.blockSlots[uint32(i)]
		if !ok {
			break
		}
		if buf, ok := b.buffers[b.slots[slot]]; ok {
			return buf
		}
		break
	}
	return b.placeholder
}

// rebuildGroupsForSlot rebuilds every group holding a block bound to slot.
func (b *wgpuRendererBackend) rebuildGroupsForSlot(slot uint32) error {
	var rebuilt []int
	for i, block := range b.blocks {
		if s, ok := b.blockSlots[uint32(i)]; !ok || s != slot || slices.Contains(rebuilt, block.Group) {
			continue
		}
		if err := b.rebuildGroup(block.Group); err != nil {
			return err
		}
		rebuilt = append(rebuilt, block.Group)
	}
	return nil
}

func (b *wgpuRendererBackend) checkProgram(p backend.ProgramHandle) error {
	if p != wgpuProgram {
		return fmt.Errorf("wgpu: program %d: %w", p, backend.ErrUnknownProgram)
	}
	return nil
}

func (b *wgpuRendererBackend) Program() backend.ProgramHandle {
	return wgpuProgram
}

func (b *wgpuRendererBackend) CreateBuffer(data []byte, usage backend.BufferUsage) (backend.BufferHandle, error) {
	contents := padStorage(data)
	if uint64(len(contents)) > b.limits.MaxStorageBufferBindingSize {
		return 0, fmt.Errorf("wgpu: %d bytes exceeds the storage binding limit of %d: %w",
			len(contents), b.limits.MaxStorageBufferBindingSize, backend.ErrBufferAllocation)
	}

	buf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    fmt.Sprintf("Raymarch Block Buffer (%s)", usage),
		Contents: contents,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: %w: %v", backend.ErrBufferAllocation, err)
	}

	b.nextHandle++
	h := b.nextHandle
	b.buffers[h] = buf
	b.log.Debug("buffer created", slog.Uint64("handle", uint64(h)), slog.Int("bytes", len(contents)))
	return h, nil
}

func (b *wgpuRendererBackend) ReleaseBuffer(h backend.BufferHandle) {
	buf, ok := b.buffers[h]
	if !ok {
		return
	}
	delete(b.buffers, h)

	for slot, bound := range b.slots {
		if bound != h {
			continue
		}
		delete(b.slots, slot)
		if err := b.rebuildGroupsForSlot(slot); err != nil {
			b.log.Warn("failed to rebind slot after release", slog.Uint64("slot", uint64(slot)), slog.Any("error", err))
		}
	}
	buf.Release()
}

func (b *wgpuRendererBackend) BindBufferToSlot(h backend.BufferHandle, slot uint32) error {
	if _, ok := b.buffers[h]; !ok {
		return fmt.Errorf("wgpu: buffer %d: %w", h, backend.ErrUnknownBuffer)
	}
	b.slots[slot] = h
	return b.rebuildGroupsForSlot(slot)
}

func (b *wgpuRendererBackend) ResolveUniformBlock(p backend.ProgramHandle, name string) (uint32, error) {
	if err := b.checkProgram(p); err != nil {
		return 0, err
	}
	for i, block := range b.blocks {
		if block.Name == name || block.VarName == name {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("wgpu: block %q: %w", name, backend.ErrUniformBlockNotFound)
}

func (b *wgpuRendererBackend) BindBlock(p backend.ProgramHandle, blockIndex, slot uint32) error {
	if err := b.checkProgram(p); err != nil {
		return err
	}
	if int(blockIndex) >= len(b.blocks) {
		return fmt.Errorf("wgpu: block index %d: %w", blockIndex, backend.ErrUniformBlockNotFound)
	}
	b.blockSlots[blockIndex] = slot
	return b.rebuildGroup(b.blocks[blockIndex].Group)
}

func (b *wgpuRendererBackend) SetUniform1f(p backend.ProgramHandle, name string, x float32) error {
	return b.setUniform(p, name, x)
}

func (b *wgpuRendererBackend) SetUniform2f(p backend.ProgramHandle, name string, x, y float32) error {
	return b.setUniform(p, name, x, y)
}

func (b *wgpuRendererBackend) SetUniform3f(p backend.ProgramHandle, name string, x, y, z float32) error {
	return b.setUniform(p, name, x, y, z)
}

// setUniform stages a write of values at the reflected offset of name.
func (b *wgpuRendererBackend) setUniform(p backend.ProgramHandle, name string, values ...float32) error {
	if err := b.checkProgram(p); err != nil {
		return err
	}
	field, ok := b.uniformField(name)
	if !ok {
		return fmt.Errorf("wgpu: uniform %q: %w", name, backend.ErrUniformNotFound)
	}
	data := common.Float32sToBytes(values...)
	if uint64(len(data)) > field.Size {
		return fmt.Errorf("wgpu: uniform %q holds %d bytes, got %d", name, field.Size, len(data))
	}
	b.pendingWrites = bgp.StageWrite(b.pendingWrites, bgp.BufferWrite{
		Provider: b.groups[field.Group],
		Binding:  field.Binding,
		Offset:   field.Offset,
		Data:     data,
	})
	return nil
}

func (b *wgpuRendererBackend) uniformField(name string) (shader.UniformField, bool) {
	for _, t := range []shader.ShaderType{shader.ShaderTypeFragment, shader.ShaderTypeVertex} {
		if f, ok := b.pipeline.Shader(t).UniformField(name); ok {
			return f, true
		}
	}
	return shader.UniformField{}, false
}

// writeBuffers flushes staged uniform writes to the queue.
func (b *wgpuRendererBackend) writeBuffers() {
	for _, w := range b.pendingWrites {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
	b.pendingWrites = b.pendingWrites[:0]
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: invalid surface size %dx%d", width, height)
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
	b.configured = true
	b.log.Debug("surface configured", slog.Int("width", width), slog.Int("height", height))
	return nil
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackend) DrawFrame(clear [4]float64) error {
	if !b.configured {
		return errors.New("wgpu: surface is not configured")
	}
	b.writeBuffers()

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("wgpu: failed to acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]},
			},
		},
	})
	pass.SetPipeline(b.pipeline.RenderPipeline())
	for i, g := range b.groups {
		pass.SetBindGroup(uint32(i), g.BindGroup(), nil)
	}
	pass.SetVertexBuffer(0, b.quad.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(b.quad.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(b.quad.IndexCount()), 1, 0, 0, 0)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpu: failed to finish frame: %w", err)
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackend) Release() {
	for h, buf := range b.buffers {
		buf.Release()
		delete(b.buffers, h)
	}
	clear(b.slots)
	for _, g := range b.groups {
		if g != nil {
			g.Release()
		}
	}
	b.groups = nil
	if b.quad != nil {
		b.quad.Release()
		b.quad = nil
	}
	if b.placeholder != nil {
		b.placeholder.Release()
		b.placeholder = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// mergeBindGroupLayouts combines the layouts of two stages. A binding declared in both
// stages keeps one entry with the union of their visibilities.
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(vertexLayouts)+len(fragmentLayouts))
	for _, stage := range []map[int]wgpu.BindGroupLayoutDescriptor{vertexLayouts, fragmentLayouts} {
		for g, desc := range stage {
			existing := merged[g]
			for _, e := range desc.Entries {
				idx := slices.IndexFunc(existing.Entries, func(x wgpu.BindGroupLayoutEntry) bool {
					return x.Binding == e.Binding
				})
				if idx >= 0 {
					existing.Entries[idx].Visibility |= e.Visibility
					continue
				}
				existing.Entries = append(existing.Entries, e)
			}
			merged[g] = existing
		}
	}
	for g, desc := range merged {
		slices.SortFunc(desc.Entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		merged[g] = desc
	}
	return merged
}

// mergeStorageBlocks lists the storage blocks of both stages once each, ordered by group
// then binding. The position in the result is the block index.
func mergeStorageBlocks(vertexBlocks, fragmentBlocks []shader.StorageBlock) []shader.StorageBlock {
	merged := slices.Clone(vertexBlocks)
	for _, fb := range fragmentBlocks {
		if !slices.ContainsFunc(merged, func(vb shader.StorageBlock) bool {
			return vb.Group == fb.Group && vb.Binding == fb.Binding
		}) {
			merged = append(merged, fb)
		}
	}
	slices.SortStableFunc(merged, func(a, b shader.StorageBlock) int {
		if a.Group != b.Group {
			return a.Group - b.Group
		}
		return a.Binding - b.Binding
	})
	return merged
}
