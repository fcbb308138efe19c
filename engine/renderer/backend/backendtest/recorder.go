// Package backendtest provides an in-memory Backend that records every call.
package backendtest

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/backend"
)

// Call is one recorded Backend invocation.
type Call struct {
	Method string
	Name   string
	Handle backend.BufferHandle
	Slot   uint32
	Values []float32
}

// Recorder is a fake backend.Backend. Buffers live in memory, blocks and uniforms are
// resolved against the configured name sets.
type Recorder struct {
	Calls []Call

	// Buffers holds the contents of every live buffer.
	Buffers map[backend.BufferHandle][]byte
	// Slots maps a binding slot to the buffer currently bound there.
	Slots map[uint32]backend.BufferHandle
	// BlockSlots maps a block index to the slot it was bound to.
	BlockSlots map[uint32]uint32
	// Uniforms holds the last value written for each uniform name.
	Uniforms map[string][]float32

	// Blocks lists the storage block names the fake program declares, in index order.
	Blocks []string
	// KnownUniforms lists the uniform names the fake program declares.
	KnownUniforms []string

	// FailCreateAfter makes CreateBuffer fail once this many buffers have been created.
	// A negative value never fails.
	FailCreateAfter int

	created int
	next    backend.BufferHandle
}

var _ backend.Backend = &Recorder{}

// NewRecorder returns a Recorder whose program declares SpheresBlock, CubesBlock and the
// four frame uniforms.
func NewRecorder() *Recorder {
	return &Recorder{
		Buffers:         make(map[backend.BufferHandle][]byte),
		Slots:           make(map[uint32]backend.BufferHandle),
		BlockSlots:      make(map[uint32]uint32),
		Uniforms:        make(map[string][]float32),
		Blocks:          []string{"SpheresBlock", "CubesBlock"},
		KnownUniforms:   []string{"uViewport", "uTime", "uCamPos", "uObjPos"},
		FailCreateAfter: -1,
	}
}

// Count returns how many calls to method were recorded.
func (r *Recorder) Count(method string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// SlotContents returns the bytes of the buffer bound to slot, or nil.
func (r *Recorder) SlotContents(slot uint32) []byte {
	h, ok := r.Slots[slot]
	if !ok {
		return nil
	}
	return r.Buffers[h]
}

// Reset clears the call log.
func (r *Recorder) Reset() {
	r.Calls = nil
}

func (r *Recorder) CreateBuffer(data []byte, usage backend.BufferUsage) (backend.BufferHandle, error) {
	if r.FailCreateAfter >= 0 && r.created >= r.FailCreateAfter {
		r.Calls = append(r.Calls, Call{Method: "CreateBuffer"})
		return 0, fmt.Errorf("%w: recorder limit of %d buffers", backend.ErrBufferAllocation, r.FailCreateAfter)
	}
	r.created++
	r.next++
	h := r.next
	r.Buffers[h] = slices.Clone(data)
	r.Calls = append(r.Calls, Call{Method: "CreateBuffer", Handle: h})
	return h, nil
}

func (r *Recorder) ReleaseBuffer(h backend.BufferHandle) {
	r.Calls = append(r.Calls, Call{Method: "ReleaseBuffer", Handle: h})
	delete(r.Buffers, h)
}

func (r *Recorder) BindBufferToSlot(h backend.BufferHandle, slot uint32) error {
	r.Calls = append(r.Calls, Call{Method: "BindBufferToSlot", Handle: h, Slot: slot})
	if _, ok := r.Buffers[h]; !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownBuffer, h)
	}
	r.Slots[slot] = h
	return nil
}

func (r *Recorder) ResolveUniformBlock(p backend.ProgramHandle, name string) (uint32, error) {
	r.Calls = append(r.Calls, Call{Method: "ResolveUniformBlock", Name: name})
	i := slices.Index(r.Blocks, name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", backend.ErrUniformBlockNotFound, name)
	}
	return uint32(i), nil
}

func (r *Recorder) BindBlock(p backend.ProgramHandle, blockIndex, slot uint32) error {
	r.Calls = append(r.Calls, Call{Method: "BindBlock", Slot: slot, Values: []float32{float32(blockIndex)}})
	if int(blockIndex) >= len(r.Blocks) {
		return fmt.Errorf("%w: block index %d", backend.ErrUniformBlockNotFound, blockIndex)
	}
	r.BlockSlots[blockIndex] = slot
	return nil
}

func (r *Recorder) SetUniform1f(p backend.ProgramHandle, name string, x float32) error {
	return r.setUniform(name, x)
}

func (r *Recorder) SetUniform2f(p backend.ProgramHandle, name string, x, y float32) error {
	return r.setUniform(name, x, y)
}

func (r *Recorder) SetUniform3f(p backend.ProgramHandle, name string, x, y, z float32) error {
	return r.setUniform(name, x, y, z)
}

func (r *Recorder) setUniform(name string, values ...float32) error {
	r.Calls = append(r.Calls, Call{Method: "SetUniform", Name: name, Values: values})
	if !slices.Contains(r.KnownUniforms, name) {
		return fmt.Errorf("%w: %q", backend.ErrUniformNotFound, name)
	}
	r.Uniforms[name] = values
	return nil
}
