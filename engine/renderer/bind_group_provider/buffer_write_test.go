package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageWriteKeepsLatestPerRange(t *testing.T) {
	uniforms := &bindGroupProvider{label: "uniforms"}
	other := &bindGroupProvider{label: "other"}

	var pending []BufferWrite
	for frame := 0; frame < 100; frame++ {
		v := byte(frame)
		pending = StageWrite(pending, BufferWrite{Provider: uniforms, Binding: 0, Offset: 0, Data: []byte{v, 0, 0, 0}})
		pending = StageWrite(pending, BufferWrite{Provider: uniforms, Binding: 0, Offset: 16, Data: []byte{v, 0, 0, 0, 0, 0, 0, 0}})
		pending = StageWrite(pending, BufferWrite{Provider: uniforms, Binding: 1, Offset: 0, Data: []byte{v, 0, 0, 0}})
		pending = StageWrite(pending, BufferWrite{Provider: other, Binding: 0, Offset: 0, Data: []byte{v, 0, 0, 0}})
	}

	assert.Len(t, pending, 4)
	for _, w := range pending {
		assert.Equal(t, byte(99), w.Data[0])
	}
}

func TestStageWriteKeepsDifferentLengths(t *testing.T) {
	p := &bindGroupProvider{}
	pending := StageWrite(nil, BufferWrite{Provider: p, Data: []byte{1, 2, 3, 4}})
	pending = StageWrite(pending, BufferWrite{Provider: p, Data: []byte{5, 6, 7, 8, 9, 10, 11, 12}})

	assert.Len(t, pending, 2)
}
