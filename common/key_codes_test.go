package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want KeyCode
	}{
		{"W", KeyW},
		{"w", KeyW},
		{"Space", KeySpace},
		{"LeftControl", KeyLeftControl},
		{"left_control", KeyLeftControl},
		{"Left Ctrl", KeyLeftControl},
		{"left-shift", KeyLeftShift},
		{"  E ", KeyE},
		{"1", Key1},
		{"Escape", KeyEsc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeyUnknown(t *testing.T) {
	_, err := ParseKey("hyper")
	assert.ErrorContains(t, err, "hyper")
}

func TestParseMouseButton(t *testing.T) {
	b, err := ParseMouseButton("Right")
	require.NoError(t, err)
	assert.Equal(t, MouseButtonRight, b)

	_, err = ParseMouseButton("fourth")
	assert.Error(t, err)
}

func TestFloat32sToBytes(t *testing.T) {
	b := Float32sToBytes(1, -2)
	require.Len(t, b, 8)
	// 1.0 = 0x3F800000, -2.0 = 0xC0000000, little-endian
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F, 0x00, 0x00, 0x00, 0xC0}, b)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
