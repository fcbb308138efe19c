package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragmentSource = `
struct FrameUniforms {
    uViewport: vec2<f32>,
    uTime: f32,
    uCamPos: vec3<f32>, // padded to 16
    uObjPos: vec3<f32>,
}

struct Sphere {
    center: vec3<f32>,
    radius: f32,
}

struct Cube {
    center: vec3<f32>,
    halfExtents: vec3<f32>,
}

struct SpheresBlock { spheres: array<Sphere>, }
struct CubesBlock { cubes: array<Cube>, }

/* /* nested */ @group(3) @binding(0) var<uniform> hidden: FrameUniforms; */
@group(0) @binding(0) var<uniform> frame: FrameUniforms;
@group(1) @binding(1) var<storage, read> cubesBlock: CubesBlock;
@group(1) @binding(0) var<storage, read> spheresBlock: SpheresBlock;
@group(2) @binding(0) var<storage, read_write> scratch: array<vec4<f32>>;
@group(2) @binding(1) var tex: texture_2d<f32>;

@fragment
fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(frame.uTime, 0.0, 0.0, 1.0);
}
`

const vertexSource = `
struct VertexInput {
    @location(0) position: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

// @vertex fn commented_out() {}
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.position * 0.5 + 0.5;
    return out;
}
`

func TestUniformFieldOffsets(t *testing.T) {
	s, err := NewShader("frag", ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset uint64
		size   uint64
	}{
		{"uViewport", 0, 8},
		{"uTime", 8, 4},
		{"uCamPos", 16, 12},
		{"uObjPos", 32, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := s.UniformField(tt.name)
			require.True(t, ok)
			assert.Equal(t, 0, f.Group)
			assert.Equal(t, 0, f.Binding)
			assert.Equal(t, tt.offset, f.Offset)
			assert.Equal(t, tt.size, f.Size)
		})
	}

	_, ok := s.UniformField("uMissing")
	assert.False(t, ok)
	assert.Len(t, s.UniformFields(), 4)
}

func TestStorageBlocks(t *testing.T) {
	s, err := NewShader("frag", ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)

	blocks := s.StorageBlocks()
	require.Len(t, blocks, 3)

	assert.Equal(t, StorageBlock{Name: "SpheresBlock", VarName: "spheresBlock", Group: 1, Binding: 0, ReadOnly: true, Stride: 16}, blocks[0])
	assert.Equal(t, StorageBlock{Name: "CubesBlock", VarName: "cubesBlock", Group: 1, Binding: 1, ReadOnly: true, Stride: 32}, blocks[1])
	assert.Equal(t, StorageBlock{Name: "scratch", VarName: "scratch", Group: 2, Binding: 0, ReadOnly: false, Stride: 16}, blocks[2])

	blocks[0].Name = "mutated"
	assert.Equal(t, "SpheresBlock", s.StorageBlocks()[0].Name)
}

func TestBindGroupLayouts(t *testing.T) {
	s, err := NewShader("frag", ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)

	layouts := s.BindGroupLayoutDescriptors()
	require.Contains(t, layouts, 0)
	require.Contains(t, layouts, 1)
	assert.NotContains(t, layouts, 3, "block-commented declarations are ignored")

	frame := layouts[0].Entries
	require.Len(t, frame, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, frame[0].Buffer.Type)
	assert.Equal(t, uint64(48), frame[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, frame[0].Visibility)

	blocks := layouts[1].Entries
	require.Len(t, blocks, 2)
	assert.Equal(t, uint32(0), blocks[0].Binding)
	assert.Equal(t, uint32(1), blocks[1].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, blocks[0].Buffer.Type)
	assert.Equal(t, uint64(16), blocks[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(32), blocks[1].Buffer.MinBindingSize)

	scratch := layouts[2].Entries
	require.Len(t, scratch, 1, "textures are not buffer bindings")
	assert.Equal(t, wgpu.BufferBindingTypeStorage, scratch[0].Buffer.Type)

	assert.Equal(t, "cubesBlock", s.BindGroupVarName(1, 1))
	assert.Equal(t, "", s.BindGroupVarName(4, 0))
}

func TestEntryPointsAndVertexLayouts(t *testing.T) {
	vs, err := NewShader("vert", ShaderTypeVertex, vertexSource)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, "vert", vs.Module().Label)

	layouts := vs.VertexLayouts()
	require.Len(t, layouts, 1, "only structs without @builtin members are vertex inputs")
	assert.Equal(t, uint64(8), layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 1)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layouts[0].Attributes[0].Format)

	fs, err := NewShader("frag", ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Empty(t, fs.VertexLayouts())
}

func TestNewShaderErrors(t *testing.T) {
	_, err := NewShader("empty", ShaderTypeVertex, "")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = NewShader("wrong-stage", ShaderTypeVertex, fragmentSource)
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	_, err = NewShaderFromPath("missing", ShaderTypeFragment, filepath.Join(t.TempDir(), "nope.wgsl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raymarch.frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(fragmentSource), 0o644))

	s, err := NewShaderFromPath("frag", ShaderTypeFragment, path)
	require.NoError(t, err)
	assert.Equal(t, fragmentSource, s.Source())
	assert.Equal(t, ShaderTypeFragment, s.ShaderType())
}

func TestResolveTypeLayout(t *testing.T) {
	known := map[string]wgslTypeLayout{"Sphere": {16, 16}}
	tests := []struct {
		typeName string
		want     wgslTypeLayout
		ok       bool
	}{
		{"f32", wgslTypeLayout{4, 4}, true},
		{"vec3<f32>", wgslTypeLayout{12, 16}, true},
		{"array<Sphere>", wgslTypeLayout{16, 16}, true},
		{"array<vec3f, 4>", wgslTypeLayout{64, 16}, true},
		{"array<f32, N>", wgslTypeLayout{}, false},
		{"texture_2d<f32>", wgslTypeLayout{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, ok := resolveTypeLayout(tt.typeName, known)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
