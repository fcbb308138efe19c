package renderer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/raymarcher"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedWGSLMatchesCore(t *testing.T) {
	vs, err := shader.NewShader("raymarch.vert", shader.ShaderTypeVertex, defaultVertexWGSL)
	require.NoError(t, err)
	fs, err := shader.NewShader("raymarch.frag", shader.ShaderTypeFragment, defaultFragmentWGSL)
	require.NoError(t, err)

	require.Len(t, vs.VertexLayouts(), 1)
	assert.Equal(t, uint64(8), vs.VertexLayouts()[0].ArrayStride)

	for _, name := range []string{raymarcher.UniformViewport, raymarcher.UniformTime, raymarcher.UniformCamPos, raymarcher.UniformObjPos} {
		_, ok := fs.UniformField(name)
		assert.True(t, ok, name)
	}

	blocks := mergeStorageBlocks(vs.StorageBlocks(), fs.StorageBlocks())
	require.Len(t, blocks, 2)
	assert.Equal(t, scene.DefaultSphereBlock, blocks[0].Name)
	assert.Equal(t, uint64(scene.SphereStride), blocks[0].Stride)
	assert.Equal(t, scene.DefaultCubeBlock, blocks[1].Name)
	assert.Equal(t, uint64(scene.CubeStride), blocks[1].Stride)
}

func TestEmbeddedGLSLDeclaresCoreNames(t *testing.T) {
	for _, name := range []string{
		raymarcher.UniformViewport, raymarcher.UniformTime, raymarcher.UniformCamPos, raymarcher.UniformObjPos,
		scene.DefaultSphereBlock, scene.DefaultCubeBlock,
	} {
		assert.True(t, strings.Contains(defaultFragmentGLSL, name), name)
	}
	assert.True(t, strings.HasPrefix(defaultVertexGLSL, "#version 430"))
}

func TestShaderSources(t *testing.T) {
	dir := t.TempDir()
	vertPath := filepath.Join(dir, "custom.vert")
	require.NoError(t, os.WriteFile(vertPath, []byte("from disk"), 0o644))

	tests := []struct {
		name         string
		opts         []RendererBuilderOption
		backendType  RendererBackendType
		wantVertex   string
		wantFragment string
		wantErr      bool
	}{
		{name: "wgpu defaults", backendType: BackendTypeWGPU, wantVertex: defaultVertexWGSL, wantFragment: defaultFragmentWGSL},
		{name: "gl defaults", backendType: BackendTypeGL, wantVertex: defaultVertexGLSL, wantFragment: defaultFragmentGLSL},
		{
			name:         "path overrides one stage",
			backendType:  BackendTypeWGPU,
			opts:         []RendererBuilderOption{WithShaderPaths(vertPath, "")},
			wantVertex:   "from disk",
			wantFragment: defaultFragmentWGSL,
		},
		{
			name:         "source beats path",
			backendType:  BackendTypeGL,
			opts:         []RendererBuilderOption{WithShaderPaths(vertPath, ""), WithShaderSources("inline", "")},
			wantVertex:   "inline",
			wantFragment: defaultFragmentGLSL,
		},
		{
			name:        "missing path",
			backendType: BackendTypeWGPU,
			opts:        []RendererBuilderOption{WithShaderPaths("", filepath.Join(dir, "missing.frag"))},
			wantErr:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &renderer{backendType: tt.backendType}
			for _, opt := range tt.opts {
				opt(r)
			}
			vertex, fragment, err := r.shaderSources()
			if tt.wantErr {
				assert.ErrorIs(t, err, os.ErrNotExist)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVertex, vertex)
			assert.Equal(t, tt.wantFragment, fragment)
		})
	}
}

func TestPadStorage(t *testing.T) {
	assert.Equal(t, make([]byte, minStorageBufferSize), padStorage(nil))
	assert.Equal(t, make([]byte, minStorageBufferSize), padStorage([]byte{}))

	for _, size := range []int{16, 32, 40, 48} {
		data := make([]byte, size)
		data[0] = 7
		assert.Equal(t, data, padStorage(data), "%d bytes keep their length", size)
	}
}

func TestSingleSphereUploadKeepsStride(t *testing.T) {
	g := scene.Sphere{Center: mgl32.Vec3{1, 2, 3}, Radius: 0.5}.GPU()
	data := g.Marshal()
	require.Len(t, data, scene.SphereStride)
	assert.Len(t, padStorage(data), scene.SphereStride)
}

func TestParseNames(t *testing.T) {
	bt, ok := ParseBackendType("gl")
	assert.True(t, ok)
	assert.Equal(t, BackendTypeGL, bt)
	_, ok = ParseBackendType("vulkan")
	assert.False(t, ok)

	pm, ok := ParsePresentMode("uncapped")
	assert.True(t, ok)
	assert.Equal(t, PresentModeUncapped, pm)
	assert.Equal(t, 0, pm.swapInterval())
	assert.Equal(t, 1, PresentModeVSync.swapInterval())
	_, ok = ParsePresentMode("adaptive")
	assert.False(t, ok)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged[0].Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	require.Len(t, merged[1].Entries, 2)
	assert.Equal(t, uint32(0), merged[1].Entries[0].Binding)
	assert.Equal(t, uint32(1), merged[1].Entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, vertex[0].Entries[0].Visibility, "inputs are not modified")
}
