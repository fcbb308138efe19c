package shader

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is written for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

// String returns the lowercase stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

var (
	// ErrEmptySource is returned when a shader is created without WGSL source.
	ErrEmptySource = errors.New("shader source is empty")

	// ErrNoEntryPoint is returned when the source has no entry point for the requested stage.
	ErrNoEntryPoint = errors.New("shader has no entry point for its stage")
)

// Shader is a parsed WGSL shader stage. Besides the module descriptor it exposes the
// reflection data the renderer needs to build bind groups and write uniforms by name.
type Shader interface {
	// Key returns the shader's label.
	Key() string

	// Source returns the WGSL source.
	Source() string

	// ShaderType returns the stage this shader was parsed for.
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry point function.
	EntryPoint() string

	// Module returns the descriptor used to create the GPU shader module.
	Module() *wgpu.ShaderModuleDescriptor

	// BindGroupLayoutDescriptors returns the buffer bind group layouts declared by the shader,
	// keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable declared at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if nothing is declared there
	BindGroupVarName(group, binding int) string

	// VertexLayouts returns the vertex buffer layouts of a vertex shader, in declaration order.
	VertexLayouts() []wgpu.VertexBufferLayout

	// UniformField locates a uniform by its struct member name.
	//
	// Parameters:
	//   - name: the member name inside a var<uniform> struct, e.g. "uTime"
	//
	// Returns:
	//   - UniformField: the buffer location of the member
	//   - bool: false if no uniform struct declares the member
	UniformField(name string) (UniformField, bool)

	// UniformFields returns every uniform member keyed by name.
	UniformFields() map[string]UniformField

	// StorageBlocks returns the storage-buffer bindings sorted by group then binding.
	StorageBlocks() []StorageBlock
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	uniformFields              map[string]UniformField
	storageBlocks              []StorageBlock
}

var _ Shader = &shader{}

// NewShader parses WGSL source for the given stage.
//
// Parameters:
//   - key: a label for the shader, used in GPU object labels and errors
//   - shaderType: the stage to parse the entry point and layouts for
//   - source: the WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrEmptySource or ErrNoEntryPoint
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %q: %w", key, ErrEmptySource)
	}
	entry := parseEntryPoint(source, shaderType)
	if entry == "" {
		return nil, fmt.Errorf("shader %q (%s): %w", key, shaderType, ErrNoEntryPoint)
	}

	visibility := wgpu.ShaderStageVertex
	if shaderType == ShaderTypeFragment {
		visibility = wgpu.ShaderStageFragment
	}

	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		entryPoint: entry,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
		uniformFields: parseUniformFields(source),
		storageBlocks: parseStorageBlocks(source),
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(source, visibility)
	if shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(source)
	}
	return s, nil
}

// NewShaderFromPath reads WGSL source from path and parses it with NewShader.
func NewShaderFromPath(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %q: failed to read %q: %w", key, path, err)
	}
	return NewShader(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) UniformField(name string) (UniformField, bool) {
	f, ok := s.uniformFields[name]
	return f, ok
}

func (s *shader) UniformFields() map[string]UniformField {
	return s.uniformFields
}

func (s *shader) StorageBlocks() []StorageBlock {
	return slices.Clone(s.storageBlocks)
}
