package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces the WebGPU backend onto the fallback (software) adapter.
// Ignored by the GL backend.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithShaderSources replaces the embedded raymarch shaders with the given sources, which must
// be WGSL for BackendTypeWGPU and GLSL 430 for BackendTypeGL. An empty string keeps the default
// for that stage.
//
// Parameters:
//   - vertex: the vertex stage source
//   - fragment: the fragment stage source
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithShaderSources(vertex, fragment string) RendererBuilderOption {
	return func(r *renderer) {
		r.vertexSource = vertex
		r.fragmentSource = fragment
	}
}

// WithShaderPaths reads the raymarch shaders from disk. An empty path keeps the default for
// that stage. Sources set with WithShaderSources take precedence.
func WithShaderPaths(vertexPath, fragmentPath string) RendererBuilderOption {
	return func(r *renderer) {
		r.vertexPath = vertexPath
		r.fragmentPath = fragmentPath
	}
}

// WithClearColor sets the color the frame is cleared to before the quad is drawn.
func WithClearColor(red, green, blue float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = [4]float64{red, green, blue, 1.0}
	}
}
