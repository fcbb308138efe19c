// Package config loads the viewer settings from TOML and maps them onto the builder options
// of the window, renderer, orbit controller, scene and raymarcher.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/raymarcher"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of the TOML document.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Orbit    OrbitConfig    `toml:"orbit"`
	Keys     KeysConfig     `toml:"keys"`
	Scene    SceneConfig    `toml:"scene"`
	Profiler ProfilerConfig `toml:"profiler"`
	Log      LogConfig      `toml:"log"`
}

// WindowConfig sizes the window. A zero max size leaves that dimension unbounded.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
	MaxWidth  int    `toml:"max_width"`
	MaxHeight int    `toml:"max_height"`
}

// RendererConfig selects the graphics backend and the raymarch shaders.
type RendererConfig struct {
	Backend        string     `toml:"backend"`
	PresentMode    string     `toml:"present_mode"`
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	Software       bool       `toml:"software"`
	ClearColor     [3]float64 `toml:"clear_color"`
	// FrameLimit caps frames per second; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`
}

// OrbitConfig holds the orbit geometry, speeds and the starting camera/target pair.
type OrbitConfig struct {
	Distance         float32    `toml:"distance"`
	VerticalOffset   float32    `toml:"vertical_offset"`
	Speed            float32    `toml:"speed"`
	FastSpeed        float32    `toml:"fast_speed"`
	MouseSensitivity float32    `toml:"mouse_sensitivity"`
	Camera           [3]float32 `toml:"camera"`
	Target           [3]float32 `toml:"target"`
}

// KeysConfig names the bindings, using the names common.ParseKey and
// common.ParseMouseButton accept.
type KeysConfig struct {
	Forward     string `toml:"forward"`
	Back        string `toml:"back"`
	Left        string `toml:"left"`
	Right       string `toml:"right"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Fast        string `toml:"fast"`
	Rotate      string `toml:"rotate"`
	PlaceSphere string `toml:"place_sphere"`
	PlaceCube   string `toml:"place_cube"`
	Quit        string `toml:"quit"`
}

// SceneConfig sets the size of placed primitives.
type SceneConfig struct {
	SphereRadius    float32    `toml:"sphere_radius"`
	CubeHalfExtents [3]float32 `toml:"cube_half_extents"`
}

// ProfilerConfig toggles the frame statistics log and the FPS title.
type ProfilerConfig struct {
	Enabled bool `toml:"enabled"`
	// Interval is a time.ParseDuration string such as "1s" or "500ms".
	Interval string `toml:"interval"`
}

// LogConfig sets the minimum level of the process logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy raymarch",
			Width:     1280,
			Height:    720,
			MinWidth:  400,
			MinHeight: 225,
		},
		Renderer: RendererConfig{
			Backend:     renderer.BackendTypeWGPU.String(),
			PresentMode: "vsync",
			ClearColor:  [3]float64{0.1, 0.1, 0.1},
		},
		Orbit: OrbitConfig{
			Distance:         6,
			VerticalOffset:   2,
			Speed:            5,
			FastSpeed:        20,
			MouseSensitivity: 0.01,
			Camera:           [3]float32{0, 0, -7},
			Target:           [3]float32{1, 1, 1},
		},
		Keys: KeysConfig{
			Forward:     "w",
			Back:        "s",
			Left:        "a",
			Right:       "d",
			Up:          "space",
			Down:        "leftcontrol",
			Fast:        "leftshift",
			Rotate:      "left",
			PlaceSphere: "e",
			PlaceCube:   "q",
			Quit:        "escape",
		},
		Scene: SceneConfig{
			SphereRadius:    1,
			CubeHalfExtents: [3]float32{1, 1, 1},
		},
		Profiler: ProfilerConfig{
			Enabled:  true,
			Interval: "1s",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, has unknown keys, or fails validation
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults and validates the result.
// Keys that do not map to a field are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that has a restricted range or a name to resolve.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig describing the first problem found
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 || c.Window.MaxWidth < 0 || c.Window.MaxHeight < 0 {
		return invalid("window size limits must not be negative")
	}
	if (c.Window.MaxWidth > 0 && c.Window.MaxWidth < c.Window.MinWidth) ||
		(c.Window.MaxHeight > 0 && c.Window.MaxHeight < c.Window.MinHeight) {
		return invalid("window max size must not be below min size")
	}

	if _, ok := renderer.ParseBackendType(c.Renderer.Backend); !ok {
		return invalid("unknown renderer backend %q", c.Renderer.Backend)
	}
	if _, ok := renderer.ParsePresentMode(c.Renderer.PresentMode); !ok {
		return invalid("unknown present mode %q", c.Renderer.PresentMode)
	}
	if c.Renderer.FrameLimit < 0 {
		return invalid("frame limit must not be negative, got %v", c.Renderer.FrameLimit)
	}
	for _, ch := range c.Renderer.ClearColor {
		if ch < 0 || ch > 1 {
			return invalid("clear color channels must be within [0, 1], got %v", c.Renderer.ClearColor)
		}
	}

	if _, err := camera.NewOrbitController(c.orbitOptions()...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Bindings(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, name := range []string{c.Keys.PlaceSphere, c.Keys.PlaceCube, c.Keys.Quit} {
		if _, err := common.ParseKey(name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if !(c.Scene.SphereRadius > 0) {
		return invalid("sphere radius must be positive, got %v", c.Scene.SphereRadius)
	}
	for _, h := range c.Scene.CubeHalfExtents {
		if !(h > 0) {
			return invalid("cube half extents must be positive, got %v", c.Scene.CubeHalfExtents)
		}
	}

	if d, err := time.ParseDuration(c.Profiler.Interval); err != nil || d <= 0 {
		return invalid("profiler interval %q is not a positive duration", c.Profiler.Interval)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return invalid("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Bindings resolves the orbit key and button names.
//
// Returns:
//   - camera.OrbitBindings: the resolved bindings
//   - error: error naming the first key or button that does not resolve
func (c Config) Bindings() (camera.OrbitBindings, error) {
	var b camera.OrbitBindings
	keys := []struct {
		name string
		dst  *common.KeyCode
	}{
		{c.Keys.Forward, &b.Forward},
		{c.Keys.Back, &b.Back},
		{c.Keys.Left, &b.Left},
		{c.Keys.Right, &b.Right},
		{c.Keys.Up, &b.Up},
		{c.Keys.Down, &b.Down},
		{c.Keys.Fast, &b.Fast},
	}
	for _, k := range keys {
		code, err := common.ParseKey(k.name)
		if err != nil {
			return camera.OrbitBindings{}, err
		}
		*k.dst = code
	}
	button, err := common.ParseMouseButton(c.Keys.Rotate)
	if err != nil {
		return camera.OrbitBindings{}, err
	}
	b.Rotate = button
	return b, nil
}

// QuitKey returns the key that closes the window. Call on a validated config.
func (c Config) QuitKey() common.KeyCode {
	k, _ := common.ParseKey(c.Keys.Quit)
	return k
}

// BackendType returns the configured renderer backend. Call on a validated config.
func (c Config) BackendType() renderer.RendererBackendType {
	bt, _ := renderer.ParseBackendType(c.Renderer.Backend)
	return bt
}

// LogLevel returns the configured minimum log level, or slog.LevelInfo if it does not parse.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ProfilerInterval returns the profiler window, or one second if it does not parse.
func (c Config) ProfilerInterval() time.Duration {
	d, err := time.ParseDuration(c.Profiler.Interval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// WindowOptions maps the window section. A GL backend gets a GL context.
//
// Returns:
//   - []window.WindowBuilderOption: options for window.NewWindow
func (c Config) WindowOptions() []window.WindowBuilderOption {
	api := window.ClientAPINone
	if c.BackendType() == renderer.BackendTypeGL {
		api = window.ClientAPIOpenGL
	}
	return []window.WindowBuilderOption{
		window.WithTitle(common.Coalesce(c.Window.Title, Default().Window.Title)),
		window.WithWidth(c.Window.Width),
		window.WithHeight(c.Window.Height),
		window.WithMinSize(c.Window.MinWidth, c.Window.MinHeight),
		window.WithMaxSize(c.Window.MaxWidth, c.Window.MaxHeight),
		window.WithClientAPI(api),
	}
}

// RendererOptions maps the renderer section.
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewRenderer
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode, _ := renderer.ParsePresentMode(c.Renderer.PresentMode)
	cc := c.Renderer.ClearColor
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithForceSoftwareRenderer(c.Renderer.Software),
		renderer.WithShaderPaths(c.Renderer.VertexShader, c.Renderer.FragmentShader),
		renderer.WithClearColor(cc[0], cc[1], cc[2]),
	}
}

// OrbitOptions maps the orbit section and key bindings. Call on a validated config.
//
// Returns:
//   - []camera.OrbitControllerBuilderOption: options for camera.NewOrbitController
func (c Config) OrbitOptions() []camera.OrbitControllerBuilderOption {
	opts := c.orbitOptions()
	if b, err := c.Bindings(); err == nil {
		opts = append(opts, camera.WithBindings(b))
	}
	return opts
}

func (c Config) orbitOptions() []camera.OrbitControllerBuilderOption {
	return []camera.OrbitControllerBuilderOption{
		camera.WithOrbitDistance(c.Orbit.Distance),
		camera.WithVerticalOffset(c.Orbit.VerticalOffset),
		camera.WithSpeed(c.Orbit.Speed, c.Orbit.FastSpeed),
		camera.WithMouseSensitivity(c.Orbit.MouseSensitivity),
	}
}

// RaymarcherOptions maps the starting state, placement keys and scene section. The orbit
// controller is not included; pass one built from OrbitOptions with
// raymarcher.WithOrbitController. Call on a validated config.
//
// Returns:
//   - []raymarcher.RaymarcherBuilderOption: options for raymarcher.NewRaymarcher
func (c Config) RaymarcherOptions() []raymarcher.RaymarcherBuilderOption {
	sphereKey, _ := common.ParseKey(c.Keys.PlaceSphere)
	cubeKey, _ := common.ParseKey(c.Keys.PlaceCube)
	return []raymarcher.RaymarcherBuilderOption{
		raymarcher.WithInitialState(camera.OrbitState{
			Camera: mgl32.Vec3(c.Orbit.Camera),
			Target: mgl32.Vec3(c.Orbit.Target),
		}),
		raymarcher.WithPlacementKeys(sphereKey, cubeKey),
		raymarcher.WithSceneOptions(
			scene.WithDefaultRadius(c.Scene.SphereRadius),
			scene.WithDefaultHalfExtents(mgl32.Vec3(c.Scene.CubeHalfExtents)),
		),
	}
}
