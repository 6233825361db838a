package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/skybox"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfileInterval sets how often the profiler reports. Defaults to 1 second.
//
// Parameters:
//   - d: the report interval; zero or negative keeps the default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfileInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profileInterval = d
	}
}

// WithWindow sets the window whose message loop drives the frames and whose input moves the camera.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer every frame is drawn with.
//
// Parameters:
//   - r: the renderer, with the model and skybox programs registered
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera instead of a default one.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithModelProgram sets the program scene objects are drawn with. It must declare
// "model", "view" and "projection" matrices.
//
// Parameters:
//   - p: the model program
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithModelProgram(p shader.Program) EngineBuilderOption {
	return func(e *engine) {
		e.modelProgram = p
	}
}

// WithSkybox sets the skybox drawn before the scene objects and the program it draws with.
//
// Parameters:
//   - s: the skybox
//   - p: the skybox program
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSkybox(s skybox.Skybox, p shader.Program) EngineBuilderOption {
	return func(e *engine) {
		e.skybox = s
		e.skyboxProgram = p
	}
}

// WithObjects appends scene objects to the draw list.
//
// Parameters:
//   - objects: the objects, drawn in the given order
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithObjects(objects ...model.SceneObject) EngineBuilderOption {
	return func(e *engine) {
		e.objects = append(e.objects, objects...)
	}
}

// WithClipPlanes sets the projection's near and far plane distances. Defaults to 0.1 and 100.
//
// Parameters:
//   - near: distance to the near plane, greater than 0
//   - far: distance to the far plane, greater than near
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClipPlanes(near, far float32) EngineBuilderOption {
	return func(e *engine) {
		if near > 0 && far > near {
			e.near, e.far = near, far
		}
	}
}

// WithClock replaces the monotonic clock frame times are measured with.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.clock = now
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
