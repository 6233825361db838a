package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/skybox"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// movementKeys maps the held keys polled every frame to camera directions, in the order they apply.
var movementKeys = []struct {
	key uint32
	dir camera.Direction
}{
	{common.KeyW, camera.Forward},
	{common.KeyS, camera.Backward},
	{common.KeyA, camera.Left},
	{common.KeyD, camera.Right},
}

// ArrowLookRate is how far a held arrow key turns the camera each second, in the same units
// as mouse offsets.
const ArrowLookRate = 600

// lookKeys maps the arrow keys to look offsets per unit of ArrowLookRate.
var lookKeys = []struct {
	key    uint32
	dx, dy float32
}{
	{common.KeyRight, 1, 0},
	{common.KeyLeft, -1, 0},
	{common.KeyUp, 0, 1},
	{common.KeyDown, 0, -1},
}

// engine implements the Engine interface.
// Everything runs on the window's thread: the message loop polls input and then runs one
// frame to completion.
type engine struct {
	logger *slog.Logger

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera

	modelProgram  shader.Program
	skyboxProgram shader.Program
	skybox        skybox.Skybox
	objects       []model.SceneObject

	near, far float32

	clock     func() time.Time
	lastFrame time.Time
	lastDelta float32

	// keys is the held state of every key seen since start
	keys       map[uint32]bool
	firstMouse bool
	lastX      float64
	lastY      float64

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the viewer's frame orchestrator. Each iteration of the window's message loop it
// applies held movement keys to the camera, clears the frame, draws the skybox and then every
// scene object, and presents.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Camera returns the camera driven by input.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddObject appends a scene object to the draw list.
	//
	// Parameters:
	//   - o: the object to draw every frame
	AddObject(o model.SceneObject)

	// Objects returns a copy of the draw list.
	//
	// Returns:
	//   - []model.SceneObject: the scene objects in draw order
	Objects() []model.SceneObject

	// Run starts the frame loop and blocks until the window closes.
	Run()

	// Quit asks the loop to stop after the current frame. Safe to call multiple times.
	Quit()

	// Release frees every scene object, the skybox and the renderer. Call it after Run returns.
	Release()
}

// NewEngine creates a new Engine instance with the provided options. A window, a renderer and
// a model program are required; a camera with default settings is created when none is given.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:     slog.Default().With("component", "engine"),
		near:       0.1,
		far:        100,
		clock:      time.Now,
		keys:       make(map[uint32]bool),
		firstMouse: true,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.clock), profiler.WithInterval(e.profileInterval))
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.onResize)
		e.window.SetKeyDownCallback(func(key uint32) { e.keys[key] = true })
		e.window.SetKeyUpCallback(func(key uint32) { e.keys[key] = false })
		e.window.SetMouseMoveCallback(e.onMouseMove)
		e.window.SetScrollCallback(func(delta float32) { e.camera.ProcessScroll(delta) })
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Run() {
	e.lastFrame = e.clock()
	e.window.SetUpdateCallback(e.frame)
	e.logger.Info("frame loop started", "objects", len(e.objects))
	e.window.ProcessMessages()
	e.logger.Info("frame loop stopped")
}

func (e *engine) Quit() {
	if e.window != nil {
		e.window.RequestClose()
	}
}

// frame runs one complete frame: timing, movement, then the draws in skybox-then-objects order.
func (e *engine) frame() {
	start := e.clock()
	e.lastDelta = max(float32(start.Sub(e.lastFrame).Seconds()), 0)
	e.lastFrame = start
	dt := e.lastDelta

	for _, mk := range movementKeys {
		if e.keys[mk.key] {
			e.camera.ProcessMovement(mk.dir, dt)
		}
	}
	for _, lk := range lookKeys {
		if e.keys[lk.key] {
			e.camera.ProcessLook(lk.dx*ArrowLookRate*dt, lk.dy*ArrowLookRate*dt)
		}
	}

	width, height := e.window.Width(), e.window.Height()
	if width <= 0 || height <= 0 {
		// minimized; nothing to present into
		return
	}

	if err := e.renderer.BeginFrame(); err != nil {
		e.logger.Warn("frame skipped", "err", err)
		return
	}

	projection := common.Perspective(e.camera.Zoom(), float32(width)/float32(height), e.near, e.far)
	view := e.camera.ViewMatrix()

	if e.skybox != nil && e.skyboxProgram != nil {
		e.skybox.Draw(e.skyboxProgram, view, projection)
	}

	e.modelProgram.Use()
	e.modelProgram.SetMatrix("view", view)
	e.modelProgram.SetMatrix("projection", projection)
	for _, o := range e.objects {
		o.Draw(e.modelProgram)
	}

	e.renderer.EndFrame()
	e.renderer.Present()

	if e.profilingEnabled {
		e.profiler.Tick(e.renderer.FrameStats().Draws)
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.clock().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) onResize(width, height int) {
	e.renderer.Resize(width, height)
}

// onMouseMove turns absolute cursor positions into look offsets. The first event only records
// the position, so capturing the cursor does not jerk the view.
func (e *engine) onMouseMove(x, y float64) {
	if e.firstMouse {
		e.lastX, e.lastY = x, y
		e.firstMouse = false
		return
	}
	dx := float32(x - e.lastX)
	dy := float32(e.lastY - y)
	e.lastX, e.lastY = x, y
	e.camera.ProcessLook(dx, dy)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddObject(o model.SceneObject) {
	e.objects = append(e.objects, o)
}

func (e *engine) Objects() []model.SceneObject {
	return append([]model.SceneObject(nil), e.objects...)
}

func (e *engine) Release() {
	for _, o := range e.objects {
		o.Release()
	}
	e.objects = nil
	if e.skybox != nil {
		e.skybox.Release()
		e.skybox = nil
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
}
