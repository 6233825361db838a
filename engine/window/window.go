package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// DontCare leaves a size limit unconstrained.
const DontCare = -1

// Window is the viewer's single OS window: it owns the message loop, reports input, and
// provides the surface the renderer presents to.
type Window interface {
	// SetUpdateCallback sets the function run once per message loop iteration, after events
	// have been polled.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer changes size.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function called for vertical mouse wheel movement.
	//
	// Parameters:
	//   - callback: function receiving the wheel offset, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function called once when a key goes down. Auto-repeat is
	// not reported. ESC closes the window and is never reported.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function called when a held key is released, including the
	// implicit release of every held key when the window loses focus.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMoveCallback sets the callback for cursor movement. While the cursor is captured
	// the position is virtual and unbounded, so only differences between events are meaningful.
	//
	// Parameters:
	//   - callback: function receiving the cursor x, y position in screen coordinates
	SetMouseMoveCallback(callback func(x, y float64))

	// SetCursorCaptured hides the cursor and locks it to the window for mouse look, or releases it.
	//
	// Parameters:
	//   - captured: true to capture the cursor
	SetCursorCaptured(captured bool)

	// SurfaceDescriptor returns the platform surface descriptor WebGPU creates its surface from.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the message loop should keep going.
	//
	// Returns:
	//   - bool: false after ESC, the close button, RequestClose or Close
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window. Closing twice is a no-op.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages polls events and runs the update callback until the window stops running.
	ProcessMessages()

	// Width returns the framebuffer width.
	//
	// Returns:
	//   - int: width in pixels, 0 while minimized
	Width() int

	// Height returns the framebuffer height.
	//
	// Returns:
	//   - int: height in pixels, 0 while minimized
	Height() int
}

// engineWindow keeps the requested configuration and the callbacks; the platform layer in
// window_glfw.go owns the OS window.
type engineWindow struct {
	title               string
	minWidth, minHeight int
	maxWidth, maxHeight int
	width, height       int
	cursorCaptured      bool

	platform *glfwState
	input    *inputState

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onMouseMove func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow opens a window with the given options applied over the defaults: 800x600 titled
// "Escena Multiplataforma", at least 200x150, cursor captured. It panics when the platform
// window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:          "Escena Multiplataforma",
		minWidth:       200,
		minHeight:      150,
		maxWidth:       DontCare,
		maxHeight:      DontCare,
		width:          800,
		height:         600,
		cursorCaptured: true,
		input:          newInputState(),
	}
	for _, opt := range options {
		opt(w)
	}
	w.input.onClose = w.RequestClose

	p, err := openGLFWWindow(w)
	if err != nil {
		panic(errors.Wrap(err, "create platform window"))
	}
	w.platform = p
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.input.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.input.onKeyUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	w.cursorCaptured = captured
	if w.platform != nil {
		w.platform.setCursorCaptured(captured)
	}
}

func (w *engineWindow) RequestClose() {
	if w.platform != nil {
		w.platform.requestClose()
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.running()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return errors.New("window is not initialized")
	}
	w.platform.destroy()
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.platform.poll()
		if !w.IsRunning() {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records a new framebuffer size and forwards it.
func (w *engineWindow) resized(width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
