package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// glfwActions maps GLFW key actions onto the input state's transitions.
var glfwActions = map[glfw.Action]keyAction{
	glfw.Press:   keyPress,
	glfw.Repeat:  keyRepeat,
	glfw.Release: keyRelease,
}

// glfwState is the GLFW side of a window.
type glfwState struct {
	window    *glfw.Window
	stopped   bool
	destroyed bool
}

// openGLFWWindow initializes GLFW on the calling thread, which stays locked to it, and
// creates a window without a client API for WebGPU to present into.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func openGLFWWindow(w *engineWindow) (*glfwState, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initialize GLFW")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create GLFW window")
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	s := &glfwState{window: win}
	s.bind(w)
	s.setCursorCaptured(w.cursorCaptured)

	// the framebuffer can be larger than the requested size on high-DPI displays
	w.width, w.height = win.GetFramebufferSize()
	return s, nil
}

// bind routes GLFW callbacks to the window.
func (s *glfwState) bind(w *engineWindow) {
	s.window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if a, ok := glfwActions[action]; ok {
			w.input.key(int(key), a)
		}
	})
	s.window.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if !focused {
			w.input.releaseAll()
		}
	})
	s.window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})
	s.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(x, y)
		}
	})
	s.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})

	// Reference: https://www.glfw.org/docs/latest/input_guide.html#raw_mouse_motion
	if glfw.RawMouseMotionSupported() {
		s.window.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}
}

func (s *glfwState) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	if s.destroyed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(s.window)
}

func (s *glfwState) running() bool {
	return !s.stopped && !s.destroyed && !s.window.ShouldClose()
}

func (s *glfwState) poll() {
	glfw.PollEvents()
}

func (s *glfwState) requestClose() {
	s.stopped = true
	if !s.destroyed {
		s.window.SetShouldClose(true)
	}
}

// setCursorCaptured switches between the disabled cursor used for mouse look and the normal one.
//
// Reference: https://www.glfw.org/docs/latest/input_guide.html#cursor_mode
func (s *glfwState) setCursorCaptured(captured bool) {
	if s.destroyed {
		return
	}
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	s.window.SetInputMode(glfw.CursorMode, mode)
}

func (s *glfwState) destroy() {
	if s.destroyed {
		return
	}
	s.stopped = true
	s.destroyed = true
	s.window.Destroy()
	glfw.Terminate()
}
