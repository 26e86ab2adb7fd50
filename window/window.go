// Package window owns the GLFW window and buffers host input into per-frame
// queues the driver drains. Everything here must run on the main thread.
package window

import (
	"fmt"
	"log"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/glimmerfx/glimmer/graph"
	"github.com/glimmerfx/glimmer/options"
)

// Hotkey is a buffered function-key press.
type Hotkey int

const (
	HotkeySnapshot Hotkey = iota // F2
	HotkeyReload                 // F5
	HotkeyPause                  // F6
)

// Window wraps one GLFW window. Input callbacks append into queues; nothing
// is dispatched from the poll site.
type Window struct {
	win *glfw.Window

	resized bool
	width   int
	height  int
	pointer []graph.PointerEvent
	hotkeys []Hotkey
	down    bool
}

// Init initializes GLFW. Must run on the locked main thread.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize glfw: %w", err)
	}
	return nil
}

// Terminate shuts GLFW down.
func Terminate() {
	glfw.Terminate()
}

// New creates the window and makes its GL context current. An invisible
// window backs offline recording.
func New(o *options.Options, visible bool) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	if o.Maximize {
		glfw.WindowHint(glfw.Maximized, glfw.True)
	}
	if o.Root || o.Desktop || o.OverrideRedirect {
		// Closest portable approximation of the X11 attribute flags.
		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.FocusOnShow, glfw.False)
	}
	if o.LowerWindow {
		log.Printf("window: --lower-window is best-effort without a window manager hook")
	}

	var monitor *glfw.Monitor
	width, height := o.Width, o.Height
	if o.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		width, height = mode.Width, mode.Height
	}

	win, err := glfw.CreateWindow(width, height, "glimmer", monitor, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if o.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(w.onResize)
	win.SetCursorPosCallback(w.onCursor)
	win.SetMouseButtonCallback(w.onMouseButton)
	win.SetKeyCallback(w.onKey)
	return w, nil
}

func (w *Window) onResize(_ *glfw.Window, width, height int) {
	w.resized = true
	w.width, w.height = width, height
}

// cursorToPixels scales window coordinates to framebuffer pixels, which
// differ on high-DPI displays.
func (w *Window) cursorToPixels(x, y float64) (float32, float32) {
	fbW, fbH := w.win.GetFramebufferSize()
	winW, winH := w.win.GetSize()
	if winW > 0 && winH > 0 {
		x = x * float64(fbW) / float64(winW)
		y = y * float64(fbH) / float64(winH)
	}
	return float32(x), float32(y)
}

func (w *Window) onCursor(_ *glfw.Window, x, y float64) {
	px, py := w.cursorToPixels(x, y)
	w.pointer = append(w.pointer, graph.PointerEvent{Kind: graph.PointerMove, X: px, Y: py})
}

func (w *Window) onMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	x, y := w.win.GetCursorPos()
	px, py := w.cursorToPixels(x, y)
	switch action {
	case glfw.Press:
		w.down = true
		w.pointer = append(w.pointer, graph.PointerEvent{Kind: graph.PointerPress, X: px, Y: py})
	case glfw.Release:
		if w.down {
			w.down = false
			w.pointer = append(w.pointer, graph.PointerEvent{Kind: graph.PointerRelease, X: px, Y: py})
		}
	}
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.win.SetShouldClose(true)
	case glfw.KeyF2:
		w.hotkeys = append(w.hotkeys, HotkeySnapshot)
	case glfw.KeyF5:
		w.hotkeys = append(w.hotkeys, HotkeyReload)
	case glfw.KeyF6:
		w.hotkeys = append(w.hotkeys, HotkeyPause)
	}
}

// Poll pumps the GLFW event queue, filling the input buffers.
func (w *Window) Poll() {
	glfw.PollEvents()
}

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// Resized returns and clears the pending resize.
func (w *Window) Resized() (width, height int, ok bool) {
	if !w.resized {
		return 0, 0, false
	}
	w.resized = false
	return w.width, w.height, true
}

// PointerEvents returns and clears the buffered pointer events.
func (w *Window) PointerEvents() []graph.PointerEvent {
	events := w.pointer
	w.pointer = nil
	return events
}

// Hotkeys returns and clears the buffered hotkey presses.
func (w *Window) Hotkeys() []Hotkey {
	keys := w.hotkeys
	w.hotkeys = nil
	return keys
}

// FramebufferSize and SwapBuffers satisfy the GL backend's window surface.
func (w *Window) FramebufferSize() (int, int) { return w.win.GetFramebufferSize() }
func (w *Window) SwapBuffers()                { w.win.SwapBuffers() }

func (w *Window) Destroy() {
	w.win.Destroy()
}
