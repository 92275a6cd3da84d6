// Package window provides an on-screen surface backed by a GLFW window.
package window

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var initOnce sync.Once
var initErr error

// Init initializes GLFW. It must be called from the main thread, which stays
// locked to the calling goroutine.
func Init() error {
	initOnce.Do(func() {
		runtime.LockOSThread()
		initErr = glfw.Init()
		if initErr == nil {
			log.Printf("GLFW initialized")
		}
	})
	return initErr
}

// Terminate shuts GLFW down. It must be called from the main thread.
func Terminate() {
	glfw.Terminate()
}

type Window struct {
	win *glfw.Window
}

// New creates a window with an OpenGL 3.3 core context.
func New(width, height int, title string, visible bool) (*Window, error) {
	if err := Init(); err != nil {
		return nil, fmt.Errorf("could not initialize GLFW: %w", err)
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Window{win: win}, nil
}

// MakeCurrent makes the context of the window current on the calling thread.
func (w *Window) MakeCurrent() error {
	w.win.MakeContextCurrent()
	return nil
}

func (w *Window) Close() error {
	w.win.Destroy()
	return nil
}
