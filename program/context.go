package program

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// A Surface is a drawable that an OpenGL context can be made current on, such
// as a window or an offscreen pbuffer.
type Surface interface {
	MakeCurrent() error
}

// Context carries the functions of a current OpenGL context and the program
// that was installed by InitShaders.
type Context struct {
	Functions

	// Program is the current program, set by InitShaders.
	Program *Program

	stopDebugOutput func()
}

type contextOptions struct {
	debug bool
}

type ContextOption func(*contextOptions)

// Debug controls whether the functions of the context are wrapped in a
// DebugFunctions. Debugging is enabled unless this option disables it.
func Debug(enabled bool) ContextOption {
	return func(o *contextOptions) {
		o.debug = enabled
	}
}

var glInitOnce sync.Once
var glInitErr error

// initFunctions loads the OpenGL function pointers for the current context.
// With debug set, driver debug messages are logged until the returned
// function is called.
var initFunctions = func(debug bool) (Functions, func(), error) {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	if glInitErr != nil {
		return nil, nil, glInitErr
	}
	if !debug || !hasExtension("GL_KHR_debug") {
		return GL{}, nil, nil
	}
	messages, unsubscribe := GLDebugOutput()
	done := logDebugMessages(messages)
	return GL{}, func() {
		unsubscribe()
		<-done
	}, nil
}

// logDebugMessages logs every message above notification severity until the
// channel is closed, after which done is closed.
func logDebugMessages(messages <-chan GLDebugMessage) (done <-chan struct{}) {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for dm := range messages {
			if dm.Severity != gl.DEBUG_SEVERITY_NOTIFICATION {
				log.Printf("OpenGL %v", dm)
			}
		}
	}()
	return ch
}

// GetContext makes the surface current on the calling thread and returns a
// context for it.
//
// Unless Debug(false) is given, every call on the returned context is checked
// for OpenGL errors, see DebugFunctions.
func GetContext(surface Surface, opts ...ContextOption) (*Context, error) {
	o := contextOptions{debug: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := surface.MakeCurrent(); err != nil {
		return nil, fmt.Errorf("could not make the surface current: %w", err)
	}
	fns, stopDebugOutput, err := initFunctions(o.debug)
	if err != nil {
		return nil, fmt.Errorf("could not initialize OpenGL: %w", err)
	}
	if o.debug {
		fns = NewDebugFunctions(fns)
	}
	return &Context{Functions: fns, stopDebugOutput: stopDebugOutput}, nil
}

// Close deletes the current program, if any, and stops logging driver debug
// messages. The surface must still be current.
func (cx *Context) Close() {
	if cx.Program != nil {
		cx.Program.Close(cx)
		cx.Program = nil
	}
	if cx.stopDebugOutput != nil {
		cx.stopDebugOutput()
		cx.stopDebugOutput = nil
	}
}
