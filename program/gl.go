package program

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// Functions is the subset of the OpenGL API used to build shader programs.
//
// Implementations are bound to the OS thread on which their context is
// current and must not be shared between goroutines.
type Functions interface {
	CreateShader(stage uint32) uint32
	DeleteShader(shader uint32)
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string

	CreateProgram() uint32
	DeleteProgram(program uint32)
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)

	GetActiveAttrib(program, index uint32) (name string, size int32, typ uint32)
	GetActiveUniform(program, index uint32) (name string, size int32, typ uint32)
	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32

	GetError() uint32
}

// GL implements Functions by calling straight into the go-gl bindings.
// gl.Init must have been called with a current context.
type GL struct{}

func (GL) CreateShader(stage uint32) uint32 { return gl.CreateShader(stage) }
func (GL) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (GL) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (GL) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (GL) GetShaderiv(shader, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (GL) GetShaderInfoLog(shader uint32) string {
	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (GL) CreateProgram() uint32 { return gl.CreateProgram() }
func (GL) DeleteProgram(program uint32) { gl.DeleteProgram(program) }
func (GL) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (GL) LinkProgram(program uint32) { gl.LinkProgram(program) }
func (GL) UseProgram(program uint32) { gl.UseProgram(program) }

func (GL) GetProgramiv(program, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (GL) GetProgramInfoLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (GL) GetActiveAttrib(program, index uint32) (string, int32, uint32) {
	var bufSize int32
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &bufSize)
	return activeVariable(program, index, bufSize, gl.GetActiveAttrib)
}

func (GL) GetActiveUniform(program, index uint32) (string, int32, uint32) {
	var bufSize int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &bufSize)
	return activeVariable(program, index, bufSize, gl.GetActiveUniform)
}

func activeVariable(program, index uint32, bufSize int32, get func(uint32, uint32, int32, *int32, *int32, *uint32, *uint8)) (string, int32, uint32) {
	if bufSize <= 0 {
		bufSize = 1
	}
	var length, size int32
	var typ uint32
	nameBuf := strings.Repeat("\x00", int(bufSize))
	get(program, index, bufSize, &length, &size, &typ, gl.Str(nameBuf))
	return nameBuf[:length], size, typ
}

func (GL) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (GL) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) GetError() uint32 { return gl.GetError() }

type GLDebugMessage struct {
	ID       uint32
	Source   uint32
	Type     uint32
	Severity uint32
	Message  string
}

func (dm GLDebugMessage) SeverityString() string {
	switch dm.Severity {
	case gl.DEBUG_SEVERITY_HIGH:
		return "high"
	case gl.DEBUG_SEVERITY_MEDIUM:
		return "medium"
	case gl.DEBUG_SEVERITY_LOW:
		return "low"
	case gl.DEBUG_SEVERITY_NOTIFICATION:
		return "note"
	default:
		return ""
	}
}

func (dm GLDebugMessage) String() string {
	return fmt.Sprintf("[%s] %s", dm.SeverityString(), dm.Message)
}

// hasExtension reports whether the current context advertises the named
// extension.
func hasExtension(name string) bool {
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))) == name {
			return true
		}
	}
	return false
}

// GLDebugOutput subscribes to the driver's debug message stream of the
// current context. Messages are dropped when the channel is full.
//
// The returned function disables debug output and closes the channel. It must
// be called on the thread of the context.
func GLDebugOutput() (<-chan GLDebugMessage, func()) {
	ch := make(chan GLDebugMessage, 32)
	var mu sync.Mutex
	closed := false

	gl.Enable(gl.DEBUG_OUTPUT)
	gl.DebugMessageControl(gl.DONT_CARE, gl.DONT_CARE, gl.DONT_CARE, 0, nil, true)
	gl.DebugMessageCallback(func(source uint32, typ uint32, id uint32, severity uint32, length int32, message string, userParam unsafe.Pointer) {
		dm := GLDebugMessage{
			ID:       id,
			Source:   source,
			Type:     typ,
			Severity: severity,
			Message:  message,
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- dm:
		default:
		}
	}, nil)

	return ch, func() {
		gl.Disable(gl.DEBUG_OUTPUT)
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
}
