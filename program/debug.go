package program

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// Not part of the core profile enums.
const (
	stackOverflow  = 0x0503
	stackUnderflow = 0x0504
)

// GLError is an error code as returned by glGetError.
type GLError uint32

func (code GLError) Error() string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case stackOverflow:
		return "STACK_OVERFLOW"
	case stackUnderflow:
		return "STACK_UNDERFLOW"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	}
	return fmt.Sprintf("GL error 0x%x", uint32(code))
}

// maxQueuedErrors bounds the number of glGetError calls after each call, an
// implementation may hold one error per error flag.
const maxQueuedErrors = 8

// DebugFunctions wraps Functions and checks for errors after every call.
//
// Results of the wrapped functions are returned unchanged. Errors consumed by
// the checks are kept as error flags and handed out by GetError in the order
// they were first raised. Like glGetError, a flag that is already set is not
// recorded again until it has been read.
type DebugFunctions struct {
	Functions

	// OnError is called for every error raised by a call. The default logs
	// the call and the error.
	OnError func(call string, err error, args ...interface{})
	// Trace, if set, is called before every call.
	Trace func(call string, args ...interface{})

	pending []uint32
}

func NewDebugFunctions(f Functions) *DebugFunctions {
	return &DebugFunctions{
		Functions: f,
		OnError:   logGLError,
	}
}

func logGLError(call string, err error, args ...interface{}) {
	log.Printf("%s(%s): %v", call, formatArgs(args), err)
}

func formatArgs(args []interface{}) string {
	strs := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			if len(v) > 32 {
				v = v[:32] + "..."
			}
			strs[i] = fmt.Sprintf("%q", v)
		default:
			strs[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(strs, ", ")
}

func (d *DebugFunctions) trace(call string, args ...interface{}) {
	if d.Trace != nil {
		d.Trace(call, args...)
	}
}

func (d *DebugFunctions) check(call string, args ...interface{}) {
	for i := 0; i < maxQueuedErrors; i++ {
		code := d.Functions.GetError()
		if code == gl.NO_ERROR {
			return
		}
		if !d.flagged(code) {
			d.pending = append(d.pending, code)
		}
		if d.OnError != nil {
			d.OnError(call, GLError(code), args...)
		}
	}
}

func (d *DebugFunctions) flagged(code uint32) bool {
	for _, c := range d.pending {
		if c == code {
			return true
		}
	}
	return false
}

func (d *DebugFunctions) validateName(call, name string, args ...interface{}) {
	if strings.ContainsRune(name, 0) && d.OnError != nil {
		d.OnError(call, fmt.Errorf("argument contains a NUL byte"), args...)
	}
}

func (d *DebugFunctions) CreateShader(stage uint32) uint32 {
	d.trace("CreateShader", stage)
	sh := d.Functions.CreateShader(stage)
	d.check("CreateShader", stage)
	return sh
}

func (d *DebugFunctions) DeleteShader(shader uint32) {
	d.trace("DeleteShader", shader)
	d.Functions.DeleteShader(shader)
	d.check("DeleteShader", shader)
}

func (d *DebugFunctions) ShaderSource(shader uint32, source string) {
	d.trace("ShaderSource", shader, source)
	d.validateName("ShaderSource", source, shader, source)
	d.Functions.ShaderSource(shader, source)
	d.check("ShaderSource", shader, source)
}

func (d *DebugFunctions) CompileShader(shader uint32) {
	d.trace("CompileShader", shader)
	d.Functions.CompileShader(shader)
	d.check("CompileShader", shader)
}

func (d *DebugFunctions) GetShaderiv(shader, pname uint32) int32 {
	d.trace("GetShaderiv", shader, pname)
	v := d.Functions.GetShaderiv(shader, pname)
	d.check("GetShaderiv", shader, pname)
	return v
}

func (d *DebugFunctions) GetShaderInfoLog(shader uint32) string {
	d.trace("GetShaderInfoLog", shader)
	s := d.Functions.GetShaderInfoLog(shader)
	d.check("GetShaderInfoLog", shader)
	return s
}

func (d *DebugFunctions) CreateProgram() uint32 {
	d.trace("CreateProgram")
	p := d.Functions.CreateProgram()
	d.check("CreateProgram")
	return p
}

func (d *DebugFunctions) DeleteProgram(program uint32) {
	d.trace("DeleteProgram", program)
	d.Functions.DeleteProgram(program)
	d.check("DeleteProgram", program)
}

func (d *DebugFunctions) AttachShader(program, shader uint32) {
	d.trace("AttachShader", program, shader)
	d.Functions.AttachShader(program, shader)
	d.check("AttachShader", program, shader)
}

func (d *DebugFunctions) LinkProgram(program uint32) {
	d.trace("LinkProgram", program)
	d.Functions.LinkProgram(program)
	d.check("LinkProgram", program)
}

func (d *DebugFunctions) GetProgramiv(program, pname uint32) int32 {
	d.trace("GetProgramiv", program, pname)
	v := d.Functions.GetProgramiv(program, pname)
	d.check("GetProgramiv", program, pname)
	return v
}

func (d *DebugFunctions) GetProgramInfoLog(program uint32) string {
	d.trace("GetProgramInfoLog", program)
	s := d.Functions.GetProgramInfoLog(program)
	d.check("GetProgramInfoLog", program)
	return s
}

func (d *DebugFunctions) UseProgram(program uint32) {
	d.trace("UseProgram", program)
	d.Functions.UseProgram(program)
	d.check("UseProgram", program)
}

func (d *DebugFunctions) GetActiveAttrib(program, index uint32) (string, int32, uint32) {
	d.trace("GetActiveAttrib", program, index)
	name, size, typ := d.Functions.GetActiveAttrib(program, index)
	d.check("GetActiveAttrib", program, index)
	return name, size, typ
}

func (d *DebugFunctions) GetActiveUniform(program, index uint32) (string, int32, uint32) {
	d.trace("GetActiveUniform", program, index)
	name, size, typ := d.Functions.GetActiveUniform(program, index)
	d.check("GetActiveUniform", program, index)
	return name, size, typ
}

func (d *DebugFunctions) GetAttribLocation(program uint32, name string) int32 {
	d.trace("GetAttribLocation", program, name)
	d.validateName("GetAttribLocation", name, program, name)
	loc := d.Functions.GetAttribLocation(program, name)
	d.check("GetAttribLocation", program, name)
	return loc
}

func (d *DebugFunctions) GetUniformLocation(program uint32, name string) int32 {
	d.trace("GetUniformLocation", program, name)
	d.validateName("GetUniformLocation", name, program, name)
	loc := d.Functions.GetUniformLocation(program, name)
	d.check("GetUniformLocation", program, name)
	return loc
}

func (d *DebugFunctions) GetError() uint32 {
	d.trace("GetError")
	if len(d.pending) == 0 {
		return d.Functions.GetError()
	}
	code := d.pending[0]
	d.pending = d.pending[1:]
	return code
}
