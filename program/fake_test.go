package program

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// fakeGL is an in-memory implementation of Functions. Shaders containing an
// #error directive fail to compile and programs fail to link when one of
// their shaders contains "LINK_FAIL".
//
// With sticky set, errors behave like the flags of glGetError: a code that
// is already raised is not recorded again until it has been read.
type fakeGL struct {
	next     uint32
	shaders  map[uint32]*fakeShader
	programs map[uint32]*fakeProgram
	current  uint32
	errors   []uint32
	sticky   bool

	failCreateShader  bool
	failCreateProgram bool

	calls []string
}

type fakeShader struct {
	stage         uint32
	source        string
	compiled      bool
	log           string
	deletePending bool
}

type fakeProgram struct {
	shaders  []uint32
	linked   bool
	log      string
	attribs  []fakeVar
	uniforms []fakeVar
}

type fakeVar struct {
	name string
	typ  uint32
	size int32
	loc  int32
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		next:     1,
		shaders:  map[uint32]*fakeShader{},
		programs: map[uint32]*fakeProgram{},
	}
}

func (f *fakeGL) call(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeGL) raise(code uint32) {
	if f.sticky {
		for _, c := range f.errors {
			if c == code {
				return
			}
		}
	}
	f.errors = append(f.errors, code)
}

func (f *fakeGL) CreateShader(stage uint32) uint32 {
	f.call("CreateShader(%d)", stage)
	if f.failCreateShader {
		return 0
	}
	if stage != gl.VERTEX_SHADER && stage != gl.FRAGMENT_SHADER {
		f.raise(gl.INVALID_ENUM)
		return 0
	}
	id := f.next
	f.next++
	f.shaders[id] = &fakeShader{stage: stage}
	return id
}

func (f *fakeGL) attached(shader uint32) bool {
	for _, p := range f.programs {
		for _, sh := range p.shaders {
			if sh == shader {
				return true
			}
		}
	}
	return false
}

func (f *fakeGL) DeleteShader(shader uint32) {
	f.call("DeleteShader(%d)", shader)
	sh, ok := f.shaders[shader]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return
	}
	if f.attached(shader) {
		sh.deletePending = true
		return
	}
	delete(f.shaders, shader)
}

func (f *fakeGL) ShaderSource(shader uint32, source string) {
	f.call("ShaderSource(%d)", shader)
	sh, ok := f.shaders[shader]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return
	}
	sh.source = source
}

func (f *fakeGL) CompileShader(shader uint32) {
	f.call("CompileShader(%d)", shader)
	sh, ok := f.shaders[shader]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return
	}
	sh.compiled = true
	sh.log = ""
	for i, line := range strings.Split(sh.source, "\n") {
		if strings.Contains(line, "#error") {
			sh.compiled = false
			sh.log += fmt.Sprintf("0:%d(2): error: %s\n", i+1, strings.TrimSpace(line))
		}
	}
}

func (f *fakeGL) GetShaderiv(shader, pname uint32) int32 {
	sh, ok := f.shaders[shader]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return 0
	}
	switch pname {
	case gl.COMPILE_STATUS:
		if sh.compiled {
			return gl.TRUE
		}
		return gl.FALSE
	case gl.DELETE_STATUS:
		if sh.deletePending {
			return gl.TRUE
		}
		return gl.FALSE
	}
	f.raise(gl.INVALID_ENUM)
	return 0
}

func (f *fakeGL) GetShaderInfoLog(shader uint32) string {
	if sh, ok := f.shaders[shader]; ok {
		return sh.log
	}
	f.raise(gl.INVALID_VALUE)
	return ""
}

func (f *fakeGL) CreateProgram() uint32 {
	f.call("CreateProgram()")
	if f.failCreateProgram {
		return 0
	}
	id := f.next
	f.next++
	f.programs[id] = &fakeProgram{}
	return id
}

func (f *fakeGL) DeleteProgram(program uint32) {
	f.call("DeleteProgram(%d)", program)
	p, ok := f.programs[program]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return
	}
	delete(f.programs, program)
	for _, id := range p.shaders {
		if sh, ok := f.shaders[id]; ok && sh.deletePending && !f.attached(id) {
			delete(f.shaders, id)
		}
	}
	if f.current == program {
		f.current = 0
	}
}

func (f *fakeGL) AttachShader(program, shader uint32) {
	f.call("AttachShader(%d, %d)", program, shader)
	p, ok := f.programs[program]
	if _, shOK := f.shaders[shader]; !ok || !shOK {
		f.raise(gl.INVALID_VALUE)
		return
	}
	p.shaders = append(p.shaders, shader)
}

var (
	fakeAttribRe  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:attribute|in)\s+(\w+)\s+(\w+)\s*;`)
	fakeUniformRe = regexp.MustCompile(`(?m)^\s*uniform\s+(\w+)\s+(\w+)\s*(?:\[(\d+)\])?\s*;`)
)

var fakeTypes = map[string]uint32{
	"float":     gl.FLOAT,
	"vec2":      gl.FLOAT_VEC2,
	"vec3":      gl.FLOAT_VEC3,
	"vec4":      gl.FLOAT_VEC4,
	"int":       gl.INT,
	"mat4":      gl.FLOAT_MAT4,
	"sampler2D": gl.SAMPLER_2D,
}

func (f *fakeGL) LinkProgram(program uint32) {
	f.call("LinkProgram(%d)", program)
	p, ok := f.programs[program]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return
	}
	p.linked, p.log, p.attribs, p.uniforms = false, "", nil, nil

	stages := map[uint32]bool{}
	for _, id := range p.shaders {
		sh := f.shaders[id]
		if !sh.compiled {
			p.log = "error: linking with uncompiled shader"
			return
		}
		if strings.Contains(sh.source, "LINK_FAIL") {
			p.log = "error: unresolved reference"
			return
		}
		stages[sh.stage] = true
	}
	if !stages[gl.VERTEX_SHADER] || !stages[gl.FRAGMENT_SHADER] {
		p.log = "error: missing stage"
		return
	}
	p.linked = true

	seen := map[string]bool{}
	uniformLoc := int32(0)
	for _, id := range p.shaders {
		sh := f.shaders[id]
		if sh.stage == gl.VERTEX_SHADER {
			matches := fakeAttribRe.FindAllStringSubmatch(sh.source, -1)
			// Bind to locations in reverse order of declaration so the
			// location never matches the index by accident.
			for i, m := range matches {
				loc := int32(len(matches)-1-i) + 10
				if m[1] != "" {
					fmt.Sscan(m[1], &loc)
				}
				p.attribs = append(p.attribs, fakeVar{name: m[3], typ: fakeTypes[m[2]], size: 1, loc: loc})
			}
		}
		for _, m := range fakeUniformRe.FindAllStringSubmatch(sh.source, -1) {
			if seen[m[2]] {
				continue
			}
			seen[m[2]] = true
			v := fakeVar{name: m[2], typ: fakeTypes[m[1]], size: 1, loc: uniformLoc}
			if m[3] != "" {
				fmt.Sscan(m[3], &v.size)
				v.name += "[0]"
			}
			uniformLoc += v.size
			p.uniforms = append(p.uniforms, v)
		}
	}
}

func (f *fakeGL) GetProgramiv(program, pname uint32) int32 {
	p, ok := f.programs[program]
	if !ok {
		f.raise(gl.INVALID_VALUE)
		return 0
	}
	switch pname {
	case gl.LINK_STATUS:
		if p.linked {
			return gl.TRUE
		}
		return gl.FALSE
	case gl.ACTIVE_ATTRIBUTES:
		return int32(len(p.attribs))
	case gl.ACTIVE_UNIFORMS:
		return int32(len(p.uniforms))
	}
	f.raise(gl.INVALID_ENUM)
	return 0
}

func (f *fakeGL) GetProgramInfoLog(program uint32) string {
	if p, ok := f.programs[program]; ok {
		return p.log
	}
	f.raise(gl.INVALID_VALUE)
	return ""
}

func (f *fakeGL) UseProgram(program uint32) {
	f.call("UseProgram(%d)", program)
	if p, ok := f.programs[program]; program != 0 && (!ok || !p.linked) {
		f.raise(gl.INVALID_OPERATION)
		return
	}
	f.current = program
}

func (f *fakeGL) GetActiveAttrib(program, index uint32) (string, int32, uint32) {
	p, ok := f.programs[program]
	if !ok || int(index) >= len(p.attribs) {
		f.raise(gl.INVALID_VALUE)
		return "", 0, 0
	}
	v := p.attribs[index]
	return v.name, v.size, v.typ
}

func (f *fakeGL) GetActiveUniform(program, index uint32) (string, int32, uint32) {
	p, ok := f.programs[program]
	if !ok || int(index) >= len(p.uniforms) {
		f.raise(gl.INVALID_VALUE)
		return "", 0, 0
	}
	v := p.uniforms[index]
	return v.name, v.size, v.typ
}

func (f *fakeGL) GetAttribLocation(program uint32, name string) int32 {
	p, ok := f.programs[program]
	if !ok || !p.linked {
		f.raise(gl.INVALID_OPERATION)
		return -1
	}
	for _, v := range p.attribs {
		if v.name == name {
			return v.loc
		}
	}
	return -1
}

func (f *fakeGL) GetUniformLocation(program uint32, name string) int32 {
	p, ok := f.programs[program]
	if !ok || !p.linked {
		f.raise(gl.INVALID_OPERATION)
		return -1
	}
	for _, v := range p.uniforms {
		base := strings.TrimSuffix(v.name, "[0]")
		if v.name == name || base == name {
			return v.loc
		}
		for i := int32(0); i < v.size; i++ {
			if fmt.Sprintf("%s[%d]", base, i) == name {
				return v.loc + i
			}
		}
	}
	return -1
}

func (f *fakeGL) GetError() uint32 {
	if len(f.errors) == 0 {
		return gl.NO_ERROR
	}
	code := f.errors[0]
	f.errors = f.errors[1:]
	return code
}
