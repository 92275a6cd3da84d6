package program

import (
	"fmt"
	"log"

	"github.com/go-gl/gl/v3.3-core/gl"
)

const sourceSeparator = "\n\n"

type Stage string

const (
	StageVertex   Stage = "vert"
	StageFragment Stage = "frag"
)

func (stage Stage) glEnum() (uint32, error) {
	switch stage {
	case StageVertex:
		return gl.VERTEX_SHADER, nil
	case StageFragment:
		return gl.FRAGMENT_SHADER, nil
	}
	return 0, fmt.Errorf("invalid pipeline stage: %q", stage)
}

func (stage Stage) String() string {
	switch stage {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return string(stage)
}

// A Program is a linked shader program together with the locations of its
// active variables once LoadVariableLocations has been called.
type Program struct {
	ID uint32

	Attribs  map[string]Attribute
	Uniforms map[string]Uniform
}

// Close deletes the program. The attached shaders were flagged for deletion
// at link time and are released along with it.
func (p *Program) Close(f Functions) {
	if p.ID != 0 {
		f.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// CompileShader creates a shader object for the stage, uploads the
// concatenation of the sources and compiles it.
//
// On failure the shader object is deleted and a *CreationError or
// CompileError is returned.
func CompileShader(f Functions, stage Stage, sources ...Source) (uint32, error) {
	glStage, err := stage.glEnum()
	if err != nil {
		return 0, err
	}

	var src string
	for _, s := range sources {
		c, err := s.Contents()
		if err != nil {
			log.Printf("unable to read %s shader source: %v", stage, err)
			return 0, err
		}
		src += string(c)
		src += sourceSeparator
	}

	shader := f.CreateShader(glStage)
	if shader == 0 {
		log.Printf("unable to create %s shader", stage)
		return 0, &CreationError{Object: stage.String() + " shader"}
	}
	f.ShaderSource(shader, src)
	f.CompileShader(shader)

	if f.GetShaderiv(shader, gl.COMPILE_STATUS) == gl.FALSE {
		infoLog := f.GetShaderInfoLog(shader)
		log.Printf("failed to compile %s shader: %s", stage, infoLog)
		f.DeleteShader(shader)
		return 0, CompileError{
			sources: sources,
			stage:   stage,
			log:     infoLog,
		}
	}
	return shader, nil
}

// LinkProgram compiles both stages and links them into a new program.
//
// Every object allocated along the way is deleted again if any step fails,
// so either a fully linked program or an error is returned.
func LinkProgram(f Functions, vert, frag []Source) (*Program, error) {
	var shaders []uint32
	freeShaders := func() {
		for _, sh := range shaders {
			f.DeleteShader(sh)
		}
	}

	stages := []struct {
		stage   Stage
		sources []Source
	}{
		{StageVertex, vert},
		{StageFragment, frag},
	}
	for _, s := range stages {
		sh, err := CompileShader(f, s.stage, s.sources...)
		if err != nil {
			freeShaders()
			return nil, err
		}
		shaders = append(shaders, sh)
	}

	program := f.CreateProgram()
	if program == 0 {
		log.Printf("unable to create program")
		freeShaders()
		return nil, &CreationError{Object: "program"}
	}
	for _, sh := range shaders {
		f.AttachShader(program, sh)
	}
	f.LinkProgram(program)

	if f.GetProgramiv(program, gl.LINK_STATUS) == gl.FALSE {
		infoLog := f.GetProgramInfoLog(program)
		log.Printf("failed to link program: %s", infoLog)
		f.DeleteProgram(program)
		freeShaders()
		return nil, LinkError{log: infoLog}
	}

	// The shaders stay attached. Flagging them for deletion ties their
	// lifetime to the program.
	freeShaders()
	return &Program{ID: program}, nil
}

// InitShaders links a program from the vertex and fragment sources, makes it
// the current program and stores it in cx.Program. A program that was
// previously stored in cx is deleted.
func InitShaders(cx *Context, vert, frag []Source) error {
	prog, err := LinkProgram(cx, vert, frag)
	if err != nil {
		log.Printf("failed to create program")
		return err
	}
	cx.UseProgram(prog.ID)
	if cx.Program != nil {
		cx.Program.Close(cx)
	}
	cx.Program = prog
	return nil
}
