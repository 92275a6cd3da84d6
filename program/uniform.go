package program

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// Attribute is an active vertex input of a linked program.
type Attribute struct {
	Name string
	Type uint32
	Size int32
	// Index is the position of the attribute in the active attribute list.
	// It is not necessarily the bound location.
	Index uint32
	// Location is the slot the attribute is bound to, to be passed to
	// VertexAttribPointer.
	Location int32
}

type Uniform struct {
	Name     string
	Type     uint32
	Size     int32
	Location int32
}

// LoadVariableLocations enumerates the active attributes and uniforms of a
// linked program and records them in p.Attribs and p.Uniforms by name.
func LoadVariableLocations(f Functions, p *Program) {
	p.Attribs = ListAttributes(f, p.ID)
	p.Uniforms = ListUniforms(f, p.ID)
}

func ListAttributes(f Functions, program uint32) map[string]Attribute {
	numAttribs := f.GetProgramiv(program, gl.ACTIVE_ATTRIBUTES)
	attribs := make(map[string]Attribute, numAttribs)
	for i := uint32(0); i < uint32(numAttribs); i++ {
		name, size, typ := f.GetActiveAttrib(program, i)
		attribs[name] = Attribute{
			Name:     name,
			Type:     typ,
			Size:     size,
			Index:    i,
			Location: f.GetAttribLocation(program, name),
		}
	}
	return attribs
}

func ListUniforms(f Functions, program uint32) map[string]Uniform {
	numUniforms := f.GetProgramiv(program, gl.ACTIVE_UNIFORMS)
	uniforms := make(map[string]Uniform, numUniforms)
	for i := uint32(0); i < uint32(numUniforms); i++ {
		name, size, typ := f.GetActiveUniform(program, i)

		if strings.HasSuffix(name, "[0]") {
			// A [0] suffix indicates that the uniform is an array. Load the
			// locations of all elements. The bare name refers to the first.
			baseName := strings.TrimSuffix(name, "[0]")
			for j := int32(0); j < size; j++ {
				elemName := fmt.Sprintf("%s[%d]", baseName, j)
				loc := f.GetUniformLocation(program, elemName)
				if loc == -1 {
					break
				}
				uniforms[elemName] = Uniform{Name: elemName, Type: typ, Size: 1, Location: loc}
			}
			if first, ok := uniforms[name]; ok {
				uniforms[baseName] = Uniform{Name: baseName, Type: typ, Size: size, Location: first.Location}
			}
		} else {
			uniforms[name] = Uniform{
				Name:     name,
				Type:     typ,
				Size:     size,
				Location: f.GetUniformLocation(program, name),
			}
		}
	}
	return uniforms
}

func (a Attribute) TypeLiteral() string { return TypeLiteral(a.Type) }

func (a Attribute) String() string {
	return fmt.Sprintf("attribute %s %s (location %d)", a.TypeLiteral(), a.Name, a.Location)
}

func (u Uniform) TypeLiteral() string { return TypeLiteral(u.Type) }

func (u Uniform) String() string {
	return fmt.Sprintf("uniform %s %s (%x)", u.TypeLiteral(), u.Name, u.Location)
}

var typeLiterals = map[uint32]string{
	gl.FLOAT:             "float",
	gl.FLOAT_VEC2:        "vec2",
	gl.FLOAT_VEC3:        "vec3",
	gl.FLOAT_VEC4:        "vec4",
	gl.INT:               "int",
	gl.INT_VEC2:          "ivec2",
	gl.INT_VEC3:          "ivec3",
	gl.INT_VEC4:          "ivec4",
	gl.UNSIGNED_INT:      "uint",
	gl.UNSIGNED_INT_VEC2: "uvec2",
	gl.UNSIGNED_INT_VEC3: "uvec3",
	gl.UNSIGNED_INT_VEC4: "uvec4",
	gl.BOOL:              "bool",
	gl.BOOL_VEC2:         "bvec2",
	gl.BOOL_VEC3:         "bvec3",
	gl.BOOL_VEC4:         "bvec4",

	gl.FLOAT_MAT2:   "mat2",
	gl.FLOAT_MAT3:   "mat3",
	gl.FLOAT_MAT4:   "mat4",
	gl.FLOAT_MAT2x3: "mat2x3",
	gl.FLOAT_MAT2x4: "mat2x4",
	gl.FLOAT_MAT3x2: "mat3x2",
	gl.FLOAT_MAT3x4: "mat3x4",
	gl.FLOAT_MAT4x2: "mat4x2",
	gl.FLOAT_MAT4x3: "mat4x3",

	gl.SAMPLER_1D:              "sampler1D",
	gl.SAMPLER_2D:              "sampler2D",
	gl.SAMPLER_3D:              "sampler3D",
	gl.SAMPLER_CUBE:            "samplerCube",
	gl.SAMPLER_1D_SHADOW:       "sampler1DShadow",
	gl.SAMPLER_2D_SHADOW:       "sampler2DShadow",
	gl.SAMPLER_1D_ARRAY:        "sampler1DArray",
	gl.SAMPLER_2D_ARRAY:        "sampler2DArray",
	gl.SAMPLER_2D_ARRAY_SHADOW: "sampler2DArrayShadow",
	gl.SAMPLER_CUBE_SHADOW:     "samplerCubeShadow",
	gl.SAMPLER_2D_MULTISAMPLE:  "sampler2DMS",
	gl.SAMPLER_BUFFER:          "samplerBuffer",
	gl.SAMPLER_2D_RECT:         "sampler2DRect",

	gl.INT_SAMPLER_2D:            "isampler2D",
	gl.INT_SAMPLER_3D:            "isampler3D",
	gl.INT_SAMPLER_CUBE:          "isamplerCube",
	gl.INT_SAMPLER_2D_ARRAY:      "isampler2DArray",
	gl.UNSIGNED_INT_SAMPLER_2D:   "usampler2D",
	gl.UNSIGNED_INT_SAMPLER_3D:   "usampler3D",
	gl.UNSIGNED_INT_SAMPLER_CUBE: "usamplerCube",

	gl.UNSIGNED_INT_SAMPLER_2D_ARRAY: "usampler2DArray",
}

// TypeLiteral returns the GLSL spelling of a variable type reported by
// GetActiveAttrib or GetActiveUniform.
func TypeLiteral(typ uint32) string {
	if lit, ok := typeLiterals[typ]; ok {
		return lit
	}
	return "invalid"
}
